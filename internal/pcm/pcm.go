// Package pcm converts between 16-bit mono WAV files and the raw
// little-endian int16 stream the resampling stage reads and writes.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// chunkSamples is the number of samples converted per read.
	chunkSamples = 4096

	bitDepth       = 16
	bytesPerSample = 2
	monoChannels   = 1
	pcmFormat      = 1 // WAVE_FORMAT_PCM
)

var (
	// ErrInvalidInput indicates a malformed WAV file or a raw stream that
	// ends inside a sample.
	ErrInvalidInput = errors.New("pcm: invalid input")

	// ErrUnsupportedFormat indicates a WAV file that is not 16-bit mono PCM.
	ErrUnsupportedFormat = errors.New("pcm: unsupported format")
)

// Info describes a converted stream.
type Info struct {
	SampleRate int
	Samples    int64
}

// Encode returns samples in the raw little-endian wire format.
func Encode(samples []int16) []byte {
	raw := make([]byte, len(samples)*bytesPerSample)
	EncodeInto(raw, samples)
	return raw
}

// EncodeInto writes samples to dst in the wire format and returns the number
// of bytes written. dst must hold at least 2*len(samples) bytes.
func EncodeInto(dst []byte, samples []int16) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*bytesPerSample:], uint16(s))
	}
	return len(samples) * bytesPerSample
}

// Decode parses raw little-endian samples. raw must hold a whole number of
// samples.
func Decode(raw []byte) ([]int16, error) {
	samples := make([]int16, len(raw)/bytesPerSample)
	if _, err := DecodeInto(samples, raw); err != nil {
		return nil, err
	}
	return samples, nil
}

// DecodeInto parses raw into dst and returns the sample count. raw must hold
// a whole number of samples and dst must have room for all of them.
func DecodeInto(dst []int16, raw []byte) (int, error) {
	if len(raw)%bytesPerSample != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a whole number of samples", ErrInvalidInput, len(raw))
	}
	count := len(raw) / bytesPerSample
	if count > len(dst) {
		return 0, fmt.Errorf("%w: %d samples exceeds destination of %d", ErrInvalidInput, count, len(dst))
	}
	for i := range count {
		dst[i] = int16(binary.LittleEndian.Uint16(raw[i*bytesPerSample:]))
	}
	return count, nil
}

// WAVToRaw decodes a 16-bit mono WAV file from r and writes its samples to w
// as raw little-endian int16.
func WAVToRaw(r io.ReadSeeker, w io.Writer) (Info, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("%w: not a WAV file", ErrInvalidInput)
	}

	format := decoder.Format()
	if decoder.BitDepth != bitDepth || format.NumChannels != monoChannels {
		return Info{}, fmt.Errorf("%w: %d-bit %d-channel (want %d-bit mono)",
			ErrUnsupportedFormat, decoder.BitDepth, format.NumChannels, bitDepth)
	}

	info := Info{SampleRate: format.SampleRate}
	buf := &audio.IntBuffer{
		Data:   make([]int, chunkSamples),
		Format: format,
	}
	raw := make([]byte, chunkSamples*bytesPerSample)

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return info, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}

		for i, s := range buf.Data[:n] {
			binary.LittleEndian.PutUint16(raw[i*bytesPerSample:], uint16(int16(s)))
		}
		if _, err := w.Write(raw[:n*bytesPerSample]); err != nil {
			return info, fmt.Errorf("failed to write raw samples: %w", err)
		}
		info.Samples += int64(n)
	}

	return info, nil
}

// RawToWAV reads raw little-endian int16 samples from r until EOF and
// encodes them to w as a 16-bit mono WAV file at sampleRate.
func RawToWAV(r io.Reader, w io.WriteSeeker, sampleRate int) (Info, error) {
	if sampleRate <= 0 {
		return Info{}, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidInput, sampleRate)
	}

	info := Info{SampleRate: sampleRate}
	encoder := wav.NewEncoder(w, sampleRate, bitDepth, monoChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Data: make([]int, chunkSamples),
		Format: &audio.Format{
			NumChannels: monoChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
	}
	raw := make([]byte, chunkSamples*bytesPerSample)

	for {
		n, err := io.ReadFull(r, raw)
		if n%bytesPerSample != 0 {
			return info, fmt.Errorf("%w: stream ends inside a sample after %d samples",
				ErrInvalidInput, info.Samples+int64(n/bytesPerSample))
		}

		count := n / bytesPerSample
		if count > 0 {
			buf.Data = buf.Data[:count]
			for i := range count {
				buf.Data[i] = int(int16(binary.LittleEndian.Uint16(raw[i*bytesPerSample:])))
			}
			if werr := encoder.Write(buf); werr != nil {
				return info, fmt.Errorf("failed to write audio data: %w", werr)
			}
			info.Samples += int64(count)
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return info, fmt.Errorf("failed to read raw samples: %w", err)
		}
	}

	if err := encoder.Close(); err != nil {
		return info, fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return info, nil
}
