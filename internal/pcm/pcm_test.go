package pcm

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	// Longer than one conversion chunk, with both extremes.
	samples := make([]int16, chunkSamples*2+123)
	for i := range samples {
		samples[i] = int16((i*977)%65536 - 32768)
	}
	samples[0] = -32768
	samples[1] = 32767
	raw := Encode(samples)

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	info, err := RawToWAV(bytes.NewReader(raw), f, 16000)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, Info{SampleRate: 16000, Samples: int64(len(samples))}, info)

	in, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = in.Close() }()

	var out bytes.Buffer
	info, err = WAVToRaw(in, &out)
	require.NoError(t, err)

	assert.Equal(t, Info{SampleRate: 16000, Samples: int64(len(samples))}, info)
	assert.Equal(t, raw, out.Bytes())
}

func TestRawToWAV_PartialSample(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "partial.wav"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = RawToWAV(bytes.NewReader([]byte{1, 2, 3}), f, 8000)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRawToWAV_BadRate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "rate.wav"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = RawToWAV(bytes.NewReader(nil), f, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWAVToRaw_NotWAV(t *testing.T) {
	_, err := WAVToRaw(bytes.NewReader([]byte("definitely not a riff file")), &bytes.Buffer{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWAVToRaw_Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           []int{1, -1, 2, -2},
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = in.Close() }()

	_, err = WAVToRaw(in, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode(t *testing.T) {
	samples, err := Decode([]byte{0xFE, 0xFF, 0x02, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []int16{-2, 258}, samples)

	_, err = Decode([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeInto(t *testing.T) {
	dst := make([]int16, 4)
	n, err := DecodeInto(dst, []byte{0xFE, 0xFF, 0x02, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int16{-2, 258, 0, 0}, dst)

	_, err = DecodeInto(dst[:1], []byte{0, 0, 0, 0})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEncodeInto(t *testing.T) {
	dst := make([]byte, 6)
	n := EncodeInto(dst, []int16{-2, 258})
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0xFE, 0xFF, 0x02, 0x01, 0, 0}, dst)
}
