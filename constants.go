package resampler

import "github.com/tphakala/go-fifo-resampler/internal/pipeline"

// Wire format
const (
	bytesPerSample = 2 // signed 16-bit little-endian
)

// Block sizing
const (
	// DefaultBlockSamples is the default read and output block size.
	DefaultBlockSamples = pipeline.DefaultBlockSamples

	// MaxBlockSamples is the largest accepted block size.
	MaxBlockSamples = pipeline.MaxBufferBytes / bytesPerSample
)

// Common sample rates.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000
)
