// Command pcmconv converts between 16-bit mono WAV files and the raw
// little-endian int16 format the resampler streams.
//
// Usage:
//
//	pcmconv -to-raw input.wav output.raw
//	pcmconv -to-wav -rate 48000 input.raw output.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tphakala/go-fifo-resampler/internal/pcm"
)

const minRequiredArgs = 2

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pcmconv", flag.ContinueOnError)
	toRaw := fs.Bool("to-raw", false, "Convert a WAV file to raw samples")
	toWAV := fs.Bool("to-wav", false, "Convert raw samples to a WAV file")
	rate := fs.Int("rate", 0, "Sample rate in Hz for -to-wav")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < minRequiredArgs || *toRaw == *toWAV {
		fmt.Fprintf(os.Stderr, "Usage: %s -to-raw|-to-wav [options] input output\n\n", fs.Name())
		fs.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	var (
		info pcm.Info
		err  error
	)
	if *toRaw {
		info, err = wavToRaw(inPath, outPath)
	} else {
		info, err = rawToWAV(inPath, outPath, *rate)
	}
	if err != nil {
		return err
	}

	if *verbose {
		log.Printf("Converted %d samples at %d Hz: %s -> %s", info.Samples, info.SampleRate, inPath, outPath)
	}
	return nil
}

func wavToRaw(inPath, outPath string) (info pcm.Info, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return info, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return info, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	return pcm.WAVToRaw(in, out)
}

func rawToWAV(inPath, outPath string, rate int) (info pcm.Info, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return info, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return info, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	return pcm.RawToWAV(in, out, rate)
}
