package main

// Default command-line flag values
const (
	defaultInterpolation = 1
	defaultDecimation    = 1
	defaultLogLevel      = "info"
)

// Process exit codes
const (
	exitOK      = 0
	exitFailure = 1
)

// Positional arguments: input and output stream paths
const requiredArgs = 2
