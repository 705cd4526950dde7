package ocr

import (
	"context"
	"errors"
)

var (
	// ErrEngineUnavailable is returned when the tesseract binary cannot be found.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrRecognitionFailed is returned when the engine ran but produced no usable result.
	ErrRecognitionFailed = errors.New("ocr recognition failed")
)

// Runner lets us stub external commands in tests.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// Config holds configuration for the tesseract engine.
type Config struct {
	// Binary is a name on PATH or an absolute path. Defaults to "tesseract".
	Binary string
	// Language is passed as -l. Defaults to "eng".
	Language string
	// PageSegMode is passed as --psm. Defaults to 3 (fully automatic).
	PageSegMode int
	// MinWidth is the width small images are upscaled to before recognition.
	// Zero uses the default; a negative value disables upscaling.
	MinWidth int
}
