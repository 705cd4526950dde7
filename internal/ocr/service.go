package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"

	"golang.org/x/image/draw"
)

const (
	defaultMinWidth = 1000
	maxUpscale      = 4
	maxStderr       = 2 << 10
)

// Tesseract recognizes text in bitmaps by piping them to the tesseract CLI.
type Tesseract struct {
	cfg    Config
	runner Runner
}

// NewTesseract creates an engine using the given configuration. The binary is
// looked up lazily so a missing installation only affects recognition calls.
func NewTesseract(cfg Config) *Tesseract {
	return newTesseract(cfg, execRunner{})
}

func newTesseract(cfg Config, runner Runner) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PageSegMode <= 0 {
		cfg.PageSegMode = 3
	}
	if cfg.MinWidth == 0 {
		cfg.MinWidth = defaultMinWidth
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Available reports whether the binary can be found.
func (t *Tesseract) Available() bool {
	_, err := t.runner.LookPath(t.cfg.Binary)
	return err == nil
}

// Recognize returns whatever text tesseract finds in img, possibly empty.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	bin, err := t.runner.LookPath(t.cfg.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, t.cfg.Binary, err)
	}

	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", ErrRecognitionFailed)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, upscale(img, t.cfg.MinWidth)); err != nil {
		return "", fmt.Errorf("%w: encode png: %v", ErrRecognitionFailed, err)
	}

	// tesseract stdin stdout -l <lang> --psm <n>
	stdout, stderr, err := t.runner.Run(ctx, buf.Bytes(), bin,
		"stdin", "stdout",
		"-l", t.cfg.Language,
		"--psm", strconv.Itoa(t.cfg.PageSegMode),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrRecognitionFailed, err, truncate(string(stderr), maxStderr))
	}
	return string(stdout), nil
}

// upscale enlarges images narrower than minWidth by an integer factor so
// tesseract sees glyphs at a usable resolution.
func upscale(img image.Image, minWidth int) image.Image {
	b := img.Bounds()
	if minWidth <= 0 || b.Dx() >= minWidth {
		return img
	}
	factor := (minWidth + b.Dx() - 1) / b.Dx()
	if factor > maxUpscale {
		factor = maxUpscale
	}
	if factor < 2 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
