// Package ingest flattens uploaded PDFs into one block of text: the native
// text layer of every page followed by OCR output for the embedded images.
//
// Failures are isolated. A document that cannot be parsed contributes
// nothing, an image that cannot be decoded or recognized contributes
// nothing, and both are handed to the injected Reporter. Extract never
// returns an error.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoRecognizer is reported for every image when no OCR engine is configured.
var ErrNoRecognizer = errors.New("no ocr engine configured")

// Recognizer turns a bitmap into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type Extractor struct {
	open   Opener
	ocr    Recognizer
	report Reporter
}

// NewExtractor wires an extractor. A nil opener parses real PDFs, a nil
// reporter discards failures.
func NewExtractor(open Opener, ocr Recognizer, report Reporter) *Extractor {
	if open == nil {
		open = PDFOpener()
	}
	if report == nil {
		report = ReporterFunc(func(Failure) {})
	}
	return &Extractor{open: open, ocr: ocr, report: report}
}

// Extract returns, for every document in order, its page text, a single
// space, then the text recognized in its images. Document boundaries are
// not marked. An empty batch yields "".
func (e *Extractor) Extract(ctx context.Context, docs [][]byte) string {
	var out strings.Builder
	for i, data := range docs {
		text, imageText, err := e.extractDocument(ctx, i+1, data)
		if err != nil {
			e.report.Report(Failure{Kind: DocumentFailed, Document: i + 1, Err: err})
			continue
		}
		out.WriteString(text)
		out.WriteByte(' ')
		out.WriteString(imageText)
	}
	return out.String()
}

func (e *Extractor) extractDocument(ctx context.Context, docNum int, data []byte) (text, imageText string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, imageText = "", ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	doc, err := e.open(data)
	if err != nil {
		return "", "", err
	}

	var textBuf, imageBuf strings.Builder
	listImages := true
	for page := 1; page <= doc.NumPage(); page++ {
		pageText, err := doc.PageText(page)
		if err != nil {
			return "", "", fmt.Errorf("read page %d: %w", page, err)
		}
		appendChunk(&textBuf, pageText)

		if !listImages {
			continue
		}
		images, err := doc.PageImages(page)
		if err != nil {
			// The text layer is still usable; stop asking for images.
			e.report.Report(Failure{Kind: ImagesUnavailable, Document: docNum, Page: page, Err: err})
			listImages = false
			continue
		}
		for i, raw := range images {
			appendChunk(&imageBuf, e.recognize(ctx, docNum, page, i+1, raw))
		}
	}
	return textBuf.String(), imageBuf.String(), nil
}

func (e *Extractor) recognize(ctx context.Context, docNum, page, index int, raw EmbeddedImage) string {
	fail := func(kind Kind, err error) string {
		e.report.Report(Failure{Kind: kind, Document: docNum, Page: page, Image: index, Err: err})
		return ""
	}

	img, _, err := image.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return fail(ImageDecodeFailed, fmt.Errorf("decode %s image %q: %w", raw.Format, raw.Name, err))
	}
	if e.ocr == nil {
		return fail(RecognitionFailed, ErrNoRecognizer)
	}
	text, err := e.ocr.Recognize(ctx, img)
	if err != nil {
		return fail(RecognitionFailed, err)
	}
	return text
}

// appendChunk keeps consecutive chunks from fusing into one word.
func appendChunk(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	if r, _ := utf8.DecodeLastRuneInString(s); !unicode.IsSpace(r) {
		b.WriteByte('\n')
	}
}
