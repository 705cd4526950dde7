package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 40.0
	fontSize   = 12.0
	lineHeight = fontSize * 1.2
	tabWidth   = 4
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// Render lays content out on US-Letter pages in 12 pt Helvetica with 40 pt
// margins. Every input line becomes exactly one output line; lines are
// never re-flowed or merged. fpdf starts a new page when the next line no
// longer fits.
func (s *PDFService) Render(content string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetFont("Helvetica", "", fontSize)
	doc.AddPage()

	// Core fonts are cp1252; map what we can and let the rest degrade.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, line := range strings.Split(content, "\n") {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
		doc.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
