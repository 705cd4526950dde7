package ingest

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	// Decoders for the raster formats pdfcpu hands back.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is an opened, paged document. Pages are numbered from 1.
type Document interface {
	NumPage() int
	PageText(page int) (string, error)
	PageImages(page int) ([]EmbeddedImage, error)
}

// EmbeddedImage is the encoded form of one raster image placed on a page.
type EmbeddedImage struct {
	Name   string
	ObjNr  int
	Format string
	Data   []byte
}

// Opener parses one uploaded buffer.
type Opener func(data []byte) (Document, error)

// PDFOpener reads the text layer with ledongthuc/pdf and the embedded
// images with pdfcpu.
func PDFOpener() Opener {
	// Keep pdfcpu from creating a config directory in $HOME.
	api.DisableConfigDir()
	return openPDF
}

func openPDF(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("open pdf: empty buffer")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfDocument{data: data, reader: r}, nil
}

type pdfDocument struct {
	data   []byte
	reader *pdf.Reader

	loaded    bool
	images    map[int][]EmbeddedImage
	imagesErr error
}

func (d *pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(page int) (string, error) {
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *pdfDocument) PageImages(page int) ([]EmbeddedImage, error) {
	if !d.loaded {
		d.images, d.imagesErr = extractImages(d.data)
		d.loaded = true
	}
	if d.imagesErr != nil {
		return nil, d.imagesErr
	}
	return d.images[page], nil
}

// extractImages lists every image of every page in one pass, ordered by
// object number within a page.
func extractImages(data []byte) (out map[int][]EmbeddedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("extract images: panic: %v", r)
		}
	}()

	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	out = make(map[int][]EmbeddedImage)
	for _, byObj := range pages {
		for objNr, img := range byObj {
			if img.Reader == nil {
				continue
			}
			raw, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image %d on page %d: %w", objNr, img.PageNr, err)
			}
			out[img.PageNr] = append(out[img.PageNr], EmbeddedImage{
				Name:   img.Name,
				ObjNr:  objNr,
				Format: img.FileType,
				Data:   raw,
			})
		}
	}
	for page := range out {
		sort.Slice(out[page], func(i, j int) bool {
			return out[page][i].ObjNr < out[page][j].ObjNr
		})
	}
	return out, nil
}
