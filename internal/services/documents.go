package services

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrDocumentTooLarge is returned when an upload exceeds the per-file limit.
var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// DocumentBundle holds the raw bytes of the uploaded PDFs for one request.
// Parsing happens later; malformed buffers are skipped then, not here.
type DocumentBundle [][]byte

// Upload is a named source of document bytes, such as a multipart file.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type DocumentService struct {
	maxBytes int64
}

// NewDocumentService limits each document to maxBytes; zero means no limit.
func NewDocumentService(maxBytes int64) *DocumentService {
	return &DocumentService{maxBytes: maxBytes}
}

// Collect reads every upload into memory in order.
func (s *DocumentService) Collect(uploads []Upload) (DocumentBundle, error) {
	bundle := make(DocumentBundle, 0, len(uploads))
	for _, up := range uploads {
		src, err := up.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", up.Name, err)
		}
		data, err := s.read(up.Name, src)
		src.Close()
		if err != nil {
			return nil, err
		}
		bundle = append(bundle, data)
	}
	return bundle, nil
}

// ReadFiles loads documents from disk, for the command line.
func (s *DocumentService) ReadFiles(paths []string) (DocumentBundle, error) {
	uploads := make([]Upload, 0, len(paths))
	for _, path := range paths {
		path := path
		uploads = append(uploads, Upload{
			Name: path,
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return s.Collect(uploads)
}

func (s *DocumentService) read(name string, src io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", name, ErrDocumentTooLarge, s.maxBytes)
	}
	return data, nil
}
