package ingest

import "fmt"

// Kind classifies an isolated extraction failure.
type Kind int

const (
	// DocumentFailed means the whole document was skipped.
	DocumentFailed Kind = iota + 1
	// ImagesUnavailable means the document's images could not be listed;
	// its page text is still used.
	ImagesUnavailable
	ImageDecodeFailed
	RecognitionFailed
)

func (k Kind) String() string {
	switch k {
	case DocumentFailed:
		return "document_failed"
	case ImagesUnavailable:
		return "images_unavailable"
	case ImageDecodeFailed:
		return "image_decode_failed"
	case RecognitionFailed:
		return "recognition_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure describes one skipped item. Document, Page and Image are 1-based;
// zero means the failure is not tied to that level.
type Failure struct {
	Kind     Kind
	Document int
	Page     int
	Image    int
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (document %d, page %d, image %d): %v", f.Kind, f.Document, f.Page, f.Image, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Reporter receives isolated failures. Implementations decide whether to
// log, count or ignore them.
type Reporter interface {
	Report(f Failure)
}

type ReporterFunc func(f Failure)

func (fn ReporterFunc) Report(f Failure) {
	fn(f)
}
