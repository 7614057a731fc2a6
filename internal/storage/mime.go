package storage

import (
	"errors"
	"strings"
)

// MIME classes accepted for notice attachments.
const (
	ClassPDF   = "pdf"
	ClassImage = "image"
)

var ErrUnsupportedType = errors.New("unsupported file type, only PDF and images are accepted")

// Classify maps a content type onto an accepted MIME class. Anything outside
// application/pdf and image/* is rejected before any byte is stored.
func Classify(contentType string) (string, error) {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "application/pdf":
		return ClassPDF, nil
	case strings.HasPrefix(ct, "image/") && len(ct) > len("image/"):
		return ClassImage, nil
	default:
		return "", ErrUnsupportedType
	}
}

// PathFor returns the storage prefix for an accepted class, mirroring the
// Notices/PDFs and Notices/Images layout of the bucket.
func PathFor(class string) string {
	if class == ClassPDF {
		return "Notices/PDFs"
	}
	return "Notices/Images"
}
