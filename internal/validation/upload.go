package validation

import (
	"github.com/lifelog/lifelog/internal/apperr"
)

// UploadConstraints defines validation rules for attachment uploads
type UploadConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxBytes         int64
}

func NewUploadConstraints(mimeTypes []string, maxBytes int64) UploadConstraints {
	allowed := make(map[string]bool, len(mimeTypes))
	for _, t := range mimeTypes {
		allowed[t] = true
	}
	return UploadConstraints{
		AllowedMimeTypes: allowed,
		MaxBytes:         maxBytes,
	}
}

// ValidateUpload checks one file's declared content type and size. Type is
// checked first so a batch fails the same way regardless of file sizes.
func (c UploadConstraints) ValidateUpload(filename, contentType string, size int64) error {
	if !c.AllowedMimeTypes[contentType] {
		return apperr.Newf(apperr.CodeUnsupportedType, "file type %s is not allowed", contentType)
	}
	if size > c.MaxBytes {
		return apperr.Newf(apperr.CodeTooLarge, "file %s exceeds max size of %d bytes", filename, c.MaxBytes)
	}
	return nil
}
