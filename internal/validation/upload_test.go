package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog/internal/apperr"
)

func TestValidateUpload(t *testing.T) {
	constraints := NewUploadConstraints([]string{"text/plain", "image/png"}, 1000)

	require.NoError(t, constraints.ValidateUpload("ok.txt", "text/plain", 1000))

	err := constraints.ValidateUpload("movie.mp4", "video/mp4", 10)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnsupportedType))

	err = constraints.ValidateUpload("big.png", "image/png", 1001)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeTooLarge))
}

// Type is checked before size, so an oversized file of a disallowed type
// reports the type problem.
func TestValidateUpload_TypeCheckedFirst(t *testing.T) {
	constraints := NewUploadConstraints([]string{"text/plain"}, 10)

	err := constraints.ValidateUpload("big.bin", "application/octet-stream", 100)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnsupportedType))
}
