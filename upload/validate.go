package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	apierrors "github.com/brainbin/go-web-gateway/internal/errors"
)

// Limits is the pre-submit validation configuration.
type Limits interface {
	GetMaxFileSize() int64
	GetAllowedExtensions() []string
}

// Validate rejects a file locally before any network call is made.
// The decision is based on declared size and filename extension only;
// a mismatched MIME type neither saves nor condemns a file. Violations
// come back as validation errors whose text doubles as the user-facing
// message.
func Validate(filename string, size int64, limits Limits) error {
	if cap := limits.GetMaxFileSize(); size > cap {
		return &apierrors.ValidationError{
			Message: fmt.Sprintf("File size exceeds the %s limit", formatSize(cap)),
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return &apierrors.ValidationError{
			Message: "File type could not be determined from the filename",
		}
	}

	allowed := limits.GetAllowedExtensions()
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return &apierrors.ValidationError{
		Message: fmt.Sprintf("File type .%s is not supported (allowed: %s)", ext, strings.Join(allowed, ", ")),
	}
}

func formatSize(bytes int64) string {
	const mb = 1024 * 1024
	if bytes >= mb && bytes%mb == 0 {
		return fmt.Sprintf("%dMB", bytes/mb)
	}
	if bytes >= 1024 && bytes%1024 == 0 {
		return fmt.Sprintf("%dKB", bytes/1024)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
