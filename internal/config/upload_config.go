package config

import (
	"strconv"
	"strings"
	"time"
)

type UploadConfig interface {
	GetMaxFileSize() int64
	GetAllowedExtensions() []string
	GetTaskPollInterval() time.Duration
}

type Upload struct{}

var _ UploadConfig = Upload{}

// GetMaxFileSize returns the pre-submit size cap in bytes. The cap has
// moved between releases (3MB and 50MB have both shipped), so it is
// configuration rather than a constant.
func (Upload) GetMaxFileSize() int64 {
	v := GetEnv("MAX_UPLOAD_BYTES", "")
	if v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return 50 * 1024 * 1024
}

// GetAllowedExtensions returns the lower-cased extension allow-list,
// without leading dots.
func (Upload) GetAllowedExtensions() []string {
	raw := GetEnv("ALLOWED_EXTENSIONS", "pdf,doc,docx,txt,csv,xlsx,xls")
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(p, ".")))
		if p != "" {
			exts = append(exts, p)
		}
	}
	return exts
}

// GetTaskPollInterval returns the period between status polls for a
// background ingestion task.
func (Upload) GetTaskPollInterval() time.Duration {
	v := GetEnv("TASK_POLL_MILLIS", "")
	if v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 2 * time.Second
}
