package queue

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/textutil"
)

// StagingRoot returns the per-job staging directory rooted at base. The
// job UUID keeps directories collision-free; job-{ID} is the fallback for
// rows predating UUID assignment.
func (j Job) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := strings.TrimSpace(j.UUID)
	if segment == "" {
		segment = fmt.Sprintf("job-%d", j.ID)
	}
	segment = sanitizeSegment(segment)
	return filepath.Join(base, segment)
}

func sanitizeSegment(value string) string {
	value = textutil.SanitizeFileName(value)
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, " ", "-")
	value = strings.Trim(value, "-_")
	if value == "" {
		return "job"
	}
	return value
}
