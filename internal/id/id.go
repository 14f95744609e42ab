// Package id builds import batch identifiers.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	batchDateLayout = "20060102T150405"
	suffixLen       = 8
)

// NewBatchID returns a batch ID for an import started at now, like
// "20250103T142501-1b4e28ba".
func NewBatchID(now time.Time) string {
	return FormatBatchID(now, uuid.New())
}

// FormatBatchID returns the batch ID for start time t and u. The time is
// written in UTC so IDs sort by start time.
func FormatBatchID(t time.Time, u uuid.UUID) string {
	return t.UTC().Format(batchDateLayout) + "-" + strings.ReplaceAll(u.String(), "-", "")[:suffixLen]
}

// ParseBatchID returns the start time encoded in a batch ID.
func ParseBatchID(id string) (time.Time, error) {
	ts, suffix, ok := strings.Cut(id, "-")
	if !ok || len(suffix) != suffixLen {
		return time.Time{}, fmt.Errorf("invalid batch ID format: %q", id)
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return time.Time{}, fmt.Errorf("invalid batch ID suffix: %q", id)
		}
	}
	t, err := time.Parse(batchDateLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time in batch ID %q: %w", id, err)
	}
	return t, nil
}
