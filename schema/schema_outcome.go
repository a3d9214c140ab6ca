package schema

import (
	"fmt"
	"time"
)

// Skip records an entity that a stage could not process.
type Skip struct {
	Entity string   `json:"entity"`
	Kind   SkipKind `json:"kind"`
	Reason string   `json:"reason"`
}

func (s Skip) String() string {
	return fmt.Sprintf("%s %s: %s", s.Kind, s.Entity, s.Reason)
}

// Quota is the API rate-limit state observed after a hosting call.
type Quota struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Used      int       `json:"used"`
	ResetAt   time.Time `json:"reset_at"`
}

// Known reports whether the quota was populated by a response.
func (q Quota) Known() bool {
	return q.Limit > 0 || !q.ResetAt.IsZero()
}

// Health labels the quota for display.
func (q Quota) Health(threshold int) QuotaHealth {
	switch {
	case q.Remaining <= 0:
		return QuotaExhausted
	case q.Remaining < threshold:
		return QuotaLow
	default:
		return QuotaHealthy
	}
}

// StageResult is what a pipeline stage reports back.
type StageResult struct {
	Stage          Stage  `json:"stage"`
	Path           string `json:"path"`
	RecordsWritten int    `json:"records_written"`
	Skips          []Skip `json:"skips"`
	Quota          *Quota `json:"quota,omitempty"` // collectors only
}
