package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
)

// writeStageResult prints the one-line outcome of a stage followed by its skips.
func writeStageResult(w io.Writer, result schema.StageResult, cfg *contract.Config, duration time.Duration) error {
	icon := "✅"
	if len(result.Skips) > 0 {
		icon = "⚠️ "
	}
	if _, err := fmt.Fprintf(w, "%s %s: %d records -> %s (%v)\n",
		icon, result.Stage, result.RecordsWritten, result.Path, duration.Round(time.Millisecond)); err != nil {
		return err
	}

	if result.Quota != nil {
		label := contract.GetPlainLabel(*result.Quota, cfg.QuotaThreshold)
		if cfg.UseColors {
			label = contract.GetColorLabel(*result.Quota, cfg.QuotaThreshold)
		}
		if _, err := fmt.Fprintf(w, "📈 Quota: %s (%d/%d remaining, resets %s)\n",
			label, result.Quota.Remaining, result.Quota.Limit, result.Quota.ResetAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	if len(result.Skips) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Skipped %d:\n", len(result.Skips)); err != nil {
		return err
	}
	for _, skip := range result.Skips {
		if _, err := fmt.Fprintf(w, "  - %s\n", skip); err != nil {
			return err
		}
	}
	return nil
}
