package snapshot

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/ghsnap/schema"
)

// Path returns the location of a snapshot file for a date token.
func Path(dir, prefix, dateToken string) string {
	return filepath.Join(dir, schema.SnapshotFileName(prefix, dateToken))
}

// DateFromName extracts the date token embedded in a snapshot file name.
// The token is the last "_"-separated segment before the ".json" extension.
func DateFromName(name string) (time.Time, bool) {
	base := filepath.Base(name)
	stem, ok := strings.CutSuffix(base, ".json")
	if !ok {
		return time.Time{}, false
	}
	idx := strings.LastIndex(stem, "_")
	if idx < 0 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(schema.DateLayout, stem[idx+1:], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
