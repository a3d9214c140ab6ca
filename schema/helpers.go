package schema

import "strings"

// SplitFullName splits "owner/name" into its two parts.
func SplitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// NormalizeOptional turns nil and empty strings into nil.
func NormalizeOptional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// KnownValue is NormalizeOptional for histogram fields. A value spelled like
// UnknownBucket is treated as missing so it cannot count as a known value.
func KnownValue(s *string) *string {
	v := NormalizeOptional(s)
	if v == nil || strings.EqualFold(*v, UnknownBucket) {
		return nil
	}
	return v
}

// StringOrUnknown returns the bucket name for an optional string.
func StringOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return UnknownBucket
	}
	return *s
}

// SnapshotFileName builds the file name of a snapshot for a date token.
func SnapshotFileName(prefix, dateToken string) string {
	return prefix + "_" + dateToken + ".json"
}
