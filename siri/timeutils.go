package siri

import "time"

func Iso8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// ValidUntilFrom returns base plus validFor, or "" when validFor is not positive.
func ValidUntilFrom(base time.Time, validFor time.Duration) string {
	if validFor <= 0 {
		return ""
	}
	return Iso8601(base.Add(validFor))
}
