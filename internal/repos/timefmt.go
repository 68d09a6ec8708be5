package repos

import "time"

const tsLayout = time.RFC3339Nano

func now() string { return time.Now().UTC().Format(tsLayout) }

// parseTS reads timestamps written either by Go (RFC 3339) or by SQLite
// column defaults.
func parseTS(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
