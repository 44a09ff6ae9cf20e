package storage

import (
	"fmt"
	"strings"
)

// ObjectKey locates the daily artifact in the bucket. The key depends
// only on the calendar day (plus an optional fixed prefix), so a rerun
// for the same day overwrites the previous object.
type ObjectKey struct {
	Prefix string // optional, slashes trimmed
	Date   string // in YYYY-MM-DD format
}

func (k ObjectKey) Key() string {
	name := fmt.Sprintf("agent_stats_%s.csv", k.Date)
	prefix := strings.Trim(k.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
