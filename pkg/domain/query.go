package domain

import (
	"strings"
	"time"
)

// ItemQuery carries the request parameters a provider needs to search
// around a resolved center.
type ItemQuery struct {
	Interests  string
	Budget     string
	Start      time.Time
	End        time.Time
	UseOpenNow bool
}

// Keyword returns the first comma-separated interest term, or empty when
// interests are blank.
func (q ItemQuery) Keyword() string {
	for _, part := range strings.Split(q.Interests, ",") {
		if term := strings.TrimSpace(part); term != "" {
			return term
		}
	}
	return ""
}
