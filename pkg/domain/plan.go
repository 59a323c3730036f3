package domain

import (
	"fmt"
	"strings"
	"time"
)

// Coordinate is the canonical lat/lon shape at every boundary. Providers
// that report "lng", string coordinates, or nested location objects must
// normalize into this on ingest.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanItem sources, in ranking priority order.
const (
	SourceYelp       = "yelp"
	SourceEvent      = "event"
	SourceEventbrite = "eventbrite"
	SourceGoogle     = "google"
	SourceFallback   = "fallback"
)

type PlanItem struct {
	Title   string  `json:"title"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	URL     string  `json:"url,omitempty"`
	Source  string  `json:"source,omitempty"`
	Venue   string  `json:"venue,omitempty"`
	Address string  `json:"address,omitempty"`
	WhenISO string  `json:"whenISO,omitempty"`
}

// DedupeKey derives the approximate identity used to drop near-duplicates:
// normalized title plus coordinates rounded to 4 decimal places (~11m).
func (p PlanItem) DedupeKey() string {
	return fmt.Sprintf("%s|%.4f|%.4f", strings.ToLower(strings.TrimSpace(p.Title)), p.Lat, p.Lon)
}

// Timeframe values accepted by PlanRequest.
const (
	TimeframeDay     = "day"
	TimeframeWeekend = "weekend"
	TimeframeWeek    = "week"
	TimeframeCustom  = "custom"
)

type PlanRequest struct {
	Date       string `json:"date"`
	Budget     string `json:"budget"`
	Interests  string `json:"interests"`
	Location   string `json:"location"`
	Timeframe  string `json:"timeframe,omitempty"`
	RangeStart string `json:"rangeStart,omitempty"`
	RangeEnd   string `json:"rangeEnd,omitempty"`
	UseOpenNow bool   `json:"useOpenNow,omitempty"`
}

// Normalize fills defaults and trims free-text fields in place.
func (r *PlanRequest) Normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.Budget = strings.TrimSpace(r.Budget)
	r.Interests = strings.TrimSpace(r.Interests)
	r.Location = strings.TrimSpace(r.Location)
	if r.Timeframe == "" {
		r.Timeframe = TimeframeDay
	}
}

// Validate returns one ValidationError per problem, empty when the request
// is acceptable. Callers should Normalize first.
func (r *PlanRequest) Validate() []ValidationError {
	var errs []ValidationError

	if r.Date == "" {
		errs = append(errs, ValidationError{Field: "date", Message: "date is required"})
	}
	if r.Budget == "" {
		errs = append(errs, ValidationError{Field: "budget", Message: "budget is required"})
	}
	if r.Interests == "" {
		errs = append(errs, ValidationError{Field: "interests", Message: "interests is required"})
	}
	if r.Location == "" {
		errs = append(errs, ValidationError{Field: "location", Message: "location is required"})
	}

	switch r.Timeframe {
	case TimeframeDay, TimeframeWeekend, TimeframeWeek:
	case TimeframeCustom:
		if r.RangeStart == "" {
			errs = append(errs, ValidationError{Field: "rangeStart", Message: "rangeStart is required for custom timeframe"})
		}
		if r.RangeEnd == "" {
			errs = append(errs, ValidationError{Field: "rangeEnd", Message: "rangeEnd is required for custom timeframe"})
		}
		if r.RangeStart != "" && r.RangeEnd != "" {
			start, serr := time.Parse(time.RFC3339, r.RangeStart)
			end, eerr := time.Parse(time.RFC3339, r.RangeEnd)
			if serr != nil {
				errs = append(errs, ValidationError{Field: "rangeStart", Message: "rangeStart must be an ISO datetime"})
			}
			if eerr != nil {
				errs = append(errs, ValidationError{Field: "rangeEnd", Message: "rangeEnd must be an ISO datetime"})
			}
			if serr == nil && eerr == nil && !start.Before(end) {
				errs = append(errs, ValidationError{Field: "rangeStart", Message: "rangeStart must be before rangeEnd"})
			}
		}
	default:
		errs = append(errs, ValidationError{Field: "timeframe", Message: "timeframe must be one of day, weekend, week, custom"})
	}

	return errs
}

type PlanResponse struct {
	Date      string      `json:"date"`
	Budget    string      `json:"budget"`
	Interests string      `json:"interests"`
	Location  string      `json:"location"`
	Center    *Coordinate `json:"center,omitempty"`
	Items     []PlanItem  `json:"items"`
}

// SharedPlan is a persisted PlanResponse reachable by a short ID, backing
// shareable plan URLs.
type SharedPlan struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Response  PlanResponse `json:"response"`
}
