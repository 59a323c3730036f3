package domain

import (
	"strings"
	"testing"
)

func TestPlanRequestValidate(t *testing.T) {
	valid := PlanRequest{
		Date:      "2025-06-14",
		Budget:    "40",
		Interests: "coffee",
		Location:  "Jacksonville, FL",
		Timeframe: TimeframeDay,
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid
		if errs := req.Validate(); len(errs) != 0 {
			t.Errorf("expected no validation errors, got %v", errs)
		}
	})

	t.Run("missing location", func(t *testing.T) {
		req := valid
		req.Location = ""
		errs := req.Validate()
		if len(errs) != 1 {
			t.Fatalf("expected 1 validation error, got %d", len(errs))
		}
		if errs[0].Field != "location" {
			t.Errorf("expected error on location, got %s", errs[0].Field)
		}
		if !strings.Contains(errs[0].Error(), "location") {
			t.Errorf("error message should mention location: %s", errs[0].Error())
		}
	})

	t.Run("all fields missing", func(t *testing.T) {
		req := PlanRequest{Timeframe: TimeframeDay}
		errs := req.Validate()
		if len(errs) != 4 {
			t.Errorf("expected 4 validation errors, got %d: %v", len(errs), errs)
		}
	})

	t.Run("custom timeframe without bounds", func(t *testing.T) {
		req := valid
		req.Timeframe = TimeframeCustom
		errs := req.Validate()
		if len(errs) != 2 {
			t.Fatalf("expected 2 validation errors, got %d: %v", len(errs), errs)
		}
		fields := []string{errs[0].Field, errs[1].Field}
		if fields[0] != "rangeStart" || fields[1] != "rangeEnd" {
			t.Errorf("expected rangeStart and rangeEnd errors, got %v", fields)
		}
	})

	t.Run("custom timeframe with inverted bounds", func(t *testing.T) {
		req := valid
		req.Timeframe = TimeframeCustom
		req.RangeStart = "2025-06-15T12:00:00Z"
		req.RangeEnd = "2025-06-14T12:00:00Z"
		errs := req.Validate()
		if len(errs) != 1 {
			t.Fatalf("expected 1 validation error, got %d: %v", len(errs), errs)
		}
		if !strings.Contains(errs[0].Message, "before") {
			t.Errorf("expected ordering error, got %s", errs[0].Message)
		}
	})

	t.Run("unknown timeframe", func(t *testing.T) {
		req := valid
		req.Timeframe = "fortnight"
		errs := req.Validate()
		if len(errs) != 1 {
			t.Fatalf("expected 1 validation error, got %d: %v", len(errs), errs)
		}
		if errs[0].Field != "timeframe" {
			t.Errorf("expected error on timeframe, got %s", errs[0].Field)
		}
	})

	t.Run("normalize defaults timeframe and trims", func(t *testing.T) {
		req := PlanRequest{
			Date:      " 2025-06-14 ",
			Budget:    "40",
			Interests: "coffee",
			Location:  " Jacksonville ",
		}
		req.Normalize()
		if req.Timeframe != TimeframeDay {
			t.Errorf("expected default timeframe day, got %s", req.Timeframe)
		}
		if req.Location != "Jacksonville" {
			t.Errorf("expected trimmed location, got %q", req.Location)
		}
	})
}

func TestPlanItemDedupeKey(t *testing.T) {
	t.Run("normalizes title case and rounds coordinates", func(t *testing.T) {
		a := PlanItem{Title: "  Blue Bottle Coffee ", Lat: 30.33218888, Lon: -81.65565111}
		b := PlanItem{Title: "blue bottle coffee", Lat: 30.33219, Lon: -81.65565}
		if a.DedupeKey() != b.DedupeKey() {
			t.Errorf("keys should match: %q vs %q", a.DedupeKey(), b.DedupeKey())
		}
	})

	t.Run("distinct coordinates produce distinct keys", func(t *testing.T) {
		a := PlanItem{Title: "park", Lat: 30.3322, Lon: -81.6557}
		b := PlanItem{Title: "park", Lat: 30.3330, Lon: -81.6557}
		if a.DedupeKey() == b.DedupeKey() {
			t.Error("keys should differ for coordinates >4 decimal places apart")
		}
	})
}
