package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/iliyamo/salon-booking/internal/availability"
)

func TestAvailabilityErrorScheduleMissing(t *testing.T) {
	c, rec := newJSONContext(t)
	if err := availabilityError(c, availability.ErrScheduleNotFound, 7); err != nil {
		t.Fatalf("availabilityError returned %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "schedule_not_found" {
		t.Fatalf("error = %q, want schedule_not_found", body["error"])
	}
	if id, ok := body["staff_id"].(float64); !ok || uint64(id) != 7 {
		t.Fatalf("staff_id not echoed: %v", body)
	}
}

func TestAvailabilityErrorOtherCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"store timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t)
			if err := availabilityError(c, tc.err, 7); err != nil {
				t.Fatalf("availabilityError returned %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
		})
	}
}
