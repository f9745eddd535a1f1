package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
)

func newJSONContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestBookingErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"slot taken", booking.ErrSlotNoLongerAvailable, http.StatusConflict},
		{"start in past", booking.ErrStartInPast, http.StatusUnprocessableEntity},
		{"inactive service", booking.ErrServiceInactive, http.StatusUnprocessableEntity},
		{"inactive staff", booking.ErrStaffInactive, http.StatusUnprocessableEntity},
		{"inactive business", booking.ErrBusinessInactive, http.StatusUnprocessableEntity},
		{"catalog mismatch", booking.ErrCatalogMismatch, http.StatusUnprocessableEntity},
		{"missing row", sql.ErrNoRows, http.StatusNotFound},
		{"store timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t)
			if err := bookingError(c, tc.err); err != nil {
				t.Fatalf("bookingError returned %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
		})
	}
}

func TestTransitionErrorConflictCode(t *testing.T) {
	// A disallowed lifecycle edge is a state conflict, not a malformed
	// request: the response must be 409 and name the rejected edge.
	c, rec := newJSONContext(t)
	err := &booking.InvalidTransitionError{
		From: model.StatusCompleted,
		To:   model.StatusCancelled,
	}

	handled, resp := transitionError(c, err)
	if !handled {
		t.Fatalf("InvalidTransitionError not handled")
	}
	if resp != nil {
		t.Fatalf("transitionError returned %v", resp)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "invalid_transition" {
		t.Fatalf("error = %q, want invalid_transition", body["error"])
	}
	if body["from"] != string(model.StatusCompleted) || body["to"] != string(model.StatusCancelled) {
		t.Fatalf("edge not echoed: %v", body)
	}
}

func TestTransitionErrorGuardConflict(t *testing.T) {
	c, rec := newJSONContext(t)
	handled, resp := transitionError(c, booking.ErrTransitionConflict)
	if !handled || resp != nil {
		t.Fatalf("ErrTransitionConflict not handled: %v %v", handled, resp)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestTransitionErrorPassesUnknown(t *testing.T) {
	c, _ := newJSONContext(t)
	if handled, _ := transitionError(c, errors.New("boom")); handled {
		t.Fatalf("unrelated error must not be handled")
	}
}
