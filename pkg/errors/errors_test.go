package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Provider"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "b1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad provider", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("date must be YYYY-MM-DD"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing actor identity"), CodeUnauthorized, http.StatusUnauthorized},
		{"internal", Internal("db down", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("request timed out"), CodeTimeout, http.StatusGatewayTimeout},
		{"too many requests", TooManyRequests("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"slot unavailable", SlotUnavailable("2025-01-10T09:07:00Z"), CodeSlotUnavailable, http.StatusConflict},
		{"slot taken", SlotTaken("2025-01-10T09:00:00Z"), CodeSlotTaken, http.StatusConflict},
		{"invalid transition", InvalidTransition("completed", "pending"), CodeInvalidTransition, http.StatusConflict},
		{"not authorized", NotAuthorized("customers cannot complete bookings"), CodeNotAuthorized, http.StatusForbidden},
		{"not completed", NotCompleted("b1"), CodeNotCompleted, http.StatusConflict},
		{"already reviewed", AlreadyReviewed("b1"), CodeAlreadyReviewed, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
			if !HasCode(fmt.Errorf("wrapped: %w", tt.err), tt.wantCode) {
				t.Errorf("HasCode(%s) should see through wrapping", tt.wantCode)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	if got := InvalidInput("bad date").Error(); got != "INVALID_INPUT: bad date" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("connection refused")
	err := Internal("Failed to create booking", cause)
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should include the cause, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Booking", "b1")
	if err.Details["resource"] != "Booking" || err.Details["id"] != "b1" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestInvalidTransition_Details(t *testing.T) {
	err := InvalidTransition("cancelled", "confirmed")
	if err.Details["from"] != "cancelled" || err.Details["to"] != "confirmed" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	slotTaken := SlotTaken("2025-01-10T09:00:00Z")
	plain := errors.New("regular error")

	tests := []struct {
		name     string
		err      error
		isApp    bool
		wantCode string
	}{
		{"app error", slotTaken, true, CodeSlotTaken},
		{"wrapped app error", fmt.Errorf("create booking: %w", slotTaken), true, CodeSlotTaken},
		{"plain error becomes internal", plain, false, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsAppError(tt.err) != tt.isApp {
				t.Errorf("IsAppError() = %v, want %v", !tt.isApp, tt.isApp)
			}
			got := AsAppError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("AsAppError().Code = %s, want %s", got.Code, tt.wantCode)
			}
			if tt.isApp && got != slotTaken {
				t.Error("AsAppError() should return the original AppError")
			}
			if !tt.isApp && !errors.Is(got, plain) {
				t.Error("AsAppError() should keep the original error as cause")
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(CodeBadRequest, "unsupported content type", http.StatusUnsupportedMediaType)
	if err.Code != CodeBadRequest || err.StatusCode() != http.StatusUnsupportedMediaType || err.Err != nil {
		t.Errorf("unexpected error: %+v", err)
	}
}
