package lifecycle

import (
	"errors"
	"testing"
	"time"

	"dispatch-backend/internal/models"
)

func TestNormalizeTenderStatusLegacy(t *testing.T) {
	cases := map[string]models.TenderStatus{
		"available": models.TenderStatusActive,
		"taken":     models.TenderStatusWaiting,
		"active":    models.TenderStatusActive,
		"waiting":   models.TenderStatusWaiting,
		"completed": models.TenderStatusCompleted,
		"cancelled": models.TenderStatusCancelled,
	}
	for raw, want := range cases {
		got, err := NormalizeTenderStatus(raw)
		if err != nil {
			t.Fatalf("NormalizeTenderStatus(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizeTenderStatus(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := NormalizeTenderStatus("published"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestNormalizeTripStatusLegacy(t *testing.T) {
	cases := map[string]models.TripStatus{
		"active":      models.TripStatusInProgress,
		"waiting":     models.TripStatusCancelled,
		"scheduled":   models.TripStatusScheduled,
		"in_progress": models.TripStatusInProgress,
		"completed":   models.TripStatusCompleted,
		"cancelled":   models.TripStatusCancelled,
	}
	for raw, want := range cases {
		got, err := NormalizeTripStatus(raw)
		if err != nil {
			t.Fatalf("NormalizeTripStatus(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizeTripStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestAssignDriver(t *testing.T) {
	tender := &models.Tender{Status: models.TenderStatusActive}
	if err := AssignDriver(tender, 7); err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	if tender.DriverID == nil || *tender.DriverID != 7 {
		t.Fatalf("driver_id not set: %v", tender.DriverID)
	}
	if tender.Status != models.TenderStatusWaiting {
		t.Fatalf("status = %q, want waiting", tender.Status)
	}
}

func TestStopTenderStampsCompletionTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	tender := &models.Tender{Status: models.TenderStatusWaiting}
	if err := StopTender(tender, now); err != nil {
		t.Fatalf("StopTender: %v", err)
	}
	if tender.Status != models.TenderStatusCancelled {
		t.Fatalf("status = %q, want cancelled", tender.Status)
	}
	if tender.CompletionTime == nil || !tender.CompletionTime.Equal(now) {
		t.Fatalf("completion_time = %v, want %v", tender.CompletionTime, now)
	}
}

// Терминальный статус не допускает никаких дальнейших переходов
func TestTerminalTenderRejectsAllOps(t *testing.T) {
	for _, status := range []models.TenderStatus{models.TenderStatusCompleted, models.TenderStatusCancelled} {
		ops := map[string]func(*models.Tender) error{
			"assign":   func(td *models.Tender) error { return AssignDriver(td, 1) },
			"stop":     func(td *models.Tender) error { return StopTender(td, time.Now()) },
			"complete": func(td *models.Tender) error { return CompleteTender(td, time.Now()) },
		}
		for name, op := range ops {
			tender := &models.Tender{Status: status}
			err := op(tender)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("%s from %s: expected ErrInvalidState, got %v", name, status, err)
			}
			var ise *InvalidStateError
			if !errors.As(err, &ise) {
				t.Fatalf("%s from %s: error is not *InvalidStateError", name, status)
			}
			if tender.Status != status {
				t.Fatalf("%s from %s: terminal status was mutated to %q", name, status, tender.Status)
			}
		}
	}
}

func TestTerminalTripRejectsAllOps(t *testing.T) {
	for _, status := range []models.TripStatus{models.TripStatusCompleted, models.TripStatusCancelled} {
		ops := map[string]func(*models.Trip) error{
			"start":    func(tr *models.Trip) error { return StartTrip(tr, time.Now()) },
			"complete": func(tr *models.Trip) error { return CompleteTrip(tr, time.Now()) },
			"stop":     func(tr *models.Trip) error { return StopTrip(tr, time.Now()) },
		}
		for name, op := range ops {
			trip := &models.Trip{Status: status}
			if err := op(trip); !errors.Is(err, ErrInvalidState) {
				t.Fatalf("%s from %s: expected ErrInvalidState, got %v", name, status, err)
			}
		}
	}
}

func TestTripHappyPath(t *testing.T) {
	start := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	trip := &models.Trip{Status: models.TripStatusScheduled}
	if err := StartTrip(trip, start); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}
	if trip.Status != models.TripStatusInProgress || trip.ActualStartTime == nil {
		t.Fatalf("after start: status=%q start=%v", trip.Status, trip.ActualStartTime)
	}
	if err := CompleteTrip(trip, end); err != nil {
		t.Fatalf("CompleteTrip: %v", err)
	}
	if trip.Status != models.TripStatusCompleted || trip.ActualEndTime == nil {
		t.Fatalf("after complete: status=%q end=%v", trip.Status, trip.ActualEndTime)
	}
}

func TestCompleteTripRequiresInProgress(t *testing.T) {
	trip := &models.Trip{Status: models.TripStatusScheduled}
	if err := CompleteTrip(trip, time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for complete from scheduled, got %v", err)
	}
}

func TestStopTripFromAnyNonTerminal(t *testing.T) {
	for _, status := range []models.TripStatus{models.TripStatusScheduled, models.TripStatusInProgress} {
		trip := &models.Trip{Status: status}
		if err := StopTrip(trip, time.Now()); err != nil {
			t.Fatalf("StopTrip from %s: %v", status, err)
		}
		if trip.Status != models.TripStatusCancelled || trip.ActualEndTime == nil {
			t.Fatalf("StopTrip from %s: status=%q end=%v", status, trip.Status, trip.ActualEndTime)
		}
	}
}
