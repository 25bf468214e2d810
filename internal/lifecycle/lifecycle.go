package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"dispatch-backend/internal/models"
)

var (
	// ErrInvalidState возвращается при попытке перевести запись из терминального
	// или неподходящего статуса
	ErrInvalidState = errors.New("недопустимый переход статуса")

	// ErrUnknownStatus возвращается для значения вне словаря статусов
	ErrUnknownStatus = errors.New("неизвестный статус")
)

// InvalidStateError описывает отклоненный переход
type InvalidStateError struct {
	Entity string
	From   string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: операция %q недопустима из статуса %q", e.Entity, e.Op, e.From)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// Устаревшие написания статусов тендера, встречающиеся в старых клиентах.
// Принимаем их на границе, храним только канонические.
var legacyTenderStatuses = map[string]models.TenderStatus{
	"available": models.TenderStatusActive,
	"taken":     models.TenderStatusWaiting,
}

// Устаревшие написания статусов рейса
var legacyTripStatuses = map[string]models.TripStatus{
	"active":  models.TripStatusInProgress,
	"waiting": models.TripStatusCancelled,
}

// NormalizeTenderStatus переводит входящее значение в каноническую лексику
func NormalizeTenderStatus(raw string) (models.TenderStatus, error) {
	if s, ok := legacyTenderStatuses[raw]; ok {
		return s, nil
	}
	switch s := models.TenderStatus(raw); s {
	case models.TenderStatusActive, models.TenderStatusWaiting,
		models.TenderStatusCompleted, models.TenderStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w тендера: %q", ErrUnknownStatus, raw)
}

// NormalizeTripStatus переводит входящее значение в каноническую лексику
func NormalizeTripStatus(raw string) (models.TripStatus, error) {
	if s, ok := legacyTripStatuses[raw]; ok {
		return s, nil
	}
	switch s := models.TripStatus(raw); s {
	case models.TripStatusScheduled, models.TripStatusInProgress,
		models.TripStatusCompleted, models.TripStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w рейса: %q", ErrUnknownStatus, raw)
}

// IsTenderTerminal сообщает, достиг ли тендер терминального статуса
func IsTenderTerminal(s models.TenderStatus) bool {
	return s == models.TenderStatusCompleted || s == models.TenderStatusCancelled
}

// IsTripTerminal сообщает, достиг ли рейс терминального статуса
func IsTripTerminal(s models.TripStatus) bool {
	return s == models.TripStatusCompleted || s == models.TripStatusCancelled
}

// AssignDriver назначает водителя на тендер и переводит его в статус waiting
func AssignDriver(t *models.Tender, driverID uint) error {
	if IsTenderTerminal(t.Status) {
		return &InvalidStateError{Entity: "tender", From: string(t.Status), Op: "assign"}
	}
	t.DriverID = &driverID
	t.Status = models.TenderStatusWaiting
	return nil
}

// StopTender отменяет тендер и фиксирует время закрытия
func StopTender(t *models.Tender, now time.Time) error {
	if IsTenderTerminal(t.Status) {
		return &InvalidStateError{Entity: "tender", From: string(t.Status), Op: "stop"}
	}
	t.Status = models.TenderStatusCancelled
	t.CompletionTime = &now
	return nil
}

// CompleteTender закрывает тендер как выполненный
func CompleteTender(t *models.Tender, now time.Time) error {
	if IsTenderTerminal(t.Status) {
		return &InvalidStateError{Entity: "tender", From: string(t.Status), Op: "complete"}
	}
	t.Status = models.TenderStatusCompleted
	t.CompletionTime = &now
	return nil
}

// StartTrip переводит запланированный рейс в выполнение
func StartTrip(tr *models.Trip, now time.Time) error {
	if tr.Status != models.TripStatusScheduled {
		return &InvalidStateError{Entity: "trip", From: string(tr.Status), Op: "start"}
	}
	tr.Status = models.TripStatusInProgress
	tr.ActualStartTime = &now
	return nil
}

// CompleteTrip завершает выполняющийся рейс
func CompleteTrip(tr *models.Trip, now time.Time) error {
	if tr.Status != models.TripStatusInProgress {
		return &InvalidStateError{Entity: "trip", From: string(tr.Status), Op: "complete"}
	}
	tr.Status = models.TripStatusCompleted
	tr.ActualEndTime = &now
	return nil
}

// StopTrip отменяет рейс из любого нетерминального статуса
func StopTrip(tr *models.Trip, now time.Time) error {
	if IsTripTerminal(tr.Status) {
		return &InvalidStateError{Entity: "trip", From: string(tr.Status), Op: "stop"}
	}
	tr.Status = models.TripStatusCancelled
	tr.ActualEndTime = &now
	return nil
}
