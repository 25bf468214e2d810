package reports

import (
	"testing"

	"dispatch-backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestSummarizePerDriver(t *testing.T) {
	drivers := []models.Driver{
		{ID: 1, Name: "Первый"},
		{ID: 2, Name: "Второй"},
	}
	trips := []models.Trip{
		{DriverID: uintPtr(1), Status: models.TripStatusCompleted},
		{DriverID: uintPtr(1), Status: models.TripStatusScheduled},
		{DriverID: uintPtr(2), Status: models.TripStatusCompleted},
	}
	payments := []models.Payment{
		{DriverID: 1, Amount: 100},
		{DriverID: 1, Amount: -30},
		{DriverID: 2, Amount: 50},
	}

	summaries := SummarizeAll(drivers, trips, payments)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	first := summaries[0]
	if first.TotalTrips != 2 || first.CompletedTrips != 1 || first.TotalEarnings != 70 {
		t.Fatalf("driver 1: trips=%d completed=%d earnings=%v", first.TotalTrips, first.CompletedTrips, first.TotalEarnings)
	}

	second := summaries[1]
	if second.TotalTrips != 1 || second.CompletedTrips != 1 || second.TotalEarnings != 50 {
		t.Fatalf("driver 2: trips=%d completed=%d earnings=%v", second.TotalTrips, second.CompletedTrips, second.TotalEarnings)
	}
}

func TestSummarizeIgnoresUnassignedTrips(t *testing.T) {
	driver := models.Driver{ID: 5, Name: "Пятый"}
	trips := []models.Trip{
		{DriverID: nil, Status: models.TripStatusCompleted},
		{DriverID: uintPtr(6), Status: models.TripStatusCompleted},
	}
	s := Summarize(driver, trips, nil)
	if s.TotalTrips != 0 || s.TotalEarnings != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

// Регрессионная фикстура расчета баланса: начисления с плюсом,
// кредиты с минусом. Образец интерфейса показывал для этих данных 0 —
// расхождение зафиксировано, формула реализована как специфицирована.
func TestFinalBalanceSignConvention(t *testing.T) {
	in := BalanceInput{
		PreviousBalance:   950,
		FixedCharges:      250,
		VariableCharges:   250,
		VariableCredits:   250,
		CreditCardCredits: 250,
	}
	if got := FinalBalance(in); got != 950 {
		t.Fatalf("FinalBalance = %v, want 950", got)
	}
}

func TestFinalBalanceZeroInput(t *testing.T) {
	if got := FinalBalance(BalanceInput{}); got != 0 {
		t.Fatalf("FinalBalance(zero) = %v, want 0", got)
	}
}
