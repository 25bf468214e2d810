package reports

import (
	"dispatch-backend/internal/models"
)

// Собственного рейтинга в системе нет, интерфейс показывает
// фиксированное значение
const placeholderRating = 4.8

// DriverSummary — сводные показатели по водителю
type DriverSummary struct {
	DriverID       uint    `json:"driver_id"`
	DriverName     string  `json:"driver_name"`
	TotalTrips     int     `json:"total_trips"`
	CompletedTrips int     `json:"completed_trips"`
	TotalEarnings  float64 `json:"total_earnings"`
	AverageRating  float64 `json:"average_rating"`
}

// Summarize считает показатели одного водителя по коллекциям рейсов и
// платежей. Сумма заработка знаковая: удержания идут с минусом, итог —
// чистая, а не валовая цифра.
func Summarize(driver models.Driver, trips []models.Trip, payments []models.Payment) DriverSummary {
	summary := DriverSummary{
		DriverID:      driver.ID,
		DriverName:    driver.Name,
		AverageRating: placeholderRating,
	}

	for _, trip := range trips {
		if trip.DriverID == nil || *trip.DriverID != driver.ID {
			continue
		}
		summary.TotalTrips++
		if trip.Status == models.TripStatusCompleted {
			summary.CompletedTrips++
		}
	}

	for _, payment := range payments {
		if payment.DriverID != driver.ID {
			continue
		}
		summary.TotalEarnings += payment.Amount
	}

	return summary
}

// SummarizeAll считает сводку по каждому водителю из списка
func SummarizeAll(drivers []models.Driver, trips []models.Trip, payments []models.Payment) []DriverSummary {
	summaries := make([]DriverSummary, 0, len(drivers))
	for _, d := range drivers {
		summaries = append(summaries, Summarize(d, trips, payments))
	}
	return summaries
}

// BalanceInput — слагаемые расчета баланса водителя.
// Знаки с точки зрения водителя как лицевого счета: начисления
// уменьшают долг станции перед водителем, кредиты увеличивают.
type BalanceInput struct {
	PreviousBalance   float64 `json:"previous_balance"`
	FixedCharges      float64 `json:"fixed_charges"`
	VariableCharges   float64 `json:"variable_charges"`
	VariableCredits   float64 `json:"variable_credits"`
	CreditCardCredits float64 `json:"credit_card_credits"`
}

// BalanceResult — результат расчета с разложением по слагаемым
type BalanceResult struct {
	BalanceInput
	FinalBalance float64 `json:"final_balance"`
}

// FinalBalance считает итоговый баланс:
// итог = предыдущий + фиксированные начисления + переменные начисления
//   - переменные кредиты - кредиты по картам
func FinalBalance(in BalanceInput) float64 {
	return in.PreviousBalance + in.FixedCharges + in.VariableCharges -
		in.VariableCredits - in.CreditCardCredits
}
