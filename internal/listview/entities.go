package listview

import (
	"dispatch-backend/internal/models"
)

// Tenders — конвейер списка тендеров.
// Вкладка active объединяет незакрытые заказы (active и waiting),
// вкладка completed — закрытые (completed и cancelled).
func Tenders() Pipeline[models.Tender] {
	return Pipeline[models.Tender]{
		Tabs: map[Tab]Predicate[models.Tender]{
			TabActive: func(t models.Tender) bool {
				return t.Status == models.TenderStatusActive || t.Status == models.TenderStatusWaiting
			},
			TabCompleted: func(t models.Tender) bool {
				return t.Status == models.TenderStatusCompleted || t.Status == models.TenderStatusCancelled
			},
		},
		SearchFields: func(t models.Tender) []string {
			fields := []string{t.TenderNumber, t.Origin, t.Destination, t.ClientName}
			if t.Driver != nil {
				fields = append(fields, t.Driver.Name)
			}
			return fields
		},
	}
}

// Trips — конвейер списка рейсов
func Trips() Pipeline[models.Trip] {
	return Pipeline[models.Trip]{
		Tabs: map[Tab]Predicate[models.Trip]{
			TabActive: func(t models.Trip) bool {
				return t.Status == models.TripStatusScheduled || t.Status == models.TripStatusInProgress
			},
			TabCompleted: func(t models.Trip) bool {
				return t.Status == models.TripStatusCompleted || t.Status == models.TripStatusCancelled
			},
		},
		SearchFields: func(t models.Trip) []string {
			fields := []string{t.TripNumber, t.Origin, t.Destination, t.ClientName}
			if t.Driver != nil {
				fields = append(fields, t.Driver.Name)
			}
			return fields
		},
	}
}

// Drivers — конвейер списка водителей
func Drivers() Pipeline[models.Driver] {
	return Pipeline[models.Driver]{
		Tabs: map[Tab]Predicate[models.Driver]{
			TabActive: func(d models.Driver) bool {
				return d.Status == models.DriverStatusActive
			},
		},
		SearchFields: func(d models.Driver) []string {
			return []string{d.Name, d.Phone, d.VehicleNumber, d.City}
		},
	}
}

// Clients — конвейер списка клиентов
func Clients() Pipeline[models.Client] {
	return Pipeline[models.Client]{
		Tabs: map[Tab]Predicate[models.Client]{
			TabActive: func(c models.Client) bool {
				return c.Status == models.ClientStatusRegular
			},
		},
		SearchFields: func(c models.Client) []string {
			return []string{c.Name, c.Phone, c.City}
		},
	}
}

// Payments — конвейер списка платежей
func Payments() Pipeline[models.Payment] {
	return Pipeline[models.Payment]{
		Tabs: map[Tab]Predicate[models.Payment]{
			TabActive: func(p models.Payment) bool {
				return p.Status == models.PaymentStatusPending
			},
			TabCompleted: func(p models.Payment) bool {
				return p.Status == models.PaymentStatusPaid || p.Status == models.PaymentStatusCancelled
			},
		},
		SearchFields: func(p models.Payment) []string {
			fields := []string{p.PaymentNumber}
			if p.Driver != nil {
				fields = append(fields, p.Driver.Name)
			}
			return fields
		},
	}
}

// Pricings — конвейер тарифной сетки
func Pricings() Pipeline[models.Pricing] {
	return Pipeline[models.Pricing]{
		Tabs: map[Tab]Predicate[models.Pricing]{
			TabActive: func(p models.Pricing) bool {
				return p.IsActive
			},
		},
		SearchFields: func(p models.Pricing) []string {
			return []string{p.RouteName, p.Origin, p.Destination, p.Channel}
		},
	}
}
