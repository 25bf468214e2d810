package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dispatch-backend/internal/models"
	"dispatch-backend/internal/websocket"
)

// Сводные счетчики для панели диспетчера
func Stats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		type entityCount struct {
			model  interface{}
			where  string
			args   []interface{}
			target *int64
		}

		var (
			totalDrivers     int64
			activeDrivers    int64
			totalClients     int64
			totalTenders     int64
			activeTenders    int64
			waitingTenders   int64
			doneTenders      int64
			totalTrips       int64
			tripsInProgress  int64
			completedTrips   int64
			pendingPayments  int64
			totalPaymentsSum float64
		)

		counts := []entityCount{
			{&models.Driver{}, "", nil, &totalDrivers},
			{&models.Driver{}, "status = ?", []interface{}{models.DriverStatusActive}, &activeDrivers},
			{&models.Client{}, "", nil, &totalClients},
			{&models.Tender{}, "", nil, &totalTenders},
			{&models.Tender{}, "status = ?", []interface{}{models.TenderStatusActive}, &activeTenders},
			{&models.Tender{}, "status = ?", []interface{}{models.TenderStatusWaiting}, &waitingTenders},
			{&models.Tender{}, "status = ?", []interface{}{models.TenderStatusCompleted}, &doneTenders},
			{&models.Trip{}, "", nil, &totalTrips},
			{&models.Trip{}, "status = ?", []interface{}{models.TripStatusInProgress}, &tripsInProgress},
			{&models.Trip{}, "status = ?", []interface{}{models.TripStatusCompleted}, &completedTrips},
			{&models.Payment{}, "status = ?", []interface{}{models.PaymentStatusPending}, &pendingPayments},
		}
		for _, ec := range counts {
			q := db.Model(ec.model)
			if ec.where != "" {
				q = q.Where(ec.where, ec.args...)
			}
			if err := q.Count(ec.target).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при подсчете статистики"})
				return
			}
		}

		// Оборот считается только по проведенным платежам
		if err := db.Model(&models.Payment{}).
			Where("status = ?", models.PaymentStatusPaid).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&totalPaymentsSum).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при подсчете оборота"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"drivers": gin.H{
				"total":  totalDrivers,
				"active": activeDrivers,
			},
			"clients": gin.H{
				"total": totalClients,
			},
			"tenders": gin.H{
				"total":     totalTenders,
				"active":    activeTenders,
				"waiting":   waitingTenders,
				"completed": doneTenders,
			},
			"trips": gin.H{
				"total":       totalTrips,
				"in_progress": tripsInProgress,
				"completed":   completedTrips,
			},
			"payments": gin.H{
				"pending":    pendingPayments,
				"paid_total": totalPaymentsSum,
			},
			"connected_clients": websocket.GetManager().ClientCount(),
		})
	}
}
