package routes

import (
	"dispatch-backend/internal/handlers"
	"dispatch-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB) {
	// Роуты для водителей
	api.GET("/drivers", handlers.DriverList(db))
	api.POST("/drivers", handlers.DriverCreate(db))
	api.GET("/drivers/:id", handlers.DriverGetByID(db))
	api.PUT("/drivers/:id", handlers.DriverUpdate(db))
	api.DELETE("/drivers/:id", handlers.DriverDelete(db))

	// Роуты для клиентов
	api.GET("/clients", handlers.ClientList(db))
	api.POST("/clients", handlers.ClientCreate(db))
	api.GET("/clients/:id", handlers.ClientGetByID(db))
	api.PUT("/clients/:id", handlers.ClientUpdate(db))
	api.DELETE("/clients/:id", handlers.ClientDelete(db))

	// Роуты для тендеров и их жизненного цикла
	api.GET("/tenders", handlers.TenderList(db))
	api.POST("/tenders", handlers.TenderCreate(db))
	api.GET("/tenders/:id", handlers.TenderGetByID(db))
	api.PUT("/tenders/:id", handlers.TenderUpdate(db))
	api.DELETE("/tenders/:id", handlers.TenderDelete(db))
	api.PUT("/tenders/:id/assign", handlers.TenderAssign(db))
	api.PUT("/tenders/:id/stop", handlers.TenderStop(db))
	api.PUT("/tenders/:id/complete", handlers.TenderComplete(db))
	api.POST("/tenders/:id/trip", handlers.TenderToTrip(db))

	// Роуты для рейсов и их жизненного цикла
	api.GET("/trips", handlers.TripList(db))
	api.POST("/trips", handlers.TripCreate(db))
	api.GET("/trips/:id", handlers.TripGetByID(db))
	api.PUT("/trips/:id", handlers.TripUpdate(db))
	api.DELETE("/trips/:id", handlers.TripDelete(db))
	api.PUT("/trips/:id/start", handlers.TripStart(db))
	api.PUT("/trips/:id/stop", handlers.TripStop(db))
	api.PUT("/trips/:id/complete", handlers.TripComplete(db))

	// Роуты для платежей
	api.GET("/payments", handlers.PaymentList(db))
	api.POST("/payments", handlers.PaymentCreate(db))
	api.GET("/payments/:id", handlers.PaymentGetByID(db))
	api.PUT("/payments/:id", handlers.PaymentUpdate(db))
	api.DELETE("/payments/:id", handlers.PaymentDelete(db))
	api.PUT("/payments/:id/pay", handlers.PaymentPay(db))
	api.PUT("/payments/:id/cancel", handlers.PaymentCancel(db))

	// Роуты для тарифной сетки
	api.GET("/pricing", handlers.PricingList(db))
	api.POST("/pricing", handlers.PricingCreate(db))
	api.GET("/pricing/lookup", handlers.PricingLookup(db))
	api.GET("/pricing/:id", handlers.PricingGetByID(db))
	api.PUT("/pricing/:id", handlers.PricingUpdate(db))
	api.DELETE("/pricing/:id", handlers.PricingDelete(db))

	// Отчеты
	api.GET("/reports/drivers", handlers.ReportDrivers(db))
	api.GET("/reports/drivers/:id", handlers.ReportDriverByID(db))
	api.POST("/reports/balance", handlers.ReportBalance())

	// Сводная статистика
	api.GET("/stats", handlers.Stats(db))

	// WebSocket подключение для получения обновлений в реальном времени
	api.GET("/ws", websocket.Handler())
}
