package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dispatch-backend/internal/models"
	"dispatch-backend/internal/reports"
)

// Сводный отчет по всем водителям
func ReportDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []models.Driver
		if err := db.Order("id").Find(&drivers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка водителей"})
			return
		}
		var trips []models.Trip
		if err := db.Find(&trips).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении рейсов"})
			return
		}
		var payments []models.Payment
		if err := db.Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении платежей"})
			return
		}

		c.JSON(http.StatusOK, reports.SummarizeAll(drivers, trips, payments))
	}
}

// Сводный отчет по одному водителю
func ReportDriverByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var driver models.Driver
		if err := db.First(&driver, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Водитель не найден"})
			return
		}

		var trips []models.Trip
		if err := db.Where("driver_id = ?", driver.ID).Find(&trips).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении рейсов"})
			return
		}
		var payments []models.Payment
		if err := db.Where("driver_id = ?", driver.ID).Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении платежей"})
			return
		}

		c.JSON(http.StatusOK, reports.Summarize(driver, trips, payments))
	}
}

// Расчет баланса водителя по слагаемым
func ReportBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reports.BalanceInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		c.JSON(http.StatusOK, reports.BalanceResult{
			BalanceInput: in,
			FinalBalance: reports.FinalBalance(in),
		})
	}
}
