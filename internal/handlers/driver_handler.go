package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dispatch-backend/internal/listview"
	"dispatch-backend/internal/logger"
	"dispatch-backend/internal/models"
	"dispatch-backend/internal/services"
)

// Получение списка водителей
func DriverList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var drivers []models.Driver
		found, err := services.Lists().Get(ctx, "drivers", &drivers)
		if err != nil {
			log.Warning("кэш списка водителей недоступен", logger.Error(err))
		}
		if !found {
			if err := db.Order("id").Find(&drivers).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка водителей"})
				return
			}
			if err := services.Lists().Set(ctx, "drivers", drivers); err != nil {
				log.Warning("не удалось сохранить список водителей в кэш", logger.Error(err))
			}
		}

		// Структурные фильтры из query-параметров
		var filters []listview.Predicate[models.Driver]
		if v := c.Query("status"); v != "" {
			if !models.IsValidDriverStatus(models.DriverStatus(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус водителя"})
				return
			}
			filters = append(filters, listview.Equals(func(d models.Driver) string { return string(d.Status) }, v))
		}
		if v := c.Query("name"); v != "" {
			filters = append(filters, listview.Equals(func(d models.Driver) string { return d.Name }, v))
		}
		if v := c.Query("publish_date"); v != "" {
			day, err := parseDay(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты, ожидается YYYY-MM-DD"})
				return
			}
			filters = append(filters, listview.OnDay(func(d models.Driver) time.Time { return d.CreatedAt }, day))
		}

		pipeline := listview.Drivers()
		visible := pipeline.Visible(drivers, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, visible)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  visible,
			"counts": pipeline.TabCounts(drivers),
		})
	}
}

// Получение водителя по ID
func DriverGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var driver models.Driver
		if err := db.First(&driver, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Водитель не найден"})
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

// Создание нового водителя
func DriverCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DriverCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		status := models.DriverStatusActive
		if req.Status != "" {
			status = models.DriverStatus(req.Status)
			if !models.IsValidDriverStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус водителя"})
				return
			}
		}

		driver := &models.Driver{
			Name:                     req.Name,
			Phone:                    req.Phone,
			AdditionalPhone:          req.AdditionalPhone,
			Email:                    req.Email,
			City:                     req.City,
			Address:                  req.Address,
			LicenseNumber:            req.LicenseNumber,
			VehicleType:              req.VehicleType,
			VehicleNumber:            req.VehicleNumber,
			Status:                   status,
			Channel:                  req.Channel,
			FixedCharge:              req.FixedCharge,
			VariableChargePercentage: req.VariableChargePercentage,
		}

		if err := db.Create(driver).Error; err != nil {
			log.Error("ошибка при создании водителя", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании водителя"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "drivers"); err != nil {
			log.Warning("не удалось сбросить кэш списка водителей", logger.Error(err))
		}

		c.JSON(http.StatusCreated, driver)
	}
}

// Обновление данных водителя
func DriverUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var driver models.Driver
		if err := db.First(&driver, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Водитель не найден"})
			return
		}

		var req struct {
			Name                     *string  `json:"name"`
			Phone                    *string  `json:"phone"`
			AdditionalPhone          *string  `json:"additional_phone"`
			Email                    *string  `json:"email"`
			City                     *string  `json:"city"`
			Address                  *string  `json:"address"`
			LicenseNumber            *string  `json:"license_number"`
			VehicleType              *string  `json:"vehicle_type"`
			VehicleNumber            *string  `json:"vehicle_number"`
			Status                   *string  `json:"status"`
			Channel                  *string  `json:"channel"`
			FixedCharge              *float64 `json:"fixed_charge"`
			VariableChargePercentage *float64 `json:"variable_charge_percentage"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		// Обновляем только переданные поля
		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.AdditionalPhone != nil {
			updates["additional_phone"] = *req.AdditionalPhone
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.City != nil {
			updates["city"] = *req.City
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.LicenseNumber != nil {
			updates["license_number"] = *req.LicenseNumber
		}
		if req.VehicleType != nil {
			updates["vehicle_type"] = *req.VehicleType
		}
		if req.VehicleNumber != nil {
			updates["vehicle_number"] = *req.VehicleNumber
		}
		if req.Status != nil {
			if !models.IsValidDriverStatus(models.DriverStatus(*req.Status)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус водителя"})
				return
			}
			updates["status"] = *req.Status
		}
		if req.Channel != nil {
			updates["channel"] = *req.Channel
		}
		if req.FixedCharge != nil {
			updates["fixed_charge"] = *req.FixedCharge
		}
		if req.VariableChargePercentage != nil {
			updates["variable_charge_percentage"] = *req.VariableChargePercentage
		}
		updates["updated_at"] = time.Now().UTC()

		if err := db.Model(&driver).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении водителя"})
			return
		}

		if err := db.First(&driver, driver.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		// Кэшированные списки заявок, рейсов и платежей содержат копию
		// данных водителя, поэтому сбрасываются вместе со списком водителей.
		for _, entity := range []string{"drivers", "tenders", "trips", "payments"} {
			if err := services.Lists().Invalidate(c.Request.Context(), entity); err != nil {
				log.Warning("не удалось сбросить кэш списка", logger.String("entity", entity), logger.Error(err))
			}
		}

		c.JSON(http.StatusOK, driver)
	}
}

// Удаление водителя. Водитель, на которого ссылаются рейсы, заявки или
// платежи, удалению не подлежит.
func DriverDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var driver models.Driver
		if err := db.First(&driver, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Водитель не найден"})
			return
		}

		var refs int64
		if err := db.Model(&models.Trip{}).Where("driver_id = ?", driver.ID).Count(&refs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке рейсов водителя"})
			return
		}
		if refs == 0 {
			if err := db.Model(&models.Tender{}).Where("driver_id = ?", driver.ID).Count(&refs).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке заявок водителя"})
				return
			}
		}
		if refs == 0 {
			if err := db.Model(&models.Payment{}).Where("driver_id = ?", driver.ID).Count(&refs).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке платежей водителя"})
				return
			}
		}
		if refs > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Нельзя удалить водителя: на него ссылаются заявки, рейсы или платежи"})
			return
		}

		if err := db.Delete(&driver).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении водителя"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "drivers"); err != nil {
			log.Warning("не удалось сбросить кэш списка водителей", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Водитель удален"})
	}
}
