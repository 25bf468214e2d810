package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"dispatch-backend/internal/listview"
	"dispatch-backend/internal/logger"
	"dispatch-backend/internal/middleware"
	"dispatch-backend/internal/models"
	"dispatch-backend/internal/services"
	"dispatch-backend/internal/websocket"
)

func paymentToResponse(p models.Payment) models.PaymentResponse {
	resp := models.PaymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		DriverID:      p.DriverID,
		TripID:        p.TripID,
		ClientID:      p.ClientID,
		Amount:        p.Amount,
		PaymentType:   p.PaymentType,
		PaymentDate:   p.PaymentDate,
		Status:        p.Status,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Driver != nil {
		resp.DriverName = p.Driver.Name
	}
	return resp
}

func loadPayments(db *gorm.DB, ctx *gin.Context) ([]models.Payment, error) {
	var payments []models.Payment
	found, err := services.Lists().Get(ctx.Request.Context(), "payments", &payments)
	if err != nil {
		log.Warning("кэш списка платежей недоступен", logger.Error(err))
	}
	if found {
		return payments, nil
	}
	if err := db.Preload("Driver").Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}
	if err := services.Lists().Set(ctx.Request.Context(), "payments", payments); err != nil {
		log.Warning("не удалось сохранить список платежей в кэш", logger.Error(err))
	}
	return payments, nil
}

// Получение списка платежей
func PaymentList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := loadPayments(db, c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка платежей"})
			return
		}

		var filters []listview.Predicate[models.Payment]
		if v := c.Query("status"); v != "" {
			if !models.IsValidPaymentStatus(models.PaymentStatus(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус платежа"})
				return
			}
			filters = append(filters, listview.Equals(func(p models.Payment) string { return string(p.Status) }, v))
		}
		if v := c.Query("type"); v != "" {
			if !models.IsValidPaymentType(models.PaymentType(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип платежа"})
				return
			}
			filters = append(filters, listview.Equals(func(p models.Payment) string { return string(p.PaymentType) }, v))
		}
		if v := c.Query("driver_id"); v != "" {
			driverID := cast.ToUint(v)
			filters = append(filters, func(p models.Payment) bool { return p.DriverID == driverID })
		}
		if v := c.Query("driver_name"); v != "" {
			filters = append(filters, listview.Equals(func(p models.Payment) string {
				if p.Driver == nil {
					return ""
				}
				return p.Driver.Name
			}, v))
		}
		if v := c.Query("publish_date"); v != "" {
			day, err := parseDay(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты, ожидается YYYY-MM-DD"})
				return
			}
			filters = append(filters, listview.OnDay(func(p models.Payment) time.Time { return p.PaymentDate }, day))
		}

		pipeline := listview.Payments()
		visible := pipeline.Visible(payments, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		responses := make([]models.PaymentResponse, 0, len(visible))
		for _, p := range visible {
			responses = append(responses, paymentToResponse(p))
		}

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, responses)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  responses,
			"counts": pipeline.TabCounts(payments),
		})
	}
}

// Получение платежа по ID
func PaymentGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment models.Payment
		if err := db.Preload("Driver").First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
			return
		}
		c.JSON(http.StatusOK, paymentToResponse(payment))
	}
}

// Создание нового платежа. Удержания записываются отрицательной суммой.
func PaymentCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PaymentCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		paymentType := models.PaymentTypeSalary
		if req.PaymentType != "" {
			paymentType = models.PaymentType(req.PaymentType)
			if !models.IsValidPaymentType(paymentType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип платежа"})
				return
			}
		}

		var driver models.Driver
		if err := db.First(&driver, req.DriverID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
			return
		}
		if req.TripID != nil {
			var trip models.Trip
			if err := db.First(&trip, *req.TripID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный рейс не найден"})
				return
			}
		}
		if req.ClientID != nil {
			var client models.Client
			if err := db.First(&client, *req.ClientID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный клиент не найден"})
				return
			}
		}

		number := req.PaymentNumber
		if number == "" {
			number = generateNumber("PAY")
		}
		paymentDate := time.Now().UTC()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}

		payment := &models.Payment{
			PaymentNumber: number,
			DriverID:      req.DriverID,
			TripID:        req.TripID,
			ClientID:      req.ClientID,
			Amount:        req.Amount,
			PaymentType:   paymentType,
			PaymentDate:   paymentDate,
			Status:        models.PaymentStatusPending,
			Notes:         req.Notes,
		}

		if err := db.Create(payment).Error; err != nil {
			log.Error("ошибка при создании платежа", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании платежа"})
			return
		}
		if err := db.Preload("Driver").First(payment, payment.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении созданной записи"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}

		c.JSON(http.StatusCreated, paymentToResponse(*payment))
	}
}

// Обновление платежа. Проведенный платеж изменению не подлежит.
func PaymentUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment models.Payment
		if err := db.First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
			return
		}
		if payment.Status == models.PaymentStatusPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Проведенный платеж изменению не подлежит"})
			return
		}

		var req struct {
			Amount      *float64   `json:"amount"`
			PaymentType *string    `json:"payment_type"`
			PaymentDate *time.Time `json:"payment_date"`
			TripID      *uint      `json:"trip_id"`
			ClientID    *uint      `json:"client_id"`
			Notes       *string    `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		updates := map[string]interface{}{}
		if req.Amount != nil {
			updates["amount"] = *req.Amount
		}
		if req.PaymentType != nil {
			if !models.IsValidPaymentType(models.PaymentType(*req.PaymentType)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип платежа"})
				return
			}
			updates["payment_type"] = *req.PaymentType
		}
		if req.PaymentDate != nil {
			updates["payment_date"] = *req.PaymentDate
		}
		if req.TripID != nil {
			var trip models.Trip
			if err := db.First(&trip, *req.TripID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный рейс не найден"})
				return
			}
			updates["trip_id"] = *req.TripID
		}
		if req.ClientID != nil {
			var client models.Client
			if err := db.First(&client, *req.ClientID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный клиент не найден"})
				return
			}
			updates["client_id"] = *req.ClientID
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		updates["updated_at"] = time.Now().UTC()

		if err := db.Model(&payment).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении платежа"})
			return
		}

		if err := db.Preload("Driver").First(&payment, payment.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}

		c.JSON(http.StatusOK, paymentToResponse(payment))
	}
}

// Удаление платежа. Проведенные платежи не удаляются.
func PaymentDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment models.Payment
		if err := db.First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
			return
		}
		if payment.Status == models.PaymentStatusPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Проведенный платеж не подлежит удалению"})
			return
		}

		if err := db.Delete(&payment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении платежа"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Платеж удален"})
	}
}

// Проведение платежа. В одной транзакции платеж отмечается проведенным,
// а у привязанного клиента закрываются расчеты и обновляется дата активности.
func PaymentPay(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment models.Payment
		if err := db.First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
			return
		}
		if payment.Status != models.PaymentStatusPending {
			middleware.TrackLifecycleTransition("payment", "pay", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Провести можно только ожидающий платеж"})
			return
		}

		now := time.Now().UTC()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&payment).Updates(map[string]interface{}{
				"status":     string(models.PaymentStatusPaid),
				"updated_at": now,
			}).Error; err != nil {
				return err
			}
			if payment.ClientID != nil {
				if err := tx.Model(&models.Client{}).
					Where("id = ?", *payment.ClientID).
					Updates(map[string]interface{}{
						"payment_status":     string(models.ClientPaymentPaid),
						"last_activity_date": now,
						"updated_at":         now,
					}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Error("ошибка при проведении платежа", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проведении платежа"})
			return
		}

		if err := db.Preload("Driver").First(&payment, payment.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}
		if payment.ClientID != nil {
			if err := services.Lists().Invalidate(c.Request.Context(), "clients"); err != nil {
				log.Warning("не удалось сбросить кэш списка клиентов", logger.Error(err))
			}
		}
		middleware.TrackLifecycleTransition("payment", "pay", "ok")
		websocket.SendPaymentStatusUpdate(payment.ID, string(payment.Status))

		c.JSON(http.StatusOK, paymentToResponse(payment))
	}
}

// Аннулирование платежа
func PaymentCancel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payment models.Payment
		if err := db.First(&payment, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
			return
		}
		if payment.Status != models.PaymentStatusPending {
			middleware.TrackLifecycleTransition("payment", "cancel", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Аннулировать можно только ожидающий платеж"})
			return
		}

		if err := db.Model(&payment).Updates(map[string]interface{}{
			"status":     string(models.PaymentStatusCancelled),
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при аннулировании платежа"})
			return
		}

		if err := db.Preload("Driver").First(&payment, payment.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}
		middleware.TrackLifecycleTransition("payment", "cancel", "ok")
		websocket.SendPaymentStatusUpdate(payment.ID, string(payment.Status))

		c.JSON(http.StatusOK, paymentToResponse(payment))
	}
}
