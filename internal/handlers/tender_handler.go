package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"dispatch-backend/internal/lifecycle"
	"dispatch-backend/internal/listview"
	"dispatch-backend/internal/logger"
	"dispatch-backend/internal/middleware"
	"dispatch-backend/internal/models"
	"dispatch-backend/internal/services"
	"dispatch-backend/internal/websocket"
)

func tenderToResponse(t models.Tender) models.TenderResponse {
	resp := models.TenderResponse{
		ID:             t.ID,
		TenderNumber:   t.TenderNumber,
		Origin:         t.Origin,
		Destination:    t.Destination,
		ClientName:     t.ClientName,
		ClientPhone:    t.ClientPhone,
		ServiceType:    t.ServiceType,
		DriverID:       t.DriverID,
		Status:         t.Status,
		ScheduledTime:  t.ScheduledTime,
		CompletionTime: t.CompletionTime,
		Notes:          t.Notes,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.Driver != nil {
		resp.DriverName = t.Driver.Name
	}
	return resp
}

func loadTenders(db *gorm.DB, ctx *gin.Context) ([]models.Tender, error) {
	var tenders []models.Tender
	found, err := services.Lists().Get(ctx.Request.Context(), "tenders", &tenders)
	if err != nil {
		log.Warning("кэш списка тендеров недоступен", logger.Error(err))
	}
	if found {
		return tenders, nil
	}
	if err := db.Preload("Driver").Order("id").Find(&tenders).Error; err != nil {
		return nil, err
	}
	if err := services.Lists().Set(ctx.Request.Context(), "tenders", tenders); err != nil {
		log.Warning("не удалось сохранить список тендеров в кэш", logger.Error(err))
	}
	return tenders, nil
}

// Получение списка тендеров с вкладками, поиском и фильтрами
func TenderList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenders, err := loadTenders(db, c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка тендеров"})
			return
		}

		var filters []listview.Predicate[models.Tender]
		if v := c.Query("status"); v != "" {
			status, err := lifecycle.NormalizeTenderStatus(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус тендера"})
				return
			}
			filters = append(filters, listview.Equals(func(t models.Tender) string { return string(t.Status) }, string(status)))
		}
		if v := c.Query("service_type"); v != "" {
			if !models.IsValidServiceType(models.ServiceType(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
			filters = append(filters, listview.Equals(func(t models.Tender) string { return string(t.ServiceType) }, v))
		}
		if v := c.Query("driver_id"); v != "" {
			driverID := cast.ToUint(v)
			filters = append(filters, func(t models.Tender) bool {
				return t.DriverID != nil && *t.DriverID == driverID
			})
		}
		if v := c.Query("driver_name"); v != "" {
			filters = append(filters, listview.Equals(func(t models.Tender) string {
				if t.Driver == nil {
					return ""
				}
				return t.Driver.Name
			}, v))
		}
		if v := c.Query("publish_date"); v != "" {
			day, err := parseDay(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты, ожидается YYYY-MM-DD"})
				return
			}
			filters = append(filters, listview.OnDay(func(t models.Tender) time.Time { return t.CreatedAt }, day))
		}

		pipeline := listview.Tenders()
		visible := pipeline.Visible(tenders, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		responses := make([]models.TenderResponse, 0, len(visible))
		for _, t := range visible {
			responses = append(responses, tenderToResponse(t))
		}

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, responses)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  responses,
			"counts": pipeline.TabCounts(tenders),
		})
	}
}

// Получение тендера по ID
func TenderGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.Preload("Driver").First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}
		c.JSON(http.StatusOK, tenderToResponse(tender))
	}
}

// Создание нового тендера
func TenderCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TenderCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		serviceType := models.ServiceTypeDelivery
		if req.ServiceType != "" {
			serviceType = models.ServiceType(req.ServiceType)
			if !models.IsValidServiceType(serviceType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
		}

		status := models.TenderStatusActive
		if req.Status != "" {
			var err error
			status, err = lifecycle.NormalizeTenderStatus(req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус тендера"})
				return
			}
		}

		// Назначенный при создании водитель сразу переводит тендер в waiting
		if req.DriverID != nil {
			var driver models.Driver
			if err := db.First(&driver, *req.DriverID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
				return
			}
			if status == models.TenderStatusActive {
				status = models.TenderStatusWaiting
			}
		}

		number := req.TenderNumber
		if number == "" {
			number = generateNumber("TND")
		}

		tender := &models.Tender{
			TenderNumber:  number,
			Origin:        req.Origin,
			Destination:   req.Destination,
			ClientName:    req.ClientName,
			ClientPhone:   req.ClientPhone,
			ServiceType:   serviceType,
			DriverID:      req.DriverID,
			Status:        status,
			ScheduledTime: req.ScheduledTime,
			Notes:         req.Notes,
			Version:       1,
		}

		if err := db.Create(tender).Error; err != nil {
			log.Error("ошибка при создании тендера", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании тендера"})
			return
		}
		if err := db.Preload("Driver").First(tender, tender.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении созданной записи"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "tenders"); err != nil {
			log.Warning("не удалось сбросить кэш списка тендеров", logger.Error(err))
		}

		c.JSON(http.StatusCreated, tenderToResponse(*tender))
	}
}

// Обновление тендера. Закрытые тендеры изменению не подлежат.
func TenderUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}
		if lifecycle.IsTenderTerminal(tender.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Тендер закрыт и изменению не подлежит"})
			return
		}

		var req struct {
			Origin        *string    `json:"origin"`
			Destination   *string    `json:"destination"`
			ClientName    *string    `json:"client_name"`
			ClientPhone   *string    `json:"client_phone"`
			ServiceType   *string    `json:"service_type"`
			DriverID      *uint      `json:"driver_id"`
			Status        *string    `json:"status"`
			ScheduledTime *time.Time `json:"scheduled_time"`
			Notes         *string    `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		updates := map[string]interface{}{}
		if req.Origin != nil {
			updates["origin"] = *req.Origin
		}
		if req.Destination != nil {
			updates["destination"] = *req.Destination
		}
		if req.ClientName != nil {
			updates["client_name"] = *req.ClientName
		}
		if req.ClientPhone != nil {
			updates["client_phone"] = *req.ClientPhone
		}
		if req.ServiceType != nil {
			if !models.IsValidServiceType(models.ServiceType(*req.ServiceType)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
			updates["service_type"] = *req.ServiceType
		}
		if req.DriverID != nil {
			var driver models.Driver
			if err := db.First(&driver, *req.DriverID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
				return
			}
			updates["driver_id"] = *req.DriverID
		}
		statusChanged := false
		if req.Status != nil {
			status, err := lifecycle.NormalizeTenderStatus(*req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус тендера"})
				return
			}
			if lifecycle.IsTenderTerminal(status) {
				updates["completion_time"] = time.Now().UTC()
			}
			updates["status"] = string(status)
			statusChanged = status != tender.Status
		}
		if req.ScheduledTime != nil {
			updates["scheduled_time"] = *req.ScheduledTime
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		if err := guardedUpdate(db, &models.Tender{}, tender.ID, tender.Version, updates); err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			case errors.Is(err, errStaleWrite):
				c.JSON(http.StatusConflict, gin.H{"error": "Тендер изменен другим диспетчером, обновите данные"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении тендера"})
			}
			return
		}

		if err := db.Preload("Driver").First(&tender, tender.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "tenders"); err != nil {
			log.Warning("не удалось сбросить кэш списка тендеров", logger.Error(err))
		}
		if statusChanged {
			websocket.SendTenderStatusUpdate(tender.ID, string(tender.Status))
		}

		c.JSON(http.StatusOK, tenderToResponse(tender))
	}
}

// Удаление тендера
func TenderDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}

		tx := db.Begin()
		if tx.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при начале транзакции"})
			return
		}

		// Рейсы, созданные из тендера, остаются, ссылка обнуляется
		if err := tx.Model(&models.Trip{}).
			Where("tender_id = ?", tender.ID).
			Update("tender_id", nil).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отвязке рейсов тендера"})
			return
		}

		if err := tx.Delete(&tender).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении тендера"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении изменений"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "tenders"); err != nil {
			log.Warning("не удалось сбросить кэш списка тендеров", logger.Error(err))
		}
		if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
			log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Тендер удален"})
	}
}

// Назначение водителя на тендер, статус переходит в waiting
func TenderAssign(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DriverID uint `json:"driver_id" binding:"required"`
			Version  *int `json:"version"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}
		// Клиент может передать версию, от которой он отталкивался
		if req.Version != nil {
			tender.Version = *req.Version
		}

		var driver models.Driver
		if err := db.First(&driver, req.DriverID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
			return
		}

		if err := lifecycle.AssignDriver(&tender, req.DriverID); err != nil {
			middleware.TrackLifecycleTransition("tender", "assign", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Тендер закрыт, назначение невозможно"})
			return
		}

		finishTenderTransition(c, db, &tender, "assign", map[string]interface{}{
			"driver_id": tender.DriverID,
			"status":    string(tender.Status),
		})
	}
}

// Остановка (отмена) тендера
func TenderStop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}

		if err := lifecycle.StopTender(&tender, time.Now().UTC()); err != nil {
			middleware.TrackLifecycleTransition("tender", "stop", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Тендер уже закрыт"})
			return
		}

		finishTenderTransition(c, db, &tender, "stop", map[string]interface{}{
			"status":          string(tender.Status),
			"completion_time": tender.CompletionTime,
		})
	}
}

// Завершение тендера как выполненного
func TenderComplete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}

		if err := lifecycle.CompleteTender(&tender, time.Now().UTC()); err != nil {
			middleware.TrackLifecycleTransition("tender", "complete", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Тендер уже закрыт"})
			return
		}

		finishTenderTransition(c, db, &tender, "complete", map[string]interface{}{
			"status":          string(tender.Status),
			"completion_time": tender.CompletionTime,
		})
	}
}

// finishTenderTransition записывает переход с проверкой версии,
// сбрасывает кэш и рассылает уведомление
func finishTenderTransition(c *gin.Context, db *gorm.DB, tender *models.Tender, op string, updates map[string]interface{}) {
	if err := guardedUpdate(db, &models.Tender{}, tender.ID, tender.Version, updates); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
		case errors.Is(err, errStaleWrite):
			middleware.TrackLifecycleTransition("tender", op, "conflict")
			c.JSON(http.StatusConflict, gin.H{"error": "Тендер изменен другим диспетчером, обновите данные"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении тендера"})
		}
		return
	}

	if err := db.Preload("Driver").First(tender, tender.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
		return
	}

	if err := services.Lists().Invalidate(c.Request.Context(), "tenders"); err != nil {
		log.Warning("не удалось сбросить кэш списка тендеров", logger.Error(err))
	}
	middleware.TrackLifecycleTransition("tender", op, "ok")
	websocket.SendTenderStatusUpdate(tender.ID, string(tender.Status))

	c.JSON(http.StatusOK, tenderToResponse(*tender))
}

// Конвертация тендера в рейс: тендер закрывается как выполненный,
// на его основе создается запланированный рейс
func TenderToTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tender models.Tender
		if err := db.First(&tender, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тендер не найден"})
			return
		}

		if tender.Status != models.TenderStatusWaiting || tender.DriverID == nil {
			middleware.TrackLifecycleTransition("tender", "to_trip", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "В рейс конвертируется только тендер с назначенным водителем"})
			return
		}

		var req struct {
			ScheduledTime *time.Time `json:"scheduled_time"`
			Price         *float64   `json:"price"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
				return
			}
		}

		now := time.Now().UTC()
		scheduled := now
		if tender.ScheduledTime != nil {
			scheduled = *tender.ScheduledTime
		}
		if req.ScheduledTime != nil {
			scheduled = *req.ScheduledTime
		}

		// Цена берется из запроса, иначе из тарифной сетки маршрута
		price := 0.0
		if req.Price != nil {
			price = *req.Price
		} else if pricing := lookupPricing(db, tender.Origin, tender.Destination, tender.ServiceType); pricing != nil {
			price = pricing.BasePrice
		}

		trip := &models.Trip{
			TripNumber:    generateNumber("TRP"),
			Origin:        tender.Origin,
			Destination:   tender.Destination,
			ClientName:    tender.ClientName,
			ClientPhone:   tender.ClientPhone,
			DriverID:      tender.DriverID,
			TenderID:      &tender.ID,
			TripType:      tender.ServiceType,
			Status:        models.TripStatusScheduled,
			ScheduledTime: scheduled,
			Price:         price,
			Version:       1,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(trip).Error; err != nil {
				return err
			}
			res := tx.Model(&models.Tender{}).
				Where("id = ? AND version = ?", tender.ID, tender.Version).
				Updates(map[string]interface{}{
					"status":          string(models.TenderStatusCompleted),
					"completion_time": now,
					"version":         tender.Version + 1,
					"updated_at":      now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleWrite
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, errStaleWrite) {
				middleware.TrackLifecycleTransition("tender", "to_trip", "conflict")
				c.JSON(http.StatusConflict, gin.H{"error": "Тендер изменен другим диспетчером, обновите данные"})
				return
			}
			log.Error("ошибка при конвертации тендера в рейс", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при конвертации тендера в рейс"})
			return
		}

		if err := db.Preload("Driver").First(trip, trip.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении созданной записи"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "tenders"); err != nil {
			log.Warning("не удалось сбросить кэш списка тендеров", logger.Error(err))
		}
		if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
			log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
		}
		middleware.TrackLifecycleTransition("tender", "to_trip", "ok")
		websocket.SendTenderStatusUpdate(tender.ID, string(models.TenderStatusCompleted))
		websocket.SendTripStatusUpdate(trip.ID, string(trip.Status))

		c.JSON(http.StatusCreated, tripToResponse(*trip))
	}
}
