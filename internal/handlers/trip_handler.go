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

func tripToResponse(t models.Trip) models.TripResponse {
	resp := models.TripResponse{
		ID:              t.ID,
		TripNumber:      t.TripNumber,
		Origin:          t.Origin,
		Destination:     t.Destination,
		ClientName:      t.ClientName,
		ClientPhone:     t.ClientPhone,
		DriverID:        t.DriverID,
		TenderID:        t.TenderID,
		TripType:        t.TripType,
		Status:          t.Status,
		ScheduledTime:   t.ScheduledTime,
		ActualStartTime: t.ActualStartTime,
		ActualEndTime:   t.ActualEndTime,
		Price:           t.Price,
		Notes:           t.Notes,
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Driver != nil {
		resp.DriverName = t.Driver.Name
	}
	return resp
}

func loadTrips(db *gorm.DB, ctx *gin.Context) ([]models.Trip, error) {
	var trips []models.Trip
	found, err := services.Lists().Get(ctx.Request.Context(), "trips", &trips)
	if err != nil {
		log.Warning("кэш списка рейсов недоступен", logger.Error(err))
	}
	if found {
		return trips, nil
	}
	if err := db.Preload("Driver").Order("id").Find(&trips).Error; err != nil {
		return nil, err
	}
	if err := services.Lists().Set(ctx.Request.Context(), "trips", trips); err != nil {
		log.Warning("не удалось сохранить список рейсов в кэш", logger.Error(err))
	}
	return trips, nil
}

// Получение списка рейсов с вкладками, поиском и фильтрами
func TripList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trips, err := loadTrips(db, c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка рейсов"})
			return
		}

		var filters []listview.Predicate[models.Trip]
		if v := c.Query("status"); v != "" {
			status, err := lifecycle.NormalizeTripStatus(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус рейса"})
				return
			}
			filters = append(filters, listview.Equals(func(t models.Trip) string { return string(t.Status) }, string(status)))
		}
		if v := c.Query("trip_type"); v != "" {
			if !models.IsValidServiceType(models.ServiceType(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип рейса"})
				return
			}
			filters = append(filters, listview.Equals(func(t models.Trip) string { return string(t.TripType) }, v))
		}
		if v := c.Query("driver_id"); v != "" {
			driverID := cast.ToUint(v)
			filters = append(filters, func(t models.Trip) bool {
				return t.DriverID != nil && *t.DriverID == driverID
			})
		}
		if v := c.Query("driver_name"); v != "" {
			filters = append(filters, listview.Equals(func(t models.Trip) string {
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
			filters = append(filters, listview.OnDay(func(t models.Trip) time.Time { return t.ScheduledTime }, day))
		}

		pipeline := listview.Trips()
		visible := pipeline.Visible(trips, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		responses := make([]models.TripResponse, 0, len(visible))
		for _, t := range visible {
			responses = append(responses, tripToResponse(t))
		}

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, responses)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  responses,
			"counts": pipeline.TabCounts(trips),
		})
	}
}

// Получение рейса по ID
func TripGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.Preload("Driver").First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}
		c.JSON(http.StatusOK, tripToResponse(trip))
	}
}

// Создание нового рейса
func TripCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TripCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		tripType := models.ServiceTypeDelivery
		if req.TripType != "" {
			tripType = models.ServiceType(req.TripType)
			if !models.IsValidServiceType(tripType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип рейса"})
				return
			}
		}

		status := models.TripStatusScheduled
		if req.Status != "" {
			var err error
			status, err = lifecycle.NormalizeTripStatus(req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус рейса"})
				return
			}
		}

		if req.DriverID != nil {
			var driver models.Driver
			if err := db.First(&driver, *req.DriverID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
				return
			}
		}

		number := req.TripNumber
		if number == "" {
			number = generateNumber("TRP")
		}

		// Без явной цены рейс тарифицируется по сетке маршрута
		price := req.Price
		if price == 0 {
			if pricing := lookupPricing(db, req.Origin, req.Destination, tripType); pricing != nil {
				price = pricing.BasePrice
			}
		}

		trip := &models.Trip{
			TripNumber:    number,
			Origin:        req.Origin,
			Destination:   req.Destination,
			ClientName:    req.ClientName,
			ClientPhone:   req.ClientPhone,
			DriverID:      req.DriverID,
			TripType:      tripType,
			Status:        status,
			ScheduledTime: req.ScheduledTime,
			Price:         price,
			Notes:         req.Notes,
			Version:       1,
		}

		if err := db.Create(trip).Error; err != nil {
			log.Error("ошибка при создании рейса", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании рейса"})
			return
		}
		if err := db.Preload("Driver").First(trip, trip.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении созданной записи"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
			log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
		}

		c.JSON(http.StatusCreated, tripToResponse(*trip))
	}
}

// Обновление рейса. Завершенные и отмененные рейсы изменению не подлежат.
func TripUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}
		if lifecycle.IsTripTerminal(trip.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Рейс закрыт и изменению не подлежит"})
			return
		}

		var req struct {
			Origin        *string    `json:"origin"`
			Destination   *string    `json:"destination"`
			ClientName    *string    `json:"client_name"`
			ClientPhone   *string    `json:"client_phone"`
			DriverID      *uint      `json:"driver_id"`
			TripType      *string    `json:"trip_type"`
			Status        *string    `json:"status"`
			ScheduledTime *time.Time `json:"scheduled_time"`
			Price         *float64   `json:"price"`
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
		if req.DriverID != nil {
			var driver models.Driver
			if err := db.First(&driver, *req.DriverID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Указанный водитель не найден"})
				return
			}
			updates["driver_id"] = *req.DriverID
		}
		if req.TripType != nil {
			if !models.IsValidServiceType(models.ServiceType(*req.TripType)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип рейса"})
				return
			}
			updates["trip_type"] = *req.TripType
		}
		statusChanged := false
		if req.Status != nil {
			status, err := lifecycle.NormalizeTripStatus(*req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус рейса"})
				return
			}
			now := time.Now().UTC()
			if status == models.TripStatusInProgress && trip.ActualStartTime == nil {
				updates["actual_start_time"] = now
			}
			if lifecycle.IsTripTerminal(status) && trip.ActualEndTime == nil {
				updates["actual_end_time"] = now
			}
			updates["status"] = string(status)
			statusChanged = status != trip.Status
		}
		if req.ScheduledTime != nil {
			updates["scheduled_time"] = *req.ScheduledTime
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		if err := guardedUpdate(db, &models.Trip{}, trip.ID, trip.Version, updates); err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			case errors.Is(err, errStaleWrite):
				c.JSON(http.StatusConflict, gin.H{"error": "Рейс изменен другим диспетчером, обновите данные"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении рейса"})
			}
			return
		}

		if err := db.Preload("Driver").First(&trip, trip.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
			log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
		}
		if statusChanged {
			websocket.SendTripStatusUpdate(trip.ID, string(trip.Status))
		}

		c.JSON(http.StatusOK, tripToResponse(trip))
	}
}

// Удаление рейса
func TripDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}

		tx := db.Begin()
		if tx.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при начале транзакции"})
			return
		}

		// Платежи по рейсу остаются в книге, ссылка обнуляется
		if err := tx.Model(&models.Payment{}).
			Where("trip_id = ?", trip.ID).
			Update("trip_id", nil).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отвязке платежей рейса"})
			return
		}

		if err := tx.Delete(&trip).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении рейса"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении изменений"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
			log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
		}
		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Рейс удален"})
	}
}

// Начало выполнения рейса
func TripStart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}

		if err := lifecycle.StartTrip(&trip, time.Now().UTC()); err != nil {
			middleware.TrackLifecycleTransition("trip", "start", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Начать можно только запланированный рейс"})
			return
		}

		finishTripTransition(c, db, &trip, "start", map[string]interface{}{
			"status":            string(trip.Status),
			"actual_start_time": trip.ActualStartTime,
		})
	}
}

// Завершение рейса
func TripComplete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}

		if err := lifecycle.CompleteTrip(&trip, time.Now().UTC()); err != nil {
			middleware.TrackLifecycleTransition("trip", "complete", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Завершить можно только выполняющийся рейс"})
			return
		}

		finishTripTransition(c, db, &trip, "complete", map[string]interface{}{
			"status":          string(trip.Status),
			"actual_end_time": trip.ActualEndTime,
		})
	}
}

// Остановка (отмена) рейса
func TripStop(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trip models.Trip
		if err := db.First(&trip, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
			return
		}

		if err := lifecycle.StopTrip(&trip, time.Now().UTC()); err != nil {
			middleware.TrackLifecycleTransition("trip", "stop", "invalid_state")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Рейс уже закрыт"})
			return
		}

		finishTripTransition(c, db, &trip, "stop", map[string]interface{}{
			"status":          string(trip.Status),
			"actual_end_time": trip.ActualEndTime,
		})
	}
}

// finishTripTransition записывает переход с проверкой версии,
// сбрасывает кэш и рассылает уведомление
func finishTripTransition(c *gin.Context, db *gorm.DB, trip *models.Trip, op string, updates map[string]interface{}) {
	if err := guardedUpdate(db, &models.Trip{}, trip.ID, trip.Version, updates); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Рейс не найден"})
		case errors.Is(err, errStaleWrite):
			middleware.TrackLifecycleTransition("trip", op, "conflict")
			c.JSON(http.StatusConflict, gin.H{"error": "Рейс изменен другим диспетчером, обновите данные"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении рейса"})
		}
		return
	}

	if err := db.Preload("Driver").First(trip, trip.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
		return
	}

	if err := services.Lists().Invalidate(c.Request.Context(), "trips"); err != nil {
		log.Warning("не удалось сбросить кэш списка рейсов", logger.Error(err))
	}
	middleware.TrackLifecycleTransition("trip", op, "ok")
	websocket.SendTripStatusUpdate(trip.ID, string(trip.Status))

	c.JSON(http.StatusOK, tripToResponse(*trip))
}
