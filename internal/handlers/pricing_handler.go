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

// lookupPricing подбирает действующий тариф маршрута.
// Возвращает nil, если тариф не задан.
func lookupPricing(db *gorm.DB, origin, destination string, serviceType models.ServiceType) *models.Pricing {
	var pricing models.Pricing
	err := db.Where(
		"origin = ? AND destination = ? AND service_type = ? AND is_active = ?",
		origin, destination, serviceType, true,
	).Order("id").First(&pricing).Error
	if err != nil {
		return nil
	}
	return &pricing
}

// Получение тарифной сетки
func PricingList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var pricings []models.Pricing
		found, err := services.Lists().Get(ctx, "pricings", &pricings)
		if err != nil {
			log.Warning("кэш тарифной сетки недоступен", logger.Error(err))
		}
		if !found {
			if err := db.Order("id").Find(&pricings).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении тарифной сетки"})
				return
			}
			if err := services.Lists().Set(ctx, "pricings", pricings); err != nil {
				log.Warning("не удалось сохранить тарифную сетку в кэш", logger.Error(err))
			}
		}

		var filters []listview.Predicate[models.Pricing]
		if v := c.Query("service_type"); v != "" {
			if !models.IsValidServiceType(models.ServiceType(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
			filters = append(filters, listview.Equals(func(p models.Pricing) string { return string(p.ServiceType) }, v))
		}
		if v := c.Query("name"); v != "" {
			filters = append(filters, listview.Equals(func(p models.Pricing) string { return p.RouteName }, v))
		}

		pipeline := listview.Pricings()
		visible := pipeline.Visible(pricings, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, visible)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  visible,
			"counts": pipeline.TabCounts(pricings),
		})
	}
}

// Подбор тарифа по маршруту и типу услуги
func PricingLookup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Query("origin")
		destination := c.Query("destination")
		if origin == "" || destination == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Параметры origin и destination обязательны"})
			return
		}
		serviceType := models.ServiceTypeDelivery
		if v := c.Query("service_type"); v != "" {
			serviceType = models.ServiceType(v)
			if !models.IsValidServiceType(serviceType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
		}

		pricing := lookupPricing(db, origin, destination, serviceType)
		if pricing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тариф для маршрута не найден"})
			return
		}
		c.JSON(http.StatusOK, pricing)
	}
}

// Получение тарифа по ID
func PricingGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pricing models.Pricing
		if err := db.First(&pricing, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тариф не найден"})
			return
		}
		c.JSON(http.StatusOK, pricing)
	}
}

// Создание нового тарифа
func PricingCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PricingCreate
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

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		pricing := &models.Pricing{
			Channel:        req.Channel,
			RouteName:      req.RouteName,
			Origin:         req.Origin,
			Destination:    req.Destination,
			ServiceType:    serviceType,
			BasePrice:      req.BasePrice,
			OneWayPrice:    req.OneWayPrice,
			ReturnPrice:    req.ReturnPrice,
			RoundTripPrice: req.RoundTripPrice,
			PricePerKm:     req.PricePerKm,
			MinPrice:       req.MinPrice,
			MaxPrice:       req.MaxPrice,
			IsActive:       isActive,
		}

		if err := db.Create(pricing).Error; err != nil {
			log.Error("ошибка при создании тарифа", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании тарифа"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "pricings"); err != nil {
			log.Warning("не удалось сбросить кэш тарифной сетки", logger.Error(err))
		}

		c.JSON(http.StatusCreated, pricing)
	}
}

// Обновление тарифа
func PricingUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pricing models.Pricing
		if err := db.First(&pricing, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тариф не найден"})
			return
		}

		var req struct {
			Channel        *string  `json:"channel"`
			RouteName      *string  `json:"route_name"`
			Origin         *string  `json:"origin"`
			Destination    *string  `json:"destination"`
			ServiceType    *string  `json:"service_type"`
			BasePrice      *float64 `json:"base_price"`
			OneWayPrice    *float64 `json:"one_way_price"`
			ReturnPrice    *float64 `json:"return_price"`
			RoundTripPrice *float64 `json:"round_trip_price"`
			PricePerKm     *float64 `json:"price_per_km"`
			MinPrice       *float64 `json:"min_price"`
			MaxPrice       *float64 `json:"max_price"`
			IsActive       *bool    `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		updates := map[string]interface{}{}
		if req.Channel != nil {
			updates["channel"] = *req.Channel
		}
		if req.RouteName != nil {
			updates["route_name"] = *req.RouteName
		}
		if req.Origin != nil {
			updates["origin"] = *req.Origin
		}
		if req.Destination != nil {
			updates["destination"] = *req.Destination
		}
		if req.ServiceType != nil {
			if !models.IsValidServiceType(models.ServiceType(*req.ServiceType)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип услуги"})
				return
			}
			updates["service_type"] = *req.ServiceType
		}
		if req.BasePrice != nil {
			updates["base_price"] = *req.BasePrice
		}
		if req.OneWayPrice != nil {
			updates["one_way_price"] = *req.OneWayPrice
		}
		if req.ReturnPrice != nil {
			updates["return_price"] = *req.ReturnPrice
		}
		if req.RoundTripPrice != nil {
			updates["round_trip_price"] = *req.RoundTripPrice
		}
		if req.PricePerKm != nil {
			updates["price_per_km"] = *req.PricePerKm
		}
		if req.MinPrice != nil {
			updates["min_price"] = *req.MinPrice
		}
		if req.MaxPrice != nil {
			updates["max_price"] = *req.MaxPrice
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		updates["updated_at"] = time.Now().UTC()

		if err := db.Model(&pricing).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении тарифа"})
			return
		}

		if err := db.First(&pricing, pricing.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "pricings"); err != nil {
			log.Warning("не удалось сбросить кэш тарифной сетки", logger.Error(err))
		}

		c.JSON(http.StatusOK, pricing)
	}
}

// Удаление тарифа
func PricingDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pricing models.Pricing
		if err := db.First(&pricing, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тариф не найден"})
			return
		}

		if err := db.Delete(&pricing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении тарифа"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "pricings"); err != nil {
			log.Warning("не удалось сбросить кэш тарифной сетки", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Тариф удален"})
	}
}
