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

// Получение списка клиентов
func ClientList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var clients []models.Client
		found, err := services.Lists().Get(ctx, "clients", &clients)
		if err != nil {
			log.Warning("кэш списка клиентов недоступен", logger.Error(err))
		}
		if !found {
			if err := db.Order("id").Find(&clients).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка клиентов"})
				return
			}
			if err := services.Lists().Set(ctx, "clients", clients); err != nil {
				log.Warning("не удалось сохранить список клиентов в кэш", logger.Error(err))
			}
		}

		var filters []listview.Predicate[models.Client]
		if v := c.Query("status"); v != "" {
			if !models.IsValidClientStatus(models.ClientStatus(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус клиента"})
				return
			}
			filters = append(filters, listview.Equals(func(cl models.Client) string { return string(cl.Status) }, v))
		}
		if v := c.Query("payment_status"); v != "" {
			if !models.IsValidClientPaymentStatus(models.ClientPaymentStatus(v)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный платежный статус клиента"})
				return
			}
			filters = append(filters, listview.Equals(func(cl models.Client) string { return string(cl.PaymentStatus) }, v))
		}
		if v := c.Query("name"); v != "" {
			filters = append(filters, listview.Equals(func(cl models.Client) string { return cl.Name }, v))
		}

		pipeline := listview.Clients()
		visible := pipeline.Visible(clients, listview.Tab(c.Query("tab")), c.Query("search"), filters)

		if !hasPipelineParams(c) {
			c.JSON(http.StatusOK, visible)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  visible,
			"counts": pipeline.TabCounts(clients),
		})
	}
}

// Получение клиента по ID
func ClientGetByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var client models.Client
		if err := db.First(&client, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Клиент не найден"})
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// Создание нового клиента
func ClientCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ClientCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных", "details": err.Error()})
			return
		}

		status := models.ClientStatusCasual
		if req.Status != "" {
			status = models.ClientStatus(req.Status)
			if !models.IsValidClientStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус клиента"})
				return
			}
		}
		paymentStatus := models.ClientPaymentPaid
		if req.PaymentStatus != "" {
			paymentStatus = models.ClientPaymentStatus(req.PaymentStatus)
			if !models.IsValidClientPaymentStatus(paymentStatus) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный платежный статус клиента"})
				return
			}
		}

		client := &models.Client{
			Name:          req.Name,
			Phone:         req.Phone,
			City:          req.City,
			Address:       req.Address,
			Status:        status,
			PaymentStatus: paymentStatus,
		}

		if err := db.Create(client).Error; err != nil {
			log.Error("ошибка при создании клиента", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании клиента"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "clients"); err != nil {
			log.Warning("не удалось сбросить кэш списка клиентов", logger.Error(err))
		}

		c.JSON(http.StatusCreated, client)
	}
}

// Обновление данных клиента
func ClientUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var client models.Client
		if err := db.First(&client, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Клиент не найден"})
			return
		}

		var req struct {
			Name          *string `json:"name"`
			Phone         *string `json:"phone"`
			City          *string `json:"city"`
			Address       *string `json:"address"`
			Status        *string `json:"status"`
			PaymentStatus *string `json:"payment_status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.City != nil {
			updates["city"] = *req.City
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.Status != nil {
			if !models.IsValidClientStatus(models.ClientStatus(*req.Status)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус клиента"})
				return
			}
			updates["status"] = *req.Status
		}
		if req.PaymentStatus != nil {
			if !models.IsValidClientPaymentStatus(models.ClientPaymentStatus(*req.PaymentStatus)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный платежный статус клиента"})
				return
			}
			updates["payment_status"] = *req.PaymentStatus
		}
		updates["updated_at"] = time.Now().UTC()

		if err := db.Model(&client).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении клиента"})
			return
		}

		if err := db.First(&client, client.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении обновленных данных"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "clients"); err != nil {
			log.Warning("не удалось сбросить кэш списка клиентов", logger.Error(err))
		}

		c.JSON(http.StatusOK, client)
	}
}

// Удаление клиента. Связанные платежи остаются в книге, ссылка обнуляется.
func ClientDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var client models.Client
		if err := db.First(&client, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Клиент не найден"})
			return
		}

		tx := db.Begin()
		if tx.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при начале транзакции"})
			return
		}

		if err := tx.Model(&models.Payment{}).
			Where("client_id = ?", client.ID).
			Update("client_id", nil).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при отвязке платежей клиента"})
			return
		}

		if err := tx.Delete(&client).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении клиента"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении изменений"})
			return
		}

		if err := services.Lists().Invalidate(c.Request.Context(), "clients"); err != nil {
			log.Warning("не удалось сбросить кэш списка клиентов", logger.Error(err))
		}
		if err := services.Lists().Invalidate(c.Request.Context(), "payments"); err != nil {
			log.Warning("не удалось сбросить кэш списка платежей", logger.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Клиент удален"})
	}
}
