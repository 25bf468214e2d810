package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch-backend/internal/logger"
)

var log = logger.New("handlers")

// errStaleWrite сигнализирует, что запись была изменена другим
// диспетчером между чтением и записью (устаревшая версия)
var errStaleWrite = errors.New("запись изменена конкурентно")

// generateNumber выдает уникальный номер документа с префиксом
func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

// parseDay разбирает дату фильтра публикации
func parseDay(value string) (time.Time, error) {
	if day, err := time.Parse("2006-01-02", value); err == nil {
		return day, nil
	}
	return time.Parse(time.RFC3339, value)
}

// hasPipelineParams сообщает, запросил ли клиент конвейер
// вкладка/поиск/фильтры: тогда ответ содержит items и counts,
// иначе возвращается простой массив, как в остальных CRUD-списках
func hasPipelineParams(c *gin.Context) bool {
	for _, key := range []string{
		"tab", "search", "status", "payment_status", "name",
		"service_type", "trip_type", "type", "driver_id", "driver_name", "publish_date",
	} {
		if c.Query(key) != "" {
			return true
		}
	}
	return false
}

// guardedUpdate пишет изменения с проверкой версии записи.
// Возвращает gorm.ErrRecordNotFound, если записи больше нет,
// и errStaleWrite, если между чтением и записью версия сменилась.
func guardedUpdate(db *gorm.DB, model interface{}, id uint, version int, updates map[string]interface{}) error {
	updates["version"] = version + 1
	updates["updated_at"] = time.Now().UTC()

	res := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return errStaleWrite
	}
	return nil
}
