package models

import (
	"time"
)

type ServiceType string

const (
	ServiceTypeDelivery ServiceType = "delivery" // Доставка груза
	ServiceTypeRide     ServiceType = "ride"     // Перевозка пассажиров
	ServiceTypeSpecial  ServiceType = "special"  // Спецзаказ
)

// TenderStatus — каноническая лексика статусов тендера.
// Устаревшие написания available/taken принимаются на границе API
// и переводятся в канонические, в базе они не хранятся.
type TenderStatus string

const (
	TenderStatusActive    TenderStatus = "active"    // Создан, водитель не назначен
	TenderStatusWaiting   TenderStatus = "waiting"   // Водитель назначен, заказ не закрыт
	TenderStatusCompleted TenderStatus = "completed" // Выполнен (терминальный)
	TenderStatusCancelled TenderStatus = "cancelled" // Отменен (терминальный)
)

type Tender struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	TenderNumber   string       `json:"tender_number" gorm:"uniqueIndex;not null;type:varchar(50)"`
	Origin         string       `json:"origin" gorm:"not null;type:varchar(255)"`
	Destination    string       `json:"destination" gorm:"not null;type:varchar(255)"`
	ClientName     string       `json:"client_name" gorm:"type:varchar(255);default:''"`
	ClientPhone    string       `json:"client_phone" gorm:"type:varchar(20);default:''"`
	ServiceType    ServiceType  `json:"service_type" gorm:"type:varchar(20);default:'delivery'"`
	DriverID       *uint        `json:"driver_id,omitempty" gorm:"default:null"`
	Status         TenderStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ScheduledTime  *time.Time   `json:"scheduled_time,omitempty" gorm:"default:null"`
	CompletionTime *time.Time   `json:"completion_time,omitempty" gorm:"default:null"`
	Notes          string       `json:"notes" gorm:"type:text;default:''"`
	Version        int          `json:"version" gorm:"not null;default:1"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	Driver         *Driver      `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TenderResponse представляет ответ API с именем назначенного водителя
type TenderResponse struct {
	ID             uint         `json:"id"`
	TenderNumber   string       `json:"tender_number"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	ClientName     string       `json:"client_name"`
	ClientPhone    string       `json:"client_phone"`
	ServiceType    ServiceType  `json:"service_type"`
	DriverID       *uint        `json:"driver_id,omitempty"`
	DriverName     string       `json:"driver_name,omitempty"`
	Status         TenderStatus `json:"status"`
	ScheduledTime  *time.Time   `json:"scheduled_time,omitempty"`
	CompletionTime *time.Time   `json:"completion_time,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Version        int          `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TenderCreate используется только для создания нового тендера
type TenderCreate struct {
	TenderNumber  string     `json:"tender_number"`
	Origin        string     `json:"origin" binding:"required"`
	Destination   string     `json:"destination" binding:"required"`
	ClientName    string     `json:"client_name"`
	ClientPhone   string     `json:"client_phone"`
	ServiceType   string     `json:"service_type"`
	DriverID      *uint      `json:"driver_id"`
	Status        string     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	Notes         string     `json:"notes"`
}

func IsValidServiceType(s ServiceType) bool {
	switch s {
	case ServiceTypeDelivery, ServiceTypeRide, ServiceTypeSpecial:
		return true
	}
	return false
}
