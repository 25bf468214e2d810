package models

import (
	"time"
)

// TripStatus — каноническая лексика статусов рейса.
// Устаревшие написания active (= in_progress) и waiting (= cancelled)
// принимаются на границе API и переводятся в канонические.
type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"   // Запланирован
	TripStatusInProgress TripStatus = "in_progress" // Выполняется
	TripStatusCompleted  TripStatus = "completed"   // Завершен (терминальный)
	TripStatusCancelled  TripStatus = "cancelled"   // Отменен (терминальный)
)

type Trip struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	TripNumber      string      `json:"trip_number" gorm:"uniqueIndex;not null;type:varchar(50)"`
	Origin          string      `json:"origin" gorm:"not null;type:varchar(255)"`
	Destination     string      `json:"destination" gorm:"not null;type:varchar(255)"`
	ClientName      string      `json:"client_name" gorm:"type:varchar(255);default:''"`
	ClientPhone     string      `json:"client_phone" gorm:"type:varchar(20);default:''"`
	DriverID        *uint       `json:"driver_id,omitempty" gorm:"default:null"`
	TenderID        *uint       `json:"tender_id,omitempty" gorm:"default:null"`
	TripType        ServiceType `json:"trip_type" gorm:"type:varchar(20);default:'delivery'"`
	Status          TripStatus  `json:"status" gorm:"type:varchar(20);default:'scheduled'"`
	ScheduledTime   time.Time   `json:"scheduled_time" gorm:"not null"`
	ActualStartTime *time.Time  `json:"actual_start_time,omitempty" gorm:"default:null"`
	ActualEndTime   *time.Time  `json:"actual_end_time,omitempty" gorm:"default:null"`
	Price           float64     `json:"price" gorm:"default:0"`
	Notes           string      `json:"notes" gorm:"type:text;default:''"`
	Version         int         `json:"version" gorm:"not null;default:1"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	Driver          *Driver     `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TripResponse представляет ответ API с именем водителя
type TripResponse struct {
	ID              uint        `json:"id"`
	TripNumber      string      `json:"trip_number"`
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	ClientName      string      `json:"client_name"`
	ClientPhone     string      `json:"client_phone"`
	DriverID        *uint       `json:"driver_id,omitempty"`
	DriverName      string      `json:"driver_name,omitempty"`
	TenderID        *uint       `json:"tender_id,omitempty"`
	TripType        ServiceType `json:"trip_type"`
	Status          TripStatus  `json:"status"`
	ScheduledTime   time.Time   `json:"scheduled_time"`
	ActualStartTime *time.Time  `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time  `json:"actual_end_time,omitempty"`
	Price           float64     `json:"price"`
	Notes           string      `json:"notes,omitempty"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TripCreate используется только для создания нового рейса
type TripCreate struct {
	TripNumber    string    `json:"trip_number"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	DriverID      *uint     `json:"driver_id"`
	TripType      string    `json:"trip_type"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required"`
	Price         float64   `json:"price"`
	Notes         string    `json:"notes"`
}
