package models

import (
	"time"
)

type PaymentType string

const (
	PaymentTypeSalary     PaymentType = "salary"     // Оклад
	PaymentTypeCommission PaymentType = "commission" // Комиссия станции
	PaymentTypeBonus      PaymentType = "bonus"      // Премия
	PaymentTypeDeduction  PaymentType = "deduction"  // Удержание (сумма отрицательная)
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // Ожидает проведения
	PaymentStatusPaid      PaymentStatus = "paid"      // Проведен, изменению не подлежит
	PaymentStatusCancelled PaymentStatus = "cancelled" // Аннулирован
)

type Payment struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	PaymentNumber string        `json:"payment_number" gorm:"uniqueIndex;not null;type:varchar(50)"`
	DriverID      uint          `json:"driver_id" gorm:"not null"`
	TripID        *uint         `json:"trip_id,omitempty" gorm:"default:null"`
	ClientID      *uint         `json:"client_id,omitempty" gorm:"default:null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	PaymentType   PaymentType   `json:"payment_type" gorm:"type:varchar(20);default:'salary'"`
	PaymentDate   time.Time     `json:"payment_date" gorm:"not null"`
	Status        PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Notes         string        `json:"notes" gorm:"type:text;default:''"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Driver        *Driver       `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// PaymentResponse представляет ответ API с именем водителя
type PaymentResponse struct {
	ID            uint          `json:"id"`
	PaymentNumber string        `json:"payment_number"`
	DriverID      uint          `json:"driver_id"`
	DriverName    string        `json:"driver_name,omitempty"`
	TripID        *uint         `json:"trip_id,omitempty"`
	ClientID      *uint         `json:"client_id,omitempty"`
	Amount        float64       `json:"amount"`
	PaymentType   PaymentType   `json:"payment_type"`
	PaymentDate   time.Time     `json:"payment_date"`
	Status        PaymentStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PaymentCreate используется только для создания нового платежа
type PaymentCreate struct {
	PaymentNumber string     `json:"payment_number"`
	DriverID      uint       `json:"driver_id" binding:"required"`
	TripID        *uint      `json:"trip_id"`
	ClientID      *uint      `json:"client_id"`
	Amount        float64    `json:"amount" binding:"required"`
	PaymentType   string     `json:"payment_type"`
	PaymentDate   *time.Time `json:"payment_date"`
	Notes         string     `json:"notes"`
}

func IsValidPaymentType(s PaymentType) bool {
	switch s {
	case PaymentTypeSalary, PaymentTypeCommission, PaymentTypeBonus, PaymentTypeDeduction:
		return true
	}
	return false
}

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}
