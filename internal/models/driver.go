package models

import (
	"time"
)

type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "active"    // Работает
	DriverStatusInactive  DriverStatus = "inactive"  // Временно не работает
	DriverStatusSuspended DriverStatus = "suspended" // Отстранен диспетчерской
)

// Каналы распределения тендеров между водителями
const (
	ChannelRadio    = "radio"
	ChannelWhatsApp = "whatsapp"
	ChannelTelegram = "telegram"
)

type Driver struct {
	ID                       uint         `json:"id" gorm:"primaryKey"`
	Name                     string       `json:"name" gorm:"not null;type:varchar(255)"`
	Phone                    string       `json:"phone" gorm:"not null;type:varchar(20)"`
	AdditionalPhone          string       `json:"additional_phone" gorm:"type:varchar(20);default:''"`
	Email                    string       `json:"email" gorm:"type:varchar(255);default:''"`
	City                     string       `json:"city" gorm:"type:varchar(255);default:''"`
	Address                  string       `json:"address" gorm:"type:varchar(255);default:''"`
	LicenseNumber            string       `json:"license_number" gorm:"type:varchar(50);default:''"`
	VehicleType              string       `json:"vehicle_type" gorm:"type:varchar(50);default:''"`
	VehicleNumber            string       `json:"vehicle_number" gorm:"type:varchar(20);default:''"`
	Status                   DriverStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Channel                  *string      `json:"channel,omitempty" gorm:"type:varchar(20);default:null"`
	FixedCharge              float64      `json:"fixed_charge" gorm:"default:0"`
	VariableChargePercentage float64      `json:"variable_charge_percentage" gorm:"default:0"`
	CreatedAt                time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// DriverCreate используется только для создания нового водителя
type DriverCreate struct {
	Name                     string  `json:"name" binding:"required"`
	Phone                    string  `json:"phone" binding:"required"`
	AdditionalPhone          string  `json:"additional_phone"`
	Email                    string  `json:"email"`
	City                     string  `json:"city"`
	Address                  string  `json:"address"`
	LicenseNumber            string  `json:"license_number"`
	VehicleType              string  `json:"vehicle_type"`
	VehicleNumber            string  `json:"vehicle_number"`
	Status                   string  `json:"status"`
	Channel                  *string `json:"channel"`
	FixedCharge              float64 `json:"fixed_charge"`
	VariableChargePercentage float64 `json:"variable_charge_percentage"`
}

func IsValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverStatusActive, DriverStatusInactive, DriverStatusSuspended:
		return true
	}
	return false
}
