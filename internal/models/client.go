package models

import (
	"time"
)

type ClientStatus string

const (
	ClientStatusRegular ClientStatus = "regular" // Постоянный клиент
	ClientStatusCasual  ClientStatus = "casual"  // Разовый клиент
)

type ClientPaymentStatus string

const (
	ClientPaymentDebt   ClientPaymentStatus = "debt"   // За клиентом числится долг
	ClientPaymentCredit ClientPaymentStatus = "credit" // Переплата в пользу клиента
	ClientPaymentPaid   ClientPaymentStatus = "paid"   // Расчеты закрыты
)

type Client struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	Name             string              `json:"name" gorm:"not null;type:varchar(255)"`
	Phone            string              `json:"phone" gorm:"not null;type:varchar(20)"`
	City             string              `json:"city" gorm:"type:varchar(255);default:''"`
	Address          string              `json:"address" gorm:"type:varchar(255);default:''"`
	Status           ClientStatus        `json:"status" gorm:"type:varchar(20);default:'casual'"`
	PaymentStatus    ClientPaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'paid'"`
	LastActivityDate *time.Time          `json:"last_activity_date,omitempty" gorm:"default:null"`
	CreatedAt        time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// ClientCreate используется только для создания нового клиента
type ClientCreate struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func IsValidClientStatus(s ClientStatus) bool {
	return s == ClientStatusRegular || s == ClientStatusCasual
}

func IsValidClientPaymentStatus(s ClientPaymentStatus) bool {
	switch s {
	case ClientPaymentDebt, ClientPaymentCredit, ClientPaymentPaid:
		return true
	}
	return false
}
