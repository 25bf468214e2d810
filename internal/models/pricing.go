package models

import (
	"time"
)

// Pricing описывает тариф маршрута для канала распределения
type Pricing struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	Channel        string      `json:"channel" gorm:"type:varchar(20);default:''"`
	RouteName      string      `json:"route_name" gorm:"not null;type:varchar(255)"`
	Origin         string      `json:"origin" gorm:"not null;type:varchar(255)"`
	Destination    string      `json:"destination" gorm:"not null;type:varchar(255)"`
	ServiceType    ServiceType `json:"service_type" gorm:"type:varchar(20);default:'delivery'"`
	BasePrice      float64     `json:"base_price" gorm:"default:0"`
	OneWayPrice    float64     `json:"one_way_price" gorm:"default:0"`
	ReturnPrice    float64     `json:"return_price" gorm:"default:0"`
	RoundTripPrice float64     `json:"round_trip_price" gorm:"default:0"`
	PricePerKm     float64     `json:"price_per_km" gorm:"default:0"`
	MinPrice       float64     `json:"min_price" gorm:"default:0"`
	MaxPrice       float64     `json:"max_price" gorm:"default:0"`
	IsActive       bool        `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// PricingCreate используется только для создания нового тарифа
type PricingCreate struct {
	Channel        string  `json:"channel"`
	RouteName      string  `json:"route_name" binding:"required"`
	Origin         string  `json:"origin" binding:"required"`
	Destination    string  `json:"destination" binding:"required"`
	ServiceType    string  `json:"service_type"`
	BasePrice      float64 `json:"base_price"`
	OneWayPrice    float64 `json:"one_way_price"`
	ReturnPrice    float64 `json:"return_price"`
	RoundTripPrice float64 `json:"round_trip_price"`
	PricePerKm     float64 `json:"price_per_km"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	IsActive       *bool   `json:"is_active"`
}
