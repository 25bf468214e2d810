package main

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dispatch-backend/internal/config"
	"dispatch-backend/internal/models"
)

// Наполняет базу демонстрационными данными диспетчерской:
// водители, клиенты, тарифы, тендеры, рейсы и платежи.
func main() {
	cfg := config.Load()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Driver{},
		&models.Client{},
		&models.Tender{},
		&models.Trip{},
		&models.Payment{},
		&models.Pricing{},
	); err != nil {
		log.Fatalf("Ошибка миграции базы данных: %v", err)
	}

	whatsapp := models.ChannelWhatsApp
	radio := models.ChannelRadio

	drivers := []models.Driver{
		{
			Name: "Асхат Нурланов", Phone: "+77011234567", City: "Алматы",
			VehicleType: "Газель", VehicleNumber: "A123BC02",
			Status: models.DriverStatusActive, Channel: &whatsapp,
			FixedCharge: 5000, VariableChargePercentage: 10,
		},
		{
			Name: "Бауыржан Сапаров", Phone: "+77017654321", City: "Алматы",
			VehicleType: "Фура", VehicleNumber: "B456DE02",
			Status: models.DriverStatusActive, Channel: &radio,
			FixedCharge: 8000, VariableChargePercentage: 12,
		},
		{
			Name: "Ерлан Касымов", Phone: "+77025550011", City: "Астана",
			VehicleType: "Газель", VehicleNumber: "C789FG01",
			Status: models.DriverStatusInactive,
			FixedCharge: 5000, VariableChargePercentage: 10,
		},
	}
	if err := db.Create(&drivers).Error; err != nil {
		log.Fatalf("Ошибка при создании водителей: %v", err)
	}

	clients := []models.Client{
		{Name: "ТОО Алатау Трейд", Phone: "+77273334455", City: "Алматы", Status: models.ClientStatusRegular, PaymentStatus: models.ClientPaymentDebt},
		{Name: "ИП Жумабек", Phone: "+77055556677", City: "Алматы", Status: models.ClientStatusCasual, PaymentStatus: models.ClientPaymentPaid},
	}
	if err := db.Create(&clients).Error; err != nil {
		log.Fatalf("Ошибка при создании клиентов: %v", err)
	}

	pricings := []models.Pricing{
		{
			Channel: models.ChannelWhatsApp, RouteName: "Алматы — Астана",
			Origin: "Алматы", Destination: "Астана",
			ServiceType: models.ServiceTypeDelivery,
			BasePrice:   50000, OneWayPrice: 50000, ReturnPrice: 45000, RoundTripPrice: 90000,
			MinPrice: 40000, MaxPrice: 120000, IsActive: true,
		},
		{
			Channel: models.ChannelRadio, RouteName: "Алматы — Шымкент",
			Origin: "Алматы", Destination: "Шымкент",
			ServiceType: models.ServiceTypeDelivery,
			BasePrice:   35000, OneWayPrice: 35000, ReturnPrice: 30000, RoundTripPrice: 60000,
			MinPrice: 25000, MaxPrice: 80000, IsActive: true,
		},
	}
	if err := db.Create(&pricings).Error; err != nil {
		log.Fatalf("Ошибка при создании тарифов: %v", err)
	}

	now := time.Now().UTC()
	scheduled := now.Add(24 * time.Hour)

	tenders := []models.Tender{
		{
			TenderNumber: "TND-SEED0001", Origin: "Алматы", Destination: "Астана",
			ClientName: clients[0].Name, ClientPhone: clients[0].Phone,
			ServiceType: models.ServiceTypeDelivery,
			Status:      models.TenderStatusActive, ScheduledTime: &scheduled, Version: 1,
		},
		{
			TenderNumber: "TND-SEED0002", Origin: "Алматы", Destination: "Шымкент",
			ClientName: clients[1].Name, ClientPhone: clients[1].Phone,
			ServiceType: models.ServiceTypeDelivery,
			DriverID:    &drivers[0].ID,
			Status:      models.TenderStatusWaiting, ScheduledTime: &scheduled, Version: 1,
		},
	}
	if err := db.Create(&tenders).Error; err != nil {
		log.Fatalf("Ошибка при создании тендеров: %v", err)
	}

	started := now.Add(-2 * time.Hour)
	ended := now.Add(-30 * time.Minute)
	trips := []models.Trip{
		{
			TripNumber: "TRP-SEED0001", Origin: "Алматы", Destination: "Астана",
			ClientName: clients[0].Name, ClientPhone: clients[0].Phone,
			DriverID: &drivers[0].ID, TripType: models.ServiceTypeDelivery,
			Status:        models.TripStatusCompleted,
			ScheduledTime: started, ActualStartTime: &started, ActualEndTime: &ended,
			Price: 50000, Version: 1,
		},
		{
			TripNumber: "TRP-SEED0002", Origin: "Алматы", Destination: "Шымкент",
			ClientName: clients[1].Name, ClientPhone: clients[1].Phone,
			DriverID: &drivers[1].ID, TripType: models.ServiceTypeDelivery,
			Status:        models.TripStatusScheduled,
			ScheduledTime: scheduled, Price: 35000, Version: 1,
		},
	}
	if err := db.Create(&trips).Error; err != nil {
		log.Fatalf("Ошибка при создании рейсов: %v", err)
	}

	payments := []models.Payment{
		{
			PaymentNumber: "PAY-SEED0001", DriverID: drivers[0].ID,
			TripID: &trips[0].ID, ClientID: &clients[0].ID,
			Amount: 45000, PaymentType: models.PaymentTypeSalary,
			PaymentDate: now, Status: models.PaymentStatusPending,
		},
		{
			PaymentNumber: "PAY-SEED0002", DriverID: drivers[0].ID,
			Amount: -5000, PaymentType: models.PaymentTypeDeduction,
			PaymentDate: now, Status: models.PaymentStatusPending,
			Notes: "Фиксированный сбор станции",
		},
	}
	if err := db.Create(&payments).Error; err != nil {
		log.Fatalf("Ошибка при создании платежей: %v", err)
	}

	log.Printf("Демоданные загружены: %d водителей, %d клиентов, %d тарифов, %d тендеров, %d рейсов, %d платежей",
		len(drivers), len(clients), len(pricings), len(tenders), len(trips), len(payments))
}
