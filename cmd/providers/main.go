package main

import (
	bookingsrepo "slotbook/internal/bookings/repository"
	"slotbook/internal/providers/handler"
	"slotbook/internal/providers/repository"
	"slotbook/internal/providers/service"
	"slotbook/internal/providers/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
)

const ServiceName = "providers"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Providers service")
	providerService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewProviderHandler(providerService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ProviderService {
	providerValidator := validator.NewProviderValidator(cfg.Log)
	providerRepo := repository.NewMongoProviderRepository(cfg)
	// Slot listings hide starts already held by active bookings.
	occupancy := bookingsrepo.NewMongoBookingRepository(cfg)

	providerService := service.NewProviderService(
		providerRepo,
		occupancy,
		providerValidator,
		cfg,
	)

	cfg.Log.Info("Provider service initialized", "database", cfg.MongoDatabaseName)
	return providerService
}
