package main

import (
	"slotly/internal/bookings/events"
	"slotly/internal/bookings/handler"
	"slotly/internal/bookings/repository"
	"slotly/internal/bookings/service"
	"slotly/internal/bookings/validator"
	usersrepository "slotly/internal/users/repository"
	"slotly/pkg/app"
	"slotly/pkg/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	publisher, err := events.NewPublisher(cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking events", "error", err)
	}

	users := usersrepository.NewMongoUserDirectory(cfg)
	bookingService := initServices(cfg, users, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewBookingHandler(bookingService, users, cfg.JWTSecret, cfg.Log),
	)
	serverApp.OnShutdown(publisher)
	serverApp.Run()
}

func initServices(cfg *config.Config, users usersrepository.UserDirectory, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		users,
		bookingValidator,
		publisher,
		cfg.Log,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
