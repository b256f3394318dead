package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentx/config"
	"rentx/cron"
	"rentx/database"
	"rentx/database/repository"
	"rentx/handlers"
	"rentx/routes"
	"rentx/services/booking"
	"rentx/services/car"
	"rentx/services/loyalty"
	"rentx/services/notification"
	"rentx/services/payment"
	"rentx/utils"

	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := repository.NewMongoBookingRepo()
	carRepo := repository.NewMongoCarRepo()
	userRepo := repository.NewMongoUserRepo()
	paymentRepo := repository.NewMongoPaymentRepo()

	// services.
	notifier := &notification.FCMNotifier{
		Users:  userRepo,
		Logger: logger,
	}
	paymentProcessor := &payment.StripeProcessor{
		Payments: paymentRepo,
		Logger:   logger,
	}
	loyaltyService := &loyalty.Service{
		Bookings: bookingRepo,
		Tiers:    config.AppConfig.LoyaltyTiers,
		Logger:   logger,
	}
	carService := &car.DefaultCarService{
		Repo:   carRepo,
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:     bookingRepo,
		Cars:     carRepo,
		Users:    userRepo,
		Loyalty:  loyaltyService,
		Payments: paymentProcessor,
		Notifier: notifier,
		Refunds:  config.AppConfig.Refunds,
		Logger:   logger,
	}

	// Reminder queue client and worker.
	redisQueueOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
	queueClient := asynq.NewClient(redisQueueOpt)
	defer queueClient.Close()

	worker := &cron.ReminderWorker{
		Bookings: bookingRepo,
		Notifier: notifier,
		Logger:   logger,
	}
	if err := worker.Start(redisQueueOpt); err != nil {
		logger.Sugar().Fatalf("main: failed to start reminder worker: %v", err)
	}

	// Reconciliation scheduler.
	reconciler := &cron.Reconciler{
		Bookings: bookingRepo,
		Cars:     carService,
		Payments: paymentProcessor,
		Notifier: notifier,
		Queue:    queueClient,
		Logger:   logger,
	}
	scheduler := cron.NewScheduler(logger)
	scheduler.Register("promote-statuses", cron.PromotionInterval, reconciler.PromoteStatuses)
	scheduler.Register("settle-refunds", cron.SettlementInterval, reconciler.SettleRefunds)
	scheduler.Register("auto-cancel-sweep", cron.AutoCancelInterval, reconciler.AutoCancelSweep)
	scheduler.Register("clear-car-cache", cron.CacheEvictInterval, func(ctx context.Context, _ time.Time) {
		carService.ClearListingCache(ctx)
	})
	scheduler.RegisterDaily("day-ahead-reminders", cron.ReminderHour, reconciler.SendDayAheadReminders)
	scheduler.RegisterDaily("coarse-sweep", cron.CoarseSweepHour, reconciler.AutoCancelSweep)
	scheduler.Start()

	// HTTP surface.
	handlerBundle := handlers.NewHandlerBundle(userRepo, bookingService, carService, loyaltyService)
	router := routes.NewRouter(handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	scheduler.Stop()
	worker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
