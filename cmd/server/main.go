package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftconnect/marketplace/internal/app"
	"github.com/craftconnect/marketplace/internal/app/handlers"
	"github.com/craftconnect/marketplace/internal/config"
	"github.com/craftconnect/marketplace/internal/jwt-new/jwtmiddleware"
	"github.com/craftconnect/marketplace/internal/lib/logger"
	"github.com/craftconnect/marketplace/internal/lib/logger/handlers/urllog"
	"github.com/craftconnect/marketplace/internal/notify"
	"github.com/craftconnect/marketplace/internal/service"
	"github.com/craftconnect/marketplace/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	walletRepo := storage.NewWalletRepository(application.DB)
	ledgerRepo := storage.NewLedgerRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	idemRepo := storage.NewIdempotencyRepository(application.DB)

	// издатель событий расчётов; без kafka работаем с заглушкой
	var notifier service.Notifier = notify.Noop{}
	if cfg.Kafka.Enabled {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	settlementService := service.NewSettlementService(application.Logger, productRepo, walletRepo, ledgerRepo, orderRepo, idemRepo, notifier)
	orderService := service.NewOrderService(application.Logger, orderRepo)
	walletService := service.NewWalletService(application.Logger, walletRepo, ledgerRepo)
	catalogService := service.NewCatalogService(application.Logger, productRepo)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// каталог
		r.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
		r.Post("/api/products", handlers.CreateProductHandler(application.Logger, catalogService))
		r.Put("/api/products/{id}/price", handlers.UpdatePriceHandler(application.Logger, catalogService))
		// заказы: покупка проходит через движок расчётов
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, settlementService))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Put("/api/orders/{id}", handlers.UpdateOrderStatusHandler(application.Logger, orderService))
		// кошелёк: остаток и история по леджеру
		r.Get("/api/wallet", handlers.WalletHandler(application.Logger, walletService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
