package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/linemk/ecom-shop/internal/app"
	"github.com/linemk/ecom-shop/internal/app/handlers"
	"github.com/linemk/ecom-shop/internal/config"
	"github.com/linemk/ecom-shop/internal/lib/api/response"
	"github.com/linemk/ecom-shop/internal/lib/logger"
	"github.com/linemk/ecom-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
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

	// стартовые данные: гостевой пользователь и каталог, повторно — no-op
	if err := application.Seed(context.Background()); err != nil {
		log.Error("failed to seed database", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to seed database"))
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	productService := service.NewProductService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, orderRepo, cartRepo, productRepo)

	resp := response.New(cfg.Env)
	guestID := cfg.DefaultUser.ID

	// каталог товаров
	router.Get("/api/products", handlers.ProductListHandler(log, productService, resp))
	router.Get("/api/products/category/{category}", handlers.ProductsByCategoryHandler(log, productService, resp))
	router.Get("/api/products/{id}", handlers.ProductGetHandler(log, productService, resp))
	router.Post("/api/products", handlers.ProductCreateHandler(log, productService, resp))
	router.Put("/api/products/{id}", handlers.ProductUpdateHandler(log, productService, resp))
	router.Delete("/api/products/{id}", handlers.ProductDeleteHandler(log, productService, resp))
	router.Patch("/api/products/{id}/stock", handlers.ProductAdjustStockHandler(log, productService, resp))

	// корзина; без userId запрос относится к гостевому пользователю
	router.Get("/api/cart", handlers.CartGetHandler(log, cartService, resp, guestID))
	router.Get("/api/cart/{userID}", handlers.CartGetHandler(log, cartService, resp, guestID))
	router.Post("/api/cart/add", handlers.CartAddHandler(log, cartService, resp, guestID))
	router.Put("/api/cart/update", handlers.CartUpdateHandler(log, cartService, resp, guestID))
	router.Delete("/api/cart/remove/{productID}", handlers.CartRemoveHandler(log, cartService, resp, guestID))
	router.Delete("/api/cart/clear", handlers.CartClearHandler(log, cartService, resp, guestID))
	router.Delete("/api/cart/clear/{userID}", handlers.CartClearHandler(log, cartService, resp, guestID))

	// заказы
	router.Post("/api/orders", handlers.OrderCreateHandler(log, orderService, resp, guestID))
	router.Get("/api/orders", handlers.OrderListHandler(log, orderService, resp))
	router.Get("/api/orders/user", handlers.OrderListByUserHandler(log, orderService, resp, guestID))
	router.Get("/api/orders/user/{userID}", handlers.OrderListByUserHandler(log, orderService, resp, guestID))
	router.Get("/api/orders/{id}", handlers.OrderGetHandler(log, orderService, resp))
	router.Put("/api/orders/{id}/status", handlers.OrderUpdateStatusHandler(log, orderService, resp))

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
