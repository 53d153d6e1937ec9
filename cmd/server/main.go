package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"laptopshop-be/internal/address"
	"laptopshop-be/internal/cart"
	"laptopshop-be/internal/config"
	"laptopshop-be/internal/db"
	"laptopshop-be/internal/inventory"
	"laptopshop-be/internal/logger"
	"laptopshop-be/internal/order"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/product"
	"laptopshop-be/internal/user"
	"laptopshop-be/internal/web"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	ledger := inventory.NewLedger()

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, cfg.JWTSecret)

	addressRepo := address.NewRepository(database)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	gateway := payment.NewVNPayGateway(cfg)

	orderRepo := order.NewRepository(database, ledger)
	orderSvc := order.NewService(orderRepo, userRepo, addressRepo, gateway)

	router := web.NewRouter(web.Handlers{
		Auth:       web.NewAuthHandler(userSvc),
		Product:    web.NewProductHandler(productSvc),
		Cart:       web.NewCartHandler(cartSvc),
		Address:    web.NewAddressHandler(addressRepo),
		Order:      web.NewOrderHandler(orderSvc),
		AdminOrder: web.NewAdminOrderHandler(orderSvc),
		Payment:    web.NewPaymentHandler(orderSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown error", zap.Error(err))
	}
}
