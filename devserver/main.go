package main

import (
	"net/http"

	"food-order-storefront/config"
	"food-order-storefront/logging"
	"food-order-storefront/storefronttest"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.Must(cfg.Dev)
	defer logger.Sync()

	svc := storefronttest.NewService(storefronttest.WithLogger(logger))

	logger.Info("Storefront dev server starting", zap.String("port", cfg.DevServerPort))
	if err := http.ListenAndServe(":"+cfg.DevServerPort, svc); err != nil {
		logger.Fatal("Dev server stopped", zap.Error(err))
	}
}
