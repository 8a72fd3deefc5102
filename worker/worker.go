package main

import (
	"encoding/hex"
	"os"

	"food-order-storefront/activities"
	"food-order-storefront/codec"
	"food-order-storefront/config"
	"food-order-storefront/logging"
	"food-order-storefront/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

// Version information - update this when deploying new versions
const (
	WorkerVersion = "1.0.0" // Semantic versioning
	BuildID       = "1.0.0" // Build ID for worker versioning
)

const (
	TaskQueueName = "storefront-session-queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.Must(cfg.Dev)
	defer logger.Sync()

	if cfg.GeneratedKey {
		logger.Warn("Generated encryption key, set ENCRYPTION_KEY to use this key in production",
			zap.String("key", hex.EncodeToString(cfg.EncryptionKey)))
	}

	// Create data converter with encryption
	dataConverter, err := codec.NewEncryptionDataConverter(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("Failed to create encryption data converter", zap.Error(err))
	}

	// Create Temporal client with encryption
	c, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalAddress,
		DataConverter: dataConverter,
		Logger:        logging.NewTemporalLogger(logger),
	})
	if err != nil {
		logger.Fatal("Unable to create Temporal client", zap.Error(err))
	}
	defer c.Close()

	// Get Build ID from environment or use default
	buildID := os.Getenv("BUILD_ID")
	if buildID == "" {
		buildID = BuildID
	}

	w := worker.New(c, TaskQueueName, worker.Options{
		BuildID:                                buildID,
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.SessionWorkflow)
	w.RegisterWorkflow(workflows.CheckoutWorkflow)

	// Register activities
	w.RegisterActivity(activities.NewActivities(cfg.APIURL, nil))
	w.RegisterActivity(activities.NewCheckoutActivities(nil))

	logger.Info("Starting Temporal worker",
		zap.String("version", WorkerVersion),
		zap.String("build_id", buildID),
		zap.String("temporal_address", cfg.TemporalAddress),
		zap.String("task_queue", TaskQueueName),
		zap.String("api_url", cfg.APIURL),
		zap.Strings("workflows", []string{workflows.SessionWorkflowName, workflows.CheckoutWorkflowName}),
	)

	// Start worker
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("Unable to start worker", zap.Error(err))
	}
}
