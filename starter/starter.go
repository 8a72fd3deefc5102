package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"

	"food-order-storefront/cart"
	"food-order-storefront/codec"
	"food-order-storefront/config"
	"food-order-storefront/logging"
	"food-order-storefront/models"
	"food-order-storefront/progress"
	"food-order-storefront/workflows"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

const (
	TaskQueueName = "storefront-session-queue"
)

func main() {
	// Command line flags
	sessionID := flag.String("session-id", "", "Session ID (optional, auto-generated if not provided)")
	signal := flag.String("signal", "", "Send signal to workflow (add, remove, clear, show-cart, hide-cart, show-checkout, hide-checkout, surface-closed, submit, dismiss, end)")
	query := flag.Bool("query", false, "Query workflow state")
	workflowID := flag.String("workflow-id", "", "Workflow ID for signal/query operations")
	mealID := flag.String("meal-id", "", "Meal ID for add and remove")
	target := flag.String("target", "", "Surface for surface-closed (cart or checkout)")
	generation := flag.Uint64("generation", 0, "Progress generation the closed surface was opened at")
	name := flag.String("name", "", "Customer name for submit")
	email := flag.String("email", "", "Customer e-mail for submit")
	street := flag.String("street", "", "Customer street for submit")
	postalCode := flag.String("postal-code", "", "Customer postal code for submit")
	city := flag.String("city", "", "Customer city for submit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.Must(cfg.Dev)
	defer logger.Sync()

	if cfg.GeneratedKey {
		logger.Warn("Using generated encryption key, set ENCRYPTION_KEY to match worker",
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

	ctx := context.Background()

	// Handle signal operations
	if *signal != "" {
		if *workflowID == "" {
			logger.Fatal("Workflow ID is required for signal operations. Use -workflow-id flag")
		}
		customer := models.Customer{Name: *name, Email: *email, Street: *street, PostalCode: *postalCode, City: *city}
		closed := workflows.SurfaceClosed{Target: progress.State(*target), Generation: *generation}
		if err := sendSignal(ctx, c, *workflowID, *signal, *mealID, closed, customer); err != nil {
			logger.Fatal("Failed to send signal", zap.String("signal", *signal), zap.Error(err))
		}
		logger.Info("Signal sent successfully", zap.String("signal", *signal), zap.String("workflow_id", *workflowID))
		return
	}

	// Handle query operations
	if *query {
		if *workflowID == "" {
			logger.Fatal("Workflow ID is required for query operations. Use -workflow-id flag")
		}
		state, err := queryWorkflowState(ctx, c, *workflowID)
		if err != nil {
			logger.Fatal("Failed to query workflow", zap.Error(err))
		}
		stateJSON, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			logger.Fatal("Failed to marshal state", zap.Error(err))
		}
		fmt.Println(string(stateJSON))
		return
	}

	// Start a new session
	startWorkflow(ctx, logger, c, cfg, *sessionID)
}

func startWorkflow(ctx context.Context, logger *zap.Logger, c client.Client, cfg config.Config, sessionID string) {
	// Generate session ID if not provided
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("storefront-session-%s", sessionID),
		TaskQueue: TaskQueueName,
	}

	input := workflows.SessionInput{
		SessionID:    sessionID,
		Dismissal:    cfg.Dismissal,
		DismissDelay: cfg.DismissDelay,
	}

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.SessionWorkflow, input)
	if err != nil {
		logger.Fatal("Unable to execute workflow", zap.Error(err))
	}

	logger.Info("Started session",
		zap.String("session_id", sessionID),
		zap.String("workflow_id", we.GetID()),
		zap.String("run_id", we.GetRunID()),
	)
	fmt.Println("To query session state, run:")
	fmt.Printf("  go run ./starter -query -workflow-id %s\n", we.GetID())
	fmt.Println("To add a meal, run:")
	fmt.Printf("  go run ./starter -signal add -meal-id m1 -workflow-id %s\n", we.GetID())
}

func sendSignal(ctx context.Context, c client.Client, workflowID, signal, mealID string, closed workflows.SurfaceClosed, customer models.Customer) error {
	var (
		signalName string
		arg        interface{}
	)

	switch signal {
	case "add":
		state, err := queryWorkflowState(ctx, c, workflowID)
		if err != nil {
			return err
		}
		meal, ok := findMeal(state.Menu.Data, mealID)
		if !ok {
			return fmt.Errorf("meal %q is not on the menu", mealID)
		}
		signalName, arg = workflows.SignalCart, cart.CommandOf(cart.AddItem{Item: meal.LineItem()})
	case "remove":
		signalName, arg = workflows.SignalCart, cart.CommandOf(cart.RemoveItem{ID: mealID})
	case "clear":
		signalName, arg = workflows.SignalCart, cart.CommandOf(cart.ClearCart{})
	case "show-cart", "hide-cart", "show-checkout", "hide-checkout":
		signalName, arg = workflows.SignalProgress, workflows.ProgressCommand{Action: progress.Action(signal)}
	case "surface-closed":
		signalName, arg = workflows.SignalSurfaceClosed, closed
	case "submit":
		signalName, arg = workflows.SignalSubmitOrder, customer
	case "dismiss":
		signalName = workflows.SignalDismiss
	case "end":
		signalName = workflows.SignalEndSession
	default:
		return fmt.Errorf("unknown signal: %s", signal)
	}

	return c.SignalWorkflow(ctx, workflowID, "", signalName, arg)
}

func queryWorkflowState(ctx context.Context, c client.Client, workflowID string) (workflows.SessionState, error) {
	var state workflows.SessionState
	resp, err := c.QueryWorkflow(ctx, workflowID, "", workflows.QueryState)
	if err != nil {
		return state, fmt.Errorf("failed to query workflow: %w", err)
	}
	if err := resp.Get(&state); err != nil {
		return state, fmt.Errorf("failed to decode query result: %w", err)
	}
	return state, nil
}

func findMeal(meals []models.Meal, id string) (models.Meal, bool) {
	for _, m := range meals {
		if m.ID == id {
			return m, true
		}
	}
	return models.Meal{}, false
}
