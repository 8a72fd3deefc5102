package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"food-order-storefront/checkout"
	"food-order-storefront/config"
	"food-order-storefront/logging"
	"food-order-storefront/progress"
	"food-order-storefront/request"
	"food-order-storefront/session"

	"go.uber.org/zap"
)

type shop struct {
	s       *session.Session
	reader  *bufio.Reader
	surface *progress.Surface
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.Must(cfg.Dev)
	defer logger.Sync()

	ctx := context.Background()
	s, err := session.New(ctx, cfg, session.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to start session", zap.Error(err))
	}
	defer s.Close()

	sh := &shop{s: s, reader: bufio.NewReader(os.Stdin)}

	fmt.Println("=== Food Order Storefront ===")
	fmt.Println("Commands: menu, add <id>, remove <id>, cart, checkout, close, submit, done, q")
	for {
		fmt.Print("\n> ")
		input, err := sh.reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "menu":
			sh.printMenu()
		case "add":
			sh.add(fields)
		case "remove":
			if len(fields) < 2 {
				fmt.Println("Usage: remove <id>")
				continue
			}
			if err := s.Cart.RemoveItem(fields[1]); err != nil {
				fmt.Println("Error:", err)
			}
			sh.printCart()
		case "cart":
			sh.show(progress.CartView)
			sh.printCart()
		case "checkout":
			if s.Cart.Count() == 0 {
				fmt.Println("Your cart is empty.")
				continue
			}
			sh.show(progress.CheckoutView)
			fmt.Printf("Total Amount: $%s\n", s.Cart.Total().StringFixed(2))
		case "close":
			if sh.surface != nil {
				sh.surface.Closed()
				sh.surface = nil
			}
		case "submit":
			sh.submit(ctx)
		case "done":
			s.FinishCheckout()
		case "q", "quit", "exit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

// show moves progress to target and tears down the previously mounted
// surface, the way a view would when it unmounts.
func (sh *shop) show(target progress.State) {
	previous := sh.surface
	switch target {
	case progress.CartView:
		sh.s.Progress.ShowCart()
	case progress.CheckoutView:
		sh.s.Progress.ShowCheckout()
	}
	if previous != nil && previous.Target() != target {
		previous.Closed()
	}
	sh.surface, _ = sh.s.Progress.Mount(target)
}

func (sh *shop) printMenu() {
	menu := sh.s.Snapshot().Menu
	switch menu.Status {
	case request.Loading:
		fmt.Println("Fetching meals...")
	case request.Error:
		fmt.Println("Failed to fetch meals:", menu.ErrorMessage)
	default:
		for _, m := range menu.Data {
			fmt.Printf("  %-4s %-20s $%s\n", m.ID, m.Name, m.Price.StringFixed(2))
		}
	}
}

func (sh *shop) add(fields []string) {
	if len(fields) < 2 {
		fmt.Println("Usage: add <id>")
		return
	}
	for _, m := range sh.s.Snapshot().Menu.Data {
		if m.ID == fields[1] {
			if err := sh.s.AddMeal(m); err != nil {
				fmt.Println("Error:", err)
			}
			fmt.Printf("Cart (%d)\n", sh.s.Cart.Count())
			return
		}
	}
	fmt.Println("No such meal.")
}

func (sh *shop) printCart() {
	for _, item := range sh.s.Cart.Items() {
		fmt.Printf("  %s - %d x $%s\n", item.Name, item.Quantity, item.UnitPrice.StringFixed(2))
	}
	fmt.Printf("  Total: $%s\n", sh.s.Cart.Total().StringFixed(2))
}

func (sh *shop) prompt(label string) string {
	fmt.Printf("%s: ", label)
	input, _ := sh.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func (sh *shop) submit(ctx context.Context) {
	form := checkout.Form{
		checkout.FieldName:       sh.prompt("Full Name"),
		checkout.FieldEmail:      sh.prompt("E-Mail Address"),
		checkout.FieldStreet:     sh.prompt("Street"),
		checkout.FieldPostalCode: sh.prompt("Postal Code"),
		checkout.FieldCity:       sh.prompt("City"),
	}

	fmt.Println("Sending order data...")
	result, err := sh.s.SubmitOrder(ctx, form)
	var validationErr *checkout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		for _, f := range validationErr.Fields {
			fmt.Printf("  %s: %s\n", f.Field, f.Message)
		}
	case err != nil:
		fmt.Println("Error:", err)
	case result.Status == request.Error:
		fmt.Println("Failed to submit order:", result.ErrorMessage)
	default:
		fmt.Println("Success! Your order was submitted successfully.")
		sh.surface = nil
	}
}
