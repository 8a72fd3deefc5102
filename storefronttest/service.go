// Package storefronttest provides an in-memory stand-in for the meals and
// orders service, for tests and local development.
package storefronttest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"food-order-storefront/models"
)

const (
	MsgMissingData     = "Missing data."
	MsgMissingCustomer = "Missing data: Email, name, street, postal code or city is missing."
	MsgOrderCreated    = "Order created!"
)

// DefaultMeals is the menu served when none is configured.
func DefaultMeals() []models.Meal {
	return []models.Meal{
		{ID: "m1", Name: "Mac & Cheese", Price: decimal.RequireFromString("8.99"), Description: "Creamy cheddar cheese mixed with perfectly cooked macaroni, topped with crispy breadcrumbs.", Image: "images/mac-and-cheese.jpg"},
		{ID: "m2", Name: "Margherita Pizza", Price: decimal.RequireFromString("12.99"), Description: "A classic pizza with fresh mozzarella, tomatoes, and basil on a thin and crispy crust.", Image: "images/margherita-pizza.jpg"},
		{ID: "m3", Name: "Caesar Salad", Price: decimal.RequireFromString("7.99"), Description: "Romaine lettuce tossed in Caesar dressing, topped with croutons and parmesan shavings.", Image: "images/caesar-salad.jpg"},
	}
}

type failure struct {
	status  int
	message string
}

// Service serves GET /meals and POST /orders.
type Service struct {
	mu       sync.Mutex
	meals    []models.Meal
	orders   []models.Order
	requests map[string]int
	failures map[string][]failure
	hold     map[string]chan struct{}

	router *mux.Router
	logger *zap.Logger
}

type Option func(*Service)

func WithMeals(meals []models.Meal) Option {
	return func(s *Service) { s.meals = meals }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		meals:    DefaultMeals(),
		requests: make(map[string]int),
		failures: make(map[string][]failure),
		hold:     make(map[string]chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/meals", s.listMeals).Methods(http.MethodGet)
	s.router.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	s.router.Use(s.count)
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns how many requests reached path.
func (s *Service) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// Orders returns the orders accepted so far.
func (s *Service) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// FailNext makes the next request to path answer with status and a JSON
// body carrying message. An empty message sends an empty body.
func (s *Service) FailNext(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], failure{status: status, message: message})
}

// Hold blocks requests to path until the returned function is called.
func (s *Service) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.hold[path] == ch {
				delete(s.hold, path)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		s.mu.Lock()
		s.requests[path]++
		hold := s.hold[path]
		var f *failure
		if queued := s.failures[path]; len(queued) > 0 {
			f = &queued[0]
			s.failures[path] = queued[1:]
		}
		s.mu.Unlock()

		s.logger.Debug("request received", zap.String("method", r.Method), zap.String("path", path))

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if f != nil {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) listMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	meals := s.meals
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, meals)
}

func (s *Service) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Orders())
}

func (s *Service) createOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": MsgMissingData})
		return
	}

	if len(req.Order.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": MsgMissingData})
		return
	}

	c := req.Order.Customer
	if !strings.Contains(c.Email, "@") ||
		strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Street) == "" ||
		strings.TrimSpace(c.PostalCode) == "" ||
		strings.TrimSpace(c.City) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": MsgMissingCustomer})
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.orders = append(s.orders, req.Order)
	s.mu.Unlock()

	s.logger.Info("order created", zap.String("order_id", id), zap.Int("items", len(req.Order.Items)))
	writeJSON(w, http.StatusCreated, models.OrderConfirmation{Message: MsgOrderCreated, OrderID: id})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
