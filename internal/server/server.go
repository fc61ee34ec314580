package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/service"
	"go.uber.org/zap"
)

type Server struct {
	shop     service.ShopService
	sessions port.SessionStore
	metrics  *metrics.ShopMetrics
	logger   *zap.Logger
}

func New(shop service.ShopService, sessions port.SessionStore, m *metrics.ShopMetrics, logger *zap.Logger) *Server {
	return &Server{
		shop:     shop,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.sessionMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/categories", s.ListCategories)
	r.Get("/categories/{category}/products", s.ListProducts)
	r.Get("/products/{name}", s.GetProduct)

	r.Post("/cart/items", s.AddToCart)
	r.Get("/cart", s.ViewCart)
	r.Delete("/cart/items/{id}", s.RemoveFromCart)

	r.Post("/checkout/start", s.StartCheckout)
	r.Post("/checkout", s.SubmitCheckout)
	r.Get("/checkout/draft", s.GetDraft)
	r.Post("/checkout/payment", s.SubmitPayment)

	r.Get("/orders", s.ListOrders)
	r.Get("/orders/{id}", s.GetOrder)

	return r
}
