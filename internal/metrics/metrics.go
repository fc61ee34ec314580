package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ShopMetrics struct {
	OrdersPlaced    prometheus.Counter
	PaymentFailures *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *ShopMetrics {
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_placed_total",
		Help:      "Total number of orders committed after a successful charge.",
	})
	paymentFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payment_failures_total",
		Help:      "Total number of failed payment attempts.",
	}, []string{"reason"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(ordersPlaced, paymentFailures, requestDuration)

	return &ShopMetrics{
		OrdersPlaced:    ordersPlaced,
		PaymentFailures: paymentFailures,
		RequestDuration: requestDuration,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
