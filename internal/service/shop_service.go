package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const chargeDescription = "storefront purchase"

type ShopService interface {
	// ResolveOwner returns the session's owner token, minting one on first
	// use: the authenticated name when present, otherwise a fresh anonymous
	// token. Idempotent once the session holds a token.
	ResolveOwner(ctx context.Context, sessionID, authenticatedName string) (string, error)

	BrowseCategories(ctx context.Context) ([]domain.Category, error)
	BrowseProducts(ctx context.Context, categoryName string) ([]domain.Product, error)
	ViewProduct(ctx context.Context, name string) (domain.Product, error)

	AddToCart(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.CartItem, error)
	ViewCart(ctx context.Context, ownerID string) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, lineID uuid.UUID) (bool, error)

	// StartCheckout migrates the anonymous cart into the authenticated one
	// when the session's owner token differs from the authenticated name,
	// then returns the (possibly updated) owner. No-op once migrated.
	StartCheckout(ctx context.Context, sessionID, authenticatedName string) (string, error)

	// SubmitCheckout snapshots the cart into an order draft. The caller is
	// responsible for parking the draft in the session store.
	SubmitCheckout(ctx context.Context, ownerID string, recipient domain.Recipient) (domain.OrderDraft, error)

	// CapturePayment charges the gateway for the draft's total and, on
	// success, commits the order with its details and clears the cart as one
	// transaction. The order details come from a fresh cart read; the amount
	// charged is the draft's total even if the cart drifted since checkout.
	CapturePayment(ctx context.Context, ownerID string, draft domain.OrderDraft, cardToken, email string) (uuid.UUID, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error)
}

type shopService struct {
	catalog  port.CatalogRepository
	carts    port.CartRepository
	orders   port.OrderRepository
	sessions port.SessionStore
	gateway  port.PaymentGateway
	metrics  *metrics.ShopMetrics
	logger   *zap.Logger
}

func New(
	catalog port.CatalogRepository,
	carts port.CartRepository,
	orders port.OrderRepository,
	sessions port.SessionStore,
	gateway port.PaymentGateway,
	m *metrics.ShopMetrics,
	logger *zap.Logger,
) ShopService {
	return &shopService{
		catalog:  catalog,
		carts:    carts,
		orders:   orders,
		sessions: sessions,
		gateway:  gateway,
		metrics:  m,
		logger:   logger,
	}
}

func (s *shopService) ResolveOwner(ctx context.Context, sessionID, authenticatedName string) (string, error) {
	owner, err := s.sessions.Owner(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("sessions.Owner: %w", err)
	}
	if owner != "" {
		return owner, nil
	}

	owner = authenticatedName
	if owner == "" {
		owner = uuid.NewString()
	}

	if err := s.sessions.SetOwner(ctx, sessionID, owner); err != nil {
		return "", fmt.Errorf("sessions.SetOwner: %w", err)
	}

	return owner, nil
}

func (s *shopService) BrowseCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.ListCategories: %w", err)
	}
	return categories, nil
}

func (s *shopService) BrowseProducts(ctx context.Context, categoryName string) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("catalog.ListProducts: %w", err)
	}
	return products, nil
}

func (s *shopService) ViewProduct(ctx context.Context, name string) (domain.Product, error) {
	product, err := s.catalog.GetProductByName(ctx, name)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.GetProductByName: %w", err)
	}
	return product, nil
}

func (s *shopService) AddToCart(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.CartItem, error) {
	item, err := s.carts.AddItem(ctx, ownerID, productID, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.AddItem: %w", err)
	}
	return item, nil
}

func (s *shopService) ViewCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetCart: %w", err)
	}
	return cart, nil
}

func (s *shopService) RemoveFromCart(ctx context.Context, lineID uuid.UUID) (bool, error) {
	found, err := s.carts.RemoveItem(ctx, lineID)
	if err != nil {
		return false, fmt.Errorf("carts.RemoveItem: %w", err)
	}
	return found, nil
}

// The merge commits before the session's owner token changes, so a crash in
// between re-runs the merge on the next call, which finds no source lines.
// Two distinct anonymous sessions migrating into the same account can still
// each apply their own lines; that matches the one-merge-per-session model.
func (s *shopService) StartCheckout(ctx context.Context, sessionID, authenticatedName string) (string, error) {
	if authenticatedName == "" {
		return "", domain.ErrUnauthenticated
	}

	owner, err := s.ResolveOwner(ctx, sessionID, authenticatedName)
	if err != nil {
		return "", fmt.Errorf("s.ResolveOwner: %w", err)
	}

	if owner == authenticatedName {
		return owner, nil
	}

	if err := s.carts.MergeCart(ctx, owner, authenticatedName); err != nil {
		return "", fmt.Errorf("carts.MergeCart: %w", err)
	}

	if err := s.sessions.SetOwner(ctx, sessionID, authenticatedName); err != nil {
		return "", fmt.Errorf("sessions.SetOwner: %w", err)
	}

	s.logger.Info("migrated anonymous cart",
		zap.String("from", owner),
		zap.String("to", authenticatedName))

	return authenticatedName, nil
}

func (s *shopService) SubmitCheckout(ctx context.Context, ownerID string, recipient domain.Recipient) (domain.OrderDraft, error) {
	var draft domain.OrderDraft

	if ownerID == "" {
		return draft, domain.ErrUnauthenticated
	}

	if err := recipient.Validate(); err != nil {
		return draft, fmt.Errorf("recipient.Validate: %w", err)
	}

	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return draft, fmt.Errorf("carts.GetCart: %w", err)
	}

	if len(cart.Items) == 0 {
		return draft, domain.ErrEmptyCart
	}

	return domain.OrderDraft{
		OwnerID:   ownerID,
		Recipient: recipient,
		Total:     cart.Total(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *shopService) CapturePayment(ctx context.Context, ownerID string, draft domain.OrderDraft, cardToken, email string) (uuid.UUID, error) {
	if ownerID == "" || draft.OwnerID != ownerID {
		return uuid.Nil, domain.ErrUnauthenticated
	}

	// fresh snapshot, independent of the draft: the order details come from
	// this read, the charged amount from the draft
	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("carts.GetCart: %w", err)
	}

	if len(cart.Items) == 0 {
		return uuid.Nil, domain.ErrEmptyCart
	}

	customerID, err := s.gateway.CreateCustomer(ctx, email, cardToken)
	if err != nil {
		s.countPaymentFailure(err)
		return uuid.Nil, fmt.Errorf("gateway.CreateCustomer: %w", err)
	}

	chargeID, err := s.gateway.CreateCharge(ctx, port.ChargeRequest{
		AmountMinor: draft.Total.MinorUnits(),
		Currency:    "cad",
		Description: chargeDescription,
		CustomerID:  customerID,
	})
	if err != nil {
		s.countPaymentFailure(err)
		return uuid.Nil, fmt.Errorf("gateway.CreateCharge: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	orderID, err := s.orders.CompleteCheckout(ctx, domain.Order{
		OwnerID:   ownerID,
		Recipient: draft.Recipient,
		Total:     draft.Total,
		Status:    domain.OrderStatusPaid,
		ChargeID:  chargeID,
		Items:     items,
	})
	if err != nil {
		// the charge went through; this gap needs manual reconciliation
		s.logger.Error("order commit failed after successful charge",
			zap.String("owner", ownerID),
			zap.String("charge_id", chargeID),
			zap.Error(err))
		return uuid.Nil, fmt.Errorf("orders.CompleteCheckout: %w", err)
	}

	s.metrics.OrdersPlaced.Inc()
	s.logger.Info("order placed",
		zap.String("owner", ownerID),
		zap.String("order_id", orderID.String()),
		zap.String("total", draft.Total.Amount.String()))

	return orderID, nil
}

func (s *shopService) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}
	return order, nil
}

func (s *shopService) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	orders, err := s.orders.SearchOrders(ctx, domain.OrderFilter{OwnerIDs: []string{ownerID}})
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

func (s *shopService) countPaymentFailure(err error) {
	reason := "unavailable"
	if errors.Is(err, domain.ErrPaymentDeclined) {
		reason = "declined"
	}
	s.metrics.PaymentFailures.WithLabelValues(reason).Inc()
}
