package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// Hand-written test doubles for the repository and gateway ports.

type mockCatalog struct {
	categories []domain.Category
	products   []domain.Product
	err        error
}

func (m *mockCatalog) ListCategories(_ context.Context) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockCatalog) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockCatalog) GetProductByID(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (m *mockCatalog) GetProductByName(_ context.Context, name string) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	for _, p := range m.products {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

type mergeCall struct {
	from, to string
}

type mockCartRepo struct {
	carts      map[string]domain.Cart
	mergeCalls []mergeCall
	getErr     error
	mergeErr   error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]domain.Cart)}
}

func (m *mockCartRepo) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	if m.getErr != nil {
		return domain.Cart{}, m.getErr
	}

	cart, ok := m.carts[ownerID]
	if !ok {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	return cart, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.CartItem, error) {
	if quantity <= 0 {
		return domain.CartItem{}, domain.ErrInvalidQuantity
	}

	item := domain.CartItem{ID: uuid.New(), ProductID: productID, Quantity: quantity}
	cart := m.carts[ownerID]
	cart.OwnerID = ownerID
	cart.Items = append(cart.Items, item)
	m.carts[ownerID] = cart

	return item, nil
}

func (m *mockCartRepo) RemoveItem(_ context.Context, lineID uuid.UUID) (bool, error) {
	for ownerID, cart := range m.carts {
		for i, item := range cart.Items {
			if item.ID == lineID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				m.carts[ownerID] = cart
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockCartRepo) MergeCart(_ context.Context, fromOwnerID, toOwnerID string) error {
	m.mergeCalls = append(m.mergeCalls, mergeCall{from: fromOwnerID, to: toOwnerID})
	if m.mergeErr != nil {
		return m.mergeErr
	}
	if fromOwnerID == toOwnerID {
		return nil
	}

	from := m.carts[fromOwnerID]
	to := m.carts[toOwnerID]
	to.OwnerID = toOwnerID
	to.Items = append(to.Items, from.Items...)
	m.carts[toOwnerID] = to
	delete(m.carts, fromOwnerID)

	return nil
}

type mockOrderRepo struct {
	completed   []domain.Order
	completeErr error
}

func (m *mockOrderRepo) CompleteCheckout(_ context.Context, order domain.Order) (uuid.UUID, error) {
	if m.completeErr != nil {
		return uuid.Nil, m.completeErr
	}

	order.ID = uuid.New()
	m.completed = append(m.completed, order)

	return order.ID, nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	for _, order := range m.completed {
		if order.ID == orderID {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (m *mockOrderRepo) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var orders []domain.Order
	for _, order := range m.completed {
		for _, ownerID := range filter.OwnerIDs {
			if order.OwnerID == ownerID {
				orders = append(orders, order)
			}
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	for i, order := range m.completed {
		if order.ID == orderID {
			m.completed[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

type customerCall struct {
	email, cardToken string
}

type mockGateway struct {
	customers   []customerCall
	charges     []port.ChargeRequest
	customerErr error
	chargeErr   error
}

func (m *mockGateway) CreateCustomer(_ context.Context, email, cardToken string) (string, error) {
	m.customers = append(m.customers, customerCall{email: email, cardToken: cardToken})
	if m.customerErr != nil {
		return "", m.customerErr
	}
	return "cus_test", nil
}

func (m *mockGateway) CreateCharge(_ context.Context, charge port.ChargeRequest) (string, error) {
	m.charges = append(m.charges, charge)
	if m.chargeErr != nil {
		return "", m.chargeErr
	}
	return "ch_test", nil
}
