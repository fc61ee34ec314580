package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubShop lets each test pin down just the calls it cares about.
type stubShop struct {
	owner      string
	product    domain.Product
	productErr error
	cart       domain.Cart
	item       domain.CartItem
	draft      domain.OrderDraft
	draftErr   error
	orderID    uuid.UUID
	captureErr error
}

func (s *stubShop) ResolveOwner(_ context.Context, _, _ string) (string, error) {
	return s.owner, nil
}

func (s *stubShop) BrowseCategories(_ context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (s *stubShop) BrowseProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubShop) ViewProduct(_ context.Context, _ string) (domain.Product, error) {
	return s.product, s.productErr
}

func (s *stubShop) AddToCart(_ context.Context, _ string, _ uuid.UUID, _ int32) (domain.CartItem, error) {
	return s.item, nil
}

func (s *stubShop) ViewCart(_ context.Context, _ string) (domain.Cart, error) {
	return s.cart, nil
}

func (s *stubShop) RemoveFromCart(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, nil
}

func (s *stubShop) StartCheckout(_ context.Context, _, authenticatedName string) (string, error) {
	if authenticatedName == "" {
		return "", domain.ErrUnauthenticated
	}
	return authenticatedName, nil
}

func (s *stubShop) SubmitCheckout(_ context.Context, _ string, _ domain.Recipient) (domain.OrderDraft, error) {
	return s.draft, s.draftErr
}

func (s *stubShop) CapturePayment(_ context.Context, _ string, _ domain.OrderDraft, _, _ string) (uuid.UUID, error) {
	return s.orderID, s.captureErr
}

func (s *stubShop) GetOrder(_ context.Context, _ uuid.UUID) (domain.Order, error) {
	return domain.Order{}, domain.ErrNotFound
}

func (s *stubShop) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func newTestServer(shop *stubShop) *httptest.Server {
	srv := New(shop, session.NewMemoryStore(), metrics.New(prometheus.NewRegistry()), zap.NewNop())
	return httptest.NewServer(srv.Routes())
}

func TestSessionCookie(t *testing.T) {
	ts := newTestServer(&stubShop{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// first contact mints a session cookie
	var sid *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sid" {
			sid = cookie
		}
	}
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.True(t, sid.HttpOnly)

	// presenting the cookie back does not mint a new one
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.AddCookie(sid)

	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Cookies())
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"empty cart", domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"declined", domain.ErrPaymentDeclined, http.StatusPaymentRequired, "payment_declined"},
		{"gateway down", domain.ErrGatewayUnavailable, http.StatusBadGateway, "gateway_unavailable"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&stubShop{productErr: tt.err})
			defer ts.Close()

			resp, err := http.Get(ts.URL + "/products/widget")
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	ts := newTestServer(&stubShop{productErr: assert.AnError})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/products/widget")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal error", body.Error)
}

func TestAddToCart(t *testing.T) {
	item := domain.CartItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  2,
		Price: domain.Money{
			Amount:   decimal.RequireFromString("10.00"),
			Currency: domain.CAD,
		},
	}

	ts := newTestServer(&stubShop{owner: "alice", item: item})
	defer ts.Close()

	t.Run("ok", func(t *testing.T) {
		body := `{"product_id":"` + item.ProductID.String() + `","quantity":2}`
		resp, err := http.Post(ts.URL+"/cart/items", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var dto CartItemDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
		assert.Equal(t, item.ID.String(), dto.ID)
		assert.EqualValues(t, 2, dto.Quantity)
	})

	t.Run("bad json", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/cart/items", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad product id", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/cart/items", "application/json", strings.NewReader(`{"product_id":"nope","quantity":1}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRemoveFromCart(t *testing.T) {
	ts := newTestServer(&stubShop{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/cart/items/"+uuid.NewString(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCheckoutFlow(t *testing.T) {
	draft := domain.OrderDraft{
		OwnerID: "alice",
		Recipient: domain.Recipient{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Address:    "1 Analytical Way",
			City:       "Toronto",
			PostalCode: "M5V 1A1",
		},
		Total: domain.Money{
			Amount:   decimal.RequireFromString("25.50"),
			Currency: domain.CAD,
		},
		CreatedAt: time.Now().UTC(),
	}

	shop := &stubShop{owner: "alice", draft: draft, orderID: uuid.New()}
	ts := newTestServer(shop)
	defer ts.Close()

	client := &http.Client{Jar: newCookieJar(t)}

	checkoutBody := `{"first_name":"Ada","last_name":"Lovelace","address":"1 Analytical Way","city":"Toronto","postal_code":"M5V 1A1"}`

	t.Run("submit without auth: 401", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/checkout", "application/json", strings.NewReader(checkoutBody))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no draft yet: 404", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/checkout/draft")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("submit parks the draft in the session", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/checkout", strings.NewReader(checkoutBody))
		require.NoError(t, err)
		req.Header.Set("X-Auth-User", "alice")

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		draftResp, err := client.Get(ts.URL + "/checkout/draft")
		require.NoError(t, err)
		defer draftResp.Body.Close()
		require.Equal(t, http.StatusOK, draftResp.StatusCode)

		var dto DraftDTO
		require.NoError(t, json.NewDecoder(draftResp.Body).Decode(&dto))
		assert.Equal(t, "alice", dto.OwnerID)
		assert.True(t, draft.Total.Amount.Equal(dto.Total.Amount))
	})

	t.Run("payment without auth: 401", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/checkout/payment", "application/json", strings.NewReader(`{"card_token":"tok_visa","email":"a@example.com"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("payment places the order and clears the draft", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/checkout/payment", strings.NewReader(`{"card_token":"tok_visa","email":"a@example.com"}`))
		require.NoError(t, err)
		req.Header.Set("X-Auth-User", "alice")

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var placed OrderPlacedDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&placed))
		assert.Equal(t, shop.orderID.String(), placed.OrderID)

		draftResp, err := client.Get(ts.URL + "/checkout/draft")
		require.NoError(t, err)
		defer draftResp.Body.Close()
		assert.Equal(t, http.StatusNotFound, draftResp.StatusCode)
	})

	t.Run("declined payment keeps the draft", func(t *testing.T) {
		// park a fresh draft, then fail the capture
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/checkout", strings.NewReader(checkoutBody))
		require.NoError(t, err)
		req.Header.Set("X-Auth-User", "alice")

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		shop.captureErr = domain.ErrPaymentDeclined

		req, err = http.NewRequest(http.MethodPost, ts.URL+"/checkout/payment", strings.NewReader(`{"card_token":"tok_chargeDeclined","email":"a@example.com"}`))
		require.NoError(t, err)
		req.Header.Set("X-Auth-User", "alice")

		resp, err = client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

		// the draft survives for a retry
		draftResp, err := client.Get(ts.URL + "/checkout/draft")
		require.NoError(t, err)
		defer draftResp.Body.Close()
		assert.Equal(t, http.StatusOK, draftResp.StatusCode)
	})
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}
