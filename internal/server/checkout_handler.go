package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CheckoutRequestDTO struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

type DraftDTO struct {
	OwnerID   string           `json:"owner_id"`
	Recipient domain.Recipient `json:"recipient"`
	Total     domain.Money     `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
}

type PaymentRequestDTO struct {
	CardToken string `json:"card_token"`
	Email     string `json:"email"`
}

type OrderPlacedDTO struct {
	OrderID string `json:"order_id"`
}

type OrderDTO struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Recipient domain.Recipient `json:"recipient"`
	Total     domain.Money     `json:"total"`
	Status    string           `json:"status"`
	Items     []OrderItemDTO   `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID string       `json:"product_id"`
	Quantity  int32        `json:"quantity"`
	Price     domain.Money `json:"price"`
}

// StartCheckout runs the login-transition cart migration and reports the
// resulting owner. Safe to call repeatedly.
func (s *Server) StartCheckout(w http.ResponseWriter, r *http.Request) {
	owner, err := s.shop.StartCheckout(r.Context(), sessionID(r), authName(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	cart, err := s.shop.ViewCart(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (s *Server) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}

	// the merge is idempotent, so running it again here guarantees the
	// draft is built against the authenticated owner's cart
	owner, err := s.shop.StartCheckout(r.Context(), sessionID(r), authName(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	draft, err := s.shop.SubmitCheckout(r.Context(), owner, domain.Recipient{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.sessions.SetDraft(r.Context(), sessionID(r), draft); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toDraftDTO(draft))
}

func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.sessions.Draft(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if draft == nil {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no checkout draft", Code: "no_draft"})
		return
	}

	s.writeJSON(w, http.StatusOK, toDraftDTO(*draft))
}

// SubmitPayment charges the draft's total. The draft survives a failed
// attempt so the user may retry; it is cleared only after the order lands.
func (s *Server) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}

	if authName(r) == "" {
		s.writeError(w, domain.ErrUnauthenticated)
		return
	}

	owner, err := s.shop.ResolveOwner(r.Context(), sessionID(r), authName(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	draft, err := s.sessions.Draft(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if draft == nil {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no checkout draft", Code: "no_draft"})
		return
	}

	orderID, err := s.shop.CapturePayment(r.Context(), owner, *draft, req.CardToken, req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.sessions.ClearDraft(r.Context(), sessionID(r)); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, OrderPlacedDTO{OrderID: orderID.String()})
}

func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	owner, err := s.shop.ResolveOwner(r.Context(), sessionID(r), authName(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	orders, err := s.shop.ListOrders(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order))
	}

	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_argument"})
		return
	}

	order, err := s.shop.GetOrder(r.Context(), orderID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func toDraftDTO(draft domain.OrderDraft) DraftDTO {
	return DraftDTO{
		OwnerID:   draft.OwnerID,
		Recipient: draft.Recipient,
		Total:     draft.Total,
		CreatedAt: draft.CreatedAt,
	}
}

func toOrderDTO(order domain.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return OrderDTO{
		ID:        order.ID.String(),
		OwnerID:   order.OwnerID,
		Recipient: order.Recipient,
		Total:     order.Total,
		Status:    string(order.Status),
		Items:     items,
		CreatedAt: order.CreatedAt,
	}
}
