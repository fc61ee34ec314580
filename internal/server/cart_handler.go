package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type CartItemDTO struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int32        `json:"quantity"`
	Price       domain.Money `json:"price"`
	CreatedAt   time.Time    `json:"created_at"`
}

type CartDTO struct {
	OwnerID string        `json:"owner_id"`
	Items   []CartItemDTO `json:"items"`
	Total   domain.Money  `json:"total"`
}

func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product id", Code: "invalid_argument"})
		return
	}

	owner, err := s.shop.ResolveOwner(r.Context(), sessionID(r), authName(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.shop.AddToCart(r.Context(), owner, productID, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toCartItemDTO(item))
}

func (s *Server) ViewCart(w http.ResponseWriter, r *http.Request) {
	owner, err := s.shop.ResolveOwner(r.Context(), sessionID(r), authName(r))
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

// RemoveFromCart responds 204 whether or not the line still existed, so a
// double-submitted delete stays harmless.
func (s *Server) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid line id", Code: "invalid_argument"})
		return
	}

	if _, err := s.shop.RemoveFromCart(r.Context(), lineID); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCartItemDTO(item domain.CartItem) CartItemDTO {
	return CartItemDTO{
		ID:          item.ID.String(),
		ProductID:   item.ProductID.String(),
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		Price:       item.Price,
		CreatedAt:   item.CreatedAt,
	}
}

func toCartDTO(cart domain.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, toCartItemDTO(item))
	}

	return CartDTO{
		OwnerID: cart.OwnerID,
		Items:   items,
		Total:   cart.Total(),
	}
}
