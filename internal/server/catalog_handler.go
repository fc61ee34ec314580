package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       domain.Money `json:"price"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.shop.BrowseCategories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{ID: c.ID.String(), Name: c.Name})
	}

	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := s.shop.BrowseProducts(r.Context(), category)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}

	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	product, err := s.shop.ViewProduct(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toProductDTO(product))
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
}
