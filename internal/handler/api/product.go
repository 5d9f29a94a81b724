package api

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/router"
)

// ProductHandler serves catalog lookups for storefront frontends.
type ProductHandler struct {
	catalog domain.CatalogReader
}

// NewProductHandler creates a new product handler.
func NewProductHandler(catalog domain.CatalogReader) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RegisterRoutes registers product routes on the given router group.
func (h *ProductHandler) RegisterRoutes(r *router.Router) {
	r.Get("/api/v1/products/{sku}", h.Get)
}

type productResponse struct {
	ID               string                   `json:"id"`
	SKU              string                   `json:"sku"`
	Name             string                   `json:"name"`
	Slug             string                   `json:"slug"`
	Status           string                   `json:"status"`
	Virtual          bool                     `json:"virtual"`
	RequiresShipping bool                     `json:"requires_shipping"`
	PriceCents       *int64                   `json:"price_cents,omitempty"`
	AttributeValues  []attributeValueResponse `json:"attribute_values"`
}

type attributeValueResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Value          string `json:"value"`
	SurchargeCents int64  `json:"surcharge_cents"`
}

// Get handles GET /api/v1/products/{sku}. Products of other stores read as
// not found.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sku := r.PathValue("sku")
	product, err := h.catalog.FindProductBySKU(r.Context(), sku)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if product.StoreID != store.ID {
		respondError(w, r, domain.ErrProductNotFound)
		return
	}

	resp := productResponse{
		ID:               domain.UUIDString(product.ID),
		SKU:              product.SKU,
		Name:             product.Name,
		Slug:             product.Slug,
		Status:           string(product.Status),
		Virtual:          product.Virtual,
		RequiresShipping: product.RequiresShipping,
		AttributeValues:  make([]attributeValueResponse, 0, len(product.AttributeValues)),
	}
	if product.Price != nil && product.Price.Active {
		resp.PriceCents = &product.Price.AmountCents
	}
	for _, av := range product.AttributeValues {
		resp.AttributeValues = append(resp.AttributeValues, attributeValueResponse{
			ID:             domain.UUIDString(av.ID),
			Name:           av.Name,
			Value:          av.Value,
			SurchargeCents: av.SurchargeCents,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}
