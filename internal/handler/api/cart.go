package api

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/router"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartHandler handles all cart routes.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes registers cart routes on the given router group. The group
// must already carry store resolution middleware.
func (h *CartHandler) RegisterRoutes(r *router.Router) {
	r.Post("/api/v1/carts", h.GetOrCreate)
	r.Get("/api/v1/carts/{code}", h.Get)
	r.Post("/api/v1/carts/{code}/items", h.AddItem)
	r.Patch("/api/v1/carts/{code}/items/{id}", h.UpdateItemQuantity)
	r.Delete("/api/v1/carts/{code}/items/{id}", h.RemoveItem)
	r.Post("/api/v1/carts/{code}/merge", h.Merge)
}

// cartResponse is the JSON view of a cart.
type cartResponse struct {
	ID            string             `json:"id"`
	Code          string             `json:"code"`
	StoreID       string             `json:"store_id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	Items         []cartItemResponse `json:"items"`
	SubtotalCents int64              `json:"subtotal_cents"`
}

type cartItemResponse struct {
	ID             string   `json:"id"`
	SKU            string   `json:"sku"`
	Quantity       int32    `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	SubtotalCents  int64    `json:"subtotal_cents"`
	Obsolete       bool     `json:"obsolete"`
	Virtual        bool     `json:"virtual"`
	Selections     []string `json:"attribute_value_ids,omitempty"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	resp := cartResponse{
		ID:            domain.UUIDString(cart.ID),
		Code:          cart.Code,
		StoreID:       domain.UUIDString(cart.StoreID),
		CustomerID:    domain.UUIDString(cart.CustomerID),
		Items:         make([]cartItemResponse, 0, len(cart.Items)),
		SubtotalCents: cart.SubtotalCents(),
	}
	for _, item := range cart.Items {
		ir := cartItemResponse{
			ID:             domain.UUIDString(item.ID),
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			SubtotalCents:  item.SubtotalCents,
			Obsolete:       item.Obsolete,
			Virtual:        item.Virtual,
		}
		for _, sel := range item.Selections {
			ir.Selections = append(ir.Selections, domain.UUIDString(sel.AttributeValueID))
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

// GetOrCreate handles POST /api/v1/carts. The optional cart_code revives an
// existing session cart; a blank or stale code yields a fresh empty cart.
func (h *CartHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		CartCode string `json:"cart_code" validate:"omitempty,max=64"`
	}
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			respondError(w, r, err)
			return
		}
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), store.ID, req.CartCode)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(cart))
}

// Get handles GET /api/v1/carts/{code}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cart, err := h.carts.GetCartByCode(r.Context(), store.ID, r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(cart))
}

// AddItem handles POST /api/v1/carts/{code}/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		SKU               string   `json:"sku" validate:"required,max=64"`
		Quantity          int32    `json:"quantity" validate:"required,gt=0"`
		AttributeValueIDs []string `json:"attribute_value_ids" validate:"omitempty,dive,uuid"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cart, err := h.carts.GetCartByCode(r.Context(), store.ID, r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	valueIDs, err := parseUUIDs(req.AttributeValueIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.carts.AddItem(r.Context(), store.ID, cart.ID, service.AddItemParams{
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		AttributeValueIDs: valueIDs,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(updated))
}

// UpdateItemQuantity handles PATCH /api/v1/carts/{code}/items/{id}.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Quantity int32 `json:"quantity" validate:"required,gt=0"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cart, itemID, err := h.cartAndItem(r, store.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.carts.UpdateItemQuantity(r.Context(), store.ID, cart.ID, itemID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(updated))
}

// RemoveItem handles DELETE /api/v1/carts/{code}/items/{id}. Removing the
// last item purges the whole cart, which surfaces as a 404.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cart, itemID, err := h.cartAndItem(r, store.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.carts.RemoveItem(r.Context(), store.ID, cart.ID, itemID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(updated))
}

// Merge handles POST /api/v1/carts/{code}/merge, folding the session cart
// into the authenticated customer's cart at login.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		CustomerID string `json:"customer_id" validate:"required,uuid"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	customerID, err := parseUUID(req.CustomerID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	merged, err := h.carts.MergeAtLogin(r.Context(), store.ID, customerID, r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(merged))
}

// cartAndItem resolves the cart by path code and parses the item id segment.
func (h *CartHandler) cartAndItem(r *http.Request, storeID pgtype.UUID) (*domain.Cart, pgtype.UUID, error) {
	cart, err := h.carts.GetCartByCode(r.Context(), storeID, r.PathValue("code"))
	if err != nil {
		return nil, pgtype.UUID{}, err
	}
	itemID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		return nil, pgtype.UUID{}, err
	}
	return cart, itemID, nil
}

func parseUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return pgtype.UUID{}, domain.Invalid("", "Invalid UUID: "+s)
	}
	return id, nil
}

func parseUUIDs(values []string) ([]pgtype.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]pgtype.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseUUID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
