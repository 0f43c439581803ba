package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
)

// ProductStore defines the catalog methods needed by product handlers.
// Satisfied by *menu.Catalog; narrow interface for testability.
type ProductStore interface {
	List(includeDisabled bool) []menu.Item
	Get(id string) (menu.Item, error)
	Upsert(item menu.Item)
	Disable(id string) error
	DrinkOptions() []string
	SetDrinkOptions(drinks []string)
}

// ProductHandler handles menu admin endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product CRUD endpoints on the given Chi
// router. Expected to be mounted at /products (admin-gated).
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	ID           string             `json:"id"`
	Name         menu.LocalizedName `json:"name"`
	Category     string             `json:"category"`
	Price        string             `json:"price"`
	AllowExtras  bool               `json:"allow_extras"`
	DrinkOptions []string           `json:"drink_options"`
	Enabled      *bool              `json:"enabled"`
}

type productResponse struct {
	ID           string             `json:"id"`
	Name         menu.LocalizedName `json:"name"`
	Category     string             `json:"category"`
	Price        string             `json:"price"`
	AllowExtras  bool               `json:"allow_extras"`
	DrinkOptions []string           `json:"drink_options,omitempty"`
	Enabled      bool               `json:"enabled"`
}

type drinkOptionsRequest struct {
	Drinks []string `json:"drinks"`
}

func toProductResponse(item menu.Item) productResponse {
	return productResponse{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Price:        money(item.Price),
		AllowExtras:  item.AllowExtras,
		DrinkOptions: item.DrinkOptions,
		Enabled:      item.Enabled,
	}
}

// --- Helpers ---

func isValidCategory(category string) bool {
	switch category {
	case enum.CategoryStarters, enum.CategoryMainDishes,
		enum.CategoryDesserts, enum.CategoryDrinks, enum.CategoryMenuOfDay:
		return true
	}
	return false
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegativePrice
	}
	return d, nil
}

func (h *ProductHandler) itemFromRequest(w http.ResponseWriter, r *http.Request, id string) (menu.Item, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return menu.Item{}, false
	}

	if id == "" {
		id = req.ID
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return menu.Item{}, false
	}
	if req.Name.ES == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name.es is required"})
		return menu.Item{}, false
	}
	if !isValidCategory(req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return menu.Item{}, false
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return menu.Item{}, false
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return menu.Item{}, false
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	return menu.Item{
		ID:           id,
		Name:         req.Name,
		Category:     req.Category,
		Price:        price,
		AllowExtras:  req.AllowExtras,
		DrinkOptions: req.DrinkOptions,
		Enabled:      enabled,
	}, true
}

// --- Handlers ---

// List returns the catalog. ?all=true includes disabled items (admin view).
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDisabled := r.URL.Query().Get("all") == "true"
	items := h.store.List(includeDisabled)
	resp := make([]productResponse, len(items))
	for i, item := range items {
		resp[i] = toProductResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(item))
}

// Create adds a new menu item.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFromRequest(w, r, "")
	if !ok {
		return
	}
	if _, err := h.store.Get(item.ID); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item already exists"})
		return
	}
	h.store.Upsert(item)
	writeJSON(w, http.StatusCreated, toProductResponse(item))
}

// Update replaces an existing menu item.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	item, ok := h.itemFromRequest(w, r, id)
	if !ok {
		return
	}
	item.ID = id
	h.store.Upsert(item)
	writeJSON(w, http.StatusOK, toProductResponse(item))
}

// Delete disables a menu item so historical records keep resolving.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Disable(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDrinkOptions handles GET /drink-options.
func (h *ProductHandler) GetDrinkOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"drinks": h.store.DrinkOptions()})
}

// SetDrinkOptions handles PUT /drink-options.
func (h *ProductHandler) SetDrinkOptions(w http.ResponseWriter, r *http.Request) {
	var req drinkOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.store.SetDrinkOptions(req.Drinks)
	writeJSON(w, http.StatusOK, map[string][]string{"drinks": h.store.DrinkOptions()})
}
