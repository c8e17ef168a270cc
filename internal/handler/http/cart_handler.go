package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/cart"
	"github.com/lynixdevs/urbanthreads/internal/catalog"
)

const cartCookieName = "cart_id"

type CartHandler struct {
	carts   *cart.Service
	catalog *catalog.Service
}

func NewCartHandler(carts *cart.Service, cat *catalog.Service) *CartHandler {
	return &CartHandler{carts: carts, catalog: cat}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Patch("/cart/items", h.handleUpdateQuantity)
	router.Delete("/cart/items", h.handleRemoveItem)
	router.Delete("/cart", h.handleClearCart)
}

// cartID keys the stored cart: the user id when signed in, a cookie-bound
// id otherwise. The cookie is minted on first use.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (string, error) {
	if p := profileFromContext(r.Context()); p != nil {
		return p.ID.String(), nil
	}

	if cookie, err := r.Cookie(cartCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id.String(), nil
}

type cartResponse struct {
	Items      []cart.Item `json:"items"`
	Total      string      `json:"total"`
	TotalCents int64       `json:"total_cents"`
	ItemCount  int         `json:"item_count"`
}

func newCartResponse(c cart.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{
		Items:      items,
		Total:      c.Total().StringFixed(2),
		TotalCents: c.TotalCents(),
		ItemCount:  c.ItemCount(),
	}
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := h.cartID(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve cart")
		return
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load cart")
		respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product_id")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("failed to load product for cart add")
		respondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve cart")
		return
	}

	c, err := h.carts.Add(r.Context(), cartID, *product, req.Quantity, req.Size)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			respondWithError(w, http.StatusBadRequest, "Quantity must be a positive integer")
			return
		}
		log.Error().Err(err).Msg("failed to add cart item")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to add to cart")
		return
	}

	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

type updateQuantityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product_id")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve cart")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), cartID, productID, req.Quantity, req.Size)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		log.Error().Err(err).Msg("failed to update cart quantity")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update cart")
		return
	}

	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

type removeItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product_id")
		return
	}

	cartID, err := h.cartID(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve cart")
		return
	}

	c, err := h.carts.Remove(r.Context(), cartID, productID, req.Size)
	if err != nil {
		log.Error().Err(err).Msg("failed to remove cart item")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to remove from cart")
		return
	}

	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := h.cartID(w, r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve cart")
		return
	}

	if err := h.carts.Clear(r.Context(), cartID); err != nil {
		log.Error().Err(err).Msg("failed to clear cart")
		respondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respondWithJSON(w, http.StatusOK, newCartResponse(cart.Cart{}))
}
