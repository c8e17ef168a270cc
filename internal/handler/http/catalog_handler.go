package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lynixdevs/urbanthreads/internal/catalog"
)

type CatalogHandler struct {
	service  *catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service, validate: validator.New()}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/featured", h.handleFeaturedProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/categories", h.handleListCategories)
}

func (h *CatalogHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Post("/catalog/refresh", h.handleRefresh)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		SaleOnly: q.Get("sale") == "true",
	}

	if raw := q.Get("min_price"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid min_price parameter")
			return
		}
		f.MinPrice = &min
	}
	if raw := q.Get("max_price"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid max_price parameter")
			return
		}
		f.MaxPrice = &max
	}

	products := h.service.Search(f, catalog.SortKey(q.Get("sort")))
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.FeaturedProducts())
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("failed to get product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Categories())
}

type productRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" validate:"required"`
	SalePrice   *string  `json:"sale_price,omitempty"`
	Category    string   `json:"category" validate:"required"`
	ImageURL    string   `json:"image_url"`
	Sizes       []string `json:"sizes,omitempty"`
	Featured    bool     `json:"featured"`
	InStock     bool     `json:"in_stock"`
}

func (req productRequest) toProduct() (catalog.Product, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return catalog.Product{}, errors.New("invalid price")
	}

	p := catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Sizes:       req.Sizes,
		Featured:    req.Featured,
		InStock:     req.InStock,
	}

	if req.SalePrice != nil {
		sale, err := decimal.NewFromString(*req.SalePrice)
		if err != nil {
			return catalog.Product{}, errors.New("invalid sale_price")
		}
		p.SalePrice = &sale
		p.Sale = true
	}

	return p, nil
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	p, err := req.toProduct()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CreateProduct(r.Context(), &p); err != nil {
		log.Error().Err(err).Msg("failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	p, err := req.toProduct()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id

	if err := h.service.UpdateProduct(r.Context(), &p); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("failed to update product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to refresh catalog")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
