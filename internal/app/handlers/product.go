package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/lib/api/response"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

var validate = validator.New()

// ProductRequest представляет тело запроса создания/обновления товара.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category"`
}

// AdjustStockRequest представляет тело запроса корректировки остатка.
// Знак delta на совести вызывающего, остаток может уйти в минус.
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ProductListHandler обрабатывает запрос GET /api/products
func ProductListHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductListHandler"
		logger := log.With(slog.String("op", op))

		products, err := svc.List(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		resp.OK(w, products)
	}
}

// ProductGetHandler обрабатывает запрос GET /api/products/{id}
func ProductGetHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductGetHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid product id")
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				resp.Fail(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, product)
	}
}

// ProductsByCategoryHandler обрабатывает запрос GET /api/products/category/{category}
func ProductsByCategoryHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsByCategoryHandler"
		logger := log.With(slog.String("op", op))

		category := chi.URLParam(r, "category")
		if category == "" {
			resp.Fail(w, http.StatusBadRequest, "category is required")
			return
		}

		products, err := svc.ListByCategory(r.Context(), category)
		if err != nil {
			logger.Error("failed to list products by category", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		resp.OK(w, products)
	}
}

// ProductCreateHandler обрабатывает запрос POST /api/products
func ProductCreateHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductCreateHandler"
		logger := log.With(slog.String("op", op))

		req, ok := decodeProductRequest(w, r, logger, resp)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), &models.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Stock:       req.Stock,
			Category:    req.Category,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.Created(w, created)
	}
}

// ProductUpdateHandler обрабатывает запрос PUT /api/products/{id}
func ProductUpdateHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductUpdateHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid product id")
			return
		}

		req, ok := decodeProductRequest(w, r, logger, resp)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), &models.Product{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Stock:       req.Stock,
			Category:    req.Category,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				resp.Fail(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, updated)
	}
}

// ProductDeleteHandler обрабатывает запрос DELETE /api/products/{id}
func ProductDeleteHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductDeleteHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				resp.Fail(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to delete product", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.Message(w, "product deleted")
	}
}

// ProductAdjustStockHandler обрабатывает запрос PATCH /api/products/{id}/stock
func ProductAdjustStockHandler(log *slog.Logger, svc service.ProductService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductAdjustStockHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid product id")
			return
		}

		var req AdjustStockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Delta == 0 {
			resp.Fail(w, http.StatusBadRequest, "delta is required")
			return
		}

		product, err := svc.AdjustStock(r.Context(), id, req.Delta)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				resp.Fail(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to adjust stock", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, product)
	}
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, resp *response.Responder) (*ProductRequest, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		resp.Fail(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		resp.Fail(w, http.StatusBadRequest, "validation error")
		return nil, false
	}
	if req.Price.IsNegative() {
		resp.Fail(w, http.StatusBadRequest, "price must not be negative")
		return nil, false
	}
	return &req, true
}
