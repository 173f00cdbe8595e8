package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/lib/api/response"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

// AddCartItemRequest представляет тело запроса POST /api/cart/add.
// userId необязателен: без него запрос относится к гостевому пользователю.
type AddCartItemRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateCartItemRequest представляет тело запроса PUT /api/cart/update.
type UpdateCartItemRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// CartResponse — содержимое корзины с предварительной суммой по текущим ценам.
type CartResponse struct {
	Items []*models.CartItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// ClearCartResponse сообщает, сколько позиций удалено. Ноль — не ошибка.
type ClearCartResponse struct {
	Removed int64 `json:"removed"`
}

// userIDOrDefault возвращает userID из запроса либо идентификатор
// гостевого пользователя. Подстановка гостя — политика API-слоя,
// сервисы всегда получают явный userID.
func userIDOrDefault(userID, defaultUserID int64) int64 {
	if userID > 0 {
		return userID
	}
	return defaultUserID
}

func userIDFromURL(r *http.Request, defaultUserID int64) (int64, error) {
	raw := chi.URLParam(r, "userID")
	if raw == "" {
		return defaultUserID, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// CartGetHandler обрабатывает запросы GET /api/cart и GET /api/cart/{userID}
func CartGetHandler(log *slog.Logger, svc service.CartService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartGetHandler"
		logger := log.With(slog.String("op", op))

		userID, err := userIDFromURL(r, defaultUserID)
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid user id")
			return
		}

		items, total, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, CartResponse{Items: items, Total: total})
	}
}

// CartAddHandler обрабатывает запрос POST /api/cart/add
func CartAddHandler(log *slog.Logger, svc service.CartService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartAddHandler"
		logger := log.With(slog.String("op", op))

		var req AddCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "productId is required")
			return
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		item, err := svc.AddItem(r.Context(), userIDOrDefault(req.UserID, defaultUserID), req.ProductID, quantity)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				resp.Fail(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to add cart item", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.Created(w, item)
	}
}

// CartUpdateHandler обрабатывает запрос PUT /api/cart/update
func CartUpdateHandler(log *slog.Logger, svc service.CartService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartUpdateHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "productId and quantity are required")
			return
		}

		item, err := svc.UpdateQuantity(r.Context(), userIDOrDefault(req.UserID, defaultUserID), req.ProductID, req.Quantity)
		if err != nil {
			if errors.Is(err, storage.ErrCartItemNotFound) {
				resp.Fail(w, http.StatusNotFound, "cart item not found")
				return
			}
			logger.Error("failed to update cart item", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, item)
	}
}

// CartRemoveHandler обрабатывает запрос DELETE /api/cart/remove/{productID}.
// Тело с userId необязательно.
func CartRemoveHandler(log *slog.Logger, svc service.CartService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartRemoveHandler"
		logger := log.With(slog.String("op", op))

		productID, err := parseID(r, "productID")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid product id")
			return
		}

		var req struct {
			UserID int64 `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.RemoveItem(r.Context(), userIDOrDefault(req.UserID, defaultUserID), productID); err != nil {
			if errors.Is(err, storage.ErrCartItemNotFound) {
				resp.Fail(w, http.StatusNotFound, "cart item not found")
				return
			}
			logger.Error("failed to remove cart item", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.Message(w, "item removed from cart")
	}
}

// CartClearHandler обрабатывает запросы DELETE /api/cart/clear и /api/cart/clear/{userID}
func CartClearHandler(log *slog.Logger, svc service.CartService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartClearHandler"
		logger := log.With(slog.String("op", op))

		userID, err := userIDFromURL(r, defaultUserID)
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid user id")
			return
		}

		removed, err := svc.Clear(r.Context(), userID)
		if err != nil {
			logger.Error("failed to clear cart", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, ClearCartResponse{Removed: removed})
	}
}
