package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/lib/api/response"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

// CreateOrderRequest представляет тело запроса POST /api/orders.
type CreateOrderRequest struct {
	UserID          int64  `json:"userId"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

// UpdateOrderStatusRequest представляет тело запроса PUT /api/orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderCreateHandler обрабатывает запрос POST /api/orders
func OrderCreateHandler(log *slog.Logger, svc service.OrderService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderCreateHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "shippingAddress is required")
			return
		}

		order, err := svc.CreateOrder(r.Context(), userIDOrDefault(req.UserID, defaultUserID), req.ShippingAddress)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrCartEmpty):
				resp.Fail(w, http.StatusBadRequest, "cart is empty")
			case errors.Is(err, service.ErrShippingAddressRequired):
				resp.Fail(w, http.StatusBadRequest, "shippingAddress is required")
			case errors.Is(err, storage.ErrInsufficientStock):
				resp.Fail(w, http.StatusConflict, "insufficient stock")
			default:
				logger.Error("failed to create order", slog.Any("error", err))
				resp.ServerError(w, err)
			}
			return
		}
		resp.Created(w, order)
	}
}

// OrderGetHandler обрабатывает запрос GET /api/orders/{id}
func OrderGetHandler(log *slog.Logger, svc service.OrderService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderGetHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid order id")
			return
		}

		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				resp.Fail(w, http.StatusNotFound, "order not found")
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		resp.OK(w, order)
	}
}

// OrderListByUserHandler обрабатывает запросы GET /api/orders/user и /api/orders/user/{userID}
func OrderListByUserHandler(log *slog.Logger, svc service.OrderService, resp *response.Responder, defaultUserID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderListByUserHandler"
		logger := log.With(slog.String("op", op))

		userID, err := userIDFromURL(r, defaultUserID)
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid user id")
			return
		}

		orders, err := svc.GetByUserID(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list user orders", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		resp.OK(w, orders)
	}
}

// OrderListHandler обрабатывает запрос GET /api/orders
func OrderListHandler(log *slog.Logger, svc service.OrderService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderListHandler"
		logger := log.With(slog.String("op", op))

		orders, err := svc.GetAll(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			resp.ServerError(w, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		resp.OK(w, orders)
	}
}

// OrderUpdateStatusHandler обрабатывает запрос PUT /api/orders/{id}/status
func OrderUpdateStatusHandler(log *slog.Logger, svc service.OrderService, resp *response.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderUpdateStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r, "id")
		if err != nil {
			resp.Fail(w, http.StatusBadRequest, "invalid order id")
			return
		}

		var req UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			resp.Fail(w, http.StatusBadRequest, "status is required")
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				resp.Fail(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrStatusRequired):
				resp.Fail(w, http.StatusBadRequest, "status is required")
			default:
				logger.Error("failed to update order status", slog.Any("error", err))
				resp.ServerError(w, err)
			}
			return
		}
		resp.OK(w, order)
	}
}
