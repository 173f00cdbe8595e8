package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

var (
	// ErrCartEmpty возвращается при попытке оформить заказ из пустой корзины.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrShippingAddressRequired возвращается, если адрес доставки пуст.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// ErrStatusRequired возвращается при попытке записать пустой статус.
	ErrStatusRequired = errors.New("status is required")
)

// OrderService определяет интерфейс оформления и чтения заказов.
type OrderService interface {
	// CreateOrder превращает текущую корзину пользователя в заказ:
	// строка заказа, позиции с зафиксированной ценой, списание остатков
	// и очистка корзины выполняются одной транзакцией.
	CreateOrder(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	GetAll(ctx context.Context) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, cartRepo storage.CartStorage, productRepo storage.ProductStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CreateOrder оформляет заказ из корзины пользователя.
// Сумма считается по снимку корзины (цены каталога на момент оформления),
// цена каждой позиции фиксируется в order_items и дальше не меняется.
// Если что-то идет не так, транзакция откатывается целиком: ни заказа,
// ни позиций, ни списания остатков, корзина остаётся нетронутой.
func (s *orderService) CreateOrder(ctx context.Context, userID int64, shippingAddress string) (*models.Order, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if strings.TrimSpace(shippingAddress) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrShippingAddressRequired)
	}

	// Снимок корзины: цены и количества, по которым будет посчитан заказ
	items, err := s.cartRepo.GetItemsByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrCartEmpty)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	logger.Info("starting order transaction", slog.Int("items", len(items)), slog.String("total", total.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.CreateOrder(ctx, tx, userID, total, shippingAddress)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	orderItems := make([]*models.OrderItem, 0, len(items))
	for _, item := range items {
		// цена на момент покупки, не живая ссылка на каталог
		created, err := s.orderRepo.CreateOrderItem(ctx, tx, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Int64("productID", item.ProductID), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
		created.Name = item.Name
		created.ImageURL = item.ImageURL
		orderItems = append(orderItems, created)

		if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("insufficient stock", slog.Int64("productID", item.ProductID), slog.Int("quantity", item.Quantity))
			} else {
				logger.Error("failed to decrement stock", slog.Int64("productID", item.ProductID), slog.Any("error", err))
			}
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	// Корзина очищается в той же транзакции: сбой между коммитом заказа и
	// очисткой не оставит оплаченную корзину для повторного оформления
	if _, err := s.cartRepo.ClearTx(ctx, tx, userID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	order.Items = orderItems

	logger.Info("order created", slog.Int64("orderID", order.ID))
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetByID"

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			s.log.Error("failed to get order", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.GetByUserID"

	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get user orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.GetAll"

	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateStatus перезаписывает статус заказа. Допустимые переходы не
// проверяются, принимается любая непустая строка.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"

	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrStatusRequired)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			s.log.Error("failed to update order status", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("order status updated", slog.String("op", op), slog.Int64("orderID", id), slog.String("status", status))
	return order, nil
}
