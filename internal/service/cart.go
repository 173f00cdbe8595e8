package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

// CartService определяет интерфейс работы с корзиной.
type CartService interface {
	// GetCart возвращает позиции корзины и предварительную сумму
	// по текущим ценам каталога (не ценам на момент покупки).
	GetCart(ctx context.Context, userID int64) ([]*models.CartItem, decimal.Decimal, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	// Clear очищает корзину и возвращает число удалённых позиций.
	Clear(ctx context.Context, userID int64) (int64, error)
}

type cartService struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage) CartService {
	return &cartService{log: log, cartRepo: cartRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID int64) ([]*models.CartItem, decimal.Decimal, error) {
	const op = "service.CartService.GetCart"

	items, err := s.cartRepo.GetItemsByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart items", slog.String("op", op), slog.Any("error", err))
		return nil, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.cartRepo.GetTotal(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart total", slog.String("op", op), slog.Any("error", err))
		return nil, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	if items == nil {
		items = []*models.CartItem{}
	}
	return items, total, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity < 1 {
		return nil, fmt.Errorf("%s: quantity must be positive", op)
	}

	item, err := s.cartRepo.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		logger.Error("failed to add cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("cart item added", slog.Int("quantity", item.Quantity))
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	const op = "service.CartService.UpdateQuantity"

	if quantity < 1 {
		return nil, fmt.Errorf("%s: quantity must be positive", op)
	}

	item, err := s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	const op = "service.CartService.RemoveItem"

	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID int64) (int64, error) {
	const op = "service.CartService.Clear"

	removed, err := s.cartRepo.Clear(ctx, userID)
	if err != nil {
		s.log.Error("failed to clear cart", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("cart cleared", slog.String("op", op), slog.Int64("userID", userID), slog.Int64("removed", removed))
	return removed, nil
}
