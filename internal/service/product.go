package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

// ProductService определяет интерфейс работы с каталогом товаров.
type ProductService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	// AdjustStock прибавляет delta к остатку без проверки нижней границы.
	AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error)
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{log: log, productRepo: productRepo}
}

func (s *productService) List(ctx context.Context) ([]*models.Product, error) {
	const op = "service.ProductService.List"

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.Get"

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to get product", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) ListByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	const op = "service.ProductService.ListByCategory"

	products, err := s.productRepo.GetByCategory(ctx, category)
	if err != nil {
		s.log.Error("failed to list products by category", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	const op = "service.ProductService.Create"

	created, err := s.productRepo.Create(ctx, p)
	if err != nil {
		s.log.Error("failed to create product", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product created", slog.String("op", op), slog.Int64("productID", created.ID))
	return created, nil
}

func (s *productService) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	const op = "service.ProductService.Update"

	updated, err := s.productRepo.Update(ctx, p)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to update product", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	const op = "service.ProductService.Delete"

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to delete product", slog.String("op", op), slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product deleted", slog.String("op", op), slog.Int64("productID", id))
	return nil
}

func (s *productService) AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error) {
	const op = "service.ProductService.AdjustStock"

	product, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			s.log.Error("failed to adjust stock", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("stock adjusted", slog.String("op", op), slog.Int64("productID", id), slog.Int("delta", delta), slog.Int("stock", product.Stock))
	return product, nil
}
