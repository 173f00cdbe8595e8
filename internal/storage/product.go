package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ecom-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock возвращается из DecrementStockTx, когда на складе
	// меньше товара, чем запрошено. Обычный AdjustStock ограничение не проверяет.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStorage описывает методы для работы с каталогом товаров.
type ProductStorage interface {
	// GetAll возвращает все товары, новые первыми.
	GetAll(ctx context.Context) ([]*models.Product, error)
	// GetByID возвращает товар по id или ErrProductNotFound.
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetByCategory возвращает товары указанной категории, новые первыми.
	GetByCategory(ctx context.Context, category string) ([]*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	// AdjustStock прибавляет delta (может быть отрицательной) к остатку.
	// Нижняя граница не проверяется: остаток может уйти в минус.
	AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error)
	// DecrementStockTx уменьшает остаток в рамках транзакции заказа.
	// Списание условное: при нехватке товара возвращает ErrInsufficientStock.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
}

// productRepository — конкретная реализация ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, image_url, stock, category, created_at"

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.Category, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE category = $1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (name, description, price, image_url, stock, category)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + productColumns
	created, err := scanProduct(r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.Category))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, image_url = $4, stock = $5, category = $6
	          WHERE id = $7
	          RETURNING ` + productColumns
	updated, err := scanProduct(r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.Category, p.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error) {
	query := "UPDATE products SET stock = stock + $1 WHERE id = $2 RETURNING " + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, delta, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return p, nil
}

// DecrementStockTx выполняется внутри транзакции создания заказа, поэтому
// принимает tx явно. Списание и проверка остатка — один атомарный UPDATE,
// отдельного SELECT с блокировкой не требуется.
func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := "UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1"
	res, err := tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// товар существует (на него ссылается позиция заказа), значит не хватило остатка
		return ErrInsufficientStock
	}
	return nil
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
