package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с корзиной пользователя.
type CartStorage interface {
	// GetItemsByUserID возвращает позиции корзины с JOIN на products:
	// имя, текущая цена, остаток и картинка берутся живыми из каталога.
	GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error)
	// AddItem добавляет товар в корзину. Если позиция уже есть, количество
	// прибавляется к существующему (upsert), новая строка не создаётся.
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	// UpdateQuantity заменяет количество существующей позиции.
	// Если позиции нет — ErrCartItemNotFound, новая не создаётся.
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	// Clear удаляет все позиции пользователя и возвращает число удалённых.
	// Пустая корзина — не ошибка, вернётся 0.
	Clear(ctx context.Context, userID int64) (int64, error)
	// ClearTx — то же самое в рамках транзакции создания заказа.
	ClearTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	// GetTotal считает сумму price*quantity по текущим ценам каталога.
	// Для пустой корзины возвращает 0.
	GetTotal(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// cartRepository — конкретная реализация CartStorage.
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзины.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		       p.name, p.price, p.image_url, p.stock
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&item.Name, &item.Price, &item.ImageURL, &item.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	// атомарный upsert: параллельные AddItem на одну пару (user, product)
	// не гонятся между чтением и записью
	query := `INSERT INTO cart_items (user_id, product_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	          RETURNING id, user_id, product_id, quantity, created_at`
	item := &models.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, productID, quantity).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	query := `UPDATE cart_items
	          SET quantity = $3
	          WHERE user_id = $1 AND product_id = $2
	          RETURNING id, user_id, product_id, quantity, created_at`
	item := &models.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, productID, quantity).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.RowsAffected()
}

func (r *cartRepository) ClearTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.RowsAffected()
}

func (r *cartRepository) GetTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(p.price * ci.quantity), 0)
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = $1`
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get cart total: %w", err)
	}
	return total, nil
}
