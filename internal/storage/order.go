package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecom-shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет строку заказа в рамках транзакции оформления.
	CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal, shippingAddress string) (*models.Order, error)
	// CreateOrderItem вставляет позицию заказа с зафиксированной ценой покупки
	// и возвращает созданную строку.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int, price decimal.Decimal) (*models.OrderItem, error)
	// GetByID возвращает заказ с позициями (JOIN на products для имени и картинки)
	// или ErrOrderNotFound.
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// GetByUserID возвращает заказы пользователя, новые первыми.
	GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetAll возвращает все заказы, новые первыми.
	GetAll(ctx context.Context) ([]*models.Order, error)
	// UpdateStatus перезаписывает статус без проверки переходов.
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, user_id, total, status, shipping_address, created_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.ShippingAddress, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal, shippingAddress string) (*models.Order, error) {
	query := `INSERT INTO orders (user_id, total, status, shipping_address)
	          VALUES ($1, $2, $3, $4)
	          RETURNING ` + orderColumns
	o, err := scanOrder(tx.QueryRowContext(ctx, query, userID, total, models.OrderStatusPending, shippingAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return o, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int, price decimal.Decimal) (*models.OrderItem, error) {
	query := `INSERT INTO order_items (order_id, product_id, quantity, price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, order_id, product_id, quantity, price, created_at`
	item := &models.OrderItem{}
	err := tx.QueryRowContext(ctx, query, orderID, productID, quantity, price).
		Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}
	return item, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at,
		       p.name, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt,
			&item.Name, &item.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = $1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	query := "UPDATE orders SET status = $1 WHERE id = $2 RETURNING " + orderColumns
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return o, nil
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
