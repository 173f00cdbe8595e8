package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

const productColumnsList = "id, name, description, price, image_url, stock, category, created_at"

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price", "image_url", "stock", "category", "created_at"})
}

func TestProductGetByID_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Создаем репозиторий.
	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	productID := int64(1)

	// Подготавливаем ожидаемые строки результата.
	now := time.Now()
	rows := productRows().
		AddRow(productID, "iPhone 13", "128GB", "999.99", "/images/iphone.jpg", 10, "Electronics", now)

	query := regexp.QuoteMeta("SELECT " + productColumnsList + " FROM products WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(productID).WillReturnRows(rows)

	// Вызываем тестируемую функцию.
	product, err := repo.GetByID(ctx, productID)
	assert.NoError(t, err, "Expected no error when product is found")
	assert.Equal(t, productID, product.ID)
	assert.Equal(t, "iPhone 13", product.Name)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("999.99")))
	assert.Equal(t, 10, product.Stock)

	// Проверяем, что все ожидания sqlmock выполнены.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	productID := int64(99)

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	query := regexp.QuoteMeta("SELECT " + productColumnsList + " FROM products WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(productID).WillReturnRows(productRows())

	product, err := repo.GetByID(ctx, productID)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))
	assert.Nil(t, product, "Product should be nil when not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGetAll_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	// Эмулируем ошибку выполнения запроса.
	query := regexp.QuoteMeta("SELECT " + productColumnsList + " FROM products ORDER BY created_at DESC")
	mock.ExpectQuery(query).WillReturnError(errors.New("db error"))

	products, err := repo.GetAll(ctx)
	assert.Error(t, err)
	assert.Nil(t, products)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	price := decimal.RequireFromString("49.99")
	now := time.Now()
	rows := productRows().
		AddRow(1, "Logitech Mouse", "Wireless", "49.99", "/images/mouse.jpg", 50, "Accessories", now)

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Logitech Mouse", "Wireless", price, "/images/mouse.jpg", 50, "Accessories").
		WillReturnRows(rows)

	created, err := repo.Create(ctx, &models.Product{
		Name:        "Logitech Mouse",
		Description: "Wireless",
		Price:       price,
		ImageURL:    "/images/mouse.jpg",
		Stock:       50,
		Category:    "Accessories",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Logitech Mouse", created.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductAdjustStock_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	now := time.Now()
	rows := productRows().
		AddRow(1, "SSD 1TB Samsung", "", "149.99", "", 7, "Components", now)

	query := regexp.QuoteMeta("UPDATE products SET stock = stock + $1 WHERE id = $2 RETURNING " + productColumnsList)
	mock.ExpectQuery(query).WithArgs(-3, int64(1)).WillReturnRows(rows)

	product, err := repo.AdjustStock(ctx, 1, -3)
	assert.NoError(t, err)
	assert.Equal(t, 7, product.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	// Ожидаем вызов Begin перед тем, как вызвать db.Begin().
	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DecrementStockTx(ctx, tx, 1, 2)
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// 0 затронутых строк — условие stock >= quantity не выполнилось.
	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(100, int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DecrementStockTx(ctx, tx, 1, 100)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInsufficientStock))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func cartItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at"})
}

func TestCartAddItem_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	// Позиция уже была с количеством 3, добавляем 2 — upsert возвращает 5.
	now := time.Now()
	rows := cartItemRows().AddRow(1, int64(1), int64(2), 5, now)

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs(int64(1), int64(2), 2).
		WillReturnRows(rows)

	item, err := repo.AddItem(ctx, 1, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartUpdateQuantity_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("UPDATE cart_items").
		WithArgs(int64(1), int64(99), 3).
		WillReturnRows(cartItemRows())

	item, err := repo.UpdateQuantity(ctx, 1, 99, 3)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))
	assert.Nil(t, item)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetItemsByUserID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	userID := int64(1)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at", "name", "price", "image_url", "stock"}).
		AddRow(1, userID, 2, 2, now, "iPhone 13", "999.99", "/images/iphone.jpg", 10).
		AddRow(2, userID, 4, 1, now, "Logitech Mouse", "49.99", "/images/mouse.jpg", 50)

	mock.ExpectQuery("SELECT ci\\.id, ci\\.user_id, ci\\.product_id").
		WithArgs(userID).WillReturnRows(rows)

	items, err := repo.GetItemsByUserID(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "iPhone 13", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("999.99")))
	assert.Equal(t, 1, items[1].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRemoveItem_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2")
	mock.ExpectExec(query).WithArgs(int64(1), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.RemoveItem(ctx, 1, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartClear_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	// Очистка пустой корзины — не ошибка, просто 0 удаленных строк.
	query := regexp.QuoteMeta("DELETE FROM cart_items WHERE user_id = $1")
	mock.ExpectExec(query).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Clear(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetTotal_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()
	userID := int64(1)

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow("2029.97")
	mock.ExpectQuery("SELECT COALESCE").WithArgs(userID).WillReturnRows(rows)

	total, err := repo.GetTotal(ctx, userID)
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("2029.97")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "total", "status", "shipping_address", "created_at"})
}

func TestCreateOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	total := decimal.RequireFromString("2029.97")
	now := time.Now()
	rows := orderRows().AddRow(1, int64(1), "2029.97", "pending", "ул. Ленина, 1", now)

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), total, "pending", "ул. Ленина, 1").
		WillReturnRows(rows)

	order, err := repo.CreateOrder(ctx, tx, 1, total, "ул. Ленина, 1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.Total.Equal(total))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItem_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	price := decimal.RequireFromString("999.99")
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "created_at"}).
		AddRow(1, int64(1), int64(2), 2, "999.99", now)
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(1), int64(2), 2, price).
		WillReturnRows(rows)

	item, err := repo.CreateOrderItem(ctx, tx, 1, 2, 2, price)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.True(t, item.Price.Equal(price))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByID_WithItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()
	orderID := int64(1)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, total, status, shipping_address, created_at FROM orders WHERE id = $1")).
		WithArgs(orderID).
		WillReturnRows(orderRows().AddRow(orderID, int64(1), "2029.97", "pending", "ул. Ленина, 1", now))

	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "created_at", "name", "image_url"}).
		AddRow(1, orderID, 2, 2, "999.99", now, "iPhone 13", "/images/iphone.jpg").
		AddRow(2, orderID, 4, 1, "29.99", now, "HDMI Cable", "/images/hdmi.jpg")
	mock.ExpectQuery("SELECT oi\\.id, oi\\.order_id").
		WithArgs(orderID).WillReturnRows(itemRows)

	order, err := repo.GetByID(ctx, orderID)
	assert.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "iPhone 13", order.Items[0].Name)
	// цена в позиции — снимок на момент покупки
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("999.99")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, total, status, shipping_address, created_at FROM orders WHERE id = $1")).
		WithArgs(int64(99)).WillReturnRows(orderRows())

	order, err := repo.GetByID(ctx, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))
	assert.Nil(t, order)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now()
	query := regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2 RETURNING id, user_id, total, status, shipping_address, created_at")
	mock.ExpectQuery(query).WithArgs("shipped", int64(1)).
		WillReturnRows(orderRows().AddRow(1, int64(1), "2029.97", "shipped", "ул. Ленина, 1", now))

	order, err := repo.UpdateStatus(ctx, 1, "shipped")
	assert.NoError(t, err)
	assert.Equal(t, "shipped", order.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2 RETURNING id, user_id, total, status, shipping_address, created_at")
	mock.ExpectQuery(query).WithArgs("paid", int64(99)).WillReturnRows(orderRows())

	order, err := repo.UpdateStatus(ctx, 99, "paid")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))
	assert.Nil(t, order)

	assert.NoError(t, mock.ExpectationsWereMet())
}
