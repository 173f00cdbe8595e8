package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem представляет позицию корзины. На пару (user_id, product_id)
// существует не более одной строки, это гарантирует уникальный индекс в БД.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	// Поля товара, заполняются через JOIN с таблицей products
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"` // текущая цена товара, не цена на момент покупки
	ImageURL string          `json:"image_url"`
	Stock    int             `json:"stock"`
}
