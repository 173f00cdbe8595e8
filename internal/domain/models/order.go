package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Известные статусы заказа. Проверка допустимых переходов не выполняется,
// статус перезаписывается любым непустым значением.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order представляет заказ. После создания изменяется только статус,
// сумма фиксируется один раз и не пересчитывается.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Total           decimal.Decimal `json:"total"` // сумма quantity*price по позициям на момент создания
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []*OrderItem    `json:"items,omitempty"`
}

// OrderItem представляет позицию заказа с зафиксированной ценой покупки.
// Последующие изменения цены товара на записанную цену не влияют.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // цена единицы на момент создания заказа
	CreatedAt time.Time       `json:"created_at"`

	// Поля товара, заполняются через JOIN с таблицей products
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}
