package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар каталога
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"` // цена с точностью до двух знаков (DECIMAL(10,2))
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}
