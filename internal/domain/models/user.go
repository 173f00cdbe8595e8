package models

import "time"

// User представляет пользователя. Аутентификации нет: пользователь нужен
// как владелец корзины и заказов, запросы без userId относятся к гостевому
// пользователю по умолчанию.
type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	Name      string
	CreatedAt time.Time
}
