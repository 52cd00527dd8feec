package models

import "time"

// Product представляет товар ремесленника в каталоге.
// Stock и SoldCount изменяются только движком расчётов (settlement),
// цена и метаданные — операциями управления каталогом.
type Product struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"` // ремесленник-владелец
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"` // цена в минорных единицах (копейки/центы)
	Stock       int       `json:"stock"`
	SoldCount   int       `json:"sold_count"`
	CreatedAt   time.Time `json:"created_at"`
}
