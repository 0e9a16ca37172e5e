package entity

import "time"

// Product producto del catálogo; el nombre se congela en la bitácora.
type Product struct {
	ID        string
	Name      string
	Unit      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
