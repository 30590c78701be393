package domain

import "github.com/shopspring/decimal"

type Product struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"productName"`
	Price        decimal.Decimal `json:"priceOutput"`
	ImageURL     string          `json:"img"`
	CategoryName string          `json:"categoryName"`
	IsActive     bool            `json:"isActive"`
}

// StampedProduct is a product annotated with the customer's favorite flag.
// The flag is derived per screen load and never persisted.
type StampedProduct struct {
	Product
	IsFavorite bool `json:"isFavorite"`
}

// ProductFilter narrows a catalog search. Nil price bounds mean unbounded.
type ProductFilter struct {
	Name     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
