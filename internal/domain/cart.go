package domain

import "github.com/shopspring/decimal"

// CartLine is one product entry in the cart. The JSON shape matches the
// persisted slot format, which is an array of these.
type CartLine struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
}

// Cart holds lines in first-add order. At most one line per product id.
type Cart struct {
	Lines []CartLine `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Count is the total item count across all lines (the navbar badge number).
func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		if line.Quantity > 0 {
			count += line.Quantity
		}
	}
	return count
}
