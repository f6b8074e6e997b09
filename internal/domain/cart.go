package domain

import "time"

// Cart is a user's shopping cart, stored as one document keyed by user ID.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine is a single product-size entry in the cart.
type CartLine struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Size       string `json:"size"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"total_price"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Recalculate restores the line total invariant after a quantity change.
func (l *CartLine) Recalculate() {
	l.TotalPrice = l.UnitPrice * int64(l.Quantity)
}

// FindLineIndex returns the index of the line matching the given product and
// size, or -1 if absent. Lines are merged on this pair.
func (c *Cart) FindLineIndex(productID, size string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			return i
		}
	}
	return -1
}

// FindLineByID returns the index of the line with the given line ID, or -1.
func (c *Cart) FindLineByID(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.TotalPrice
	}
	return total
}

// LineCount returns the total quantity across all lines.
func (c *Cart) LineCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}
