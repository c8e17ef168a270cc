package cart

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/lynixdevs/urbanthreads/internal/catalog"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrItemNotFound    = errors.New("cart item not found")
)

// Item is one cart line. The product is copied by value at add time, so a
// later admin price edit does not reprice a cart already in progress.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Size     string          `json:"size,omitempty"`
}

// Cart is an ordered list of lines, unique per (product id, size) pair.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges into an existing (product id, size) line by incrementing its
// quantity, or appends a new line.
func (c *Cart) Add(product catalog.Product, quantity int, size string) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID && c.Items[i].Size == size {
			c.Items[i].Quantity += quantity
			return nil
		}
	}

	c.Items = append(c.Items, Item{Product: product, Quantity: quantity, Size: size})
	return nil
}

// Remove drops the line matching (product id, size). Removing an absent line
// is a no-op.
func (c *Cart) Remove(productID uuid.UUID, size string) {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID && c.Items[i].Size == size {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of the matching line, clamping to a
// minimum of 1. Dropping a line is an explicit Remove, never a side effect
// of a quantity edit.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, size string) error {
	if quantity < 1 {
		quantity = 1
	}

	for i := range c.Items {
		if c.Items[i].Product.ID == productID && c.Items[i].Size == size {
			c.Items[i].Quantity = quantity
			return nil
		}
	}

	return ErrItemNotFound
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Total is the sum over lines of quantity times effective price.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		line := item.Product.EffectivePrice().Mul(decimal.New(int64(item.Quantity), 0))
		total = total.Add(line)
	}
	return total
}

// TotalCents is the cart total in minor currency units, as persisted on
// orders.
func (c Cart) TotalCents() int64 {
	return c.Total().Mul(decimal.New(100, 0)).Round(0).IntPart()
}

// ItemCount is the sum of line quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
