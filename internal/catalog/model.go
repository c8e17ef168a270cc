package catalog

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Product is the shopper-facing view of a catalog row. Prices are decimal
// values in major currency units; the database stores minor units.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Sale        bool             `json:"sale"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	Sizes       []string         `json:"sizes,omitempty"`
	Featured    bool             `json:"featured"`
	InStock     bool             `json:"in_stock"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// EffectivePrice is the price a shopper actually pays: the sale price when
// one is set, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
