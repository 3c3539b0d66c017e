package orderbookv1

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceLevel is one aggregated row of depth. It is encoded as a ["price", "quantity"] pair.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// MarshalJSON encodes the level as a two element array of decimal strings.
func (p PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Price.String(), p.Quantity.String()})
}

// UnmarshalJSON decodes a ["price", "quantity"] pair.
func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("price level must have 2 elements, got %d", len(pair))
	}

	price, err := decimal.NewFromString(pair[0])
	if err != nil {
		return fmt.Errorf("price level price: %w", err)
	}
	quantity, err := decimal.NewFromString(pair[1])
	if err != nil {
		return fmt.Errorf("price level quantity: %w", err)
	}

	p.Price, p.Quantity = price, quantity
	return nil
}

// Depth is the aggregated view of both sides, most aggressive price first.
type Depth struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}
