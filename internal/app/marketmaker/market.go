package marketmaker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
)

// Market is one market the maker quotes.
type Market struct {
	Symbol     string
	BasePrice  float64
	Volatility float64
	UserID     string
}

// ParseMarkets reads specs of the form SYMBOL:BASE_PRICE[:USER_ID]. Markets
// without a user id quote as defaultUserID.
func ParseMarkets(specs []string, volatility float64, defaultUserID string) ([]Market, error) {
	markets := make([]Market, 0, len(specs))
	for _, entry := range specs {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, errors.NewErrorDetails(fmt.Sprintf("market %q must be SYMBOL:BASE_PRICE[:USER_ID]", entry), string(errors.ValidationError), "markets")
		}

		basePrice, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || basePrice <= 0 {
			return nil, errors.NewErrorDetails(fmt.Sprintf("market %q has an invalid base price", entry), string(errors.ValidationError), "markets")
		}

		market := Market{
			Symbol:     parts[0],
			BasePrice:  basePrice,
			Volatility: volatility,
			UserID:     defaultUserID,
		}
		if len(parts) == 3 && parts[2] != "" {
			market.UserID = parts[2]
		}
		markets = append(markets, market)
	}

	if len(markets) == 0 {
		return nil, errors.NewErrorDetails("at least one market is required", string(errors.ValidationError), "markets")
	}
	return markets, nil
}

// formatPrice keeps two decimals for prices above one and six below.
func formatPrice(price float64) string {
	if price > 1 {
		return strconv.FormatFloat(price, 'f', 2, 64)
	}
	return strconv.FormatFloat(price, 'f', 6, 64)
}

func formatQuantity(quantity float64) string {
	return strconv.FormatFloat(quantity, 'f', 4, 64)
}
