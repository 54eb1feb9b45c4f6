package domain

import (
	"encoding/json"
	"regexp"

	"github.com/shopspring/decimal"
)

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// Price is a monetary amount that may arrive as either a plain JSON number or
// a formatted display string such as "$12.99". The display form is kept
// verbatim; the numeric amount is normalized once at ingestion and is the only
// value used in arithmetic. An unparseable price normalizes to a zero amount
// instead of failing, so cart aggregation stays total.
type Price struct {
	display string
	amount  decimal.Decimal
}

func PriceFromString(s string) Price {
	return Price{display: s, amount: normalizeAmount(s)}
}

func PriceFromDecimal(d decimal.Decimal) Price {
	return Price{amount: d}
}

func PriceFromFloat(f float64) Price {
	return Price{amount: decimal.NewFromFloat(f)}
}

func normalizeAmount(s string) decimal.Decimal {
	stripped := nonPriceChars.ReplaceAllString(s, "")
	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p Price) Amount() decimal.Decimal {
	return p.amount
}

// Display returns the original formatted string when the price arrived as
// one, otherwise a dollar-formatted rendering of the amount.
func (p Price) Display() string {
	if p.display != "" {
		return p.display
	}
	return "$" + p.amount.StringFixed(2)
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PriceFromString(s)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		*p = Price{amount: decimal.Zero}
		return nil
	}
	*p = Price{amount: d}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.display != "" {
		return json.Marshal(p.display)
	}
	return []byte(p.amount.String()), nil
}
