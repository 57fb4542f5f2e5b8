package mail

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCents renders an amount in minor units, e.g. 5000 usd -> "$ 50.00".
// Unknown currency codes fall back to the code followed by the amount.
func FormatCents(cents int64, code string) string {
	p := message.NewPrinter(language.AmericanEnglish)
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return p.Sprintf("%s %.2f", strings.ToUpper(code), float64(cents)/100)
	}
	return p.Sprint(currency.Symbol(unit.Amount(float64(cents) / 100)))
}
