package reporting

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(v float64) string {
	return ptBR.Sprintf("R$ %.2f", v)
}

// FormatNumber renders v with pt-BR separators and the given decimals.
func FormatNumber(v float64, decimals int) string {
	return ptBR.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// FormatDate renders t as dd/mm/yyyy in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006")
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}
