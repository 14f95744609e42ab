package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// Money formats an amount the Brazilian way, e.g. "-1.234,57".
func Money(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	units := d.Truncate(0)
	cents := d.Sub(units).Shift(2).IntPart()
	return brl.Sprintf("%s%d,%02d", sign, units.IntPart(), cents)
}

// Render prints s as a cash-flow statement: totals first, then one block
// per category with its subcategories indented below it.
func Render(w io.Writer, title string, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t\t\t\n", title)
	fmt.Fprintf(tw, "Entradas\t%s\t\t\n", Money(s.Inflow))
	fmt.Fprintf(tw, "Saídas\t%s\t\t\n", Money(s.Outflow))
	fmt.Fprintf(tw, "Resultado\t%s\t\t\n", Money(s.Net))
	fmt.Fprintf(tw, "Lançamentos\t%d\t\t\n", s.Count)
	fmt.Fprintln(tw, "\t\t\t")

	fmt.Fprintln(tw, "Tipo / Categoria / Subcategoria\tTotal\tQtd\t%\t")
	for _, c := range s.Categories {
		fmt.Fprintf(tw, "%s / %s\t%s\t%d\t%s\t\n", c.Type, c.Category, Money(c.Total), c.Count, c.Share.StringFixed(1))
		for _, sub := range s.Subcategories {
			if sub.Type != c.Type || sub.Category != c.Category {
				continue
			}
			fmt.Fprintf(tw, "    %s\t%s\t%d\t%s\t\n", sub.Subcategory, Money(sub.Total), sub.Count, sub.Share.StringFixed(1))
		}
	}
	return tw.Flush()
}
