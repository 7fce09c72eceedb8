package cmd

import (
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
)

// euro renders an amount like €1,234.56.
func euro(amount float64) string {
	return money.NewFromFloat(amount, money.EUR).Display()
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// price keeps enough digits for sub-cent coins.
func price(p float64) string {
	if p >= 1 {
		return strconv.FormatFloat(p, 'f', 2, 64)
	}
	return strconv.FormatFloat(p, 'g', 6, 64)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
