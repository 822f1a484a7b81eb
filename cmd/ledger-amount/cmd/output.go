package cmd

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/govalues/ledger"
)

// amountView is the JSON form of an amount.
type amountView struct {
	Amount           string `json:"amount"`
	Full             string `json:"full"`
	Commodity        string `json:"commodity,omitempty"`
	Quantity         string `json:"quantity"`
	Precision        int    `json:"precision"`
	DisplayPrecision int    `json:"display_precision"`
	Annotation       string `json:"annotation,omitempty"`
}

func newAmountView(a ledger.Amount) *amountView {
	if a.IsNull() {
		return nil
	}
	v := &amountView{
		Amount:           a.String(),
		Full:             a.FullString(),
		Quantity:         a.Decimal().String(),
		Precision:        a.Precision(),
		DisplayPrecision: a.DisplayPrecision(),
	}
	if c := a.Commodity(); c != nil {
		v.Commodity = c.Symbol()
	}
	if a.IsAnnotated() {
		v.Annotation = a.Annotation().String()
	}
	return v
}

func (a *app) jsonOutput() bool {
	return a.v.GetBool(keyJSON)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeAmount prints the display form, or the full form if full is set.
func writeAmount(w io.Writer, amt ledger.Amount, full bool) error {
	if full {
		_, err := fmt.Fprintf(w, "%+v\n", amt)
		return err
	}
	_, err := fmt.Fprintf(w, "%v\n", amt)
	return err
}
