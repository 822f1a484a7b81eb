package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/govalues/ledger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var dateLayouts = []string{"2006/01/02", "2006-01-02"}

func parseMoment(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// A bare date covers the whole day.
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
	}
	return time.Time{}, errors.Errorf("bad date %q, want YYYY/MM/DD", s)
}

type valueView struct {
	Amount *amountView `json:"amount"`
	Value  *amountView `json:"value"`
}

func (a *app) valueCmd() *cobra.Command {
	var at, in string
	c := &cobra.Command{
		Use:   "value AMOUNT...",
		Short: "Value amounts with the known prices",
		Long: `Value every amount at a date, using the prices loaded with --prices
or --db. Amounts without a known price are printed as <null>.

Examples:
  ledger-amount value --prices prices.db '10 AAPL'
  ledger-amount value --prices prices.db --at 2023/03/01 --in '$' '10 AAPL'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			moment, err := parseMoment(at)
			if err != nil {
				return err
			}
			var target *ledger.Commodity
			if in != "" {
				if target = a.pool.Find(strings.Trim(in, `"`)); target == nil {
					return errors.Errorf("unknown commodity %q", in)
				}
			}

			views := make([]valueView, 0, len(args))
			for _, s := range args {
				amt, err := a.parseArg(s, ledger.ParseDefault)
				if err != nil {
					return err
				}
				val, err := amt.Value(moment, target)
				if err != nil {
					return err
				}
				a.logger.Debug().Str("amount", amt.FullString()).Str("value", val.FullString()).Msg("valued")
				if a.jsonOutput() {
					views = append(views, valueView{Amount: newAmountView(amt), Value: newAmountView(val)})
					continue
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%v = %v\n", amt, val); err != nil {
					return err
				}
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			return nil
		},
	}
	c.Flags().StringVar(&at, "at", "", "valuation date, up to the end of the day, or RFC 3339 time (default: latest prices)")
	c.Flags().StringVar(&in, "in", "", "commodity to value in (default: the price commodity)")
	return c
}
