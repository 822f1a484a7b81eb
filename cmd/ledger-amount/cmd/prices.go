package cmd

import (
	"fmt"

	"github.com/govalues/ledger"
	"github.com/govalues/ledger/pricedb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) pricesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "prices",
		Short: "List or record prices",
		Long: `Manage the price history kept in --prices and --db.

Subcommands:
  list - Print the known prices as price directives
  add  - Record price directives in every configured store`,
	}
	c.AddCommand(a.pricesListCmd(), a.pricesAddCmd())
	return c
}

func (a *app) pricesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [SYMBOL...]",
		Short: "Print the known prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var comms []*ledger.Commodity
			if len(args) == 0 {
				comms = a.pool.Commodities()
			}
			for _, sym := range args {
				c := a.pool.Find(sym)
				if c == nil {
					return errors.Errorf("unknown commodity %q", sym)
				}
				comms = append(comms, c)
			}
			var lines []string
			for _, c := range comms {
				for _, r := range a.pool.Prices(c) {
					lines = append(lines, r.String())
				}
			}
			if a.jsonOutput() {
				if lines == nil {
					lines = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), lines)
			}
			for _, line := range lines {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) pricesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add DIRECTIVE...",
		Short: "Record price directives",
		Long: `Record each price directive in the pool and save every known price into
the configured stores.

Example:
  ledger-amount prices add --db prices.sqlite 'P 2023/01/01 AAPL $150.00'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.stores) == 0 {
				return errors.New("no price store configured, use --prices or --db")
			}
			for _, line := range args {
				r, err := a.pool.ParsePriceDirective(line)
				if err != nil {
					return err
				}
				if err := a.pool.AddPrice(r.Base(), r.Moment(), r.Amount()); err != nil {
					return err
				}
			}
			for _, s := range a.stores {
				n, err := pricedb.Save(cmd.Context(), s, a.pool)
				if err != nil {
					return err
				}
				a.logger.Info().Int("prices", n).Msg("prices saved")
			}
			return nil
		},
	}
}
