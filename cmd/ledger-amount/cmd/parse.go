package cmd

import (
	"fmt"

	"github.com/govalues/ledger"
	"github.com/spf13/cobra"
)

func (a *app) parseCmd() *cobra.Command {
	var exact, noReduce, full, xml bool
	c := &cobra.Command{
		Use:   "parse AMOUNT...",
		Short: "Parse amounts and print them back",
		Long: `Parse every argument as an amount, then print them in order.

All arguments are parsed before anything is printed, so later arguments
can change how earlier ones are displayed.

Examples:
  ledger-amount parse '$1,000.00' '$5'
  ledger-amount parse --full '10 AAPL {$150.00} [2023/01/01]'
  ledger-amount parse --exact '1.23456 EUR'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags ledger.ParseFlags
			if exact {
				flags |= ledger.ParseNoMigrate
			}
			if noReduce {
				flags |= ledger.ParseNoReduce
			}
			amounts := make([]ledger.Amount, 0, len(args))
			for _, s := range args {
				amt, err := a.parseArg(s, flags)
				if err != nil {
					return err
				}
				amounts = append(amounts, amt)
			}

			w := cmd.OutOrStdout()
			switch {
			case a.jsonOutput():
				views := make([]*amountView, len(amounts))
				for i, amt := range amounts {
					views[i] = newAmountView(amt)
				}
				return writeJSON(w, views)
			case xml:
				for _, amt := range amounts {
					if err := amt.WriteXML(w, 0); err != nil {
						return err
					}
					if _, err := fmt.Fprintln(w); err != nil {
						return err
					}
				}
				return nil
			}
			for _, amt := range amounts {
				if err := writeAmount(w, amt, full); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().BoolVar(&exact, "exact", false, "keep the written precision instead of teaching it to the commodity")
	c.Flags().BoolVar(&noReduce, "no-reduce", false, "keep amounts in the unit they are written in")
	c.Flags().BoolVar(&full, "full", false, "print every digit and the whole annotation")
	c.Flags().BoolVar(&xml, "xml", false, "print amounts as XML")
	return c
}
