package cmd

import (
	"github.com/govalues/ledger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var operators = map[string]func(ledger.Amount, ledger.Amount) (ledger.Amount, error){
	"+": ledger.Amount.Add,
	"-": ledger.Amount.Sub,
	"*": ledger.Amount.Mul,
	"x": ledger.Amount.Mul,
	"/": ledger.Amount.Quo,
}

func (a *app) calcCmd() *cobra.Command {
	var full bool
	var places int
	c := &cobra.Command{
		Use:   "calc AMOUNT OPERATOR AMOUNT",
		Short: "Add, subtract, multiply or divide two amounts",
		Long: `Compute AMOUNT OPERATOR AMOUNT, where OPERATOR is one of + - * x /.

A bare number takes the commodity of the other amount. Quotients carry six
more digits than their operands; they are printed at the precision of their
commodity unless --full is given.

Examples:
  ledger-amount calc '$10.00' / 3
  ledger-amount calc --full '$10.00' / 3
  ledger-amount calc '$150.00' x 2.5`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, ok := operators[args[1]]
			if !ok {
				return errors.Errorf("unknown operator %q", args[1])
			}
			x, err := a.parseArg(args[0], ledger.ParseDefault)
			if err != nil {
				return err
			}
			y, err := a.parseArg(args[2], ledger.ParseDefault)
			if err != nil {
				return err
			}
			res, err := op(x, y)
			if err != nil {
				return err
			}
			if places >= 0 {
				if res, err = res.RoundTo(places); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(w, newAmountView(res))
			}
			return writeAmount(w, res, full)
		},
	}
	c.Flags().BoolVar(&full, "full", false, "print every digit of the result")
	c.Flags().IntVar(&places, "round", -1, "round the result to this many decimal places")
	return c
}
