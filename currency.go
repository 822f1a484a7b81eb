package ledger

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	fixed "github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DeclareCurrency registers the [ISO 4217] currency code as a builtin
// commodity written after the quantity ("1,234.50 USD"), with the number of
// minor-unit digits of the currency as display precision and its decimal
// and thousands marks.
// Declaring a currency that is already registered updates its precision
// and style.
//
// DeclareCurrency returns an error if the code is not a known currency.
//
// [ISO 4217]: https://en.wikipedia.org/wiki/ISO_4217
func (p *Pool) DeclareCurrency(code string) (*Commodity, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := gomoney.GetCurrency(code)
	if cur == nil {
		return nil, newAmountError(fmt.Sprintf("declaring currency %q", code), ErrInvalidAmount)
	}
	c := p.FindOrCreate(code)
	c.SetPrecision(cur.Fraction)
	flags := StyleSuffixed | StyleSeparated | Builtin
	if cur.Decimal == "," {
		flags |= StyleDecimalComma
	}
	if cur.Thousand != "" {
		flags |= StyleThousands
	}
	c.AddFlags(flags)
	p.logger.Debug().
		Str("symbol", code).
		Int("precision", cur.Fraction).
		Str("grapheme", cur.Grapheme).
		Msg("currency declared")
	return c, nil
}

// Money converts the amount to a fixed-precision monetary amount.
// The commodity symbol must be an ISO 4217 code, and the magnitude must fit
// in 19 significant digits.
func (a Amount) Money() (money.Amount, error) {
	if !a.valid {
		return money.Amount{}, newAmountError("converting amount to money", ErrNullAmount)
	}
	if a.comm == nil {
		return money.Amount{}, newAmountError(fmt.Sprintf("converting [%v] to money", a), ErrNoCommodity)
	}
	m, err := money.ParseAmount(a.comm.symbol, a.quantity.StringFixed(int32(a.prec)))
	if err != nil {
		return money.Amount{}, newAmountError(fmt.Sprintf("converting [%v] to money", a), errors.Wrap(ErrConversion, err.Error()))
	}
	return m, nil
}

// NewAmountFromMoney returns m as an amount of the commodity named by its
// currency code, creating the commodity if needed.
// The precision of the amount is the scale of m.
func (p *Pool) NewAmountFromMoney(m money.Amount) (Amount, error) {
	a, err := amountFromFixed(m.Decimal())
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("converting money %v", m), err)
	}
	a.comm = p.FindOrCreate(m.Curr().Code())
	return a, nil
}

// Fixed returns the magnitude as a fixed-precision decimal.
// Fixed returns an error if the magnitude does not fit in 19 significant
// digits or if the amount is null.
func (a Amount) Fixed() (fixed.Decimal, error) {
	if !a.valid {
		return fixed.Decimal{}, newAmountError("converting amount to decimal", ErrNullAmount)
	}
	d, err := fixed.Parse(a.quantity.StringFixed(int32(a.prec)))
	if err != nil {
		return fixed.Decimal{}, newAmountError(fmt.Sprintf("converting [%v] to decimal", a), errors.Wrap(ErrConversion, err.Error()))
	}
	return d, nil
}

// NewAmountFromFixed returns a bare amount with the value and scale of d.
func NewAmountFromFixed(d fixed.Decimal) Amount {
	a, err := amountFromFixed(d)
	if err != nil {
		panic(fmt.Sprintf("NewAmountFromFixed(%v) failed: %v", d, err))
	}
	return a
}

func amountFromFixed(d fixed.Decimal) (Amount, error) {
	q, err := decimal.NewFromString(d.String())
	if err != nil {
		return Amount{}, errors.Wrap(ErrConversion, err.Error())
	}
	return newAmount(q, d.Scale()), nil
}
