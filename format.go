package ledger

import (
	"fmt"
	"io"
	"strings"
)

// settings returns the settings that govern printing of the amount: those
// of its commodity's pool, or of the process-wide pool for bare amounts.
// Bare amounts printed without a process-wide pool use the zero Settings.
func (a Amount) settings() Settings {
	if a.comm != nil {
		return a.comm.pool.Settings()
	}
	if p, err := currentPool(); err == nil {
		return p.Settings()
	}
	return Settings{}
}

// String implements the [fmt.Stringer] interface and returns the amount at
// its display precision, for example "$1,234.50" or "10 AAPL".
// Only the annotation fields selected by the keep settings are shown.
// With the StreamFullStrings setting, String returns [Amount.FullString].
// The null amount is rendered as "<null>".
// Bare amounts take their settings from the process-wide pool, and print
// with the zero [Settings] before [Initialize] or after [Shutdown], so that
// printing never fails.
func (a Amount) String() string {
	if a.settings().StreamFullStrings {
		return a.FullString()
	}
	return a.format(false)
}

// FullString returns the amount with every digit it carries and its whole
// annotation. Parsing the full string gives back an amount with the same
// full string.
func (a Amount) FullString() string {
	return a.format(true)
}

func (a Amount) format(full bool) string {
	if !a.valid {
		return "<null>"
	}
	s := a.settings()
	b := a
	if !s.KeepBase {
		b = b.unreduce()
	}
	if full {
		b = b.Unround()
	}
	q := formatQuantity(b, b.DisplayPrecision(), b.style(s))
	if b.comm == nil {
		return q
	}

	var sb strings.Builder
	flags := b.comm.Flags()
	sym := b.comm.QuotedSymbol()
	if flags.Has(StyleSuffixed) {
		sb.WriteString(q)
		if flags.Has(StyleSeparated) {
			sb.WriteByte(' ')
		}
		sb.WriteString(sym)
	} else {
		sb.WriteString(sym)
		if flags.Has(StyleSeparated) {
			sb.WriteByte(' ')
		}
		sb.WriteString(q)
	}
	if b.ann != nil {
		if full {
			sb.WriteString(b.ann.format(true))
		} else {
			sb.WriteString(b.ann.Strip(s.Keep()).format(false))
		}
	}
	return sb.String()
}

// style returns the flags that shape the quantity text.
func (a Amount) style(s Settings) CommodityFlags {
	if a.comm != nil {
		return a.comm.Flags()
	}
	if s.DecimalComma {
		return StyleDecimalComma
	}
	return 0
}

// QuantityString returns the magnitude at display precision without the
// commodity symbol and annotation.
func (a Amount) QuantityString() string {
	if !a.valid {
		return "<null>"
	}
	s := a.settings()
	b := a
	if !s.KeepBase {
		b = b.unreduce()
	}
	return formatQuantity(b, b.DisplayPrecision(), b.style(s))
}

// formatQuantity renders the magnitude rounded to prec digits after the
// decimal point, half away from zero.
func formatQuantity(a Amount, prec int, flags CommodityFlags) string {
	d := a.quantity.Round(int32(prec))
	neg := d.Sign() < 0
	digits := d.Abs().StringFixed(int32(prec))
	intPart, frac := digits, ""
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		intPart, frac = digits[:i], digits[i+1:]
	}

	// Marks
	dmark, tmark := byte('.'), byte(',')
	if flags.Has(StyleDecimalComma) {
		dmark, tmark = ',', '.'
	}
	tmarks := 0
	if flags.Has(StyleThousands) {
		tmarks = (len(intPart) - 1) / 3
	}
	dpoint := 0
	if len(frac) > 0 {
		dpoint = 1
	}
	rsign := 0
	if neg {
		rsign = 1
	}

	width := rsign + len(intPart) + tmarks + dpoint + len(frac)
	buf := make([]byte, width)
	pos := width - 1

	// Fractional digits
	for i := len(frac) - 1; i >= 0; i-- {
		buf[pos] = frac[i]
		pos--
	}

	// Decimal mark
	if dpoint > 0 {
		buf[pos] = dmark
		pos--
	}

	// Integer digits and thousands marks
	for i, n := len(intPart)-1, 0; i >= 0; i, n = i-1, n+1 {
		if tmarks > 0 && n > 0 && n%3 == 0 {
			buf[pos] = tmark
			pos--
		}
		buf[pos] = intPart[i]
		pos--
	}

	// Arithmetic sign
	if rsign > 0 {
		buf[pos] = '-'
	}

	return string(buf)
}

// Print writes the display form of the amount to w.
func (a Amount) Print(w io.Writer) error {
	if _, err := io.WriteString(w, a.String()); err != nil {
		return newAmountError("printing amount", err)
	}
	return nil
}

// MarshalText implements the [encoding.TextMarshaler] interface.
// The amount is rendered with [Amount.FullString]; the null amount is
// rendered as an empty text.
func (a Amount) MarshalText() ([]byte, error) {
	if !a.valid {
		return []byte{}, nil
	}
	return []byte(a.FullString()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
// The text is parsed with the process-wide pool and [ParseNoMigrate], so
// the commodity precision is left untouched.
func (a *Amount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "<null>" {
		*a = Amount{}
		return nil
	}
	p, err := currentPool()
	if err != nil {
		return err
	}
	b, err := p.Parse(s, ParseNoMigrate)
	if err != nil {
		return err
	}
	*a = b
	return nil
}

// Format implements the [fmt.Formatter] interface.
// The following [format verbs] are available:
//
//	| Verb   | Example    | Description                       |
//	| ------ | ---------- | --------------------------------- |
//	| %s, %v | $1,234.50  | Display form, see [Amount.String] |
//	| %q     | "$1.00"    | Quoted display form               |
//	| %f     | 1234.50    | Plain quantity                    |
//	| %c     | $          | Commodity symbol                  |
//
// The '+' flag of %v renders [Amount.FullString].
// The precision of %f selects the number of digits after the decimal point,
// which defaults to the display precision.
// The '-' format flag can be used with all verbs.
//
// [format verbs]: https://pkg.go.dev/fmt#hdr-Printing
func (a Amount) Format(state fmt.State, verb rune) {
	var s string
	switch verb {
	case 's', 'S':
		s = a.String()
	case 'v', 'V':
		if state.Flag('+') {
			s = a.FullString()
		} else {
			s = a.String()
		}
	case 'q', 'Q':
		s = `"` + a.String() + `"`
	case 'f', 'F':
		if !a.valid {
			s = "<null>"
			break
		}
		prec, ok := state.Precision()
		if !ok {
			prec = a.DisplayPrecision()
		}
		s = formatQuantity(a, prec, 0)
	case 'c', 'C':
		s = a.comm.String()
	default:
		fmt.Fprintf(state, "%%!%c(ledger.Amount=%s)", verb, a.String())
		return
	}
	writePadded(state, s)
}
