package ledger

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// CommodityFlags is a bit set describing how a commodity is written and how
// it takes part in valuation.
type CommodityFlags uint16

const (
	// StyleSuffixed means the symbol follows the quantity ("10 AAPL").
	StyleSuffixed CommodityFlags = 1 << iota
	// StyleSeparated means a space separates symbol and quantity.
	StyleSeparated
	// StyleDecimalComma means the quantity uses a decimal comma ("1.234,50").
	StyleDecimalComma
	// StyleThousands means the integer part is grouped by thousands.
	StyleThousands
	// NoMarket means the commodity has no market value of its own.
	NoMarket
	// Builtin marks commodities declared by the library or by configuration.
	Builtin
	// Primary marks the commodity that values are reported in.
	Primary
	// SawAnnotated means an annotated amount of this commodity has been seen.
	SawAnnotated
	// NoMigrate means parsing never raises the display precision.
	NoMigrate
)

var flagNames = []struct {
	flag   CommodityFlags
	name   string
	letter byte
}{
	{StyleSuffixed, "suffixed", 'S'},
	{StyleSeparated, "separated", 's'},
	{StyleDecimalComma, "decimal-comma", 'C'},
	{StyleThousands, "thousands", 'T'},
	{NoMarket, "no-market", 'N'},
	{Builtin, "builtin", 'B'},
	{Primary, "primary", 'P'},
	{SawAnnotated, "annotated", 'A'},
	{NoMigrate, "no-migrate", 'M'},
}

var errUnknownFlag = errors.New("unknown commodity flag")

// ParseCommodityFlag converts a flag name such as "primary" or "no-market"
// to its flag value.
func ParseCommodityFlag(name string) (CommodityFlags, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range flagNames {
		if f.name == n {
			return f.flag, nil
		}
	}
	return 0, errors.Wrapf(errUnknownFlag, "%q", name)
}

// Has reports whether all bits of g are set in f.
func (f CommodityFlags) Has(g CommodityFlags) bool {
	return f&g == g
}

// String returns the flags as a compact letter code, for example "PN".
func (f CommodityFlags) String() string {
	var sb strings.Builder
	for _, n := range flagNames {
		if f.Has(n.flag) {
			sb.WriteByte(n.letter)
		}
	}
	return sb.String()
}

// Commodity represents a unit of account: a currency, a security or any
// other countable unit.
// Commodities are owned by a [Pool] and live as long as the pool does.
// Two amounts share a commodity only if they hold the same *Commodity,
// so commodities are always compared by identity.
//
// The symbol of a commodity never changes. Its display precision, style
// flags and unit conversions can be updated through the setters, which are
// serialized by the owning pool.
type Commodity struct {
	pool      *Pool
	symbol    string
	precision int
	flags     CommodityFlags
	smaller   *Amount // one unit of this commodity expressed in a smaller unit
	larger    *Amount // one unit of this commodity expressed in a larger unit
}

// Symbol returns the symbol the commodity is registered under.
func (c *Commodity) Symbol() string {
	return c.symbol
}

// Pool returns the pool owning the commodity.
func (c *Commodity) Pool() *Pool {
	return c.pool
}

// Precision returns the number of digits after the decimal point used to
// display amounts of the commodity.
func (c *Commodity) Precision() int {
	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	return c.precision
}

// SetPrecision sets the display precision of the commodity.
// The precision is clamped to the range [0, MaxPrecision].
func (c *Commodity) SetPrecision(prec int) {
	prec = min(max(prec, 0), MaxPrecision)
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.precision = prec
}

// migratePrecision raises the display precision to prec unless the
// commodity forbids it.
func (c *Commodity) migratePrecision(prec int) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	if c.flags.Has(NoMigrate) {
		return
	}
	if prec > c.precision {
		c.precision = min(prec, MaxPrecision)
	}
}

// Flags returns the flags of the commodity.
func (c *Commodity) Flags() CommodityFlags {
	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	return c.flags
}

// HasFlags reports whether all the given flags are set.
func (c *Commodity) HasFlags(f CommodityFlags) bool {
	return c.Flags().Has(f)
}

// AddFlags sets the given flags.
func (c *Commodity) AddFlags(f CommodityFlags) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.flags |= f
}

// DropFlags clears the given flags.
func (c *Commodity) DropFlags(f CommodityFlags) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.flags &^= f
}

// Smaller returns one unit of the commodity expressed in the next smaller
// unit, if a conversion was registered with [Pool.ParseConversion].
func (c *Commodity) Smaller() (Amount, bool) {
	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	if c.smaller == nil {
		return Amount{}, false
	}
	return *c.smaller, true
}

// Larger returns the number of units of the commodity making up one unit
// of the next larger commodity, carrying the larger commodity.
func (c *Commodity) Larger() (Amount, bool) {
	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	if c.larger == nil {
		return Amount{}, false
	}
	return *c.larger, true
}

func (c *Commodity) setSmaller(a Amount) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.smaller = &a
}

func (c *Commodity) setLarger(a Amount) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.larger = &a
}

// invalidSymbolRunes lists the characters that end an unquoted symbol.
const invalidSymbolRunes = " \t\r\n0123456789.,;:?!-+*/^&|=<>{}[]()@\""

func isSymbolRune(r rune) bool {
	return !unicode.IsSpace(r) && !strings.ContainsRune(invalidSymbolRunes, r)
}

// needsQuotes reports whether a symbol must be quoted to be parsed back.
func needsQuotes(sym string) bool {
	if sym == "" {
		return false
	}
	for _, r := range sym {
		if !isSymbolRune(r) {
			return true
		}
	}
	return false
}

// QuotedSymbol returns the symbol as written in amounts, quoted if it
// contains characters that would otherwise end the symbol.
func (c *Commodity) QuotedSymbol() string {
	if needsQuotes(c.symbol) {
		return `"` + c.symbol + `"`
	}
	return c.symbol
}

// String implements the [fmt.Stringer] interface and returns the symbol.
func (c *Commodity) String() string {
	if c == nil {
		return ""
	}
	return c.QuotedSymbol()
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (c *Commodity) MarshalText() ([]byte, error) {
	return []byte(c.symbol), nil
}

// Format implements the [fmt.Formatter] interface.
// The following [format verbs] are available:
//
//	| Verb       | Example | Description     |
//	| ---------- | ------- | --------------- |
//	| %c, %s, %v | AAPL    | Symbol          |
//	| %q         | "AAPL"  | Quoted symbol   |
//
// The '-' format flag can be used with all verbs.
//
// [format verbs]: https://pkg.go.dev/fmt#hdr-Printing
func (c *Commodity) Format(state fmt.State, verb rune) {
	sym := c.String()
	switch verb {
	case 'q', 'Q':
		sym = `"` + strings.Trim(sym, `"`) + `"`
	case 'c', 'C', 's', 'S', 'v', 'V':
	default:
		fmt.Fprintf(state, "%%!%c(ledger.Commodity=%s)", verb, sym)
		return
	}
	writePadded(state, sym)
}

// writePadded writes s honoring the width and '-' flag of state.
func writePadded(state fmt.State, s string) {
	width := utf8.RuneCountInString(s)
	pad := ""
	if w, ok := state.Width(); ok && w > width {
		pad = strings.Repeat(" ", w-width)
	}
	//nolint:errcheck
	if state.Flag('-') {
		state.Write([]byte(s + pad))
	} else {
		state.Write([]byte(pad + s))
	}
}
