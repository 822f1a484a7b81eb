package ledger

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Price records the market price of one unit of a commodity at a moment,
// expressed in another commodity, for example "P 2023/01/01 AAPL $150.00".
// The zero value is an unusable price; create prices with [NewPrice].
type Price struct {
	base   *Commodity // commodity being priced
	moment time.Time
	value  Amount // price of one unit of base, in the quote commodity
}

// NewPrice returns the price of one unit of base at moment.
//
// NewPrice returns an error if:
//   - base is nil, or value is null or bare;
//   - value is not positive;
//   - value is denominated in base itself.
func NewPrice(base *Commodity, moment time.Time, value Amount) (Price, error) {
	switch {
	case base == nil:
		return Price{}, newAmountError("creating price", ErrNoCommodity)
	case !value.valid:
		return Price{}, newAmountError(fmt.Sprintf("creating price of %v", base), ErrNullAmount)
	case value.comm == nil:
		return Price{}, newAmountError(fmt.Sprintf("creating price of %v", base), ErrNoCommodity)
	case value.Sign() <= 0:
		return Price{}, newAmountError(fmt.Sprintf("creating price of %v", base), errors.New("price must be positive"))
	case value.comm == base:
		return Price{}, newAmountError(fmt.Sprintf("creating price of %v", base), ErrCommodityMismatch)
	}
	return Price{base: base, moment: moment, value: value.StripAnnotationsWith(KeepDetails{})}, nil
}

// Base returns the commodity being priced.
func (r Price) Base() *Commodity {
	return r.base
}

// Quote returns the commodity the price is expressed in.
func (r Price) Quote() *Commodity {
	return r.value.comm
}

// Moment returns the time the price was observed at.
func (r Price) Moment() time.Time {
	return r.moment
}

// Amount returns the price of one unit of the base commodity.
func (r Price) Amount() Amount {
	return r.value
}

// CanConv returns true if [Price.Conv] can be used to value the given amount.
func (r Price) CanConv(b Amount) bool {
	return r.base != nil && b.valid && b.comm == r.base
}

// Conv returns the amount valued in the quote commodity.
// The product is computed from the price at full precision and displayed
// at the precision of the quote commodity.
//
// Conv returns an error if the amount is not denominated in the base commodity.
func (r Price) Conv(b Amount) (Amount, error) {
	if !r.CanConv(b) {
		return Amount{}, newAmountError(fmt.Sprintf("converting [%v] with %v", b, r), ErrCommodityMismatch)
	}
	c, err := r.value.Unround().mul(b.Number())
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("converting [%v] with %v", b, r), err)
	}
	return c.Round(), nil
}

// Inv returns the price of one unit of the quote commodity in the base commodity.
func (r Price) Inv() (Price, error) {
	q, err := NewAmountFromInt64(1).quo(r.value.Number())
	if err != nil {
		return Price{}, newAmountError(fmt.Sprintf("inverting %v", r), err)
	}
	return Price{base: r.value.comm, moment: r.moment, value: q.WithCommodity(r.base)}, nil
}

// String returns the price as a price directive.
func (r Price) String() string {
	if r.base == nil {
		return "P <invalid>"
	}
	return "P " + formatDate(r.moment) + " " + r.base.QuotedSymbol() + " " + r.value.FullString()
}

// AddPrice records the price of one unit of c at moment.
// A price in the same commodity already recorded at that moment is replaced.
func (p *Pool) AddPrice(c *Commodity, moment time.Time, value Amount) error {
	if c != nil && c.pool != p {
		return newAmountError(fmt.Sprintf("adding price of %v", c), errors.New("commodity does not belong to the pool"))
	}
	r, err := NewPrice(c, moment, value)
	if err != nil {
		return err
	}
	p.mu.Lock()
	hist := p.prices[c]
	i := sort.Search(len(hist), func(i int) bool { return hist[i].moment.After(moment) })
	replaced := false
	for j := i - 1; j >= 0 && hist[j].moment.Equal(moment); j-- {
		if hist[j].value.comm == r.value.comm {
			hist[j], replaced = r, true
			break
		}
	}
	if !replaced {
		hist = append(hist, Price{})
		copy(hist[i+1:], hist[i:])
		hist[i] = r
	}
	p.prices[c] = hist
	p.mu.Unlock()
	p.logger.Debug().
		Str("symbol", c.symbol).
		Time("moment", moment).
		Str("price", r.value.FullString()).
		Bool("replaced", replaced).
		Msg("price recorded")
	return nil
}

// Prices returns the recorded prices of c, oldest first.
func (p *Pool) Prices(c *Commodity) []Price {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res := make([]Price, len(p.prices[c]))
	copy(res, p.prices[c])
	return res
}

// FindPrice returns the latest price of c observed at or before moment.
// A zero moment selects the latest price overall. If target is not nil,
// only prices expressed in target are considered, including the inverses of
// prices of target expressed in c.
func (p *Pool) FindPrice(c *Commodity, moment time.Time, target *Commodity) (Price, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var best Price
	found := false
	consider := func(r Price, inverse bool) {
		if !moment.IsZero() && r.moment.After(moment) {
			return
		}
		if found && !r.moment.After(best.moment) {
			return
		}
		if inverse {
			inv, err := r.Inv()
			if err != nil {
				return
			}
			r = inv
		}
		best, found = r, true
	}
	for _, r := range p.prices[c] {
		if target == nil || r.value.comm == target {
			consider(r, false)
		}
	}
	if target != nil {
		for _, r := range p.prices[target] {
			if r.value.comm == c {
				consider(r, true)
			}
		}
	}
	return best, found
}

// Value returns the market value of the amount at moment, expressed in
// target. A zero moment uses the latest known price; a nil target uses the
// commodity of the lot price, or of whichever price is found.
//
// A fixated lot price ("{=$10}") values the amount regardless of market
// prices. Amounts already denominated in target are returned without their
// annotation.
//
// Value returns a null amount and no error when no applicable price is
// known, for bare amounts and for primary commodities without a target.
// Value returns an error if the amount is null.
func (a Amount) Value(moment time.Time, target *Commodity) (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("valuing amount", ErrNullAmount)
	}
	if a.comm == nil {
		return Amount{}, nil
	}
	if a.ann != nil && !a.ann.Price.IsNull() {
		lot := a.ann.Price
		if a.ann.Fixated && (target == nil || lot.comm == target) {
			c, err := lot.Unround().mul(a.Number())
			if err != nil {
				return Amount{}, newAmountError(fmt.Sprintf("valuing [%v]", a), err)
			}
			return c.Round(), nil
		}
		if target == nil {
			target = lot.comm
		}
	}
	if target == nil && a.comm.HasFlags(Primary) {
		return Amount{}, nil
	}
	if target == a.comm {
		return a.StripAnnotationsWith(KeepDetails{}), nil
	}
	r, ok := a.comm.pool.FindPrice(a.comm, moment, target)
	if !ok {
		return Amount{}, nil
	}
	return r.Conv(a)
}

// ParsePriceDirective parses a price directive of the form
//
//	P 2023/01/01 AAPL $150.00
//	P 2023/01/01 16:00:00 "M&M" 1.5 EUR
//
// The price amount is parsed like any other amount, so it teaches its
// commodity the precision it is written with.
func (p *Pool) ParsePriceDirective(line string) (Price, error) {
	r, err := p.parsePriceDirective(line)
	if err != nil {
		return Price{}, newAmountError(fmt.Sprintf("parsing price %q", line), err)
	}
	return r, nil
}

func (p *Pool) parsePriceDirective(line string) (Price, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "P" {
		return Price{}, errors.Wrap(ErrInvalidAmount, "expected P DATE SYMBOL PRICE")
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "P"))
	rest = strings.TrimSpace(rest[len(fields[1]):])
	date := fields[1]
	if len(fields) > 4 && strings.Count(fields[2], ":") > 0 {
		date += " " + fields[2]
		rest = strings.TrimSpace(rest[len(fields[2]):])
	}
	moment, err := parseDate(date)
	if err != nil {
		return Price{}, errors.Wrapf(ErrInvalidAmount, "price date %q", date)
	}
	sc := &scanner{s: rest}
	sym, err := sc.symbol()
	if err != nil {
		return Price{}, err
	}
	if sym == "" {
		return Price{}, errors.Wrap(ErrInvalidAmount, "missing commodity")
	}
	value, err := p.parseAll(sc.rest(), ParseDefault)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(p.FindOrCreate(sym), moment, value)
}

// LoadPrices reads price directives from r and records them in the pool.
// Blank lines and lines starting with ';' or '#' are skipped.
// LoadPrices returns the number of prices recorded.
func (p *Pool) LoadPrices(r io.Reader) (int, error) {
	s := bufio.NewScanner(r)
	n := 0
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSpace(s.Text())
		if text == "" || text[0] == ';' || text[0] == '#' {
			continue
		}
		pr, err := p.ParsePriceDirective(text)
		if err != nil {
			return n, errors.Wrapf(err, "line %d", line)
		}
		if err := p.AddPrice(pr.base, pr.moment, pr.value); err != nil {
			return n, errors.Wrapf(err, "line %d", line)
		}
		n++
	}
	if err := s.Err(); err != nil {
		return n, errors.Wrap(err, "reading prices")
	}
	return n, nil
}
