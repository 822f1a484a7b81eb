package ledger

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseFlags control how [Pool.Parse] treats the commodity of the amount.
type ParseFlags uint8

const (
	// ParseDefault migrates the precision and style of the text into the
	// commodity and reduces the amount to its smallest unit.
	ParseDefault ParseFlags = 0x00
	// ParseNoMigrate leaves a known commodity untouched; the amount keeps
	// its own precision for display instead.
	ParseNoMigrate ParseFlags = 0x01
	// ParseNoReduce skips the reduction to the smallest unit.
	ParseNoReduce ParseFlags = 0x02
	// ParseSoftFail returns a null amount and no error on malformed text.
	ParseSoftFail ParseFlags = 0x04
)

// Parse converts text to an amount.
//
// The accepted grammar is an optional minus sign followed by either a
// quantity with an optional trailing commodity symbol ("10 AAPL", "1.5h") or
// a commodity symbol followed by a quantity ("$10.00", "$-10.00", "EUR 5").
// Symbols containing digits, spaces or punctuation are written in double
// quotes ("10 \"M&M\""). The quantity may use thousands separators and a
// decimal point or comma ("1,234.50", "1.234,50").
// Lot annotations may follow: a price in braces ("{$150.00}", or "{=$150.00}"
// for a fixated price), a date in brackets ("[2023/01/01]") and a tag in
// parentheses ("(lot1)").
//
// Unless [ParseNoMigrate] is given, the commodity learns its display
// precision and style from the text. Unless [ParseNoReduce] is given, the
// amount is reduced with [Amount.Reduce]; an annotated amount written in a
// larger unit ("2m {$1.00}") loses its annotation in the reduction.
//
// Parse returns an error if the text is malformed, unless [ParseSoftFail] is
// given, in which case it returns a null amount.
func (p *Pool) Parse(text string, flags ParseFlags) (Amount, error) {
	a, err := p.parseAll(text, flags)
	if err != nil {
		if flags&ParseSoftFail != 0 {
			return Amount{}, nil
		}
		return Amount{}, newAmountError(fmt.Sprintf("parsing %q", text), err)
	}
	return a, nil
}

// MustParse is like [Pool.Parse] with [ParseDefault] but panics if the text
// cannot be parsed.
func (p *Pool) MustParse(text string) Amount {
	a, err := p.Parse(text, ParseDefault)
	if err != nil {
		panic(fmt.Sprintf("Parse(%q) failed: %v", text, err))
	}
	return a
}

// ParseReader reads one line from r and parses it as an amount.
// A final line without a newline is accepted.
func (p *Pool) ParseReader(r io.RuneReader, flags ParseFlags) (Amount, error) {
	var sb strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Amount{}, newAmountError("reading amount", err)
		}
		if c == '\n' {
			break
		}
		sb.WriteRune(c)
	}
	return p.Parse(strings.TrimRight(sb.String(), "\r"), flags)
}

func (p *Pool) parseAll(text string, flags ParseFlags) (Amount, error) {
	sc := &scanner{s: text}
	a, err := p.parseAmount(sc, flags)
	if err != nil {
		return Amount{}, err
	}
	sc.skipSpace()
	if !sc.done() {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "unexpected text %q", sc.rest())
	}
	return a, nil
}

func (p *Pool) parseAmount(sc *scanner, flags ParseFlags) (Amount, error) {
	sc.skipSpace()
	neg := sc.accept('-')
	if !neg {
		sc.accept('+')
	}

	var sym, num string
	var style CommodityFlags
	var err error
	if isQuantityStart(sc.peek()) {
		num = sc.quantity()
		mark := sc.pos
		sc.skipSpace()
		separated := sc.pos > mark
		if !sc.done() && (sc.peek() == '"' || isSymbolRune(sc.peek())) {
			if sym, err = sc.symbol(); err != nil {
				return Amount{}, err
			}
			style |= StyleSuffixed
			if separated {
				style |= StyleSeparated
			}
		} else {
			sc.pos = mark
		}
	} else {
		if sym, err = sc.symbol(); err != nil {
			return Amount{}, err
		}
		if sym == "" {
			return Amount{}, errors.Wrap(ErrInvalidAmount, "no quantity")
		}
		mark := sc.pos
		sc.skipSpace()
		if sc.pos > mark {
			style |= StyleSeparated
		}
		if sc.accept('-') {
			neg = !neg
		}
		num = sc.quantity()
	}
	if num == "" {
		return Amount{}, errors.Wrap(ErrInvalidAmount, "no quantity")
	}

	var comm *Commodity
	created := false
	decimalComma := false
	if sym != "" {
		if comm = p.Find(sym); comm == nil {
			comm, created = p.FindOrCreate(sym), true
		}
		decimalComma = comm.HasFlags(StyleDecimalComma)
	} else {
		decimalComma = p.Settings().DecimalComma
	}
	q, prec, qstyle, err := parseQuantity(num, decimalComma)
	if err != nil {
		return Amount{}, err
	}
	a := newAmount(q, prec)
	if a.prec > MaxPrecision {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "more than %v digits after the decimal point", MaxPrecision)
	}
	if neg {
		a.quantity = a.quantity.Neg()
	}

	if comm != nil {
		a.comm = comm
		// A commodity seen for the first time always learns from the text.
		if created || flags&ParseNoMigrate == 0 {
			comm.migratePrecision(prec)
			comm.AddFlags(style | qstyle)
		}
		if flags&ParseNoMigrate != 0 {
			a.keep = true
		}
	}

	n, err := p.parseAnnotation(sc)
	if err != nil {
		return Amount{}, err
	}
	if !n.IsEmpty() {
		if comm == nil {
			return Amount{}, ErrNoCommodity
		}
		a.ann = n.normalize()
		comm.AddFlags(SawAnnotated)
	}

	if flags&ParseNoReduce == 0 {
		a = a.reduce()
	}
	return a, nil
}

func (p *Pool) parseAnnotation(sc *scanner) (Annotation, error) {
	var n Annotation
	for {
		mark := sc.pos
		sc.skipSpace()
		switch sc.peek() {
		case '{':
			if !n.Price.IsNull() {
				return Annotation{}, errors.Wrap(ErrInvalidAmount, "lot price given twice")
			}
			body, err := sc.enclosed('{', '}')
			if err != nil {
				return Annotation{}, err
			}
			body = strings.TrimSpace(body)
			if strings.HasPrefix(body, "=") {
				n.Fixated = true
				body = body[1:]
			}
			price, err := p.parseAll(body, ParseNoMigrate)
			if err != nil {
				return Annotation{}, errors.Wrap(err, "lot price")
			}
			if price.comm != nil && price.prec > price.comm.Precision() {
				price = price.Round()
			}
			n.Price = price
		case '[':
			if !n.Date.IsZero() {
				return Annotation{}, errors.Wrap(ErrInvalidAmount, "lot date given twice")
			}
			body, err := sc.enclosed('[', ']')
			if err != nil {
				return Annotation{}, err
			}
			if n.Date, err = parseDate(body); err != nil {
				return Annotation{}, errors.Wrapf(ErrInvalidAmount, "lot date %q", body)
			}
		case '(':
			if n.Tag != "" {
				return Annotation{}, errors.Wrap(ErrInvalidAmount, "lot tag given twice")
			}
			body, err := sc.enclosed('(', ')')
			if err != nil {
				return Annotation{}, err
			}
			n.Tag = body
		default:
			sc.pos = mark
			return n, nil
		}
	}
}

// parseQuantity interprets the digits and separators of a quantity.
// When both ',' and '.' appear, the last one is the decimal mark. A mark
// appearing more than once separates thousands. A single mark is the
// decimal mark, except that a comma followed by exactly three digits groups
// thousands in the default style, and likewise a period in the decimal
// comma style.
func parseQuantity(num string, decimalComma bool) (decimal.Decimal, int, CommodityFlags, error) {
	var dec, thou byte
	commas, periods := strings.Count(num, ","), strings.Count(num, ".")
	lastComma, lastPeriod := strings.LastIndexByte(num, ','), strings.LastIndexByte(num, '.')
	switch {
	case commas > 0 && periods > 0:
		if lastComma > lastPeriod {
			dec, thou = ',', '.'
		} else {
			dec, thou = '.', ','
		}
	case commas > 1:
		if decimalComma {
			return decimal.Decimal{}, 0, 0, errors.Wrap(ErrInvalidAmount, "too many decimal commas")
		}
		thou = ','
	case periods > 1:
		if !decimalComma {
			return decimal.Decimal{}, 0, 0, errors.Wrap(ErrInvalidAmount, "too many decimal points")
		}
		thou = '.'
	case commas == 1:
		if !decimalComma && len(num)-lastComma-1 == 3 && lastComma > 0 {
			thou = ','
		} else {
			dec = ','
		}
	case periods == 1:
		if decimalComma && len(num)-lastPeriod-1 == 3 && lastPeriod > 0 {
			thou = '.'
		} else {
			dec = '.'
		}
	}

	intPart, frac := num, ""
	if dec != 0 {
		if strings.Count(num, string(dec)) > 1 {
			return decimal.Decimal{}, 0, 0, errors.Wrapf(ErrInvalidAmount, "decimal mark %q given twice", dec)
		}
		i := strings.IndexByte(num, dec)
		intPart, frac = num[:i], num[i+1:]
	}
	var style CommodityFlags
	if dec == ',' {
		style |= StyleDecimalComma
	}
	if thou != 0 {
		style |= StyleThousands
		if thou == '.' {
			style |= StyleDecimalComma
		}
		groups := strings.Split(intPart, string(thou))
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return decimal.Decimal{}, 0, 0, errors.Wrapf(ErrInvalidAmount, "bad thousands grouping in %q", num)
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return decimal.Decimal{}, 0, 0, errors.Wrapf(ErrInvalidAmount, "bad thousands grouping in %q", num)
			}
		}
		intPart = strings.Join(groups, "")
	}
	digits := intPart + frac
	if digits == "" || strings.ContainsAny(digits, ".,") {
		return decimal.Decimal{}, 0, 0, errors.Wrapf(ErrInvalidAmount, "bad quantity %q", num)
	}
	coef, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return decimal.Decimal{}, 0, 0, errors.Wrapf(ErrInvalidAmount, "bad quantity %q", num)
	}
	return decimal.NewFromBigInt(coef, -int32(len(frac))), len(frac), style, nil
}

func isQuantityStart(r rune) bool {
	return ('0' <= r && r <= '9') || r == '.' || r == ','
}

// scanner walks over amount text.
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) done() bool {
	return sc.pos >= len(sc.s)
}

func (sc *scanner) rest() string {
	return sc.s[sc.pos:]
}

// peek returns the next rune, or utf8.RuneError at the end of the text.
func (sc *scanner) peek() rune {
	if sc.done() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(sc.s[sc.pos:])
	return r
}

func (sc *scanner) next() rune {
	r, n := utf8.DecodeRuneInString(sc.s[sc.pos:])
	sc.pos += n
	return r
}

func (sc *scanner) accept(r rune) bool {
	if !sc.done() && sc.peek() == r {
		sc.next()
		return true
	}
	return false
}

func (sc *scanner) skipSpace() {
	for !sc.done() && unicode.IsSpace(sc.peek()) {
		sc.next()
	}
}

func (sc *scanner) quantity() string {
	start := sc.pos
	for !sc.done() && isQuantityStart(sc.peek()) {
		sc.next()
	}
	return sc.s[start:sc.pos]
}

// symbol reads a quoted or unquoted commodity symbol.
func (sc *scanner) symbol() (string, error) {
	if sc.accept('"') {
		i := strings.IndexByte(sc.s[sc.pos:], '"')
		if i < 0 {
			return "", errors.Wrap(ErrInvalidAmount, "unterminated quoted symbol")
		}
		sym := sc.s[sc.pos : sc.pos+i]
		sc.pos += i + 1
		if sym == "" {
			return "", errors.Wrap(ErrInvalidAmount, "empty quoted symbol")
		}
		return sym, nil
	}
	start := sc.pos
	for !sc.done() && isSymbolRune(sc.peek()) {
		sc.next()
	}
	return sc.s[start:sc.pos], nil
}

// enclosed reads the text between open and the next close.
func (sc *scanner) enclosed(open, close rune) (string, error) {
	if !sc.accept(open) {
		return "", errors.Wrapf(ErrInvalidAmount, "expected %q", open)
	}
	i := strings.IndexRune(sc.s[sc.pos:], close)
	if i < 0 {
		return "", errors.Wrapf(ErrInvalidAmount, "missing %q", close)
	}
	body := sc.s[sc.pos : sc.pos+i]
	sc.pos += i + utf8.RuneLen(close)
	return body, nil
}
