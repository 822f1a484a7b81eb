package ledger

import (
	"fmt"
	"math"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// MaxPrecision is the largest number of digits after the decimal point
	// an amount can carry. Results of multiplication and division are
	// rounded to this precision when they would exceed it.
	MaxPrecision = 255
	// ExtendByDigits is the number of digits added to the precision of a
	// quotient, on top of the precisions of both operands.
	ExtendByDigits = 6
	// FloatPrecision is the number of digits after the decimal point kept
	// when an amount is created from a float with [NewAmountFromFloat64].
	FloatPrecision = 12
)

var one = decimal.NewFromInt(1)

// Amount represents a quantity of a commodity: an arbitrary-precision
// decimal magnitude, an optional [Commodity] and an optional [Annotation].
//
// An amount without a commodity is called bare. The zero value of Amount is
// the null amount, which has no magnitude at all and is distinct from zero;
// arithmetic, comparisons and conversions on null amounts fail with
// [ErrNullAmount].
//
// Amount is a value type: copying an amount never shares mutable state.
// Methods return new amounts; the InPlace methods replace the receiver and
// return it.
type Amount struct {
	quantity decimal.Decimal // exact magnitude
	prec     int             // internal precision, digits after the decimal point
	keep     bool            // display at internal precision
	valid    bool            // false for the null amount
	comm     *Commodity
	ann      *Annotation // nil when not annotated, never mutated
}

func newAmount(q decimal.Decimal, prec int) Amount {
	return Amount{quantity: q, prec: prec, valid: true}
}

// minScale returns the smallest number of digits after the decimal point
// that represents d exactly.
func minScale(d decimal.Decimal) int {
	exp := int(d.Exponent())
	if exp >= 0 || d.IsZero() {
		return 0
	}
	coef := new(big.Int).Abs(d.Coefficient())
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	scale := -exp
	for scale > 0 {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef.Set(q)
		scale--
	}
	return scale
}

// trimmed lowers the internal precision to the digits actually needed.
func (a Amount) trimmed() Amount {
	if a.valid {
		a.prec = minScale(a.quantity)
	}
	return a
}

// clamp rounds the amount to [MaxPrecision] if needed.
func (a Amount) clamp() Amount {
	if a.prec > MaxPrecision {
		a.quantity = a.quantity.Round(MaxPrecision)
		a.prec = MaxPrecision
	}
	return a
}

// NewAmount returns a bare amount equal to coef / 10^scale with internal
// precision scale.
//
// NewAmount returns an error if the scale is negative or greater than
// [MaxPrecision].
func NewAmount(coef int64, scale int) (Amount, error) {
	if scale < 0 || scale > MaxPrecision {
		return Amount{}, newAmountError(fmt.Sprintf("creating amount %v/10^%v", coef, scale),
			errors.Wrap(ErrInvalidAmount, "scale out of range"))
	}
	return newAmount(decimal.New(coef, int32(-scale)), scale), nil
}

// MustNewAmount is like [NewAmount] but panics if the amount cannot be constructed.
func MustNewAmount(coef int64, scale int) Amount {
	a, err := NewAmount(coef, scale)
	if err != nil {
		panic(fmt.Sprintf("NewAmount(%v, %v) failed: %v", coef, scale, err))
	}
	return a
}

// NewAmountFromInt64 returns an exact bare amount with precision 0.
func NewAmountFromInt64(n int64) Amount {
	return newAmount(decimal.NewFromInt(n), 0)
}

// NewAmountFromDecimal returns a bare amount with the value of d.
// The internal precision is the number of digits after the decimal point in d.
func NewAmountFromDecimal(d decimal.Decimal) Amount {
	return newAmount(d, max(0, -int(d.Exponent()))).clamp()
}

// NewAmountFromFloat64 converts a float to a bare amount rounded to
// [FloatPrecision] digits after the decimal point.
// Trailing zeros do not count towards the precision, so 1.5 has precision 1.
//
// NewAmountFromFloat64 returns an error if the float is NaN or infinite.
// See also [ExactFromFloat64].
func NewAmountFromFloat64(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, newAmountError(fmt.Sprintf("converting float %v", f), ErrConversion)
	}
	d := decimal.NewFromFloat(f).Round(FloatPrecision)
	return newAmount(d, 0).trimmed(), nil
}

// ExactFromFloat64 converts a float to a bare amount holding the shortest
// decimal that reads back as the same float, for example 0.3333333333333333
// for 1.0/3.0.
// The amount keeps its precision for display: it always prints every digit.
//
// ExactFromFloat64 returns an error if the float is NaN or infinite.
func ExactFromFloat64(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, newAmountError(fmt.Sprintf("converting float %v", f), ErrConversion)
	}
	a := newAmount(decimal.NewFromFloat(f), 0).trimmed().clamp()
	a.keep = true
	return a, nil
}

// ParseAmount parses text with the process-wide pool and [ParseDefault].
// See [Pool.Parse] for the accepted grammar.
func ParseAmount(text string) (Amount, error) {
	p, err := currentPool()
	if err != nil {
		return Amount{}, err
	}
	return p.Parse(text, ParseDefault)
}

// MustParseAmount is like [ParseAmount] but panics if the text cannot be parsed.
// It simplifies safe initialization of variables holding amounts.
func MustParseAmount(text string) Amount {
	a, err := ParseAmount(text)
	if err != nil {
		panic(fmt.Sprintf("ParseAmount(%q) failed: %v", text, err))
	}
	return a
}

// Exact parses text with the process-wide pool without migrating its
// precision to the commodity. The amount displays every digit it was
// written with.
func Exact(text string) (Amount, error) {
	p, err := currentPool()
	if err != nil {
		return Amount{}, err
	}
	return p.Parse(text, ParseNoMigrate)
}

// IsNull reports whether the amount has no magnitude.
func (a Amount) IsNull() bool {
	return !a.valid
}

// Sign returns:
//
//	-1 if a < 0
//	 0 if a = 0 or a is null
//	+1 if a > 0
//
// Sign is a predicate and never fails; use [Amount.IsNull] to tell a null
// amount from zero.
func (a Amount) Sign() int {
	if !a.valid {
		return 0
	}
	return a.quantity.Sign()
}

// IsRealZero reports whether the magnitude is exactly zero.
func (a Amount) IsRealZero() bool {
	return a.valid && a.quantity.IsZero()
}

// IsZero reports whether the amount is zero at its display precision.
// For example, $0.001 is zero when the dollar displays two digits, unless
// the amount keeps its precision.
// A null amount is neither zero nor non-zero.
func (a Amount) IsZero() bool {
	if !a.valid {
		return false
	}
	if a.comm == nil || a.keep {
		return a.quantity.IsZero()
	}
	cp := a.comm.Precision()
	if a.prec <= cp {
		return a.quantity.IsZero()
	}
	return a.quantity.Round(int32(cp)).IsZero()
}

// IsNonZero is the negation of [Amount.IsZero] for non-null amounts.
func (a Amount) IsNonZero() bool {
	return a.valid && !a.IsZero()
}

// Precision returns the internal precision: the number of digits after the
// decimal point carried by the magnitude.
func (a Amount) Precision() int {
	return a.prec
}

// KeepPrecision reports whether the amount displays at its internal
// precision rather than at the precision of its commodity.
func (a Amount) KeepPrecision() bool {
	return a.keep
}

// DisplayPrecision returns the number of digits after the decimal point used
// by [Amount.String].
// Bare amounts display at their internal precision. Amounts with a commodity
// display at the commodity precision, or at the larger of both precisions
// if the amount keeps its precision.
func (a Amount) DisplayPrecision() int {
	if a.comm == nil {
		return a.prec
	}
	cp := a.comm.Precision()
	if a.keep {
		return max(a.prec, cp)
	}
	return cp
}

// Decimal returns the exact magnitude.
func (a Amount) Decimal() decimal.Decimal {
	return a.quantity
}

// Commodity returns the commodity of the amount, or nil for bare amounts.
func (a Amount) Commodity() *Commodity {
	return a.comm
}

// HasCommodity reports whether the amount carries a commodity.
func (a Amount) HasCommodity() bool {
	return a.comm != nil
}

// WithCommodity returns the amount denominated in c.
// The annotation is dropped since it describes a lot of the old commodity.
// A nil commodity returns a bare amount.
func (a Amount) WithCommodity(c *Commodity) Amount {
	if a.comm != c {
		a.ann = nil
	}
	a.comm = c
	return a
}

// ClearCommodity returns the amount without commodity and annotation.
func (a Amount) ClearCommodity() Amount {
	return a.WithCommodity(nil)
}

// Number returns the bare magnitude of the amount.
func (a Amount) Number() Amount {
	a.comm, a.ann = nil, nil
	return a
}

// sameCommodity reports whether a and b carry the same commodity and
// the same annotation.
func (a Amount) sameCommodity(b Amount) bool {
	return a.comm == b.comm && annotationsEqual(a.ann, b.ann)
}

// unify returns a copy of a carrying the commodity both operands agree on.
// A bare operand adopts the commodity of the other one.
func (a Amount) unify(b Amount) (Amount, error) {
	if !a.valid || !b.valid {
		return Amount{}, ErrNullAmount
	}
	c := a
	c.keep = a.keep || b.keep
	switch {
	case b.comm == nil:
	case a.comm == nil:
		c.comm, c.ann = b.comm, b.ann
	case !a.sameCommodity(b):
		return Amount{}, ErrCommodityMismatch
	}
	return c, nil
}

// Add returns the sum of amounts a and b.
// The precision of the sum is the larger of both precisions.
//
// Add returns an error if:
//   - any of the amounts is null;
//   - the amounts are denominated in different commodities, or carry
//     different annotations.
func (a Amount) Add(b Amount) (Amount, error) {
	c, err := a.add(b)
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("computing [%v + %v]", a, b), err)
	}
	return c, nil
}

func (a Amount) add(b Amount) (Amount, error) {
	c, err := a.unify(b)
	if err != nil {
		return Amount{}, err
	}
	c.quantity = a.quantity.Add(b.quantity)
	c.prec = max(a.prec, b.prec)
	return c, nil
}

// Sub returns the difference between amounts a and b.
// Sub fails under the same conditions as [Amount.Add].
func (a Amount) Sub(b Amount) (Amount, error) {
	c, err := a.sub(b)
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("computing [%v - %v]", a, b), err)
	}
	return c, nil
}

func (a Amount) sub(b Amount) (Amount, error) {
	c, err := a.unify(b)
	if err != nil {
		return Amount{}, err
	}
	c.quantity = a.quantity.Sub(b.quantity)
	c.prec = max(a.prec, b.prec)
	return c, nil
}

// Mul returns the product of amounts a and b.
// The product carries the commodity of a, or the commodity of b if a is bare.
// Its precision is the sum of both precisions, capped at [MaxPrecision].
//
// Mul returns an error if any of the amounts is null.
func (a Amount) Mul(b Amount) (Amount, error) {
	c, err := a.mul(b)
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("computing [%v * %v]", a, b), err)
	}
	return c, nil
}

func (a Amount) mul(b Amount) (Amount, error) {
	if !a.valid || !b.valid {
		return Amount{}, ErrNullAmount
	}
	c := a
	if c.comm == nil {
		c.comm, c.ann = b.comm, b.ann
	}
	c.keep = a.keep || b.keep
	c.quantity = a.quantity.Mul(b.quantity)
	c.prec = a.prec + b.prec
	return c.clamp(), nil
}

// Quo returns the quotient of amounts a and b.
// Dividing two amounts of the same commodity gives a bare ratio; otherwise
// the quotient carries the commodity of a, or the commodity of b if a is bare.
//
// The quotient is computed to prec(a) + prec(b) + [ExtendByDigits] digits
// after the decimal point (at most [MaxPrecision]) and is not rounded any
// further until [Amount.RoundTo] is called or the amount is printed.
//
// Quo returns an error if:
//   - any of the amounts is null;
//   - the magnitude of b is exactly zero.
func (a Amount) Quo(b Amount) (Amount, error) {
	c, err := a.quo(b)
	if err != nil {
		return Amount{}, newAmountError(fmt.Sprintf("computing [%v / %v]", a, b), err)
	}
	return c, nil
}

func (a Amount) quo(b Amount) (Amount, error) {
	if !a.valid || !b.valid {
		return Amount{}, ErrNullAmount
	}
	if b.quantity.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	c := a
	switch {
	case a.comm != nil && a.sameCommodity(b):
		c.comm, c.ann = nil, nil
	case a.comm == nil:
		c.comm, c.ann = b.comm, b.ann
	}
	c.keep = a.keep || b.keep
	c.prec = min(a.prec+b.prec+ExtendByDigits, MaxPrecision)
	c.quantity = a.quantity.DivRound(b.quantity, int32(c.prec))
	return c, nil
}

// InPlaceAdd adds b to the receiver and returns the receiver.
// On error the receiver is left unchanged.
func (a *Amount) InPlaceAdd(b Amount) (*Amount, error) {
	return a.inPlace(a.Add, b)
}

// InPlaceSub subtracts b from the receiver and returns the receiver.
func (a *Amount) InPlaceSub(b Amount) (*Amount, error) {
	return a.inPlace(a.Sub, b)
}

// InPlaceMul multiplies the receiver by b and returns the receiver.
func (a *Amount) InPlaceMul(b Amount) (*Amount, error) {
	return a.inPlace(a.Mul, b)
}

// InPlaceQuo divides the receiver by b and returns the receiver.
func (a *Amount) InPlaceQuo(b Amount) (*Amount, error) {
	return a.inPlace(a.Quo, b)
}

func (a *Amount) inPlace(op func(Amount) (Amount, error), b Amount) (*Amount, error) {
	c, err := op(b)
	if err != nil {
		return a, err
	}
	*a = c
	return a, nil
}

// Neg returns an amount with the opposite sign.
// Commodity and annotation are kept.
//
// Neg returns an error if the amount is null.
func (a Amount) Neg() (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("negating amount", ErrNullAmount)
	}
	a.quantity = a.quantity.Neg()
	return a, nil
}

// InPlaceNegate negates the receiver and returns it.
// A null receiver is left unchanged and reported as an error.
func (a *Amount) InPlaceNegate() (*Amount, error) {
	c, err := a.Neg()
	if err != nil {
		return a, err
	}
	*a = c
	return a, nil
}

// Abs returns the absolute value of the amount.
//
// Abs returns an error if the amount is null.
func (a Amount) Abs() (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("computing absolute value", ErrNullAmount)
	}
	a.quantity = a.quantity.Abs()
	return a, nil
}

// Cmp compares amounts and returns:
//
//	-1 if a < b
//	 0 if a = b
//	+1 if a > b
//
// Magnitudes are compared exactly, so $1.0 equals $1.00.
// A bare amount compares with an amount carrying a commodity only if one
// of them is zero.
//
// Cmp returns an error if:
//   - any of the amounts is null;
//   - the amounts carry different commodities or annotations.
func (a Amount) Cmp(b Amount) (int, error) {
	c, err := a.cmp(b)
	if err != nil {
		return 0, newAmountError(fmt.Sprintf("comparing [%v] and [%v]", a, b), err)
	}
	return c, nil
}

func (a Amount) cmp(b Amount) (int, error) {
	if !a.valid || !b.valid {
		return 0, ErrNullAmount
	}
	switch {
	case a.comm == nil && b.comm == nil:
	case a.comm == nil || b.comm == nil:
		if !a.quantity.IsZero() && !b.quantity.IsZero() {
			return 0, ErrCommodityMismatch
		}
	case !a.sameCommodity(b):
		return 0, ErrCommodityMismatch
	}
	return a.quantity.Cmp(b.quantity), nil
}

// Equal reports whether amounts are comparable and equal.
// Amounts that cannot be compared are not equal.
func (a Amount) Equal(b Amount) bool {
	c, err := a.cmp(b)
	return err == nil && c == 0
}

// Round returns the amount displayed at the precision of its commodity.
// The magnitude is left untouched, so [Amount.Unround] recovers every digit.
// Round and Unround only switch how the amount is displayed; a null amount
// stays null.
func (a Amount) Round() Amount {
	a.keep = false
	return a
}

// Unround returns the amount displayed at its full internal precision.
func (a Amount) Unround() Amount {
	if a.valid {
		a.keep = true
	}
	return a
}

// RoundTo returns the amount rounded to the given number of digits after
// the decimal point, rounding half away from zero.
// Unlike [Amount.Round], RoundTo changes the magnitude.
// Amounts with fewer digits are returned unchanged.
//
// RoundTo returns an error if the amount is null.
func (a Amount) RoundTo(places int) (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError(fmt.Sprintf("rounding to %v digits", places), ErrNullAmount)
	}
	if places < 0 || places >= a.prec {
		return a, nil
	}
	a.quantity = a.quantity.Round(int32(places))
	a.prec = places
	return a, nil
}

// maxConversionSteps bounds the walk through registered conversions.
const maxConversionSteps = 32

// Reduce returns the amount expressed in the smallest unit reachable through
// the conversions registered with [Pool.ParseConversion], for example 2h as
// 7200s. Amounts without conversions are returned unchanged.
// A converted amount loses its annotation: the lot belongs to the unit it
// was written in.
//
// Reduce returns an error if the amount is null.
func (a Amount) Reduce() (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("reducing amount", ErrNullAmount)
	}
	return a.reduce(), nil
}

func (a Amount) reduce() Amount {
	c := a
	for i := 0; c.valid && c.comm != nil && i < maxConversionSteps; i++ {
		s, ok := c.comm.Smaller()
		if !ok {
			break
		}
		c.quantity = c.quantity.Mul(s.quantity)
		c.prec += s.prec
		c.comm, c.ann = s.comm, nil
		c = c.clamp()
	}
	return c
}

// InPlaceReduce reduces the receiver and returns it.
// A null receiver is left unchanged and reported as an error.
func (a *Amount) InPlaceReduce() (*Amount, error) {
	c, err := a.Reduce()
	if err != nil {
		return a, err
	}
	*a = c
	return a, nil
}

// Unreduce returns the amount expressed in the largest unit reachable
// through registered conversions in which its magnitude is at least one,
// for example 7200s as 2h and 90s as 1.5m.
// Like [Amount.Reduce], a converted amount loses its annotation.
//
// Unreduce returns an error if the amount is null.
func (a Amount) Unreduce() (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("unreducing amount", ErrNullAmount)
	}
	return a.unreduce(), nil
}

func (a Amount) unreduce() Amount {
	c := a
	for i := 0; c.valid && c.comm != nil && i < maxConversionSteps; i++ {
		l, ok := c.comm.Larger()
		if !ok {
			break
		}
		next, err := c.Number().quo(l.Number())
		if err != nil || next.quantity.Abs().LessThan(one) {
			break
		}
		next = next.trimmed()
		next.comm, next.keep = l.comm, c.keep
		c = next
	}
	return c
}

// InPlaceUnreduce unreduces the receiver and returns it.
// A null receiver is left unchanged and reported as an error.
func (a *Amount) InPlaceUnreduce() (*Amount, error) {
	c, err := a.Unreduce()
	if err != nil {
		return a, err
	}
	*a = c
	return a, nil
}

// Annotate returns the amount with its annotation replaced by n.
// Annotating with an empty annotation removes the annotation.
// The annotation is copied, so later changes to n do not affect the result.
//
// Annotate returns an error if the amount is null or bare.
func (a Amount) Annotate(n Annotation) (Amount, error) {
	if !a.valid {
		return Amount{}, newAmountError("annotating amount", ErrNullAmount)
	}
	if a.comm == nil {
		return Amount{}, newAmountError(fmt.Sprintf("annotating [%v]", a), ErrNoCommodity)
	}
	a.ann = n.normalize()
	if a.ann != nil {
		a.comm.AddFlags(SawAnnotated)
	}
	return a, nil
}

// IsAnnotated reports whether at least one annotation field is populated.
func (a Amount) IsAnnotated() bool {
	return a.ann != nil
}

// Annotation returns a copy of the annotation, or an empty annotation.
func (a Amount) Annotation() Annotation {
	if a.ann == nil {
		return Annotation{}
	}
	return *a.ann
}

// StripAnnotations returns the amount keeping only the annotation fields
// selected by the KeepPrice, KeepDate and KeepTag settings of its pool.
// The receiver is unchanged.
func (a Amount) StripAnnotations() Amount {
	if a.ann == nil {
		return a
	}
	return a.StripAnnotationsWith(a.comm.pool.Settings().Keep())
}

// StripAnnotationsWith returns the amount keeping only the selected
// annotation fields.
func (a Amount) StripAnnotationsWith(keep KeepDetails) Amount {
	if a.ann == nil || keep.All() {
		return a
	}
	a.ann = a.ann.Strip(keep).normalize()
	return a
}

// FitsInFloat64 reports whether [Amount.Float64] succeeds: the magnitude is
// finite as a float and reads back from the nearest float without loss.
func (a Amount) FitsInFloat64() bool {
	if !a.valid {
		return false
	}
	f := a.quantity.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return decimal.NewFromFloat(f).Equal(a.quantity)
}

// Float64 returns the magnitude as a float.
//
// Float64 returns an error if the amount is null or if the conversion loses
// digits. See [Amount.Float64Unchecked].
func (a Amount) Float64() (float64, error) {
	if !a.valid {
		return 0, newAmountError("converting amount to float", ErrNullAmount)
	}
	if !a.FitsInFloat64() {
		return 0, newAmountError(fmt.Sprintf("converting [%v] to float", a), ErrConversion)
	}
	return a.quantity.InexactFloat64(), nil
}

// Float64Unchecked returns the nearest float to the magnitude.
// Magnitudes beyond the float range saturate to ±Inf; null amounts give 0.
func (a Amount) Float64Unchecked() float64 {
	if !a.valid {
		return 0
	}
	return a.quantity.InexactFloat64()
}

// FitsInInt64 reports whether the magnitude, rounded half away from zero to
// an integer, fits in an int64.
func (a Amount) FitsInInt64() bool {
	return a.valid && a.quantity.Round(0).BigInt().IsInt64()
}

// Int64 returns the magnitude rounded half away from zero to an integer.
//
// Int64 returns an error if the amount is null or the integer does not fit
// in an int64. See [Amount.Int64Unchecked].
func (a Amount) Int64() (int64, error) {
	if !a.valid {
		return 0, newAmountError("converting amount to integer", ErrNullAmount)
	}
	if !a.FitsInInt64() {
		return 0, newAmountError(fmt.Sprintf("converting [%v] to integer", a), ErrConversion)
	}
	return a.quantity.Round(0).BigInt().Int64(), nil
}

// Int64Unchecked is like [Amount.Int64] but saturates to math.MaxInt64 or
// math.MinInt64 on overflow. Null amounts give 0.
func (a Amount) Int64Unchecked() int64 {
	if !a.valid {
		return 0
	}
	b := a.quantity.Round(0).BigInt()
	switch {
	case b.IsInt64():
		return b.Int64()
	case b.Sign() > 0:
		return math.MaxInt64
	default:
		return math.MinInt64
	}
}

// Valid performs a structural check of the amount: the precision is within
// bounds, the magnitude has no digits beyond it, the commodity is resolvable
// in its pool and the annotation is consistent.
// Valid is expensive and is meant for assertions, not for every operation.
func (a Amount) Valid() bool {
	if !a.valid {
		return a.comm == nil && a.ann == nil && a.prec == 0
	}
	if a.prec < 0 || a.prec > MaxPrecision || minScale(a.quantity) > a.prec {
		return false
	}
	if a.comm != nil && (a.comm.pool == nil || a.comm.pool.Find(a.comm.symbol) != a.comm) {
		return false
	}
	if a.ann != nil {
		if a.comm == nil || a.ann.IsEmpty() {
			return false
		}
		if p := a.ann.Price; !p.IsNull() && (p.ann != nil || !p.Valid()) {
			return false
		}
	}
	return true
}

// Dump returns a debugging representation of the internal state.
func (a Amount) Dump() string {
	if !a.valid {
		return "AMOUNT(<null>)"
	}
	s := fmt.Sprintf("AMOUNT(quantity:%s prec:%d keep:%t", a.quantity.String(), a.prec, a.keep)
	if a.comm != nil {
		s += fmt.Sprintf(" commodity:%q flags:%q precision:%d", a.comm.symbol, a.comm.Flags().String(), a.comm.Precision())
	}
	if a.ann != nil {
		s += fmt.Sprintf(" annotation:%q", a.ann.format(true))
	}
	return s + ")"
}
