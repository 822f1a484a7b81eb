package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Operand lists the types accepted by the generic helpers [Add], [Sub],
// [Mul], [Quo] and [Compare]. Strings are parsed with [ParseAmount].
type Operand interface {
	Amount | decimal.Decimal | int | int32 | int64 | float64 | string
}

// Of converts v to an amount.
// Integers are exact, floats go through [NewAmountFromFloat64] and strings
// through [ParseAmount].
func Of[T Operand](v T) (Amount, error) {
	switch x := any(v).(type) {
	case Amount:
		return x, nil
	case decimal.Decimal:
		return NewAmountFromDecimal(x), nil
	case int:
		return NewAmountFromInt64(int64(x)), nil
	case int32:
		return NewAmountFromInt64(int64(x)), nil
	case int64:
		return NewAmountFromInt64(x), nil
	case float64:
		return NewAmountFromFloat64(x)
	case string:
		return ParseAmount(x)
	default:
		panic(fmt.Sprintf("Of(%v) failed: unsupported type %T", v, v))
	}
}

func binary[A, B Operand](a A, b B, op func(Amount, Amount) (Amount, error)) (Amount, error) {
	x, err := Of(a)
	if err != nil {
		return Amount{}, err
	}
	y, err := Of(b)
	if err != nil {
		return Amount{}, err
	}
	return op(x, y)
}

// Add returns a + b, for example Add(MustParseAmount("$10"), 5).
func Add[A, B Operand](a A, b B) (Amount, error) {
	return binary(a, b, Amount.Add)
}

// Sub returns a - b.
func Sub[A, B Operand](a A, b B) (Amount, error) {
	return binary(a, b, Amount.Sub)
}

// Mul returns a * b.
func Mul[A, B Operand](a A, b B) (Amount, error) {
	return binary(a, b, Amount.Mul)
}

// Quo returns a / b.
func Quo[A, B Operand](a A, b B) (Amount, error) {
	return binary(a, b, Amount.Quo)
}

// Compare compares a and b, see [Amount.Cmp].
func Compare[A, B Operand](a A, b B) (int, error) {
	x, err := Of(a)
	if err != nil {
		return 0, err
	}
	y, err := Of(b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y)
}
