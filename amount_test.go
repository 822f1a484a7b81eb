package ledger

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMain(m *testing.M) {
	if err := Initialize(); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = Shutdown()
	os.Exit(code)
}

// newTestPool returns a pool where $ and € display two digits.
func newTestPool() *Pool {
	p := NewPool()
	p.FindOrCreate("$").SetPrecision(2)
	p.FindOrCreate("€").SetPrecision(2)
	return p
}

func TestAmount_ZeroValue(t *testing.T) {
	a := Amount{}
	if !a.IsNull() {
		t.Errorf("Amount{}.IsNull() = false, want true")
	}
	if got := a.String(); got != "<null>" {
		t.Errorf("Amount{}.String() = %q, want %q", got, "<null>")
	}
	if a.Sign() != 0 || a.IsZero() || a.IsRealZero() || a.IsNonZero() {
		t.Errorf("Amount{} predicates are not all false")
	}
	if !a.Valid() {
		t.Errorf("Amount{}.Valid() = false, want true")
	}
}

func TestAmount_Interfaces(t *testing.T) {
	var i any = Amount{}
	if _, ok := i.(fmt.Stringer); !ok {
		t.Errorf("%T does not implement fmt.Stringer", i)
	}
	if _, ok := i.(fmt.Formatter); !ok {
		t.Errorf("%T does not implement fmt.Formatter", i)
	}
	if _, ok := i.(encoding.TextMarshaler); !ok {
		t.Errorf("%T does not implement encoding.TextMarshaler", i)
	}
	if _, ok := i.(encoding.BinaryMarshaler); !ok {
		t.Errorf("%T does not implement encoding.BinaryMarshaler", i)
	}
	if _, ok := i.(msgpack.CustomEncoder); !ok {
		t.Errorf("%T does not implement msgpack.CustomEncoder", i)
	}
	i = &Amount{}
	if _, ok := i.(encoding.TextUnmarshaler); !ok {
		t.Errorf("%T does not implement encoding.TextUnmarshaler", i)
	}
	if _, ok := i.(msgpack.CustomDecoder); !ok {
		t.Errorf("%T does not implement msgpack.CustomDecoder", i)
	}
}

func TestNewAmount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			coef  int64
			scale int
			want  string
		}{
			{0, 0, "0"},
			{0, 2, "0.00"},
			{12345, 2, "123.45"},
			{-5, 3, "-0.005"},
			{math.MaxInt64, 0, "9223372036854775807"},
			{math.MinInt64, 19, "-0.9223372036854775808"},
		}
		for _, tt := range tests {
			got, err := NewAmount(tt.coef, tt.scale)
			if err != nil {
				t.Errorf("NewAmount(%v, %v) failed: %v", tt.coef, tt.scale, err)
				continue
			}
			if got.FullString() != tt.want {
				t.Errorf("NewAmount(%v, %v) = %q, want %q", tt.coef, tt.scale, got.FullString(), tt.want)
			}
			if got.Precision() != tt.scale {
				t.Errorf("NewAmount(%v, %v).Precision() = %v, want %v", tt.coef, tt.scale, got.Precision(), tt.scale)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			coef  int64
			scale int
		}{
			"scale range 1": {0, -1},
			"scale range 2": {0, MaxPrecision + 1},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := NewAmount(tt.coef, tt.scale)
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("NewAmount(%v, %v) = %v, want %v", tt.coef, tt.scale, err, ErrInvalidAmount)
				}
			})
		}
	})
}

func TestMustNewAmount(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("MustNewAmount(0, -1) did not panic")
			}
		}()
		MustNewAmount(0, -1)
	})
}

func TestNewAmountFromInt64(t *testing.T) {
	a := NewAmountFromInt64(-42)
	if a.FullString() != "-42" || a.Precision() != 0 || a.HasCommodity() {
		t.Errorf("NewAmountFromInt64(-42) = %q prec %v", a.FullString(), a.Precision())
	}
}

func TestNewAmountFromFloat64(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			f        float64
			want     string
			wantPrec int
		}{
			{0, "0", 0},
			{1.5, "1.5", 1},
			{0.1, "0.1", 1},
			{-2.25, "-2.25", 2},
			{100, "100", 0},
			{1.0 / 3.0, "0.333333333333", FloatPrecision},
		}
		for _, tt := range tests {
			got, err := NewAmountFromFloat64(tt.f)
			if err != nil {
				t.Errorf("NewAmountFromFloat64(%v) failed: %v", tt.f, err)
				continue
			}
			if got.FullString() != tt.want || got.Precision() != tt.wantPrec {
				t.Errorf("NewAmountFromFloat64(%v) = %q prec %v, want %q prec %v", tt.f, got.FullString(), got.Precision(), tt.want, tt.wantPrec)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]float64{
			"nan":  math.NaN(),
			"+inf": math.Inf(1),
			"-inf": math.Inf(-1),
		}
		for name, f := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := NewAmountFromFloat64(f)
				if !errors.Is(err, ErrConversion) {
					t.Errorf("NewAmountFromFloat64(%v) = %v, want %v", f, err, ErrConversion)
				}
			})
		}
	})
}

func TestExactFromFloat64(t *testing.T) {
	p := newTestPool()
	a, err := ExactFromFloat64(1.0 / 3.0)
	if err != nil {
		t.Fatalf("ExactFromFloat64(1/3) failed: %v", err)
	}
	if got, want := a.FullString(), "0.3333333333333333"; got != want {
		t.Errorf("ExactFromFloat64(1/3).FullString() = %q, want %q", got, want)
	}
	if !a.KeepPrecision() {
		t.Errorf("ExactFromFloat64(1/3).KeepPrecision() = false, want true")
	}
	usd := a.WithCommodity(p.Find("$"))
	if got, want := usd.FullString(), "$0.3333333333333333"; got != want {
		t.Errorf("FullString() = %q, want %q", got, want)
	}
	if got, want := usd.Round().String(), "$0.33"; got != want {
		t.Errorf("Round().String() = %q, want %q", got, want)
	}
	inexact, _ := NewAmountFromFloat64(1.0 / 3.0)
	if inexact.FullString() == a.FullString() {
		t.Errorf("NewAmountFromFloat64 and ExactFromFloat64 both gave %q", a.FullString())
	}
}

func TestAmount_Add(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			a, b, want string
		}{
			{"$10.00", "$5.00", "$15.00"},
			{"$1.25", "$1.25", "$2.50"},
			{"$5.75", "$3.3", "$9.05"},
			{"$-7", "$2.5", "$-4.50"},
			{"10 AAPL", "-3 AAPL", "7 AAPL"},
			{"$5", "3", "$8.00"},
			{"3", "$5", "$8.00"},
			{"1.1", "0.11", "1.21"},
		}
		for _, tt := range tests {
			p := newTestPool()
			a, b := p.MustParse(tt.a), p.MustParse(tt.b)
			got, err := a.Add(b)
			if err != nil {
				t.Errorf("%q.Add(%q) failed: %v", a, b, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("%q.Add(%q) = %q, want %q", a, b, got, tt.want)
			}
			if want := p.MustParse(tt.want); !got.Equal(want) {
				t.Errorf("%q.Add(%q) = %q, want equal to %q", a, b, got, want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			a, b string
			want error
		}{
			"commodity 1":  {"$10.00", "€5.00", ErrCommodityMismatch},
			"commodity 2":  {"10 AAPL", "$1", ErrCommodityMismatch},
			"annotation 1": {"10 AAPL {$150.00}", "10 AAPL", ErrCommodityMismatch},
			"annotation 2": {"10 AAPL {$150.00}", "10 AAPL {$160.00}", ErrCommodityMismatch},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				p := newTestPool()
				a, b := p.MustParse(tt.a), p.MustParse(tt.b)
				_, err := a.Add(b)
				if !errors.Is(err, tt.want) {
					t.Errorf("%q.Add(%q) = %v, want %v", a, b, err, tt.want)
				}
				if AsAmountError(err) == nil {
					t.Errorf("%q.Add(%q) error %v is not an AmountError", a, b, err)
				}
			})
		}
	})

	t.Run("null", func(t *testing.T) {
		p := newTestPool()
		_, err := Amount{}.Add(p.MustParse("$1"))
		if !errors.Is(err, ErrNullAmount) {
			t.Errorf("Amount{}.Add($1) = %v, want %v", err, ErrNullAmount)
		}
		_, err = p.MustParse("$1").Add(Amount{})
		if !errors.Is(err, ErrNullAmount) {
			t.Errorf("$1.Add(Amount{}) = %v, want %v", err, ErrNullAmount)
		}
	})
}

func TestAmount_AddSub_Properties(t *testing.T) {
	p := newTestPool()
	tests := [][2]string{
		{"$10.00", "$5.00"},
		{"$0.333", "$-1,234.5"},
		{"10 AAPL", "0.125 AAPL"},
		{"1", "-0.0000001"},
	}
	for _, tt := range tests {
		a, b := p.MustParse(tt[0]), p.MustParse(tt[1])
		ab, err := a.Add(b)
		if err != nil {
			t.Fatalf("%q.Add(%q) failed: %v", a, b, err)
		}
		ba, err := b.Add(a)
		if err != nil {
			t.Fatalf("%q.Add(%q) failed: %v", b, a, err)
		}
		if !ab.Equal(ba) {
			t.Errorf("%q + %q = %q, but %q + %q = %q", a, b, ab, b, a, ba)
		}
		back, err := ab.Sub(b)
		if err != nil {
			t.Fatalf("%q.Sub(%q) failed: %v", ab, b, err)
		}
		if !back.Equal(a) {
			t.Errorf("%q + %q - %q = %q, want %q", a, b, b, back, a)
		}
	}
}

func TestAmount_Sub(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			a, b, want string
		}{
			{"$10.00", "$5.00", "$5.00"},
			{"$5.00", "$10.00", "$-5.00"},
			{"10 AAPL", "10 AAPL", "0 AAPL"},
			{"10", "0.5", "9.5"},
		}
		for _, tt := range tests {
			p := newTestPool()
			a, b := p.MustParse(tt.a), p.MustParse(tt.b)
			got, err := a.Sub(b)
			if err != nil {
				t.Errorf("%q.Sub(%q) failed: %v", a, b, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("%q.Sub(%q) = %q, want %q", a, b, got, tt.want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		p := newTestPool()
		_, err := p.MustParse("$10.00").Sub(p.MustParse("€5.00"))
		if !errors.Is(err, ErrCommodityMismatch) {
			t.Errorf("Sub() = %v, want %v", err, ErrCommodityMismatch)
		}
	})
}

func TestAmount_Mul(t *testing.T) {
	tests := []struct {
		a, b, want string
		wantPrec   int
	}{
		{"$10.00", "3", "$30.00", 2},
		{"2.5", "$4.00", "$10.00", 3},
		{"10 AAPL", "0.5", "5 AAPL", 1},
		{"1.5", "1.5", "2.25", 2},
		{"-2", "3", "-6", 0},
	}
	for _, tt := range tests {
		p := newTestPool()
		a, b := p.MustParse(tt.a), p.MustParse(tt.b)
		got, err := a.Mul(b)
		if err != nil {
			t.Errorf("%q.Mul(%q) failed: %v", a, b, err)
			continue
		}
		if got.String() != tt.want || got.Precision() != tt.wantPrec {
			t.Errorf("%q.Mul(%q) = %q prec %v, want %q prec %v", a, b, got, got.Precision(), tt.want, tt.wantPrec)
		}
	}

	t.Run("null", func(t *testing.T) {
		_, err := NewAmountFromInt64(1).Mul(Amount{})
		if !errors.Is(err, ErrNullAmount) {
			t.Errorf("Mul(null) = %v, want %v", err, ErrNullAmount)
		}
	})
}

func TestAmount_Quo(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			a, b, want, wantFull string
		}{
			{"$10.00", "4", "$2.50", "$2.50000000"},
			{"$1.00", "3", "$0.33", "$0.33333333"},
			{"1", "3", "0.333333", "0.333333"},
			{"$10.00", "$10.00", "1.0000000000", "1.0000000000"},
			{"$10.00", "$4.00", "2.5000000000", "2.5000000000"},
			{"10", "$4.00", "$2.50", "$2.50000000"},
			{"-9", "2", "-4.500000", "-4.500000"},
		}
		for _, tt := range tests {
			p := newTestPool()
			a, b := p.MustParse(tt.a), p.MustParse(tt.b)
			got, err := a.Quo(b)
			if err != nil {
				t.Errorf("%q.Quo(%q) failed: %v", a, b, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("%q.Quo(%q) = %q, want %q", a, b, got, tt.want)
			}
			if got.FullString() != tt.wantFull {
				t.Errorf("%q.Quo(%q).FullString() = %q, want %q", a, b, got.FullString(), tt.wantFull)
			}
		}
	})

	t.Run("self", func(t *testing.T) {
		p := newTestPool()
		for _, s := range []string{"$10.00", "0.001 AAPL", "€-3"} {
			a := p.MustParse(s)
			got, err := a.Quo(a)
			if err != nil {
				t.Errorf("%q.Quo(%q) failed: %v", a, a, err)
				continue
			}
			if got.HasCommodity() || !got.Equal(NewAmountFromInt64(1)) {
				t.Errorf("%q.Quo(%q) = %q, want 1", a, a, got)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			a, b string
		}{
			"zero 1": {"100", "0"},
			"zero 2": {"$10.00", "$0.00"},
			"zero 3": {"$10.00", "0.000"},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				p := newTestPool()
				a, b := p.MustParse(tt.a), p.MustParse(tt.b)
				_, err := a.Quo(b)
				if !errors.Is(err, ErrDivisionByZero) {
					t.Errorf("%q.Quo(%q) = %v, want %v", a, b, err, ErrDivisionByZero)
				}
				if err != nil && !strings.Contains(err.Error(), "divide by zero") {
					t.Errorf("%q.Quo(%q) error %q does not mention divide by zero", a, b, err)
				}
			})
		}
	})
}

func TestAmount_InPlace(t *testing.T) {
	p := newTestPool()
	a := p.MustParse("$10.00")
	b := a
	if _, err := a.InPlaceAdd(p.MustParse("$5.00")); err != nil {
		t.Fatalf("InPlaceAdd() failed: %v", err)
	}
	if a.String() != "$15.00" || b.String() != "$10.00" {
		t.Errorf("after InPlaceAdd a = %q, copy = %q, want $15.00 and $10.00", a, b)
	}
	if _, err := a.InPlaceSub(p.MustParse("$1.00")); err != nil {
		t.Fatalf("InPlaceSub() failed: %v", err)
	}
	if _, err := a.InPlaceMul(NewAmountFromInt64(2)); err != nil {
		t.Fatalf("InPlaceMul() failed: %v", err)
	}
	if _, err := a.InPlaceQuo(NewAmountFromInt64(4)); err != nil {
		t.Fatalf("InPlaceQuo() failed: %v", err)
	}
	if a.String() != "$7.00" {
		t.Errorf("a = %q, want $7.00", a)
	}
	if got, err := a.InPlaceNegate(); err != nil || got != &a || a.String() != "$-7.00" {
		t.Errorf("InPlaceNegate() = %q, %v, want $-7.00", a, err)
	}
	var null Amount
	if got, err := null.InPlaceNegate(); !errors.Is(err, ErrNullAmount) || got != &null || !null.IsNull() {
		t.Errorf("InPlaceNegate(null) = %v, want %v", err, ErrNullAmount)
	}
	before := a
	if _, err := a.InPlaceAdd(p.MustParse("€1")); err == nil {
		t.Errorf("InPlaceAdd(€1) did not fail")
	}
	if !a.Equal(before) {
		t.Errorf("failed InPlaceAdd changed the receiver to %q", a)
	}
}

func TestAmount_NegAbs(t *testing.T) {
	p := newTestPool()
	tests := []struct {
		a, neg, abs string
	}{
		{"$-10.00", "$10.00", "$10.00"},
		{"-$10.00", "$10.00", "$10.00"},
		{"10 AAPL", "-10 AAPL", "10 AAPL"},
		{"0", "0", "0"},
	}
	for _, tt := range tests {
		a := p.MustParse(tt.a)
		neg, err := a.Neg()
		if err != nil || neg.String() != tt.neg {
			t.Errorf("%q.Neg() = %q, %v, want %q", a, neg, err, tt.neg)
		}
		abs, err := a.Abs()
		if err != nil || abs.String() != tt.abs {
			t.Errorf("%q.Abs() = %q, %v, want %q", a, abs, err, tt.abs)
		}
	}
	lot := p.MustParse("10 AAPL {$150.00}")
	if neg, err := lot.Neg(); err != nil || !neg.IsAnnotated() {
		t.Errorf("Neg() dropped the annotation")
	}

	t.Run("null", func(t *testing.T) {
		var a Amount
		if _, err := a.Neg(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("Neg(null) = %v, want %v", err, ErrNullAmount)
		}
		if _, err := a.Abs(); AsAmountError(err) == nil || !errors.Is(err, ErrNullAmount) {
			t.Errorf("Abs(null) = %v, want %v", err, ErrNullAmount)
		}
	})
}

func TestAmount_Cmp(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			a, b string
			want int
		}{
			{"$1.0", "$1.00", 0},
			{"$1", "$2", -1},
			{"$2", "$1", 1},
			{"0", "$5", -1},
			{"$5", "0", 1},
			{"$0", "0", 0},
			{"-1", "1", -1},
			{"10 AAPL {$1}", "10 AAPL {$1.00}", 0},
		}
		for _, tt := range tests {
			p := newTestPool()
			a, b := p.MustParse(tt.a), p.MustParse(tt.b)
			got, err := a.Cmp(b)
			if err != nil {
				t.Errorf("%q.Cmp(%q) failed: %v", a, b, err)
				continue
			}
			if got != tt.want {
				t.Errorf("%q.Cmp(%q) = %v, want %v", a, b, got, tt.want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := map[string]struct {
			a, b string
		}{
			"commodity 1":  {"$1", "€1"},
			"commodity 2":  {"3", "$5"},
			"annotation 1": {"1 AAPL {$1}", "1 AAPL"},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				p := newTestPool()
				a, b := p.MustParse(tt.a), p.MustParse(tt.b)
				if _, err := a.Cmp(b); !errors.Is(err, ErrCommodityMismatch) {
					t.Errorf("%q.Cmp(%q) = %v, want %v", a, b, err, ErrCommodityMismatch)
				}
				if a.Equal(b) {
					t.Errorf("%q.Equal(%q) = true, want false", a, b)
				}
			})
		}
		if _, err := (Amount{}).Cmp(NewAmountFromInt64(1)); !errors.Is(err, ErrNullAmount) {
			t.Errorf("Amount{}.Cmp(1) = %v, want %v", err, ErrNullAmount)
		}
	})
}

func TestAmount_Predicates(t *testing.T) {
	p := newTestPool()
	tiny, err := p.MustParse("$0.01").Quo(NewAmountFromInt64(10))
	if err != nil {
		t.Fatalf("Quo() failed: %v", err)
	}
	tests := []struct {
		name                          string
		a                             Amount
		sign                          int
		isZero, isRealZero, isNonZero bool
	}{
		{"zero", p.MustParse("$0.00"), 0, true, true, false},
		{"tiny", tiny, 1, true, false, false},
		{"tiny kept", tiny.Unround(), 1, false, false, true},
		{"negative", p.MustParse("-5"), -1, false, false, true},
		{"null", Amount{}, 0, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.a.Sign(); got != tt.sign {
			t.Errorf("%v: Sign() = %v, want %v", tt.name, got, tt.sign)
		}
		if got := tt.a.IsZero(); got != tt.isZero {
			t.Errorf("%v: IsZero() = %v, want %v", tt.name, got, tt.isZero)
		}
		if got := tt.a.IsRealZero(); got != tt.isRealZero {
			t.Errorf("%v: IsRealZero() = %v, want %v", tt.name, got, tt.isRealZero)
		}
		if got := tt.a.IsNonZero(); got != tt.isNonZero {
			t.Errorf("%v: IsNonZero() = %v, want %v", tt.name, got, tt.isNonZero)
		}
	}
}

func TestAmount_RoundUnround(t *testing.T) {
	p := newTestPool()
	q, err := p.MustParse("$1.00").Quo(NewAmountFromInt64(3))
	if err != nil {
		t.Fatalf("Quo() failed: %v", err)
	}
	if got := q.String(); got != "$0.33" {
		t.Errorf("q.String() = %q, want $0.33", got)
	}
	if got := q.Unround().String(); got != "$0.33333333" {
		t.Errorf("q.Unround().String() = %q, want $0.33333333", got)
	}
	rt := q.Round().Unround()
	if rt.FullString() != q.FullString() || !rt.Equal(q) {
		t.Errorf("q.Round().Unround() = %q, want %q", rt.FullString(), q.FullString())
	}
	if q.Round().Precision() != q.Precision() {
		t.Errorf("Round() changed the internal precision")
	}

	t.Run("RoundTo", func(t *testing.T) {
		tests := []struct {
			a      string
			places int
			want   string
		}{
			{"0.33333333", 2, "0.33"},
			{"2.5", 0, "3"},
			{"-2.5", 0, "-3"},
			{"1.005", 2, "1.01"},
			{"1.5", 3, "1.5"},
		}
		for _, tt := range tests {
			a := p.MustParse(tt.a)
			got, err := a.RoundTo(tt.places)
			if err != nil || got.FullString() != tt.want {
				t.Errorf("%q.RoundTo(%v) = %q, %v, want %q", a, tt.places, got.FullString(), err, tt.want)
			}
		}
		if got, err := q.RoundTo(2); err != nil || got.FullString() != "$0.33" || got.Precision() != 2 {
			t.Errorf("q.RoundTo(2) = %q prec %v, %v", got.FullString(), got.Precision(), err)
		}
		if _, err := (Amount{}).RoundTo(2); !errors.Is(err, ErrNullAmount) {
			t.Errorf("RoundTo(null) = %v, want %v", err, ErrNullAmount)
		}
	})

	t.Run("null", func(t *testing.T) {
		var a Amount
		if !a.Round().IsNull() || !a.Unround().IsNull() {
			t.Errorf("Round() or Unround() of null is not null")
		}
	})
}

func TestAmount_ReduceUnreduce(t *testing.T) {
	p := newTestPool()
	if err := p.ParseConversion("1.0m", "60s"); err != nil {
		t.Fatalf("ParseConversion(1.0m, 60s) failed: %v", err)
	}
	if err := p.ParseConversion("1.0h", "60m"); err != nil {
		t.Fatalf("ParseConversion(1.0h, 60m) failed: %v", err)
	}

	a := p.MustParse("2h")
	if a.Commodity().Symbol() != "s" || !a.Decimal().Equal(decimal.NewFromInt(7200)) {
		t.Errorf("parsed 2h = %v %v, want 7200 s", a.Decimal(), a.Commodity())
	}
	if got, err := a.Unreduce(); err != nil || got.Commodity().Symbol() != "h" || !got.Decimal().Equal(decimal.NewFromInt(2)) {
		t.Errorf("Unreduce() = %v %v, %v, want 2 h", got.Decimal(), got.Commodity(), err)
	}
	if got := a.String(); got != "2.0h" {
		t.Errorf("String() = %q, want 2.0h", got)
	}

	b := p.MustParse("90s")
	if got := b.String(); got != "1.5m" {
		t.Errorf("90s.String() = %q, want 1.5m", got)
	}
	up, err := b.Unreduce()
	if err != nil {
		t.Fatalf("Unreduce() failed: %v", err)
	}
	if got, err := up.Reduce(); err != nil || !got.Equal(b) {
		t.Errorf("90s.Unreduce().Reduce() = %v, %v, want %v", got.FullString(), err, b.FullString())
	}

	raw, err := p.Parse("2h", ParseNoReduce)
	if err != nil {
		t.Fatalf("Parse(2h, ParseNoReduce) failed: %v", err)
	}
	if raw.Commodity().Symbol() != "h" {
		t.Errorf("Parse(2h, ParseNoReduce) commodity = %v, want h", raw.Commodity())
	}
	if _, err := raw.InPlaceReduce(); err != nil || !raw.Equal(a) {
		t.Errorf("InPlaceReduce() = %v, %v, want %v", raw.FullString(), err, a.FullString())
	}
	if _, err := raw.InPlaceUnreduce(); err != nil || raw.Commodity().Symbol() != "h" {
		t.Errorf("InPlaceUnreduce() commodity = %v, %v, want h", raw.Commodity(), err)
	}

	t.Run("annotation", func(t *testing.T) {
		lot, err := p.Parse("2m {$1.00}", ParseDefault)
		if err != nil {
			t.Fatalf("Parse(2m {$1.00}) failed: %v", err)
		}
		if lot.Commodity().Symbol() != "s" || lot.IsAnnotated() {
			t.Errorf("Parse(2m {$1.00}) = %v, want unannotated seconds", lot.Dump())
		}
		kept, err := p.Parse("2m {$1.00}", ParseNoReduce)
		if err != nil {
			t.Fatalf("Parse(2m {$1.00}, ParseNoReduce) failed: %v", err)
		}
		if !kept.IsAnnotated() {
			t.Errorf("Parse(2m {$1.00}, ParseNoReduce) dropped the annotation")
		}
		if got, err := kept.Reduce(); err != nil || got.IsAnnotated() {
			t.Errorf("Reduce() = %v, %v, want an unannotated amount", got.Dump(), err)
		}
	})

	t.Run("null", func(t *testing.T) {
		var null Amount
		if _, err := null.Reduce(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("Reduce(null) = %v, want %v", err, ErrNullAmount)
		}
		if _, err := null.Unreduce(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("Unreduce(null) = %v, want %v", err, ErrNullAmount)
		}
		if _, err := null.InPlaceReduce(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("InPlaceReduce(null) = %v, want %v", err, ErrNullAmount)
		}
		if _, err := null.InPlaceUnreduce(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("InPlaceUnreduce(null) = %v, want %v", err, ErrNullAmount)
		}
	})

	if !p.Find("h").HasFlags(NoMarket) {
		t.Errorf("larger unit is not flagged no-market")
	}

	p.Update(func(s *Settings) { s.KeepBase = true })
	if got := b.String(); got != "90s" {
		t.Errorf("90s.String() with KeepBase = %q, want 90s", got)
	}
}

func TestAmount_Annotate(t *testing.T) {
	p := newTestPool()
	shares := p.MustParse("10 AAPL")
	n := Annotation{
		Price: p.MustParse("$150.00"),
		Date:  mustDate("2023/01/01"),
	}
	lot, err := shares.Annotate(n)
	if err != nil {
		t.Fatalf("Annotate() failed: %v", err)
	}
	if !lot.IsAnnotated() {
		t.Errorf("IsAnnotated() = false, want true")
	}
	if shares.IsAnnotated() {
		t.Errorf("Annotate() changed the receiver")
	}
	if got, want := lot.FullString(), "10 AAPL {$150.00} [2023/01/01]"; got != want {
		t.Errorf("FullString() = %q, want %q", got, want)
	}
	if got, want := lot.String(), "10 AAPL"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !p.Find("AAPL").HasFlags(SawAnnotated) {
		t.Errorf("commodity is not flagged annotated")
	}

	n.Tag = "changed"
	if lot.Annotation().Tag != "" {
		t.Errorf("changing the annotation changed the amount")
	}

	t.Run("strip", func(t *testing.T) {
		stripped := lot.StripAnnotations()
		if stripped.IsAnnotated() {
			t.Errorf("StripAnnotations() is still annotated")
		}
		if !stripped.Equal(shares) {
			t.Errorf("StripAnnotations() = %q, want %q", stripped.FullString(), shares.FullString())
		}
		if !lot.IsAnnotated() {
			t.Errorf("StripAnnotations() changed the receiver")
		}
		kept := lot.StripAnnotationsWith(KeepDetails{Price: true, Date: true, Tag: true})
		if kept.FullString() != lot.FullString() {
			t.Errorf("StripAnnotationsWith(all) = %q, want %q", kept.FullString(), lot.FullString())
		}
		date := lot.StripAnnotationsWith(KeepDetails{Date: true})
		if got, want := date.FullString(), "10 AAPL [2023/01/01]"; got != want {
			t.Errorf("StripAnnotationsWith(date) = %q, want %q", got, want)
		}
		p.Update(func(s *Settings) { s.KeepPrice = true })
		if got, want := lot.StripAnnotations().FullString(), "10 AAPL {$150.00}"; got != want {
			t.Errorf("StripAnnotations() with KeepPrice = %q, want %q", got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		if _, err := NewAmountFromInt64(1).Annotate(n); !errors.Is(err, ErrNoCommodity) {
			t.Errorf("bare Annotate() = %v, want %v", err, ErrNoCommodity)
		}
		if _, err := (Amount{}).Annotate(n); !errors.Is(err, ErrNullAmount) {
			t.Errorf("null Annotate() = %v, want %v", err, ErrNullAmount)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := lot.Annotate(Annotation{})
		if err != nil {
			t.Fatalf("Annotate(empty) failed: %v", err)
		}
		if got.IsAnnotated() || !got.Equal(shares) {
			t.Errorf("Annotate(empty) = %q, want %q", got.FullString(), shares.FullString())
		}
	})
}

func TestAmount_Commodity(t *testing.T) {
	p := newTestPool()
	a := p.MustParse("10 AAPL {$1}")
	usd := p.Find("$")
	if got := a.WithCommodity(usd); got.Commodity() != usd || got.IsAnnotated() {
		t.Errorf("WithCommodity($) = %q", got.FullString())
	}
	if got := a.ClearCommodity(); got.HasCommodity() || got.IsAnnotated() {
		t.Errorf("ClearCommodity() = %q", got.FullString())
	}
	if got := a.Number(); got.FullString() != "10" {
		t.Errorf("Number() = %q, want 10", got.FullString())
	}
	if got := a.WithCommodity(a.Commodity()); !got.IsAnnotated() {
		t.Errorf("WithCommodity(same) dropped the annotation")
	}
}

func TestAmount_Precision(t *testing.T) {
	p := newTestPool()
	tests := []struct {
		s             string
		flags         ParseFlags
		prec, display int
		keep          bool
	}{
		{"$1", ParseDefault, 0, 2, false},
		{"$1.2345", ParseNoMigrate, 4, 4, true},
		{"1.50", ParseDefault, 2, 2, false},
	}
	for _, tt := range tests {
		a, err := p.Parse(tt.s, tt.flags)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.s, err)
		}
		if a.Precision() != tt.prec || a.DisplayPrecision() != tt.display || a.KeepPrecision() != tt.keep {
			t.Errorf("Parse(%q) prec %v display %v keep %v, want %v %v %v", tt.s,
				a.Precision(), a.DisplayPrecision(), a.KeepPrecision(), tt.prec, tt.display, tt.keep)
		}
	}
}

func TestAmount_Float64(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			s    string
			want float64
		}{
			{"0", 0},
			{"0.1", 0.1},
			{"-2.5", -2.5},
			{"1234567.125", 1234567.125},
		}
		for _, tt := range tests {
			a := CurrentPool().MustParse(tt.s)
			got, err := a.Float64()
			if err != nil {
				t.Errorf("%q.Float64() failed: %v", a, err)
				continue
			}
			if got != tt.want {
				t.Errorf("%q.Float64() = %v, want %v", a, got, tt.want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		a := CurrentPool().MustParse("0.12345678901234567890123")
		if a.FitsInFloat64() {
			t.Errorf("%q.FitsInFloat64() = true, want false", a)
		}
		if _, err := a.Float64(); !errors.Is(err, ErrConversion) {
			t.Errorf("%q.Float64() = %v, want %v", a, err, ErrConversion)
		}
		if got := a.Float64Unchecked(); math.Abs(got-0.123456789012345678) > 1e-15 {
			t.Errorf("%q.Float64Unchecked() = %v", a, got)
		}
		if _, err := (Amount{}).Float64(); !errors.Is(err, ErrNullAmount) {
			t.Errorf("Amount{}.Float64() = %v, want %v", err, ErrNullAmount)
		}
	})
}

func TestAmount_Int64(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			s    string
			want int64
		}{
			{"0", 0},
			{"2.5", 3},
			{"-2.5", -3},
			{"2.4", 2},
			{"9223372036854775807", math.MaxInt64},
		}
		for _, tt := range tests {
			a := CurrentPool().MustParse(tt.s)
			got, err := a.Int64()
			if err != nil {
				t.Errorf("%q.Int64() failed: %v", a, err)
				continue
			}
			if got != tt.want {
				t.Errorf("%q.Int64() = %v, want %v", a, got, tt.want)
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := []struct {
			s    string
			want int64
		}{
			{"9223372036854775808", math.MaxInt64},
			{"-9999999999999999999999", math.MinInt64},
		}
		for _, tt := range tests {
			a := CurrentPool().MustParse(tt.s)
			if a.FitsInInt64() {
				t.Errorf("%q.FitsInInt64() = true, want false", a)
			}
			if _, err := a.Int64(); !errors.Is(err, ErrConversion) {
				t.Errorf("%q.Int64() = %v, want %v", a, err, ErrConversion)
			}
			if got := a.Int64Unchecked(); got != tt.want {
				t.Errorf("%q.Int64Unchecked() = %v, want %v", a, got, tt.want)
			}
		}
	})
}

func TestAmount_Valid(t *testing.T) {
	p := newTestPool()
	for _, s := range []string{"$1,234.50", "-0.001", "10 AAPL {$150.00} [2023/01/01] (lot1)"} {
		if a := p.MustParse(s); !a.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	foreign := NewPool().FindOrCreate("X")
	forged := Amount{quantity: decimal.NewFromInt(1), valid: true, comm: &Commodity{pool: foreign.pool, symbol: "X"}}
	if forged.Valid() {
		t.Errorf("amount with an unregistered commodity is valid")
	}
	overflow := Amount{quantity: decimal.RequireFromString("1.25"), prec: 1, valid: true}
	if overflow.Valid() {
		t.Errorf("amount with digits beyond its precision is valid")
	}
}

func TestAmount_Dump(t *testing.T) {
	if got := (Amount{}).Dump(); got != "AMOUNT(<null>)" {
		t.Errorf("Amount{}.Dump() = %q", got)
	}
	p := newTestPool()
	got := p.MustParse("10 AAPL {$1.50}").Dump()
	for _, want := range []string{"prec:0", "keep:false", `commodity:"AAPL"`, "annotation:"} {
		if !strings.Contains(got, want) {
			t.Errorf("Dump() = %q, missing %q", got, want)
		}
	}
}

func mustDate(s string) time.Time {
	d, err := parseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
