package ledger

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
)

func TestAmount_String(t *testing.T) {
	p := newTestPool()
	tests := []struct {
		a    Amount
		want string
	}{
		{Amount{}, "<null>"},
		{NewAmountFromInt64(0), "0"},
		{MustNewAmount(-12345, 3), "-12.345"},
		{MustNewAmount(12345, 2).WithCommodity(p.Find("$")), "$123.45"},
		{MustNewAmount(123456789, 0).WithCommodity(p.Find("$")), "$123456789.00"},
		{MustNewAmount(5, 3).WithCommodity(p.Find("$")), "$0.01"},
		{MustNewAmount(-5, 3).WithCommodity(p.Find("$")), "$-0.01"},
		{MustNewAmount(-4, 3).WithCommodity(p.Find("$")), "$0.00"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.a.Dump(), got, tt.want)
		}
	}

	t.Run("thousands", func(t *testing.T) {
		q := newTestPool()
		q.MustParse("1,000.00 T")
		tests := []struct {
			s, want string
		}{
			{"1 T", "1.00 T"},
			{"999 T", "999.00 T"},
			{"1000 T", "1,000.00 T"},
			{"-1234567.5 T", "-1,234,567.50 T"},
			{"123456 T", "123,456.00 T"},
		}
		for _, tt := range tests {
			if got := q.MustParse(tt.s).String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.s, got, tt.want)
			}
		}
	})
}

func TestAmount_StreamFullStrings(t *testing.T) {
	p := newTestPool()
	q, err := p.MustParse("$1.00").Quo(NewAmountFromInt64(3))
	if err != nil {
		t.Fatalf("Quo() failed: %v", err)
	}
	if got := q.String(); got != "$0.33" {
		t.Errorf("String() = %q, want $0.33", got)
	}
	p.Update(func(s *Settings) { s.StreamFullStrings = true })
	if got := q.String(); got != "$0.33333333" {
		t.Errorf("String() with StreamFullStrings = %q, want $0.33333333", got)
	}
}

func TestAmount_KeepSettings(t *testing.T) {
	p := newTestPool()
	lot := p.MustParse("10 AAPL {$150.00} [2023/01/01] (lot1)")
	tests := []struct {
		keep func(*Settings)
		want string
	}{
		{func(s *Settings) {}, "10 AAPL"},
		{func(s *Settings) { s.KeepPrice = true }, "10 AAPL {$150.00}"},
		{func(s *Settings) { s.KeepDate = true }, "10 AAPL [2023/01/01]"},
		{func(s *Settings) { s.KeepTag = true }, "10 AAPL (lot1)"},
		{func(s *Settings) { s.KeepPrice, s.KeepDate, s.KeepTag = true, true, true }, "10 AAPL {$150.00} [2023/01/01] (lot1)"},
	}
	for _, tt := range tests {
		p.SetSettings(Settings{})
		p.Update(tt.keep)
		if got := lot.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAmount_QuantityString(t *testing.T) {
	p := newTestPool()
	tests := []struct {
		a    Amount
		want string
	}{
		{Amount{}, "<null>"},
		{p.MustParse("$1,234.50"), "1,234.50"},
		{p.MustParse("10 AAPL {$1}"), "10"},
		{p.MustParse("-0.5"), "-0.5"},
	}
	for _, tt := range tests {
		if got := tt.a.QuantityString(); got != tt.want {
			t.Errorf("%q.QuantityString() = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestAmount_Format(t *testing.T) {
	p := newTestPool()
	a := p.MustParse("$1,234.50")
	third, err := p.MustParse("$1.00").Quo(NewAmountFromInt64(3))
	if err != nil {
		t.Fatalf("Quo() failed: %v", err)
	}
	tests := []struct {
		a      Amount
		format string
		want   string
	}{
		{a, "%v", "$1,234.50"},
		{a, "%s", "$1,234.50"},
		{a, "%q", `"$1,234.50"`},
		{a, "%f", "1234.50"},
		{a, "%.1f", "1234.5"},
		{a, "%.0f", "1235"},
		{a, "%c", "$"},
		{a, "%12v", "   $1,234.50"},
		{a, "%-12v|", "$1,234.50   |"},
		{a, "%d", "%!d(ledger.Amount=$1,234.50)"},
		{third, "%v", "$0.33"},
		{third, "%+v", "$0.33333333"},
		{third, "%f", "0.33"},
		{third, "%.4f", "0.3333"},
		{NewAmountFromInt64(7), "%c|", "|"},
		{Amount{}, "%v", "<null>"},
		{Amount{}, "%f", "<null>"},
	}
	for _, tt := range tests {
		if got := fmt.Sprintf(tt.format, tt.a); got != tt.want {
			t.Errorf("fmt.Sprintf(%q, %v) = %q, want %q", tt.format, tt.a.Dump(), got, tt.want)
		}
	}
}

func TestAmount_Print(t *testing.T) {
	p := newTestPool()
	var buf bytes.Buffer
	if err := p.MustParse("€5").Print(&buf); err != nil {
		t.Fatalf("Print() failed: %v", err)
	}
	if got := buf.String(); got != "€5.00" {
		t.Errorf("Print() wrote %q, want €5.00", got)
	}
}

func TestAmount_MarshalText(t *testing.T) {
	a := MustParseAmount("TXT 12.50")
	text, err := a.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() failed: %v", err)
	}
	if string(text) != "TXT 12.50" {
		t.Errorf("MarshalText() = %q, want TXT 12.50", text)
	}
	var b Amount
	if err := b.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
	}
	if !b.Equal(a) || b.Commodity() != a.Commodity() {
		t.Errorf("UnmarshalText(%q) = %v, want %v", text, b.Dump(), a.Dump())
	}

	t.Run("null", func(t *testing.T) {
		text, err := Amount{}.MarshalText()
		if err != nil || len(text) != 0 {
			t.Errorf("Amount{}.MarshalText() = %q, %v", text, err)
		}
		b := a
		if err := b.UnmarshalText(text); err != nil || !b.IsNull() {
			t.Errorf("UnmarshalText(%q) = %v, %v, want null", text, b, err)
		}
		if err := b.UnmarshalText([]byte("<null>")); err != nil || !b.IsNull() {
			t.Errorf("UnmarshalText(<null>) = %v, %v, want null", b, err)
		}
	})

	t.Run("json", func(t *testing.T) {
		type entry struct {
			Total Amount `json:"total"`
		}
		data, err := json.Marshal(entry{Total: a})
		if err != nil {
			t.Fatalf("json.Marshal() failed: %v", err)
		}
		if string(data) != `{"total":"TXT 12.50"}` {
			t.Errorf("json.Marshal() = %s", data)
		}
		var got entry
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("json.Unmarshal(%s) failed: %v", data, err)
		}
		if !got.Total.Equal(a) {
			t.Errorf("json.Unmarshal(%s) = %v, want %v", data, got.Total, a)
		}
	})

	t.Run("error", func(t *testing.T) {
		var b Amount
		if err := b.UnmarshalText([]byte("TXT 1.2.3")); err == nil {
			t.Errorf("UnmarshalText(TXT 1.2.3) did not fail")
		}
	})
}
