package ledger

import (
	"strings"
	"time"
)

// DateFormat is the layout used to write annotation and price dates.
const DateFormat = "2006/01/02"

// dateLayouts are the layouts accepted when reading dates, most specific first.
var dateLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/1/2",
	"2006-1-2",
	"2006.1.2",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func formatDate(t time.Time) string {
	if h, m, s := t.Clock(); h != 0 || m != 0 || s != 0 {
		return t.Format(DateFormat + " 15:04:05")
	}
	return t.Format(DateFormat)
}

// Annotation records the lot an amount was acquired in: its acquisition
// price, its acquisition date and a free-form tag.
// A field is absent when it holds its zero value (a null Price, a zero Date
// or an empty Tag); an annotation with every field absent is the same as no
// annotation at all.
type Annotation struct {
	Price   Amount    // acquisition price per unit
	Date    time.Time // acquisition date
	Tag     string    // free-form lot tag
	Fixated bool      // Price is a fixed valuation price ({=$10})
}

// KeepDetails selects annotation fields.
type KeepDetails struct {
	Price bool
	Date  bool
	Tag   bool
}

// All reports whether every field is kept.
func (k KeepDetails) All() bool {
	return k.Price && k.Date && k.Tag
}

// IsEmpty reports whether no field of the annotation is populated.
func (n Annotation) IsEmpty() bool {
	return n.Price.IsNull() && n.Date.IsZero() && n.Tag == ""
}

// Equal reports whether two annotations carry the same lot details.
// Prices are equal when they have the same commodity and magnitude.
func (n Annotation) Equal(m Annotation) bool {
	if n.IsEmpty() || m.IsEmpty() {
		return n.IsEmpty() == m.IsEmpty()
	}
	if n.Price.IsNull() != m.Price.IsNull() || n.Tag != m.Tag || !n.Date.Equal(m.Date) {
		return false
	}
	if n.Price.IsNull() {
		return true
	}
	return n.Fixated == m.Fixated && n.Price.comm == m.Price.comm && n.Price.quantity.Equal(m.Price.quantity)
}

// Strip returns the annotation with only the selected fields.
func (n Annotation) Strip(keep KeepDetails) Annotation {
	var res Annotation
	if keep.Price {
		res.Price, res.Fixated = n.Price, n.Fixated
	}
	if keep.Date {
		res.Date = n.Date
	}
	if keep.Tag {
		res.Tag = n.Tag
	}
	return res
}

// String returns the annotation as it is written after an amount, for
// example " {$150.00} [2023/01/01] (lot1)".
// An empty annotation is rendered as an empty string.
func (n Annotation) String() string {
	return n.format(true)
}

func (n Annotation) format(full bool) string {
	var sb strings.Builder
	if !n.Price.IsNull() {
		sb.WriteString(" {")
		if n.Fixated {
			sb.WriteByte('=')
		}
		if full {
			sb.WriteString(n.Price.FullString())
		} else {
			sb.WriteString(n.Price.String())
		}
		sb.WriteByte('}')
	}
	if !n.Date.IsZero() {
		sb.WriteString(" [")
		sb.WriteString(formatDate(n.Date))
		sb.WriteByte(']')
	}
	if n.Tag != "" {
		sb.WriteString(" (")
		sb.WriteString(n.Tag)
		sb.WriteByte(')')
	}
	return sb.String()
}

// normalize returns a heap copy suitable for sharing between amounts, or
// nil for an empty annotation. The copy is never mutated afterwards.
func (n Annotation) normalize() *Annotation {
	if n.IsEmpty() {
		return nil
	}
	if !n.Price.IsNull() {
		n.Price.ann = nil
	} else {
		n.Fixated = false
	}
	return &n
}

func annotationsEqual(a, b *Annotation) bool {
	switch {
	case a == b:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(*b)
	}
}
