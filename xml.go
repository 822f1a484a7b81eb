package ledger

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type xmlAmount struct {
	XMLName    xml.Name       `xml:"amount"`
	Null       bool           `xml:"null,attr,omitempty"`
	Commodity  *xmlCommodity  `xml:"commodity,omitempty"`
	Quantity   string         `xml:"quantity,omitempty"`
	Annotation *xmlAnnotation `xml:"annotation,omitempty"`
}

type xmlCommodity struct {
	Flags  string `xml:"flags,attr,omitempty"`
	Symbol string `xml:"symbol"`
}

type xmlAnnotation struct {
	Fixated bool      `xml:"fixated,attr,omitempty"`
	Price   *xmlPrice `xml:"price,omitempty"`
	Date    string    `xml:"date,omitempty"`
	Tag     string    `xml:"tag,omitempty"`
}

type xmlPrice struct {
	Amount xmlAmount `xml:"amount"`
}

func (a Amount) toXML() xmlAmount {
	if !a.valid {
		return xmlAmount{Null: true}
	}
	x := xmlAmount{Quantity: a.quantity.StringFixed(int32(a.prec))}
	if a.comm != nil {
		x.Commodity = &xmlCommodity{Flags: a.comm.Flags().String(), Symbol: a.comm.symbol}
	}
	if a.ann != nil {
		n := &xmlAnnotation{Fixated: a.ann.Fixated, Tag: a.ann.Tag}
		if !a.ann.Price.IsNull() {
			n.Price = &xmlPrice{Amount: a.ann.Price.toXML()}
		}
		if !a.ann.Date.IsZero() {
			n.Date = formatDate(a.ann.Date)
		}
		x.Annotation = n
	}
	return x
}

// WriteXML writes the amount as an XML element, for example
//
//	<amount>
//	  <commodity flags="T">
//	    <symbol>$</symbol>
//	  </commodity>
//	  <quantity>1234.50</quantity>
//	</amount>
//
// The quantity is written at full internal precision. Depth indents every
// line by two spaces per level so the element can be nested in a larger
// document.
func (a Amount) WriteXML(w io.Writer, depth int) error {
	enc := xml.NewEncoder(w)
	enc.Indent(strings.Repeat("  ", max(depth, 0)), "  ")
	if err := enc.Encode(a.toXML()); err != nil {
		return newAmountError("writing amount xml", err)
	}
	return nil
}

// ReadXML reads an amount element written by [Amount.WriteXML].
// Commodities are resolved in the pool and created when unknown; their
// flags are not restored.
func (p *Pool) ReadXML(r io.Reader) (Amount, error) {
	var x xmlAmount
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return Amount{}, newAmountError("reading amount xml", err)
	}
	a, err := p.fromXML(x)
	if err != nil {
		return Amount{}, newAmountError("reading amount xml", err)
	}
	return a, nil
}

func (p *Pool) fromXML(x xmlAmount) (Amount, error) {
	if x.Null {
		return Amount{}, nil
	}
	q, err := decimal.NewFromString(strings.TrimSpace(x.Quantity))
	if err != nil {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "quantity %q", x.Quantity)
	}
	a := NewAmountFromDecimal(q)
	if x.Commodity != nil && x.Commodity.Symbol != "" {
		a.comm = p.FindOrCreate(x.Commodity.Symbol)
	}
	if x.Annotation == nil {
		return a, nil
	}
	n := Annotation{Fixated: x.Annotation.Fixated, Tag: x.Annotation.Tag}
	if x.Annotation.Price != nil {
		if n.Price, err = p.fromXML(x.Annotation.Price.Amount); err != nil {
			return Amount{}, errors.Wrap(err, "lot price")
		}
	}
	if x.Annotation.Date != "" {
		if n.Date, err = parseDate(x.Annotation.Date); err != nil {
			return Amount{}, errors.Wrapf(ErrInvalidAmount, "lot date %q", x.Annotation.Date)
		}
	}
	if n.IsEmpty() {
		return a, nil
	}
	if a.comm == nil {
		return Amount{}, ErrNoCommodity
	}
	a.ann = n.normalize()
	return a, nil
}
