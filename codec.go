package ledger

import (
	"bytes"
	"io"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ msgpack.CustomEncoder = Amount{}
	_ msgpack.CustomDecoder = (*Amount)(nil)
)

// Binary records are msgpack arrays:
//
//	amount:     nil | [symbol, precision, keep, negative, coefficient, exponent, annotation]
//	annotation: nil | [price amount, RFC 3339 date or "", tag, fixated]
//
// The coefficient is the big-endian absolute value of the unscaled magnitude.
const (
	amountFields     = 7
	annotationFields = 4
)

// EncodeMsgpack implements the [msgpack.CustomEncoder] interface.
func (a Amount) EncodeMsgpack(enc *msgpack.Encoder) error {
	return errors.Wrapf(a.encode(enc), "could not EncodeMsgpack amount %v", a.Dump())
}

func (a Amount) encode(enc *msgpack.Encoder) error {
	if !a.valid {
		return enc.EncodeNil()
	}
	sym := ""
	if a.comm != nil {
		sym = a.comm.symbol
	}
	coef := a.quantity.Coefficient()
	if err := enc.EncodeArrayLen(amountFields); err != nil {
		return err
	}
	if err := enc.EncodeString(sym); err != nil {
		return err
	}
	if err := enc.EncodeUint(uint64(a.prec)); err != nil {
		return err
	}
	if err := enc.EncodeBool(a.keep); err != nil {
		return err
	}
	if err := enc.EncodeBool(coef.Sign() < 0); err != nil {
		return err
	}
	if err := enc.EncodeBytes(new(big.Int).Abs(coef).Bytes()); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(a.quantity.Exponent())); err != nil {
		return err
	}
	if a.ann == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeArrayLen(annotationFields); err != nil {
		return err
	}
	if err := a.ann.Price.encode(enc); err != nil {
		return err
	}
	date := ""
	if !a.ann.Date.IsZero() {
		date = a.ann.Date.Format(time.RFC3339Nano)
	}
	if err := enc.EncodeString(date); err != nil {
		return err
	}
	if err := enc.EncodeString(a.ann.Tag); err != nil {
		return err
	}
	return enc.EncodeBool(a.ann.Fixated)
}

// DecodeMsgpack implements the [msgpack.CustomDecoder] interface.
// Commodities are resolved through the process-wide pool.
func (a *Amount) DecodeMsgpack(dec *msgpack.Decoder) error {
	p, err := currentPool()
	if err != nil {
		return err
	}
	b, err := p.decode(dec)
	if err != nil {
		return errors.Wrap(err, "could not DecodeMsgpack amount")
	}
	*a = b
	return nil
}

func (p *Pool) decode(dec *msgpack.Decoder) (Amount, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Amount{}, err
	}
	if n == -1 {
		return Amount{}, nil
	}
	if n != amountFields {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "amount record has %d fields", n)
	}
	sym, err := dec.DecodeString()
	if err != nil {
		return Amount{}, err
	}
	prec, err := dec.DecodeUint()
	if err != nil {
		return Amount{}, err
	}
	if prec > MaxPrecision {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "precision %d out of range", prec)
	}
	keep, err := dec.DecodeBool()
	if err != nil {
		return Amount{}, err
	}
	neg, err := dec.DecodeBool()
	if err != nil {
		return Amount{}, err
	}
	abs, err := dec.DecodeBytes()
	if err != nil {
		return Amount{}, err
	}
	exp, err := dec.DecodeInt()
	if err != nil {
		return Amount{}, err
	}
	coef := new(big.Int).SetBytes(abs)
	if neg {
		coef.Neg(coef)
	}
	a := Amount{
		quantity: decimal.NewFromBigInt(coef, int32(exp)),
		prec:     int(prec),
		keep:     keep,
		valid:    true,
	}
	if sym != "" {
		a.comm = p.FindOrCreate(sym)
	}

	n, err = dec.DecodeArrayLen()
	if err != nil {
		return Amount{}, err
	}
	if n == -1 {
		return a, nil
	}
	if n != annotationFields {
		return Amount{}, errors.Wrapf(ErrInvalidAmount, "annotation record has %d fields", n)
	}
	var ann Annotation
	if ann.Price, err = p.decode(dec); err != nil {
		return Amount{}, errors.Wrap(err, "lot price")
	}
	date, err := dec.DecodeString()
	if err != nil {
		return Amount{}, err
	}
	if date != "" {
		if ann.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return Amount{}, errors.Wrapf(ErrInvalidAmount, "lot date %q", date)
		}
	}
	if ann.Tag, err = dec.DecodeString(); err != nil {
		return Amount{}, err
	}
	if ann.Fixated, err = dec.DecodeBool(); err != nil {
		return Amount{}, err
	}
	if ann.IsEmpty() {
		return a, nil
	}
	if a.comm == nil {
		return Amount{}, ErrNoCommodity
	}
	a.ann = ann.normalize()
	a.comm.AddFlags(SawAnnotated)
	return a, nil
}

// Write writes the binary record of the amount to w.
func (a Amount) Write(w io.Writer) error {
	if err := a.encode(msgpack.NewEncoder(w)); err != nil {
		return newAmountError("writing amount", err)
	}
	return nil
}

// ReadAmount reads one binary record written by [Amount.Write] from r,
// resolving its commodity in the pool and creating it when unknown.
// ReadAmount never reads past the record, so consecutive records can be
// read from the same stream. Readers without [io.ByteScanner] are read a
// byte at a time; wrap them in a [bufio.Reader] when that matters.
func (p *Pool) ReadAmount(r io.Reader) (Amount, error) {
	if _, ok := r.(io.ByteScanner); !ok {
		r = &exactReader{r: r}
	}
	a, err := p.decode(msgpack.NewDecoder(r))
	if err != nil {
		return Amount{}, newAmountError("reading amount", err)
	}
	return a, nil
}

// exactReader adds [io.ByteScanner] to a reader without buffering, so the
// decoder consumes exactly one record.
type exactReader struct {
	r       io.Reader
	last    [1]byte
	hasLast bool
	pending bool
}

func (e *exactReader) ReadByte() (byte, error) {
	if e.pending {
		e.pending, e.hasLast = false, true
		return e.last[0], nil
	}
	if _, err := io.ReadFull(e.r, e.last[:]); err != nil {
		e.hasLast = false
		return 0, err
	}
	e.hasLast = true
	return e.last[0], nil
}

func (e *exactReader) UnreadByte() error {
	if !e.hasLast {
		return errors.New("UnreadByte: no byte to unread")
	}
	e.pending, e.hasLast = true, false
	return nil
}

func (e *exactReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n := 0
	if e.pending {
		b[0] = e.last[0]
		e.pending = false
		n = 1
	}
	var err error
	if n < len(b) {
		var m int
		m, err = e.r.Read(b[n:])
		n += m
	}
	e.hasLast = n > 0
	if e.hasLast {
		e.last[0] = b[n-1]
	}
	return n, err
}

// Read replaces the receiver with the binary record read from r, using the
// process-wide pool. See [Pool.ReadAmount].
func (a *Amount) Read(r io.Reader) error {
	p, err := currentPool()
	if err != nil {
		return err
	}
	b, err := p.ReadAmount(r)
	if err != nil {
		return err
	}
	*a = b
	return nil
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (a Amount) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
// Commodities are resolved through the process-wide pool.
func (a *Amount) UnmarshalBinary(data []byte) error {
	return a.Read(bytes.NewReader(data))
}
