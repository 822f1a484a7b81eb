/*
Package ledger implements commodity amounts as used in double-entry
accounting: exact decimal quantities of currencies, securities or any other
unit, optionally annotated with the lot they were acquired in.
It leverages the [decimal] package for arbitrary-precision arithmetic and
combines it with a [Commodity] registry that learns how every commodity is
written.

# Features

  - Exact arithmetic, with no rounding until an amount is printed
  - Commodities learned from parsed text: precision, symbol placement,
    thousands separators and decimal commas
  - Lot annotations with acquisition price, date and tag
  - Unit conversions such as hours, minutes and seconds
  - Market valuation from a price history
  - Text, binary and XML forms

# Representation

An [Amount] consists of a decimal quantity, an internal precision, an
optional *[Commodity] and an optional [Annotation].
Commodities are owned by a [Pool] and compared by identity, so two amounts
share a commodity only if they were resolved through the same pool.
The zero value of Amount is the null amount, which is distinct from zero.

Each amount has two precisions. The internal precision is the number of
digits its quantity carries; it grows with multiplication and division.
The display precision is the precision of its commodity, unless the amount
keeps its own precision, which [Amount.Unround] and exact parsing request.
[Amount.Round] goes back to the commodity precision without losing digits.

# Pools

Most programs use the process-wide pool created by [Initialize] and
discarded by [Shutdown]; [ParseAmount] and the decoding of amounts resolve
commodities through it. Programs that need isolated registries create
their own with [NewPool] and parse with [Pool.Parse].

# Operations

Amounts support Add, Sub, Mul and Quo, comparison, negation, rounding,
reduction to smaller units and valuation.
Adding or comparing amounts of different commodities fails with
[ErrCommodityMismatch]; a bare amount takes the commodity of the other
operand.
The generic helpers [Add], [Sub], [Mul], [Quo] and [Compare] accept
integers, floats and strings in place of amounts.

# Errors

Errors returned by amount operations are [*AmountError] values describing
the failed operation. Its cause can be tested with [errors.Is] against the
package sentinels such as [ErrNullAmount] or [ErrDivisionByZero].
*/
package ledger
