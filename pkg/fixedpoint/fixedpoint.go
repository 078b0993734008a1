// Package fixedpoint carries integer amounts together with their decimal
// scale so values denominated in assets of different precision are never
// compared raw. Every cross-asset comparison in the ledger goes through
// Rescale; call sites never multiply by ad hoc powers of ten.
package fixedpoint

import "math/big"

type Amount struct {
	value *big.Int
	scale uint8
}

// New wraps value as an amount with scale fractional decimal digits.
// The big.Int is copied; callers keep ownership of value.
func New(value *big.Int, scale uint8) Amount {
	if value == nil {
		return Amount{value: new(big.Int), scale: scale}
	}
	return Amount{value: new(big.Int).Set(value), scale: scale}
}

func FromUint64(value uint64, scale uint8) Amount {
	return Amount{value: new(big.Int).SetUint64(value), scale: scale}
}

func (a Amount) Scale() uint8 { return a.scale }

func (a Amount) Sign() int {
	if a.value == nil {
		return 0
	}
	return a.value.Sign()
}

// BigInt returns a copy of the raw integer at the amount's own scale.
func (a Amount) BigInt() *big.Int {
	if a.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.value)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Rescale converts the amount to a different decimal scale. Scaling up is
// exact; scaling down truncates toward zero, matching the ledger's
// floor-division convention everywhere fractions of a base unit appear.
func (a Amount) Rescale(to uint8) Amount {
	v := a.BigInt()
	switch {
	case to > a.scale:
		v.Mul(v, pow10(to-a.scale))
	case to < a.scale:
		v.Quo(v, pow10(a.scale-to))
	}
	return Amount{value: v, scale: to}
}

// Mul multiplies two amounts; the result carries the summed scale.
func (a Amount) Mul(b Amount) Amount {
	return Amount{
		value: new(big.Int).Mul(a.BigInt(), b.BigInt()),
		scale: a.scale + b.scale,
	}
}

// Cmp compares two amounts after bringing both to the larger scale, so the
// comparison is exact regardless of how the operands were denominated.
func (a Amount) Cmp(b Amount) int {
	s := a.scale
	if b.scale > s {
		s = b.scale
	}
	return a.Rescale(s).value.Cmp(b.Rescale(s).value)
}
