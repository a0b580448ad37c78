// Package swaption prices European swaptions on fixed-vs-floating swaps.
package swaption

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/ratekit/swap"
)

var (
	// ErrInconsistentMarketData is returned when the rates and volatility data
	// are for different valuation dates.
	ErrInconsistentMarketData = errors.New("inconsistent market data")
	// ErrDomainRange is returned when a quantity is requested outside the range
	// where it is defined, such as the implied volatility of an expired option.
	ErrDomainRange = errors.New("domain range")
)

// LongShort is the option holder's position.
type LongShort string

const (
	Long  LongShort = "LONG"
	Short LongShort = "SHORT"
)

// ParseLongShort accepts LONG or SHORT.
func ParseLongShort(s string) (LongShort, error) {
	switch LongShort(s) {
	case Long, Short:
		return LongShort(s), nil
	default:
		return "", fmt.Errorf("ParseLongShort: unknown position %q", s)
	}
}

// Sign is +1 for long and -1 for short.
func (l LongShort) Sign() float64 {
	if l == Short {
		return -1
	}
	return 1
}

// SettlementType says how exercise is settled.
type SettlementType string

const (
	Physical SettlementType = "PHYSICAL"
	Cash     SettlementType = "CASH"
)

// Swaption is the right to enter the underlying swap at expiry.
type Swaption struct {
	LongShort  LongShort
	Settlement SettlementType
	// Expiry is the expiry date and time, compared with the surface's valuation date-time.
	Expiry     time.Time
	Underlying swap.ExpandedSwap
}

// PutCall is the option type seen from the fixed rate.
type PutCall int

const (
	Call PutCall = iota
	Put
)

func (p PutCall) String() string {
	if p == Put {
		return "PUT"
	}
	return "CALL"
}

// putCall maps a payer swaption (fixed paid) to a call on the rate and a
// receiver swaption to a put.
func putCall(fixed swap.ExpandedLeg) PutCall {
	if fixed.PayReceive == swap.Receive {
		return Put
	}
	return Call
}
