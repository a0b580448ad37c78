// Package calibration fits curve groups to market quotes with a multi-curve
// Newton solver.
package calibration

import (
	"fmt"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/market"
)

// NodeKind selects the instrument a node is calibrated to.
type NodeKind string

const (
	TermDepositNode        NodeKind = "TERM_DEPOSIT"
	IborFixingDepositNode  NodeKind = "IBOR_FIXING_DEPOSIT"
	FraNode                NodeKind = "FRA"
	FixedIborSwapNode      NodeKind = "FIXED_IBOR_SWAP"
	FixedOvernightSwapNode NodeKind = "FIXED_OVERNIGHT_SWAP"
)

// Node is one curve node and the quoted instrument that pins it.
//
// Which fields are read depends on Kind:
//   - TERM_DEPOSIT: Currency, DayCount, Calendar, SpotLag, Tenor
//   - IBOR_FIXING_DEPOSIT: Index (the tenor is the index tenor)
//   - FRA: Index, Start (months to the FRA start; the period is the index tenor)
//   - FIXED_IBOR_SWAP, FIXED_OVERNIGHT_SWAP: Convention, Start (forward start), Tenor
type Node struct {
	Kind       NodeKind
	QuoteID    string
	Label      string
	Tenor      market.Tenor
	Start      market.Tenor
	Convention string
	Index      market.Index
	Currency   market.Currency
	DayCount   market.DayCount
	Calendar   calendar.CalendarID
	SpotLag    int
}

// label defaults to the quote id.
func (n Node) label() string {
	if n.Label != "" {
		return n.Label
	}
	return n.QuoteID
}

// CurveDefinition describes one curve of a group.
type CurveDefinition struct {
	Name         string
	ValueType    curve.ValueType
	DayCount     market.DayCount
	Interpolator interp.Interpolator
	Left         interp.Extrapolator
	Right        interp.Extrapolator
	Nodes        []Node
}

// GroupDefinition is a set of curves calibrated together. Curves are solved in
// order and each node owns one parameter.
type GroupDefinition struct {
	Name     string
	Curves   []CurveDefinition
	Discount map[market.Currency]string
	Forward  map[market.Index]string
}

// Validate checks names, roles and node counts.
func (g GroupDefinition) Validate() error {
	if len(g.Curves) == 0 {
		return fmt.Errorf("GroupDefinition.Validate: %s: no curves", g.Name)
	}
	names := make(map[string]struct{}, len(g.Curves))
	for _, c := range g.Curves {
		if c.Name == "" {
			return fmt.Errorf("GroupDefinition.Validate: %s: unnamed curve", g.Name)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("GroupDefinition.Validate: %s: duplicate curve %s", g.Name, c.Name)
		}
		names[c.Name] = struct{}{}
		if len(c.Nodes) < 2 {
			return fmt.Errorf("GroupDefinition.Validate: %s: curve %s needs at least 2 nodes, has %d", g.Name, c.Name, len(c.Nodes))
		}
		for i, n := range c.Nodes {
			if n.QuoteID == "" {
				return fmt.Errorf("GroupDefinition.Validate: %s: curve %s node %d has no quote id", g.Name, c.Name, i)
			}
		}
	}
	for ccy, name := range g.Discount {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("GroupDefinition.Validate: %s: discount curve %s for %s is not defined", g.Name, name, ccy)
		}
	}
	for idx, name := range g.Forward {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("GroupDefinition.Validate: %s: forward curve %s for %s is not defined", g.Name, name, idx)
		}
	}
	return nil
}

// ParameterCount is the total number of nodes.
func (g GroupDefinition) ParameterCount() int {
	n := 0
	for _, c := range g.Curves {
		n += len(c.Nodes)
	}
	return n
}

func (c CurveDefinition) metadata() curve.Metadata {
	meta := curve.Metadata{
		Name:         c.Name,
		ValueType:    c.ValueType,
		DayCount:     c.DayCount,
		Interpolator: c.Interpolator,
		Left:         c.Left,
		Right:        c.Right,
		NodeLabels:   make([]string, len(c.Nodes)),
	}
	if meta.DayCount == "" {
		meta.DayCount = market.Act365F
	}
	if meta.Interpolator == "" {
		meta.Interpolator = interp.NaturalCubic
	}
	if meta.Left == "" {
		meta.Left = interp.ExtrapolateFlat
	}
	if meta.Right == "" {
		meta.Right = interp.ExtrapolateFlat
	}
	for i, n := range c.Nodes {
		meta.NodeLabels[i] = n.label()
	}
	return meta
}
