// Package order is the catalog of tie-break orders used by interval sweeps.
//
// Half-events sharing a timestamp are ordered by a token made of three flags:
// whether the event belongs to the reference (left) operand, whether its
// bound is closed, and whether it starts an interval. Each Order is a total
// preorder over the tokens of its Family, defined like a sort key: a tuple of
// boolean expressions compared lexicographically with false before true.
//
// Orders are stateless values. Their String form prints the ordering they
// induce over every token of the family at time 1, e.g. "[1 < 1) < (1 < 1]",
// which is how they are tested.
package order

import (
	"fmt"
	"slices"
	"strings"
)

// Family selects which token flags an order distinguishes.
type Family uint8

// Families of orders.
const (
	// Unbounded orders look at the start flag only.
	Unbounded Family = iota
	// Bounds orders look at closedness and start.
	Bounds
	// Reference orders look at the operand and start.
	Reference
	// ReferenceBounds orders look at all three flags.
	ReferenceBounds
)

// String returns the family prefix used in order names.
func (f Family) String() string {
	switch f {
	case Unbounded:
		return "unbounded"
	case Bounds:
		return "bounds"
	case Reference:
		return "reference"
	case ReferenceBounds:
		return "reference-bounds"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

func (f Family) hasRef() bool {
	return f == Reference || f == ReferenceBounds
}

func (f Family) hasBounds() bool {
	return f == Bounds || f == ReferenceBounds
}

// Token is the boundary information of a half-event at a shared timestamp.
type Token struct {
	Ref    bool
	Closed bool
	Start  bool
}

// index packs a token into 0..7.
func (t Token) index() int {
	i := 0
	if t.Ref {
		i |= 4
	}

	if t.Closed {
		i |= 2
	}

	if t.Start {
		i |= 1
	}

	return i
}

func tokenAt(i int) Token {
	return Token{Ref: i&4 != 0, Closed: i&2 != 0, Start: i&1 != 0}
}

// Order is a named total preorder over tokens.
type Order struct {
	name   string
	family Family
	rank   [8]uint8
}

// Name returns the catalog name of the order.
func (o Order) Name() string {
	return o.name
}

// Family returns the token family the order distinguishes.
func (o Order) Family() Family {
	return o.family
}

// Rank returns the position of tok at a shared timestamp. Equal ranks tie.
func (o Order) Rank(tok Token) int {
	return int(o.rank[o.project(tok).index()])
}

// Compare orders two tokens at the same timestamp.
func (o Order) Compare(a, b Token) int {
	return o.Rank(a) - o.Rank(b)
}

// Tokens returns the distinct tokens of the family, sorted by rank.
func (o Order) Tokens() []Token {
	var toks []Token

	for i := range 8 {
		tok := tokenAt(i)
		if o.project(tok) != tok {
			continue
		}

		toks = append(toks, tok)
	}

	slices.SortStableFunc(toks, func(a, b Token) int {
		if c := o.Compare(a, b); c != 0 {
			return c
		}

		return a.index() - b.index()
	})

	return toks
}

// String prints the induced ordering at time 1.
func (o Order) String() string {
	toks := o.Tokens()

	var b strings.Builder

	for i, tok := range toks {
		if i > 0 {
			if o.Rank(toks[i-1]) == o.Rank(tok) {
				b.WriteString(" = ")
			} else {
				b.WriteString(" < ")
			}
		}

		b.WriteString(o.symbol(tok))
	}

	return b.String()
}

// project clears the flags the family ignores.
func (o Order) project(tok Token) Token {
	if !o.family.hasRef() {
		tok.Ref = false
	}

	if !o.family.hasBounds() {
		tok.Closed = true
	}

	return tok
}

func (o Order) symbol(tok Token) string {
	var s string

	switch {
	case tok.Start && tok.Closed:
		s = "[1"
	case tok.Start:
		s = "(1"
	case tok.Closed:
		s = "1]"
	default:
		s = "1)"
	}

	if o.family.hasRef() {
		if tok.Ref {
			s += "a"
		} else {
			s += "b"
		}
	}

	return s
}

// keyFunc is the tie-break tuple of an order.
type keyFunc func(r, c, s bool) []bool

func build(family Family, expr string, key keyFunc) Order {
	o := Order{name: family.String() + "(" + expr + ")", family: family}

	type ranked struct {
		idx int
		key []bool
	}

	all := make([]ranked, 8)
	for i := range 8 {
		tok := o.project(tokenAt(i))
		all[i] = ranked{idx: i, key: key(tok.Ref, tok.Closed, tok.Start)}
	}

	sorted := slices.Clone(all)
	slices.SortStableFunc(sorted, func(a, b ranked) int { return compareKeys(a.key, b.key) })

	rank := uint8(0)
	for i, rk := range sorted {
		if i > 0 && compareKeys(sorted[i-1].key, rk.key) != 0 {
			rank++
		}

		o.rank[rk.idx] = rank
	}

	return o
}

func fromRanks(family Family, expr string, ranks map[Token]uint8) Order {
	o := Order{name: family.String() + "(" + expr + ")", family: family}

	for i := range 8 {
		o.rank[i] = ranks[o.project(tokenAt(i))]
	}

	return o
}

func compareKeys(a, b []bool) int {
	for i := range min(len(a), len(b)) {
		if a[i] == b[i] {
			continue
		}

		if !a[i] {
			return -1
		}

		return 1
	}

	return len(a) - len(b)
}

func tuple(vals ...bool) []bool {
	return vals
}
