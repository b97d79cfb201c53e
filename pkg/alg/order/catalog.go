package order

import "fmt"

// Orders distinguishing only starts from ends.
var (
	// EndFirst processes ends before starts: "1] < [1".
	EndFirst = build(Unbounded, "s", func(_, _, s bool) []bool { return tuple(s) })
	// StartFirst processes starts before ends: "[1 < 1]".
	StartFirst = build(Unbounded, "!s", func(_, _, s bool) []bool { return tuple(!s) })
)

// Orders over bound closedness.
var (
	BoundsEndFirst   = build(Bounds, "s", func(_, _, s bool) []bool { return tuple(s) })
	BoundsStartFirst = build(Bounds, "!s", func(_, _, s bool) []bool { return tuple(!s) })
	// BoundsUnion is "[1 < 1) < (1 < 1]".
	BoundsUnion = build(Bounds, "c!=s,!s", func(_, c, s bool) []bool { return tuple(c != s, !s) })
	// BoundsStartsClosedFirst is "[1 < (1 < 1) < 1]".
	BoundsStartsClosedFirst = build(Bounds, "!s,c!=s", func(_, c, s bool) []bool { return tuple(!s, c != s) })
	// Seam is "1) < [1 < 1] < (1". Each bound sits where the point it
	// excludes or includes begins: settling after each token observes the
	// seam before t, then the instant t, then the seam after t, then the gap.
	Seam = build(Bounds, "c!=s,s", func(_, c, s bool) []bool { return tuple(c != s, s) })
)

// Orders over the operand of origin.
var (
	RefStartFirst        = build(Reference, "!s", func(_, _, s bool) []bool { return tuple(!s) })
	RefDifference        = build(Reference, "!s,r!=s", func(r, _, s bool) []bool { return tuple(!s, r != s) })
	RefNonempty          = build(Reference, "r!=s,!s", func(r, _, s bool) []bool { return tuple(r != s, !s) })
	RefBFirst            = build(Reference, "!s,r==s", func(r, _, s bool) []bool { return tuple(!s, r == s) })
	RefCartesian         = build(Reference, "!r,!s", func(r, _, s bool) []bool { return tuple(!r, !s) })
	RefMeasure           = build(Reference, "s,r==s", func(r, _, s bool) []bool { return tuple(s, r == s) })
	RefBoundsPlain       = build(ReferenceBounds, "c!=s,c", func(_, c, s bool) []bool { return tuple(c != s, c) })
	RefBoundsSuperset    = build(ReferenceBounds, "!s,c!=s,r!=s", func(r, c, s bool) []bool { return tuple(!s, c != s, r != s) })
	RefBoundsIntersect   = build(ReferenceBounds, "!s,c!=s", func(_, c, s bool) []bool { return tuple(!s, c != s) })
	RefBoundsDifference  = build(ReferenceBounds, "!s,r!=s,c!=s", func(r, c, s bool) []bool { return tuple(!s, r != s, c != s) })
	RefBoundsClosedMatch = build(ReferenceBounds, "!c,c==s,r==c", func(r, c, s bool) []bool { return tuple(!c, c == s, r == c) })
	RefBoundsWDifference = build(ReferenceBounds, "s,r!=s", func(r, _, s bool) []bool { return tuple(s, r != s) })
	RefBoundsMap         = build(ReferenceBounds, "!c,c==s,r==s", func(r, c, s bool) []bool { return tuple(!c, c == s, r == s) })
	RefBoundsWIntersect  = build(ReferenceBounds, "s,c!=s", func(_, c, s bool) []bool { return tuple(s, c != s) })
	RefBoundsClosedFirst = build(ReferenceBounds, "!c,c==s", func(_, c, s bool) []bool { return tuple(!c, c == s) })
	RefBoundsWSuperset   = build(ReferenceBounds, "s,c!=s,r!=s", func(r, c, s bool) []bool { return tuple(s, c != s, r != s) })
	// RefBoundsNonempty is the explicit rank map
	// "1)a < 1)b < [1a < 1]b < [1b < 1]a < (1a < (1b".
	RefBoundsNonempty = fromRanks(ReferenceBounds, "nonempty", map[Token]uint8{
		{Ref: true, Closed: false, Start: false}:  0,
		{Ref: false, Closed: false, Start: false}: 1,
		{Ref: true, Closed: true, Start: true}:    2,
		{Ref: false, Closed: true, Start: false}:  3,
		{Ref: false, Closed: true, Start: true}:   4,
		{Ref: true, Closed: true, Start: false}:   5,
		{Ref: true, Closed: false, Start: true}:   6,
		{Ref: false, Closed: false, Start: true}:  7,
	})
	// RefSeam is Seam with the reference operand first inside each class.
	RefSeam = build(ReferenceBounds, "c!=s,s,!r", func(r, c, s bool) []bool { return tuple(c != s, s, !r) })
)

var catalog = []Order{
	EndFirst, StartFirst,
	BoundsEndFirst, BoundsStartFirst, BoundsUnion, BoundsStartsClosedFirst, Seam,
	RefStartFirst, RefDifference, RefNonempty, RefBFirst, RefCartesian, RefMeasure,
	RefBoundsPlain, RefBoundsSuperset, RefBoundsIntersect, RefBoundsDifference, RefBoundsClosedMatch,
	RefBoundsWDifference, RefBoundsMap, RefBoundsWIntersect, RefBoundsClosedFirst, RefBoundsWSuperset,
	RefBoundsNonempty, RefSeam,
}

var byName = func() map[string]Order {
	m := make(map[string]Order, len(catalog))
	for _, o := range catalog {
		m[o.name] = o
	}

	return m
}()

// All returns every order of the catalog.
func All() []Order {
	out := make([]Order, len(catalog))
	copy(out, catalog)

	return out
}

// Lookup finds an order by name.
func Lookup(name string) (Order, bool) {
	o, ok := byName[name]

	return o, ok
}

// MustLookup finds an order by name and panics when it does not exist.
func MustLookup(name string) Order {
	o, ok := byName[name]
	if !ok {
		panic(fmt.Sprintf("order: unknown order %q", name))
	}

	return o
}
