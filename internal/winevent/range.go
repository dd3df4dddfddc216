package winevent

import (
	"errors"
	"fmt"
)

// ErrInvalidEventSpec reports event input that cannot be decomposed into
// valid ranges. It is raised at registration time and never reaches the
// dispatch loop.
var ErrInvalidEventSpec = errors.New("winevent: invalid event spec")

// Range is an inclusive interval of event IDs with Start <= End. A single
// event of interest is the degenerate range (id, id).
type Range struct {
	Start ID
	End   ID
}

// Single returns the range covering exactly one event.
func Single(id ID) Range {
	return Range{Start: id, End: id}
}

// Valid reports whether the range is ordered and both endpoints fall within
// at least one known namespace.
func (r Range) Valid() bool {
	return r.Start <= r.End && InNamespace(r.Start) && InNamespace(r.End)
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id ID) bool {
	return r.Start <= id && id <= r.End
}

func (r Range) String() string {
	if r.Start == r.End {
		if name := Name(r.Start); name != "" {
			return name
		}
		return fmt.Sprintf("0x%04X", uint32(r.Start))
	}
	return fmt.Sprintf("0x%04X-0x%04X", uint32(r.Start), uint32(r.End))
}

// Namespace is a named sub-range of the event space. The OS reserves
// sub-ranges (accessibility, UIA, OEM) that must not be silently conflated
// with the general range when wildcard lookups occur.
type Namespace struct {
	Name  string
	Range Range
}

var namespaces = []Namespace{
	{Name: "global", Range: Range{EventMin, EventMax}},
	{Name: "system", Range: Range{SystemSound, SystemEnd}},
	{Name: "oem", Range: Range{OEMDefinedStart, OEMDefinedEnd}},
	{Name: "uia-event", Range: Range{UIAEventIDStart, UIAEventIDEnd}},
	{Name: "uia-prop", Range: Range{UIAPropIDStart, UIAPropIDEnd}},
	{Name: "object", Range: Range{ObjectCreate, ObjectEnd}},
	{Name: "aia", Range: Range{AIAStart, AIAEnd}},
}

// Namespaces returns the known event namespaces, global range first.
func Namespaces() []Namespace {
	out := make([]Namespace, len(namespaces))
	copy(out, namespaces)
	return out
}

// InNamespace reports whether id falls within at least one known namespace.
func InNamespace(id ID) bool {
	for _, ns := range namespaces {
		if ns.Range.Contains(id) {
			return true
		}
	}
	return false
}

// Spec is a declaration of which events a callback is interested in: a
// single ID, one Range, or an ordered set of Ranges. The three cases mirror
// the accepted registration inputs; anything else is not a Spec.
type Spec interface {
	eventSpec() []Range
}

func (id ID) eventSpec() []Range   { return []Range{Single(id)} }
func (r Range) eventSpec() []Range { return []Range{r} }

// RangeSet is an ordered collection of ranges.
type RangeSet []Range

func (rs RangeSet) eventSpec() []Range { return rs }

// Normalize decomposes spec into canonical ranges. A single ID becomes
// (id, id). Every resulting range must be ordered and lie within a known
// namespace, otherwise ErrInvalidEventSpec is returned.
func Normalize(spec Spec) ([]Range, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrInvalidEventSpec)
	}
	ranges := spec.eventSpec()
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: empty range set", ErrInvalidEventSpec)
	}
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start > r.End {
			return nil, fmt.Errorf("%w: range %s has start > end",
				ErrInvalidEventSpec, fmt.Sprintf("(0x%04X,0x%04X)", uint32(r.Start), uint32(r.End)))
		}
		if !InNamespace(r.Start) || !InNamespace(r.End) {
			return nil, fmt.Errorf("%w: range %s outside known event namespaces",
				ErrInvalidEventSpec, r)
		}
		out = append(out, r)
	}
	return out, nil
}
