package gesture

import (
	"fmt"
	"strings"
)

// Label is a mudra name, or Unknown.
type Label string

// The recognized mudras, in rule priority order.
const (
	Pataka        Label = "Pataka"
	Tripataka     Label = "Tripataka"
	Shikaram      Label = "Shikaram"
	Ardhapataka   Label = "Ardhapataka"
	Kartharimukha Label = "Kartharimukha"
	Mayura        Label = "Mayura"
	Ardhachandra  Label = "Ardhachandra"
	Arala         Label = "Arala"
	Katakamukha   Label = "Katakamukha"
	Simhamukha    Label = "Simhamukha"
	Sukatunda     Label = "Sukatunda"
	Mushti        Label = "Mushti"
	Soochi        Label = "Soochi"
	Chandrakala   Label = "Chandrakala"
	Mrigashirsha  Label = "Mrigashirsha"
	Alapadmakam   Label = "Alapadmakam"
	Hamsasya      Label = "Hamsasya"
	Trisula       Label = "Trisula"

	// Unknown is returned when no rule matches.
	Unknown Label = "unknown"
)

// PredicateOp selects how a Predicate bounds its distance.
type PredicateOp int

const (
	// OpLess holds when the distance is strictly below Max.
	OpLess PredicateOp = iota
	// OpGreater holds when the distance is strictly above Min.
	OpGreater
	// OpBetween holds when Min <= distance <= Max.
	OpBetween
)

// Predicate is a numeric bound over one entry of the distance map.
type Predicate struct {
	Key DistanceKey
	Op  PredicateOp
	Min float64
	Max float64
}

func less(key DistanceKey, hi float64) Predicate {
	return Predicate{Key: key, Op: OpLess, Max: hi}
}

func greater(key DistanceKey, lo float64) Predicate {
	return Predicate{Key: key, Op: OpGreater, Min: lo}
}

func between(key DistanceKey, lo, hi float64) Predicate {
	return Predicate{Key: key, Op: OpBetween, Min: lo, Max: hi}
}

// Holds reports whether the predicate is satisfied by d.
func (p Predicate) Holds(d Distances) bool {
	v := d[p.Key]
	switch p.Op {
	case OpLess:
		return v < p.Max
	case OpGreater:
		return v > p.Min
	case OpBetween:
		return p.Min <= v && v <= p.Max
	}
	return false
}

// String renders the predicate, e.g. "19 <= index_middle <= 94".
func (p Predicate) String() string {
	switch p.Op {
	case OpLess:
		return fmt.Sprintf("%s < %g", p.Key, p.Max)
	case OpGreater:
		return fmt.Sprintf("%s > %g", p.Key, p.Min)
	case OpBetween:
		return fmt.Sprintf("%g <= %s <= %g", p.Min, p.Key, p.Max)
	}
	return fmt.Sprintf("Predicate(%d)", int(p.Op))
}

// Rule maps an exact finger pattern plus distance predicates to a label.
type Rule struct {
	Label      Label
	Pattern    FingerState
	Predicates []Predicate
}

// Matches reports whether f equals the rule's pattern and every predicate holds.
func (r Rule) Matches(f FingerState, d Distances) bool {
	if f != r.Pattern {
		return false
	}
	for _, p := range r.Predicates {
		if !p.Holds(d) {
			return false
		}
	}
	return true
}

// String renders the rule as "Label [pattern] pred, pred".
func (r Rule) String() string {
	preds := make([]string, len(r.Predicates))
	for i, p := range r.Predicates {
		preds[i] = p.String()
	}
	if len(preds) == 0 {
		return fmt.Sprintf("%s [%s]", r.Label, r.Pattern)
	}
	return fmt.Sprintf("%s [%s] %s", r.Label, r.Pattern, strings.Join(preds, ", "))
}

// rules is evaluated top to bottom; the first match wins.
var rules = []Rule{
	{Pataka, FingerState{0, 1, 1, 1, 1}, []Predicate{less(ThumbIndex, 150)}},
	{Tripataka, FingerState{1, 1, 1, 0, 1}, []Predicate{greater(RingThumb, 40)}},
	{Shikaram, FingerState{1, 0, 0, 0, 0}, nil},
	{Ardhapataka, FingerState{1, 1, 1, 0, 0}, nil},
	{Kartharimukha, FingerState{0, 1, 1, 0, 0}, []Predicate{between(IndexMiddle, 19, 94)}},
	{Mayura, FingerState{0, 1, 1, 0, 1}, []Predicate{between(RingThumb, 12, 40)}},
	{Ardhachandra, FingerState{1, 1, 1, 1, 1}, nil},
	{Arala, FingerState{1, 0, 1, 1, 1}, nil},
	{Katakamukha, FingerState{0, 0, 0, 1, 1}, []Predicate{
		between(MiddleThumb, 7, 40),
		between(ThumbIndex, 5, 30),
		between(IndexMiddle, 10, 33),
	}},
	{Simhamukha, FingerState{0, 1, 0, 0, 1}, []Predicate{
		between(RingThumb, 3, 30),
		between(MiddleThumb, 1, 15),
		between(MiddleRing, 1, 25),
	}},
	{Sukatunda, FingerState{1, 0, 1, 0, 1}, nil},
	{Mushti, FingerState{0, 0, 0, 0, 0}, []Predicate{between(ThumbIndex, 3, 15)}},
	{Soochi, FingerState{0, 1, 0, 0, 0}, nil},
	{Chandrakala, FingerState{1, 1, 0, 0, 0}, nil},
	{Mrigashirsha, FingerState{1, 0, 0, 0, 1}, nil},
	{Alapadmakam, FingerState{1, 1, 1, 1, 0}, []Predicate{between(ThumbIndex, 30, 155)}},
	{Hamsasya, FingerState{0, 0, 1, 1, 1}, nil},
	{Trisula, FingerState{0, 1, 1, 1, 0}, nil},
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{
			Label:      r.Label,
			Pattern:    r.Pattern,
			Predicates: append([]Predicate(nil), r.Predicates...),
		}
	}
	return out
}

// Labels returns every label a rule can produce, in rule order.
func Labels() []Label {
	out := make([]Label, len(rules))
	for i, r := range rules {
		out[i] = r.Label
	}
	return out
}

// Classify scans the rule table in order and returns the label of the first
// rule that matches, or Unknown.
func Classify(f FingerState, d Distances) Label {
	return classifyWith(rules, f, d)
}

func classifyWith(table []Rule, f FingerState, d Distances) Label {
	for _, r := range table {
		if r.Matches(f, d) {
			return r.Label
		}
	}
	return Unknown
}
