// Package value defines the neutral tagged value tree used throughout the
// configuration engine: the shape every loaded document, every rendered
// result, and every template lookup operates on.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// NumberKind distinguishes the two representations a Number can carry so
// that loading-then-serialising a document round-trips the original kind,
// per the data model's "preserve the original kind" requirement.
type NumberKind int

const (
	Int NumberKind = iota
	Float
)

// Value is a tagged variant over Null, Bool, Number, String, Sequence, and
// Mapping. The zero Value is Null.
type Value struct {
	kind Kind

	boolVal   bool
	numKind   NumberKind
	intVal    int64
	floatVal  float64
	strVal    string
	seqVal    []Value
	mapKeys   []string
	mapVal    map[string]Value
}

// NewNull returns the Null value.
func NewNull() Value { return Value{kind: Null} }

// NewBool wraps a boolean.
func NewBool(b bool) Value { return Value{kind: Bool, boolVal: b} }

// NewInt wraps a 64-bit signed integer.
func NewInt(i int64) Value { return Value{kind: Number, numKind: Int, intVal: i} }

// NewFloat wraps a 64-bit float.
func NewFloat(f float64) Value { return Value{kind: Number, numKind: Float, floatVal: f} }

// NewString wraps a string scalar.
func NewString(s string) Value { return Value{kind: String, strVal: s} }

// NewSequence wraps an ordered list of values. The slice is taken by
// reference; callers that mutate it afterwards should Clone first.
func NewSequence(items []Value) Value { return Value{kind: Sequence, seqVal: items} }

// NewMapping builds an ordered mapping from string key to Value, preserving
// the order of keys as given.
func NewMapping(keys []string, vals map[string]Value) Value {
	return Value{kind: Mapping, mapKeys: keys, mapVal: vals}
}

// NewEmptyMapping returns an empty, ready-to-append Mapping.
func NewEmptyMapping() Value {
	return Value{kind: Mapping, mapKeys: nil, mapVal: map[string]Value{}}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Bool() bool { return v.boolVal }

func (v Value) NumberKind() NumberKind { return v.numKind }

// Int returns the integer representation. If the Value is a Float, it is
// truncated; callers should check NumberKind first if exactness matters.
func (v Value) Int() int64 {
	if v.numKind == Float {
		return int64(v.floatVal)
	}
	return v.intVal
}

// Float returns the float representation.
func (v Value) Float() float64 {
	if v.numKind == Int {
		return float64(v.intVal)
	}
	return v.floatVal
}

func (v Value) String() string { return v.strVal }

// Sequence returns the underlying slice. Do not mutate; use Clone.
func (v Value) Sequence() []Value { return v.seqVal }

// Len returns the sequence length or mapping size; 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Sequence:
		return len(v.seqVal)
	case Mapping:
		return len(v.mapKeys)
	default:
		return 0
	}
}

// Keys returns the mapping's keys in insertion order. Empty for non-mappings.
func (v Value) Keys() []string {
	if v.kind != Mapping {
		return nil
	}
	return v.mapKeys
}

// Get looks up a mapping key. Returns (Value{}, false) when v is not a
// Mapping or the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	val, ok := v.mapVal[key]
	return val, ok
}

// Index looks up a sequence element. Returns (Value{}, false) when v is not
// a Sequence or the index is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Sequence || i < 0 || i >= len(v.seqVal) {
		return Value{}, false
	}
	return v.seqVal[i], true
}

// With returns a copy of the mapping with key set to val, preserving the
// position of an existing key or appending a new one. v must be a Mapping
// (or Null, treated as an empty mapping).
func (v Value) With(key string, val Value) Value {
	if v.kind != Mapping && v.kind != Null {
		panic("value: With called on non-mapping Value")
	}
	newMap := make(map[string]Value, len(v.mapVal)+1)
	for k, mv := range v.mapVal {
		newMap[k] = mv
	}
	_, existed := newMap[key]
	newMap[key] = val
	keys := v.mapKeys
	if !existed {
		keys = append(append([]string{}, v.mapKeys...), key)
	}
	return Value{kind: Mapping, mapKeys: keys, mapVal: newMap}
}

// Without returns a copy of the mapping with key removed. v must be a
// Mapping.
func (v Value) Without(key string) Value {
	if v.kind != Mapping {
		return v
	}
	if _, ok := v.mapVal[key]; !ok {
		return v
	}
	newMap := make(map[string]Value, len(v.mapVal))
	newKeys := make([]string, 0, len(v.mapKeys))
	for _, k := range v.mapKeys {
		if k == key {
			continue
		}
		newKeys = append(newKeys, k)
		newMap[k] = v.mapVal[k]
	}
	return Value{kind: Mapping, mapKeys: newKeys, mapVal: newMap}
}

// Clone deep-copies v.
func (v Value) Clone() Value {
	switch v.kind {
	case Sequence:
		items := make([]Value, len(v.seqVal))
		for i, it := range v.seqVal {
			items[i] = it.Clone()
		}
		return Value{kind: Sequence, seqVal: items}
	case Mapping:
		keys := append([]string{}, v.mapKeys...)
		m := make(map[string]Value, len(v.mapVal))
		for k, mv := range v.mapVal {
			m[k] = mv.Clone()
		}
		return Value{kind: Mapping, mapKeys: keys, mapVal: m}
	default:
		return v
	}
}

// Equal reports structural equality. Numbers compare equal across
// integer/float representations only when both denote the same real number
// exactly.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.boolVal == b.boolVal
	case Number:
		return numbersEqual(a, b)
	case String:
		return a.strVal == b.strVal
	case Sequence:
		if len(a.seqVal) != len(b.seqVal) {
			return false
		}
		for i := range a.seqVal {
			if !Equal(a.seqVal[i], b.seqVal[i]) {
				return false
			}
		}
		return true
	case Mapping:
		if len(a.mapKeys) != len(b.mapKeys) {
			return false
		}
		for i, k := range a.mapKeys {
			if b.mapKeys[i] != k {
				return false
			}
			bv, ok := b.mapVal[k]
			if !ok || !Equal(a.mapVal[k], bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numbersEqual(a, b Value) bool {
	if a.numKind == b.numKind {
		if a.numKind == Int {
			return a.intVal == b.intVal
		}
		return a.floatVal == b.floatVal
	}
	// Mixed kinds compare equal only when both represent the same integer
	// exactly, per the data model's number-comparison rule.
	var i int64
	var f float64
	if a.numKind == Int {
		i, f = a.intVal, b.floatVal
	} else {
		i, f = b.intVal, a.floatVal
	}
	return float64(i) == f && f == float64(int64(f))
}

// CanonicalString converts a scalar Value to its canonical textual form for
// template interpolation: booleans as true/false, integers without a
// decimal point, floats in shortest round-trip form, null as the empty
// string, strings as-is. Panics if v is a Sequence or Mapping; callers must
// check Kind first (complex terminals need flow-form encoding instead).
func (v Value) CanonicalString() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case Number:
		if v.numKind == Int {
			return strconv.FormatInt(v.intVal, 10)
		}
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case String:
		return v.strVal
	default:
		panic(fmt.Sprintf("value: CanonicalString called on %s", v.kind))
	}
}

// IsScalar reports whether v is Null, Bool, Number, or String.
func (v Value) IsScalar() bool {
	switch v.kind {
	case Null, Bool, Number, String:
		return true
	default:
		return false
	}
}
