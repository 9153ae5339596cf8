package vdom

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueType is the Value variant discriminator.
type ValueType uint8

const (
	NullType     ValueType = iota // absent / null
	BoolType                      // true, false
	IntType                       // int64
	FloatType                     // float64
	StringType                    // UTF-8 string
	ListType                      // ordered sequence of Value
	MapType                       // string -> Value, insertion ordered
	CallbackType                  // opaque Callback handle
)

// String returns the string representation of the ValueType.
func (t ValueType) String() string {
	switch t {
	case NullType:
		return "Null"
	case BoolType:
		return "Bool"
	case IntType:
		return "Int"
	case FloatType:
		return "Float"
	case StringType:
		return "String"
	case ListType:
		return "List"
	case MapType:
		return "Map"
	case CallbackType:
		return "Callback"
	default:
		return "Unknown"
	}
}

// Value is an attribute value. The zero Value is Null.
//
// Values are immutable: List and Map contents are copied on construction and
// on access, so a Value can be shared between trees freely.
type Value struct {
	typ  ValueType
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	keys []string
	m    map[string]Value
	cb   Callback
}

// MapEntry is one key/value pair of a Map value.
type MapEntry struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{typ: BoolType, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{typ: IntType, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{typ: FloatType, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{typ: StringType, s: s} }

// List returns a list Value holding a copy of items.
func List(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{typ: ListType, list: l}
}

// Map returns a map Value. Entries keep their order; a repeated key
// overwrites the earlier value but keeps the earlier position.
func Map(entries ...MapEntry) Value {
	v := Value{typ: MapType, m: make(map[string]Value, len(entries))}
	for _, e := range entries {
		if _, ok := v.m[e.Key]; !ok {
			v.keys = append(v.keys, e.Key)
		}
		v.m[e.Key] = e.Value
	}
	return v
}

// MapOf returns a map Value from a Go map. Keys are sorted, since Go maps
// have no order of their own.
func MapOf(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]MapEntry, len(keys))
	for i, k := range keys {
		entries[i] = MapEntry{Key: k, Value: m[k]}
	}
	return Map(entries...)
}

// CallbackValue wraps a Callback handle.
func CallbackValue(cb Callback) Value { return Value{typ: CallbackType, cb: cb} }

// ValueOf converts a loosely-typed Go value into a Value.
// Unsupported types are formatted with %v and stored as strings.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case Callback:
		return CallbackValue(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Int(int64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case string:
		return String(v)
	case []string:
		items := make([]Value, len(v))
		for i, s := range v {
			items[i] = String(s)
		}
		return Value{typ: ListType, list: items}
	case []Value:
		return List(v...)
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = ValueOf(item)
		}
		return Value{typ: ListType, list: items}
	case map[string]Value:
		return MapOf(v)
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, item := range v {
			m[k] = ValueOf(item)
		}
		return MapOf(m)
	case fmt.Stringer:
		return String(v.String())
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// Type returns the variant of v.
func (v Value) Type() ValueType { return v.typ }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.typ == NullType }

// IsCallback reports whether v holds a callback handle.
func (v Value) IsCallback() bool { return v.typ == CallbackType }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == BoolType }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) { return v.i, v.typ == IntType }

// AsFloat returns the numeric payload as a float. Ints are converted.
func (v Value) AsFloat() (float64, bool) {
	switch v.typ {
	case FloatType:
		return v.f, true
	case IntType:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.typ == StringType }

// AsCallback returns the callback handle.
func (v Value) AsCallback() (Callback, bool) { return v.cb, v.typ == CallbackType }

// Items returns a copy of the list payload.
func (v Value) Items() []Value {
	if v.typ != ListType {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Entries returns the map payload in insertion order.
func (v Value) Entries() []MapEntry {
	if v.typ != MapType {
		return nil
	}
	out := make([]MapEntry, len(v.keys))
	for i, k := range v.keys {
		out[i] = MapEntry{Key: k, Value: v.m[k]}
	}
	return out
}

// Get returns the map entry stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.typ != MapType {
		return Value{}, false
	}
	item, ok := v.m[key]
	return item, ok
}

// Len returns the number of list items or map entries.
func (v Value) Len() int {
	switch v.typ {
	case ListType:
		return len(v.list)
	case MapType:
		return len(v.keys)
	}
	return 0
}

// Equal reports whether v and o are the same value. Comparison is structural,
// except for callbacks which are equal only when they are the same handle.
// Map equality ignores entry order.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case NullType:
		return true
	case BoolType:
		return v.b == o.b
	case IntType:
		return v.i == o.i
	case FloatType:
		// NaN equals NaN, or a tree carrying one would never diff clean.
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case StringType:
		return v.s == o.s
	case CallbackType:
		return v.cb == o.cb
	case ListType:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case MapType:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// String stringifies v the way markup backends expect attribute text.
func (v Value) String() string {
	switch v.typ {
	case NullType:
		return ""
	case BoolType:
		return strconv.FormatBool(v.b)
	case IntType:
		return strconv.FormatInt(v.i, 10)
	case FloatType:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case StringType:
		return v.s
	case CallbackType:
		return v.cb.String()
	case ListType:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, " ")
	case MapType:
		parts := make([]string, len(v.keys))
		for i, k := range v.keys {
			parts[i] = k + ":" + v.m[k].String()
		}
		return strings.Join(parts, ";")
	}
	return ""
}

// GoString renders v with its type, for test failures and debug logs.
func (v Value) GoString() string {
	switch v.typ {
	case StringType:
		return strconv.Quote(v.s)
	case NullType:
		return "null"
	default:
		return v.typ.String() + "(" + v.String() + ")"
	}
}
