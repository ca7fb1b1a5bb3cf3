package clause

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

// Value is a tagged union over the scalar and list shapes a deal
// variable can take. Comparison semantics are explicit per operator
// rather than relying on implicit coercion, so the loose-equality
// behavior stays auditable.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
}

// Null is the absent/nil value.
var Null = Value{kind: KindNull}

// FromAny converts an arbitrary decoded value (JSON/YAML shapes) into
// a Value. Unsupported types are stringified.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case string:
		return Value{kind: KindString, str: x}
	case bool:
		return Value{kind: KindBool, b: x}
	case int:
		return Value{kind: KindNumber, num: float64(x)}
	case int64:
		return Value{kind: KindNumber, num: float64(x)}
	case float64:
		return Value{kind: KindNumber, num: x}
	case float32:
		return Value{kind: KindNumber, num: float64(x)}
	case []any:
		list := make([]Value, 0, len(x))
		for _, e := range x {
			list = append(list, FromAny(e))
		}
		return Value{kind: KindList, list: list}
	case []string:
		list := make([]Value, 0, len(x))
		for _, e := range x {
			list = append(list, Value{kind: KindString, str: e})
		}
		return Value{kind: KindList, list: list}
	case Value:
		return x
	default:
		return Value{kind: KindString, str: fmt.Sprintf("%v", x)}
	}
}

// Kind returns the union tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// List returns the members of a list value, or nil.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// String renders the value for substitution into clause text. Lists
// are joined with ", "; null renders empty.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, e := range v.list {
			parts = append(parts, e.String())
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Truthy reports whether the value is non-empty: empty string, zero,
// false, empty list and null all count as not truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.b
	case KindList:
		return len(v.list) > 0
	}
	return false
}

// LooseEquals compares two values with type-coercing equality: a
// numeric string and a number compare equal, as do a bool and its
// "true"/"false" spelling. Lists compare element-wise.
func (v Value) LooseEquals(o Value) bool {
	if v.kind == o.kind {
		switch v.kind {
		case KindNull:
			return true
		case KindString:
			return v.str == o.str
		case KindNumber:
			return v.num == o.num
		case KindBool:
			return v.b == o.b
		case KindList:
			if len(v.list) != len(o.list) {
				return false
			}
			for i := range v.list {
				if !v.list[i].LooseEquals(o.list[i]) {
					return false
				}
			}
			return true
		}
	}

	// Cross-kind coercions.
	switch {
	case v.kind == KindString && o.kind == KindNumber:
		return stringEqualsNumber(v.str, o.num)
	case v.kind == KindNumber && o.kind == KindString:
		return stringEqualsNumber(o.str, v.num)
	case v.kind == KindString && o.kind == KindBool:
		return stringEqualsBool(v.str, o.b)
	case v.kind == KindBool && o.kind == KindString:
		return stringEqualsBool(o.str, v.b)
	case v.kind == KindNumber && o.kind == KindBool:
		return numberEqualsBool(v.num, o.b)
	case v.kind == KindBool && o.kind == KindNumber:
		return numberEqualsBool(o.num, v.b)
	}
	return false
}

func stringEqualsNumber(s string, n float64) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return f == n
}

func stringEqualsBool(s string, b bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return b
	case "false", "0", "":
		return !b
	}
	return false
}

func numberEqualsBool(n float64, b bool) bool {
	if b {
		return n == 1
	}
	return n == 0
}

// Contains reports whether the value is a string containing sub as a
// substring. Non-string values never contain anything.
func (v Value) Contains(sub Value) bool {
	if v.kind != KindString {
		return false
	}
	return strings.Contains(v.str, sub.String())
}

// MemberOf reports whether the value is loosely equal to any member of
// the list value. A non-list argument has no members.
func (v Value) MemberOf(list Value) bool {
	for _, e := range list.List() {
		if v.LooseEquals(e) {
			return true
		}
	}
	return false
}
