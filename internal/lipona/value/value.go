// Package value defines Lipona's runtime value model: the tagged Value
// variant, truthiness, structural equality and the display form used by
// toki and by string interpolation.
package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

// Kind selects which of Value's fields is meaningful.
type Kind int

const (
	Number Kind = iota
	String
	True
	Nil
	List
	Map
	Function
)

// Func is the payload of a Function value: its parameter names and an
// owned copy of its body. Deliberately no captured environment — see
// Evaluator's isolate-for-call, which is what keeps Lipona functions from
// becoming closures.
type Func struct {
	Params []string
	Body   syntax.Block
}

// Value is a tagged runtime value. List and Map hold value semantics: every
// builtin that "mutates" one actually returns a fresh container, so a Value
// already in a caller's hands never changes out from under it.
type Value struct {
	Kind Kind

	Num  float64
	Str  string
	List []Value
	Map  map[string]Value
	Fn   *Func
}

func NewNumber(n float64) Value { return Value{Kind: Number, Num: n} }
func NewString(s string) Value  { return Value{Kind: String, Str: s} }
func NewTrue() Value            { return Value{Kind: True} }
func NewNil() Value             { return Value{Kind: Nil} }
func NewList(items []Value) Value {
	return Value{Kind: List, List: items}
}
func NewMap(m map[string]Value) Value {
	return Value{Kind: Map, Map: m}
}
func NewFunction(params []string, body syntax.Block) Value {
	return Value{Kind: Function, Fn: &Func{Params: params, Body: body}}
}

// Bool converts a language-level boolean literal (lon/ala) to its Value.
func Bool(b bool) Value {
	if b {
		return NewTrue()
	}
	return NewNil()
}

// TypeName returns the Lipona-native name for v's type, used in TypeError
// messages: nanpa (number), sitelen (string), lon, ala, kulupu (list), nasin
// (map), ilo (function).
func (v Value) TypeName() string {
	switch v.Kind {
	case Number:
		return "nanpa"
	case String:
		return "sitelen"
	case True:
		return "lon"
	case Nil:
		return "ala"
	case List:
		return "kulupu"
	case Map:
		return "nasin"
	case Function:
		return "ilo"
	default:
		panic("unreachable: unknown value kind")
	}
}

// Truthy implements the language's two-valued logic: True is truthy, Nil is
// not, numbers are truthy unless zero or NaN, strings/lists/maps are truthy
// unless empty, and functions are always truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case True:
		return true
	case Nil:
		return false
	case Number:
		return !math.IsNaN(v.Num) && v.Num != 0
	case String:
		return v.Str != ""
	case List:
		return len(v.List) > 0
	case Map:
		return len(v.Map) > 0
	case Function:
		return true
	default:
		panic("unreachable: unknown value kind")
	}
}

// Equal implements structural, same-variant equality. Values of different
// Kinds are always unequal; NaN follows IEEE semantics via Go's native
// float64 comparison.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == o.Num
	case String:
		return v.Str == o.Str
	case True, Nil:
		return true
	case List:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, mv := range v.Map {
			ov, ok := o.Map[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	case Function:
		return reflect.DeepEqual(v.Fn, o.Fn)
	default:
		panic("unreachable: unknown value kind")
	}
}

// Display renders v the way toki and string interpolation show it.
func (v Value) Display() string {
	switch v.Kind {
	case Number:
		return displayNumber(v.Num)
	case String:
		return v.Str
	case True:
		return "lon"
	case Nil:
		return "ala"
	case List:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.Map[k].Display()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Function:
		return "<ilo(" + strings.Join(v.Fn.Params, ", ") + ")>"
	default:
		panic("unreachable: unknown value kind")
	}
}

const maxSafeInteger = 1 << 53

func displayNumber(n float64) string {
	if !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n) && math.Abs(n) <= maxSafeInteger {
		return strconv.FormatInt(int64(n), 10)
	}
	return fmt.Sprintf("%v", n)
}
