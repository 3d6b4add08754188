package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_TypeName(t *testing.T) {
	testCases := []struct {
		name   string
		v      Value
		expect string
	}{
		{name: "number", v: NewNumber(1), expect: "nanpa"},
		{name: "string", v: NewString("a"), expect: "sitelen"},
		{name: "true", v: NewTrue(), expect: "lon"},
		{name: "nil", v: NewNil(), expect: "ala"},
		{name: "list", v: NewList(nil), expect: "kulupu"},
		{name: "map", v: NewMap(nil), expect: "nasin"},
		{name: "function", v: NewFunction(nil, nil), expect: "ilo"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.v.TypeName())
		})
	}
}

func Test_Truthy(t *testing.T) {
	testCases := []struct {
		name   string
		v      Value
		expect bool
	}{
		{name: "true literal", v: NewTrue(), expect: true},
		{name: "nil literal", v: NewNil(), expect: false},
		{name: "zero number", v: NewNumber(0), expect: false},
		{name: "nonzero number", v: NewNumber(-3.5), expect: true},
		{name: "NaN number", v: NewNumber(math.NaN()), expect: false},
		{name: "empty string", v: NewString(""), expect: false},
		{name: "nonempty string", v: NewString("a"), expect: true},
		{name: "empty list", v: NewList(nil), expect: false},
		{name: "nonempty list", v: NewList([]Value{NewNumber(1)}), expect: true},
		{name: "empty map", v: NewMap(map[string]Value{}), expect: false},
		{name: "nonempty map", v: NewMap(map[string]Value{"a": NewNumber(1)}), expect: true},
		{name: "function", v: NewFunction(nil, nil), expect: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.v.Truthy())
		})
	}
}

func Test_Equal(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Value
		expect bool
	}{
		{name: "different kinds", a: NewNumber(1), b: NewString("1"), expect: false},
		{name: "equal numbers", a: NewNumber(2), b: NewNumber(2), expect: true},
		{name: "NaN not equal to itself", a: NewNumber(math.NaN()), b: NewNumber(math.NaN()), expect: false},
		{name: "equal strings", a: NewString("hi"), b: NewString("hi"), expect: true},
		{name: "two nils", a: NewNil(), b: NewNil(), expect: true},
		{name: "two trues", a: NewTrue(), b: NewTrue(), expect: true},
		{
			name:   "equal lists",
			a:      NewList([]Value{NewNumber(1), NewString("a")}),
			b:      NewList([]Value{NewNumber(1), NewString("a")}),
			expect: true,
		},
		{
			name:   "lists differing in length",
			a:      NewList([]Value{NewNumber(1)}),
			b:      NewList([]Value{NewNumber(1), NewNumber(2)}),
			expect: false,
		},
		{
			name:   "equal maps",
			a:      NewMap(map[string]Value{"a": NewNumber(1)}),
			b:      NewMap(map[string]Value{"a": NewNumber(1)}),
			expect: true,
		},
		{
			name:   "maps differing in a value",
			a:      NewMap(map[string]Value{"a": NewNumber(1)}),
			b:      NewMap(map[string]Value{"a": NewNumber(2)}),
			expect: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.a.Equal(tc.b))
		})
	}
}

func Test_Display(t *testing.T) {
	testCases := []struct {
		name   string
		v      Value
		expect string
	}{
		{name: "integral number", v: NewNumber(4), expect: "4"},
		{name: "negative integral number", v: NewNumber(-4), expect: "-4"},
		{name: "fractional number", v: NewNumber(1.5), expect: "1.5"},
		{name: "string", v: NewString("hi"), expect: "hi"},
		{name: "true", v: NewTrue(), expect: "lon"},
		{name: "nil", v: NewNil(), expect: "ala"},
		{
			name:   "list",
			v:      NewList([]Value{NewNumber(1), NewString("a")}),
			expect: "[1, a]",
		},
		{
			name:   "map sorted by key",
			v:      NewMap(map[string]Value{"b": NewNumber(2), "a": NewNumber(1)}),
			expect: "{a: 1, b: 2}",
		},
		{
			name:   "function",
			v:      NewFunction([]string{"a", "b"}, nil),
			expect: "<ilo(a, b)>",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.v.Display())
		})
	}
}

func Test_Bool(t *testing.T) {
	assert.Equal(t, NewTrue(), Bool(true))
	assert.Equal(t, NewNil(), Bool(false))
}
