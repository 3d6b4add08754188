package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hnkNkm/Lipona/internal/lipona/value"
)

// builtin is a host-implemented standard library function. minArgs/maxArgs
// bound the call's arity; maxArgs of -1 means variadic.
type builtin struct {
	name             string
	minArgs, maxArgs int
	call             func(e *Evaluator, args []value.Value) (value.Value, error)
}

// stdlib is the fixed, name-indexed registry consulted before user bindings.
// Builtins are not first-class values: they cannot be passed around or
// shadowed, only called by name, so this table is never exposed as Values.
func newStdlib() map[string]builtin {
	fns := []builtin{
		{"toki", 0, -1, biToki},
		{"nanpa_sin", 1, 1, biNanpaSin},
		{"nanpa_len", 1, 1, biNanpaLen},
		{"sitelen_len", 1, 1, biSitelenLen},
		{"sitelen_sama", 2, 2, biSitelenSama},
		{"kulupu_sin", 0, -1, biKulupuSin},
		{"kulupu_len", 1, 1, biKulupuLen},
		{"kulupu_ken", 2, 2, biKulupuKen},
		{"kulupu_lon", 3, 3, biKulupuLon},
		{"kulupu_aksen", 2, 2, biKulupuAksen},
		{"nasin_sin", 0, 0, biNasinSin},
		{"nasin_ken", 2, 2, biNasinKen},
		{"nasin_lon", 3, 3, biNasinLon},
	}

	reg := make(map[string]builtin, len(fns))
	for _, fn := range fns {
		reg[fn.name] = fn
	}
	return reg
}

func biToki(e *Evaluator, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	fmt.Fprintln(e.stdout, strings.Join(parts, " "))
	return value.NewNil(), nil
}

func biNanpaSin(e *Evaluator, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind {
	case value.Number:
		return v, nil
	case value.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return value.Value{}, typeError("nanpa-parsable sitelen", fmt.Sprintf("sitelen %q", v.Str))
		}
		return value.NewNumber(n), nil
	default:
		return value.Value{}, typeError("nanpa or sitelen", v.TypeName())
	}
}

func biNanpaLen(e *Evaluator, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind != value.Number {
		return value.Value{}, typeError("nanpa", v.TypeName())
	}
	if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return value.Value{}, typeError("finite nanpa", "non-finite nanpa")
	}

	intPart := math.Trunc(math.Abs(v.Num))
	if intPart < 1 {
		return value.NewNumber(1), nil
	}
	digits := 0
	for intPart >= 1 {
		intPart = math.Trunc(intPart / 10)
		digits++
	}
	return value.NewNumber(float64(digits)), nil
}

func biSitelenLen(e *Evaluator, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind != value.String {
		return value.Value{}, typeError("sitelen", v.TypeName())
	}
	return value.NewNumber(float64(utf8.RuneCountInString(v.Str))), nil
}

func biSitelenSama(e *Evaluator, args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if a.Kind != value.String {
		return value.Value{}, typeError("sitelen", a.TypeName())
	}
	if b.Kind != value.String {
		return value.Value{}, typeError("sitelen", b.TypeName())
	}
	return value.Bool(a.Str == b.Str), nil
}

func biKulupuSin(e *Evaluator, args []value.Value) (value.Value, error) {
	items := make([]value.Value, len(args))
	copy(items, args)
	return value.NewList(items), nil
}

func biKulupuLen(e *Evaluator, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind != value.List {
		return value.Value{}, typeError("kulupu", v.TypeName())
	}
	return value.NewNumber(float64(len(v.List))), nil
}

// indexArg validates a numeric index per the indexing contract: non-negative,
// finite, integral, and within 2^53. Format violations are always TypeErrors;
// callers decide separately whether an in-range-but-too-large index is a
// lenient-read Nil or a hard IndexOutOfBounds.
func indexArg(v value.Value) (int, error) {
	if v.Kind != value.Number {
		return 0, typeError("nanpa", v.TypeName())
	}
	n := v.Num
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n < 0 || n > maxSafeInteger {
		return 0, typeError("non-negative integral nanpa index", v.Display())
	}
	return int(n), nil
}

const maxSafeInteger = 1 << 53

func biKulupuKen(e *Evaluator, args []value.Value) (value.Value, error) {
	list := args[0]
	if list.Kind != value.List {
		return value.Value{}, typeError("kulupu", list.TypeName())
	}
	idx, err := indexArg(args[1])
	if err != nil {
		return value.Value{}, err
	}
	if idx >= len(list.List) {
		return value.NewNil(), nil
	}
	return list.List[idx], nil
}

func biKulupuLon(e *Evaluator, args []value.Value) (value.Value, error) {
	list := args[0]
	if list.Kind != value.List {
		return value.Value{}, typeError("kulupu", list.TypeName())
	}
	idx, err := indexArg(args[1])
	if err != nil {
		return value.Value{}, err
	}
	if idx >= len(list.List) {
		return value.Value{}, indexOutOfBounds(idx, len(list.List))
	}
	next := append(make([]value.Value, 0, len(list.List)), list.List...)
	next[idx] = args[2]
	return value.NewList(next), nil
}

func biKulupuAksen(e *Evaluator, args []value.Value) (value.Value, error) {
	list := args[0]
	if list.Kind != value.List {
		return value.Value{}, typeError("kulupu", list.TypeName())
	}
	next := append(make([]value.Value, 0, len(list.List)+1), list.List...)
	next = append(next, args[1])
	return value.NewList(next), nil
}

func biNasinSin(e *Evaluator, args []value.Value) (value.Value, error) {
	return value.NewMap(make(map[string]value.Value)), nil
}

func biNasinKen(e *Evaluator, args []value.Value) (value.Value, error) {
	m := args[0]
	if m.Kind != value.Map {
		return value.Value{}, typeError("nasin", m.TypeName())
	}
	key := args[1]
	if key.Kind != value.String {
		return value.Value{}, typeError("sitelen", key.TypeName())
	}
	if v, ok := m.Map[key.Str]; ok {
		return v, nil
	}
	return value.NewNil(), nil
}

func biNasinLon(e *Evaluator, args []value.Value) (value.Value, error) {
	m := args[0]
	if m.Kind != value.Map {
		return value.Value{}, typeError("nasin", m.TypeName())
	}
	key := args[1]
	if key.Kind != value.String {
		return value.Value{}, typeError("sitelen", key.TypeName())
	}
	next := make(map[string]value.Value, len(m.Map)+1)
	for k, v := range m.Map {
		next[k] = v
	}
	next[key.Str] = args[2]
	return value.NewMap(next), nil
}
