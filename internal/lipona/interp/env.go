package interp

import "github.com/hnkNkm/Lipona/internal/lipona/value"

// Environment is a stack of lexical scope frames. The bottom frame is the
// global scope and is never popped.
type Environment struct {
	scopes []map[string]value.Value
}

// NewEnvironment returns an Environment containing only the global scope.
func NewEnvironment() *Environment {
	return &Environment{scopes: []map[string]value.Value{make(map[string]value.Value)}}
}

// Define inserts name into the innermost frame, overwriting any binding
// shadowed there.
func (e *Environment) Define(name string, v value.Value) {
	e.scopes[len(e.scopes)-1][name] = v
}

// Get searches from innermost to outermost frame.
func (e *Environment) Get(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Set searches from innermost to outermost and overwrites the first binding
// found. If name is bound nowhere, it is defined in the innermost frame —
// assignment auto-declares; there is no separate declaration keyword.
func (e *Environment) Set(name string, v value.Value) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][name]; ok {
			e.scopes[i][name] = v
			return
		}
	}
	e.Define(name, v)
}

// PushScope opens a new innermost frame.
func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, make(map[string]value.Value))
}

// PopScope closes the innermost frame. Popping the global scope is a
// programmer bug, not a runtime condition a Lipona program can trigger.
func (e *Environment) PopScope() {
	if len(e.scopes) <= 1 {
		panic("interp: cannot pop the global scope")
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// isolateForCall saves the current scope stack and replaces it with a fresh
// stack containing only a clone of the global frame. This is the mechanism
// that keeps user functions from seeing their caller's locals — and from
// becoming closures, since nothing but the clone survives the swap.
func (e *Environment) isolateForCall() []map[string]value.Value {
	saved := e.scopes
	global := saved[0]
	clone := make(map[string]value.Value, len(global))
	for k, v := range global {
		clone[k] = v
	}
	e.scopes = []map[string]value.Value{clone}
	return saved
}

// restore reinstates a scope stack previously returned by isolateForCall.
func (e *Environment) restore(saved []map[string]value.Value) {
	e.scopes = saved
}
