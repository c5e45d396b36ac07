// Package callback implements the typed, comparable, removable listener
// handle abstraction (spec §4.3) that the mgmt/adapter/gattclient event
// pumps dispatch through.
package callback

import (
	"fmt"
	"reflect"
)

// Kind distinguishes the three listener-handle flavors.
type Kind int

const (
	// KindMethod identifies a listener by (receiver identity, method name).
	KindMethod Kind = iota
	// KindFunc identifies a listener by function pointer.
	KindFunc
	// KindCaptured identifies a listener by an application-supplied id,
	// optionally also comparing the captured data for equality.
	KindCaptured
)

// Fn is a single typed listener handle invoked as func(T).
type Fn[T any] struct {
	kind Kind

	receiver   interface{} // KindMethod
	methodName string      // KindMethod

	fn func(T) // KindMethod, KindFunc, KindCaptured

	id               string      // KindCaptured
	data             interface{} // KindCaptured
	dataParticipates bool        // KindCaptured
}

// Method builds a bound-method listener handle. receiver must be comparable
// (e.g. a pointer) so two handles for the same object/method are equal.
func Method[T any](receiver interface{}, methodName string, fn func(T)) Fn[T] {
	return Fn[T]{kind: KindMethod, receiver: receiver, methodName: methodName, fn: fn}
}

// Func builds a free-function listener handle. Identity is the function
// pointer, so the same package-level func value registered twice compares
// equal.
func Func[T any](fn func(T)) Fn[T] {
	return Fn[T]{kind: KindFunc, fn: fn}
}

// Captured builds a listener handle around a closure that captures state.
// Closures have no stable identity in Go, so the caller supplies id for
// removal; if dataParticipates is true, two handles with the same id are
// only equal when data also compares equal (==).
func Captured[T any](id string, data interface{}, dataParticipates bool, fn func(T)) Fn[T] {
	return Fn[T]{kind: KindCaptured, id: id, data: data, dataParticipates: dataParticipates, fn: fn}
}

// Invoke calls the underlying function.
func (f Fn[T]) Invoke(v T) { f.fn(v) }

// Equal implements the spec's "same flavor, same identifying fields"
// contract.
func (f Fn[T]) Equal(o Fn[T]) bool {
	if f.kind != o.kind {
		return false
	}
	switch f.kind {
	case KindMethod:
		return f.receiver == o.receiver && f.methodName == o.methodName
	case KindFunc:
		return reflect.ValueOf(f.fn).Pointer() == reflect.ValueOf(o.fn).Pointer()
	case KindCaptured:
		if f.id != o.id {
			return false
		}
		if f.dataParticipates {
			return f.data == o.data
		}
		return true
	default:
		return false
	}
}

// String renders a human-readable, debug-only form.
func (f Fn[T]) String() string {
	switch f.kind {
	case KindMethod:
		return fmt.Sprintf("method(%v.%s)", f.receiver, f.methodName)
	case KindFunc:
		return fmt.Sprintf("func(0x%x)", reflect.ValueOf(f.fn).Pointer())
	case KindCaptured:
		if f.dataParticipates {
			return fmt.Sprintf("captured(%s, data=%v)", f.id, f.data)
		}
		return fmt.Sprintf("captured(%s)", f.id)
	default:
		return "fn(unknown)"
	}
}
