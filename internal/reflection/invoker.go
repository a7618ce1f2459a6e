package reflection

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// PanicError carries a value recovered from a panicking constructor.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// ArityError reports a dependency list whose length differs from the
// constructor's parameter count.
type ArityError struct {
	Constructor reflect.Type
	Want        int
	Got         int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("constructor %s takes %d parameters but %d dependencies were declared",
		e.Constructor, e.Want, e.Got)
}

// Invoke calls the analyzed constructor with positional arguments.
//
// A nil argument becomes the zero value of its parameter type. An argument
// not assignable to its parameter fails before the call. A constructor panic
// is returned as *PanicError.
func Invoke(info *ConstructorInfo, args []any) (instance any, err error) {
	if len(args) != len(info.Parameters) {
		return nil, &ArityError{Constructor: info.Type, Want: len(info.Parameters), Got: len(args)}
	}

	in, err := buildArguments(info, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	results := info.Value.Call(in)

	if info.HasErrorReturn {
		if errVal := results[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}

	return valueInterface(results[0]), nil
}

// buildArguments converts resolved instances to call arguments.
func buildArguments(info *ConstructorInfo, args []any) ([]reflect.Value, error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := info.Parameters[i]

		if arg == nil {
			in[i] = reflect.Zero(paramType)
			continue
		}

		val := reflect.ValueOf(arg)
		if !val.Type().AssignableTo(paramType) {
			return nil, fmt.Errorf("parameter %d of %s: %s is not assignable to %s",
				i, info.Type, val.Type(), paramType)
		}

		in[i] = val
	}

	return in, nil
}

// valueInterface unwraps a result. A nil interface result becomes an
// untyped nil.
func valueInterface(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	default:
		return v.Interface()
	}
}
