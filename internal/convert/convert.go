// Package convert reconciles values returned by a SQL driver with the Go type
// a mapped field declares.
//
// Drivers hand back a small set of runtime types (int64, float64, string,
// []byte, bool, time.Time, nil). Fields are free to declare narrower or named
// types, so To applies a fixed set of value-preserving conversions and rejects
// everything else. There is no string parsing and no lossy coercion.
//
// Supported conversions:
//   - any value assignable to the target, retyped to the target itself
//   - NULL into pointer, interface, slice or map targets (zero value)
//   - integer to integer when the value fits the target
//   - integer to float when the value is exactly representable
//   - float32 to float64, and float64 to float32 when exact
//   - integer 0/1 to bool
//   - []byte to string and string to []byte
//   - same-kind conversions into named types (type Name string)
//   - any of the above into *T, allocating the pointer
package convert

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrUnsupported is matched by every conversion failure.
var ErrUnsupported = errors.New("unsupported conversion")

// Error describes a value that cannot be stored in the target type.
type Error struct {
	// From is the runtime type of the value, nil for NULL.
	From reflect.Type

	// To is the declared field type.
	To reflect.Type

	// Reason says why the conversion was refused.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	from := "NULL"
	if e.From != nil {
		from = e.From.String()
	}
	return fmt.Sprintf("cannot convert %s to %s: %s", from, e.To, e.Reason)
}

// Unwrap lets errors.Is match ErrUnsupported.
func (e *Error) Unwrap() error {
	return ErrUnsupported
}

// IsError reports whether err is a conversion failure.
func IsError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// To converts value into target, returning a value whose dynamic type is
// assignable to target.
func To(value any, target reflect.Type) (any, error) {
	if target == nil {
		return nil, &Error{Reason: "no target type"}
	}

	if value == nil {
		switch target.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			return reflect.Zero(target).Interface(), nil
		}
		return nil, &Error{To: target, Reason: "NULL is not storable in a non-nillable field"}
	}

	v := reflect.ValueOf(value)
	if v.Type() == target {
		return value, nil
	}
	// []byte into json.RawMessage and the like: assignable, but callers
	// assert the exact type
	if v.Type().AssignableTo(target) && target.Kind() != reflect.Interface {
		return v.Convert(target).Interface(), nil
	}
	if target.Kind() == reflect.Interface && v.Type().Implements(target) {
		return value, nil
	}

	if target.Kind() == reflect.Pointer {
		inner, err := To(value, target.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(reflect.ValueOf(inner))
		return ptr.Interface(), nil
	}

	out, err := convertValue(v, target)
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func convertValue(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	from := v.Type()
	fail := func(reason string) (reflect.Value, error) {
		return reflect.Value{}, &Error{From: from, To: target, Reason: reason}
	}

	switch {
	case isInt(from.Kind()) && isInt(target.Kind()):
		n := v.Int()
		if target.OverflowInt(n) {
			return fail(fmt.Sprintf("%d overflows", n))
		}
		return reflect.ValueOf(n).Convert(target), nil

	case isUint(from.Kind()) && isUint(target.Kind()):
		u := v.Uint()
		if target.OverflowUint(u) {
			return fail(fmt.Sprintf("%d overflows", u))
		}
		return reflect.ValueOf(u).Convert(target), nil

	case isInt(from.Kind()) && isUint(target.Kind()):
		n := v.Int()
		if n < 0 || target.OverflowUint(uint64(n)) {
			return fail(fmt.Sprintf("%d out of range", n))
		}
		return reflect.ValueOf(uint64(n)).Convert(target), nil

	case isUint(from.Kind()) && isInt(target.Kind()):
		u := v.Uint()
		if u > math.MaxInt64 || target.OverflowInt(int64(u)) {
			return fail(fmt.Sprintf("%d out of range", u))
		}
		return reflect.ValueOf(int64(u)).Convert(target), nil

	case (isInt(from.Kind()) || isUint(from.Kind())) && isFloat(target.Kind()):
		limit := uint64(1) << 53
		if target.Kind() == reflect.Float32 {
			limit = uint64(1) << 24
		}
		if isInt(from.Kind()) {
			n := v.Int()
			if abs(n) > limit {
				return fail(fmt.Sprintf("%d is not exactly representable", n))
			}
			return reflect.ValueOf(float64(n)).Convert(target), nil
		}
		u := v.Uint()
		if u > limit {
			return fail(fmt.Sprintf("%d is not exactly representable", u))
		}
		return reflect.ValueOf(float64(u)).Convert(target), nil

	case isFloat(from.Kind()) && isFloat(target.Kind()):
		f := v.Float()
		if target.Kind() == reflect.Float32 && !math.IsNaN(f) && float64(float32(f)) != f {
			return fail(fmt.Sprintf("%v loses precision", f))
		}
		return reflect.ValueOf(f).Convert(target), nil

	case isInt(from.Kind()) && target.Kind() == reflect.Bool:
		switch v.Int() {
		case 0:
			return reflect.ValueOf(false).Convert(target), nil
		case 1:
			return reflect.ValueOf(true).Convert(target), nil
		}
		return fail(fmt.Sprintf("%d is not a boolean", v.Int()))

	case isBytes(from) && target.Kind() == reflect.String:
		return reflect.ValueOf(string(v.Bytes())).Convert(target), nil

	case from.Kind() == reflect.String && isBytes(target):
		b := []byte(v.String())
		return reflect.ValueOf(b).Convert(target), nil

	case from.Kind() == target.Kind() && isSameKindConvertible(from.Kind()) && from.ConvertibleTo(target):
		return v.Convert(target), nil
	}

	return fail("no conversion rule")
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isSameKindConvertible limits named-type conversions to kinds where a
// conversion between identical kinds cannot change the value.
func isSameKindConvertible(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool, reflect.Struct:
		return true
	}
	return false
}

func abs(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
