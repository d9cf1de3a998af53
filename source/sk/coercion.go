package sk

import (
	"errors"
	"reflect"

	"github.com/skiff-lang/Skiff/source/values"
)

// Tries to turn a given Skiff value into a given Go type. As it necessarily has
// return type `any` (plus an error if the coercion is impossible) the value
// returned will then still need downcasting to the type it was coerced to.
//
// E.g:
// func TwoPlusTwo() int {
//     v, _ := fooService.Do(`2 + 2`)            // `v` has type `Value`.
//     i, _ := sk.ToGo(v, reflect.TypeFor[int]()) // `i` has type `any`.
//     return i.(int)                             // We return an integer as required.
// }
//
// The error will be non-nil if the coercion is impossible.
func ToGo(v Value, goType reflect.Type) (any, error) {
	myError := errors.New("cannot coerce Skiff value of type '" + values.TypeName(v.T) +
		"' to Go value of type '" + goType.String() + "'")
	if goType.Kind() == reflect.Pointer {
		goDatum, e := ToGo(v, goType.Elem())
		if e != nil {
			return nil, e
		}
		goPointer := reflect.New(goType.Elem())
		goPointer.Elem().Set(reflect.ValueOf(goDatum))
		return goPointer.Interface(), nil
	}
	if goType == reflect.TypeFor[any]() {
		var ok bool
		goType, ok = DEFAULT_TYPE_FOR[v.T]
		if !ok {
			return nil, myError
		}
	}
	var goDatum any
	switch v.T {
	case INTEGER:
		switch goType.Kind() {
		case reflect.Int:
			goDatum = v.V.(int)
		case reflect.Int8:
			goDatum = int8(v.V.(int))
		case reflect.Int16:
			goDatum = int16(v.V.(int))
		case reflect.Int32:
			goDatum = int32(v.V.(int))
		case reflect.Int64:
			goDatum = int64(v.V.(int))
		case reflect.Uint:
			goDatum = uint(v.V.(int))
		case reflect.Uint8:
			goDatum = uint8(v.V.(int))
		case reflect.Uint16:
			goDatum = uint16(v.V.(int))
		case reflect.Uint32:
			goDatum = uint32(v.V.(int))
		case reflect.Uint64:
			goDatum = uint64(v.V.(int))
		default:
			return nil, myError
		}
	case DECIMAL:
		switch goType.Kind() {
		case reflect.Float32:
			goDatum = float32(v.V.(float64))
		case reflect.Float64:
			goDatum = v.V.(float64)
		default:
			return nil, myError
		}
	case TEXT:
		if goType.Kind() != reflect.String {
			return nil, myError
		}
		goDatum = v.V.(string)
	case LOGIC:
		if goType.Kind() != reflect.Bool {
			return nil, myError
		}
		goDatum = v.V.(bool)
	case BLOCK, GROUP:
		ser := v.V.(values.Series)
		if ser.Flex.IsInaccessible() {
			return nil, myError
		}
		elements := []Value{}
		for i := ser.Index; i < ser.Flex.Len(); i++ {
			elements = append(elements, ser.Flex.At(i))
		}
		switch goType.Kind() {
		case reflect.Array:
			if goType.Len() != len(elements) {
				return nil, myError
			}
			goArray := reflect.New(goType).Elem()
			for i, element := range elements {
				goElementDatum, e := ToGo(element, goType.Elem())
				if e != nil {
					return nil, e
				}
				goArray.Index(i).Set(reflect.ValueOf(goElementDatum))
			}
			goDatum = goArray.Interface()
		case reflect.Slice:
			goSlice := reflect.MakeSlice(goType, len(elements), len(elements))
			for i, element := range elements {
				goElementDatum, e := ToGo(element, goType.Elem())
				if e != nil {
					return nil, e
				}
				goSlice.Index(i).Set(reflect.ValueOf(goElementDatum))
			}
			goDatum = goSlice.Interface()
		default:
			return nil, myError
		}
	case MAP:
		if goType.Kind() != reflect.Map {
			return nil, myError
		}
		goMap := reflect.MakeMap(goType)
		var rangeError error
		v.V.(*values.Map).Range(func(key, value Value) {
			if rangeError != nil {
				return
			}
			goKeyDatum, keyError := ToGo(key, goType.Key())
			if keyError != nil {
				rangeError = keyError
				return
			}
			goValDatum, valError := ToGo(value, goType.Elem())
			if valError != nil {
				rangeError = valError
				return
			}
			goMap.SetMapIndex(reflect.ValueOf(goKeyDatum), reflect.ValueOf(goValDatum))
		})
		if rangeError != nil {
			return nil, rangeError
		}
		goDatum = goMap.Interface()
	case OBJECT:
		if goType.Kind() != reflect.Struct {
			return nil, myError
		}
		c := v.V.(*values.VarList)
		if c.IsInaccessible() {
			return nil, myError
		}
		fields := []Value{}
		for i := 1; i <= c.NumVars(); i++ {
			if c.Keylist.KeyAt(i).Flags&values.HIDDEN == 0 {
				fields = append(fields, c.VarAt(i))
			}
		}
		if len(fields) != goType.NumField() {
			return nil, myError
		}
		goStruct := reflect.New(goType).Elem()
		for i, field := range fields {
			goFieldDatum, e := ToGo(field, goType.FieldByIndex([]int{i}).Type)
			if e != nil {
				return nil, e
			}
			goStruct.Field(i).Set(reflect.ValueOf(goFieldDatum))
		}
		return goStruct.Interface(), nil
	default:
		return nil, myError
	}
	// This takes care of named types with the right underlying kind.
	return reflect.ValueOf(goDatum).Convert(goType).Interface(), nil
}

// Tries to turn a given Go value into a Skiff value. This is a method on the
// service because blocks and maps have to be allocated on its heap. Anything
// the service is to keep hold of across evaluations should be pinned with
// `Hold` once made.
func (sv *Service) FromGo(datum any) (Value, error) {
	if sv.vm == nil {
		return Value{}, errors.New("service is uninitialized")
	}
	return sv.fromGo(reflect.ValueOf(datum))
}

func (sv *Service) fromGo(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return values.BLANK_V, nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return values.BLANK_V, nil
		}
		return sv.fromGo(rv.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{T: INTEGER, V: int(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{T: INTEGER, V: int(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return Value{T: DECIMAL, V: rv.Float()}, nil
	case reflect.String:
		return Value{T: TEXT, V: rv.String()}, nil
	case reflect.Bool:
		return values.MakeLogic(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		cells := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cell, e := sv.fromGo(rv.Index(i))
			if e != nil {
				return Value{}, e
			}
			cells = append(cells, cell)
		}
		return sv.heap.NewBlock(cells...), nil
	case reflect.Map:
		pm := values.NewMap()
		iter := rv.MapRange()
		for iter.Next() {
			key, e := sv.fromGo(iter.Key())
			if e != nil {
				return Value{}, e
			}
			if !values.CanBeMapKey(key) {
				return Value{}, errors.New("Go value of type '" +
					iter.Key().Type().String() + "' cannot be a Skiff map key")
			}
			val, e := sv.fromGo(iter.Value())
			if e != nil {
				return Value{}, e
			}
			pm.Set(key, val)
		}
		return Value{T: MAP, V: pm}, nil
	}
	return Value{}, errors.New("cannot coerce Go value of type '" +
		rv.Type().String() + "' to a Skiff value")
}

// What we convert to when we convert to `any`.
var DEFAULT_TYPE_FOR = map[Type]reflect.Type{
	INTEGER: reflect.TypeFor[int](),
	DECIMAL: reflect.TypeFor[float64](),
	TEXT:    reflect.TypeFor[string](),
	LOGIC:   reflect.TypeFor[bool](),
	BLOCK:   reflect.TypeFor[[]any](),
	GROUP:   reflect.TypeFor[[]any](),
	MAP:     reflect.TypeFor[map[any]any](),
}
