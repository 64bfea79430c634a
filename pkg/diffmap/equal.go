package diffmap

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Equal reports whether a and b hold the same document value.
//
// Documents are equal when every present key holds an equal value; keys set
// to nil count as absent. Arrays compare element-wise and in order, dates by
// instant and numbers by numeric value regardless of their Go type. Values of
// different kinds are never equal.
func Equal(a, b any) bool {
	// tight paths for decoder output, avoids reflection
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return va == vb
		}
	case float64:
		if vb, ok := b.(float64); ok {
			return floatsEqual(va, vb)
		}
	case int:
		if vb, ok := b.(int); ok {
			return va == vb
		}
	case int64:
		if vb, ok := b.(int64); ok {
			return va == vb
		}
	case bool:
		if vb, ok := b.(bool); ok {
			return va == vb
		}
	}

	kindA, kindB := KindOf(a), KindOf(b)
	if kindA != kindB {
		return false
	}

	switch kindA {
	case KindNull:
		return true
	case KindString:
		return indirect(reflect.ValueOf(a)).String() == indirect(reflect.ValueOf(b)).String()
	case KindBool:
		return indirect(reflect.ValueOf(a)).Bool() == indirect(reflect.ValueOf(b)).Bool()
	case KindNumber:
		return numbersEqual(a, b)
	case KindDate:
		return timeOf(a).Equal(timeOf(b))
	case KindBinary:
		return bytes.Equal(indirect(reflect.ValueOf(a)).Bytes(), indirect(reflect.ValueOf(b)).Bytes())
	case KindArray:
		return arraysEqual(a, b)
	case KindObject:
		docA, _ := asDocument(a)
		docB, _ := asDocument(b)
		return documentsEqual(docA, docB)
	}
	return reflect.DeepEqual(a, b)
}

func documentsEqual(a, b Document) bool {
	for key, valueA := range a {
		if !Equal(valueA, b[key]) {
			return false
		}
	}
	for key, valueB := range b {
		if _, seen := a[key]; !seen && KindOf(valueB) != KindNull {
			return false
		}
	}
	return true
}

func arraysEqual(a, b any) bool {
	if sliceA, ok := a.([]any); ok {
		if sliceB, ok := b.([]any); ok {
			if len(sliceA) != len(sliceB) {
				return false
			}
			for i := range sliceA {
				if !Equal(sliceA[i], sliceB[i]) {
					return false
				}
			}
			return true
		}
	}

	rvA, rvB := indirect(reflect.ValueOf(a)), indirect(reflect.ValueOf(b))
	if rvA.Len() != rvB.Len() {
		return false
	}
	for i := 0; i < rvA.Len(); i++ {
		if !Equal(rvA.Index(i).Interface(), rvB.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func timeOf(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return indirect(reflect.ValueOf(v)).Convert(timeType).Interface().(time.Time)
}

type numberClass uint8

const (
	numberInt numberClass = iota
	numberUint
	numberFloat
)

type number struct {
	class numberClass
	i     int64
	u     uint64
	f     float64
}

func (n number) float() float64 {
	switch n.class {
	case numberInt:
		return float64(n.i)
	case numberUint:
		return float64(n.u)
	default:
		return n.f
	}
}

func toNumber(v any) number {
	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{class: numberInt, i: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{class: numberUint, u: rv.Uint()}
	case reflect.Float32, reflect.Float64:
		return number{class: numberFloat, f: rv.Float()}
	case reflect.String:
		s := json.Number(rv.String())
		if i, err := s.Int64(); err == nil {
			return number{class: numberInt, i: i}
		}
		f, _ := strconv.ParseFloat(string(s), 64)
		return number{class: numberFloat, f: f}
	}
	return number{class: numberFloat}
}

func numbersEqual(a, b any) bool {
	na, nb := toNumber(a), toNumber(b)
	if na.class == numberFloat {
		na, nb = nb, na
	}
	switch {
	case na.class == numberFloat:
		return floatsEqual(na.f, nb.f)
	case nb.class == numberFloat:
		return na.equalsFloat(nb.f)
	case na.class == numberInt && nb.class == numberInt:
		return na.i == nb.i
	case na.class == numberUint && nb.class == numberUint:
		return na.u == nb.u
	case na.class == numberInt:
		return na.i >= 0 && uint64(na.i) == nb.u
	default:
		return nb.i >= 0 && uint64(nb.i) == na.u
	}
}

// floatsEqual treats NaN as equal to itself so an unchanged NaN field does
// not produce a $set.
func floatsEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// equalsFloat compares an integer with f without rounding the integer
// through float64.
func (n number) equalsFloat(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	switch n.class {
	case numberInt:
		if f < -(1<<63) || f >= 1<<63 {
			return false
		}
		return int64(f) == n.i
	case numberUint:
		if f < 0 || f >= 1<<64 {
			return false
		}
		return uint64(f) == n.u
	}
	return false
}
