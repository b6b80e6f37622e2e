package vm

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/chazu/yarvm/pkg/value"
)

// callBuiltin dispatches a message against one of the primitive Value
// kinds (everything that isn't a user-defined Object or ClassRef).
// There is no open-ended method_missing chain here — an unanswered
// selector is simply ErrNotImplemented, per this catalog's scope.
func callBuiltin(recv value.Value, method string, args []value.Value) (value.Value, error) {
	switch r := recv.(type) {
	case value.Integer:
		return integerBuiltin(r, method, args)
	case value.Float:
		return floatBuiltin(r, method, args)
	case value.Str:
		return strBuiltin(r, method, args)
	case value.Symbol:
		return symbolBuiltin(r, method, args)
	case value.Bool:
		return boolBuiltin(r, method, args)
	case *value.Array:
		return arrayBuiltin(r, method, args)
	case *value.Hash:
		return hashBuiltin(r, method, args)
	case *value.Range:
		return rangeBuiltin(r, method, args)
	}
	if recv == value.Nil {
		return nilBuiltin(method, args)
	}
	return nil, errors.Wrapf(ErrNotImplemented, "%s for %s", method, recv.Kind())
}

func arg0(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Nil
	}
	return args[0]
}

func numToFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Integer:
		return float64(n), true
	case value.Float:
		return float64(n), true
	}
	return 0, false
}

func integerBuiltin(recv value.Integer, method string, args []value.Value) (value.Value, error) {
	a := arg0(args)
	switch method {
	case "+", "-", "*", "/", "%":
		if other, ok := a.(value.Integer); ok {
			return intArith(method, int64(recv), int64(other))
		}
		if f, ok := numToFloat(a); ok {
			return floatArith(method, float64(recv), f)
		}
		return nil, errors.Wrapf(ErrWrongArgc, "%s expects a numeric operand", method)
	case "<", "<=", ">", ">=", "==":
		f, ok := numToFloat(a)
		if !ok {
			return value.False, nil
		}
		return value.NewBool(numCompare(method, float64(recv), f)), nil
	case "<<":
		other, ok := a.(value.Integer)
		if !ok {
			return nil, errors.Wrapf(ErrWrongArgc, "<< expects an integer operand")
		}
		return value.NewInteger(int64(recv) << uint(other)), nil
	case "succ":
		return value.NewInteger(int64(recv) + 1), nil
	case "to_s":
		return value.NewStr(strconv.FormatInt(int64(recv), 10)), nil
	case "nil?":
		return value.False, nil
	case "!":
		return value.False, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Integer#%s", method)
}

func intArith(method string, a, b int64) (value.Value, error) {
	switch method {
	case "+":
		return value.NewInteger(a + b), nil
	case "-":
		return value.NewInteger(a - b), nil
	case "*":
		return value.NewInteger(a * b), nil
	case "/":
		if b == 0 {
			return nil, errors.New("divided by 0")
		}
		return value.NewInteger(floorDiv(a, b)), nil
	case "%":
		if b == 0 {
			return nil, errors.New("divided by 0")
		}
		return value.NewInteger(floorMod(a, b)), nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Integer#%s", method)
}

// floorDiv divides a by b rounding toward negative infinity, matching the
// reference language's Integer#/ rather than Go's truncating division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod is a modulo b with the sign of b, the companion to floorDiv.
func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func floatArith(method string, a, b float64) (value.Value, error) {
	switch method {
	case "+":
		return value.NewFloat(a + b), nil
	case "-":
		return value.NewFloat(a - b), nil
	case "*":
		return value.NewFloat(a * b), nil
	case "/":
		return value.NewFloat(a / b), nil
	case "%":
		return value.NewFloat(float64(int64(a) % int64(b))), nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Float#%s", method)
}

func numCompare(method string, a, b float64) bool {
	switch method {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	}
	return false
}

func floatBuiltin(recv value.Float, method string, args []value.Value) (value.Value, error) {
	a := arg0(args)
	switch method {
	case "+", "-", "*", "/", "%":
		if f, ok := numToFloat(a); ok {
			return floatArith(method, float64(recv), f)
		}
		return nil, errors.Wrapf(ErrWrongArgc, "%s expects a numeric operand", method)
	case "<", "<=", ">", ">=", "==":
		f, ok := numToFloat(a)
		if !ok {
			return value.False, nil
		}
		return value.NewBool(numCompare(method, float64(recv), f)), nil
	case "to_s":
		return value.NewStr(strconv.FormatFloat(float64(recv), 'g', -1, 64)), nil
	case "nil?":
		return value.False, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Float#%s", method)
}

func strBuiltin(recv value.Str, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "+":
		other, ok := arg0(args).(value.Str)
		if !ok {
			return nil, errors.New("string concatenation requires a string operand")
		}
		return value.NewStr(string(recv) + string(other)), nil
	case "==":
		return value.NewBool(recv.Equal(arg0(args))), nil
	case "length", "size":
		return value.NewInteger(int64(len(recv))), nil
	case "empty?":
		return value.NewBool(len(recv) == 0), nil
	case "to_s":
		return recv, nil
	case "nil?":
		return value.False, nil
	case "[]":
		idx, ok := arg0(args).(value.Integer)
		if !ok || int(idx) < 0 || int(idx) >= len(recv) {
			return value.Nil, nil
		}
		return value.NewStr(string(recv[idx])), nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "String#%s", method)
}

func symbolBuiltin(recv value.Symbol, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "to_s":
		return value.NewStr(string(recv)), nil
	case "==":
		return value.NewBool(recv.Equal(arg0(args))), nil
	case "nil?":
		return value.False, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Symbol#%s", method)
}

func boolBuiltin(recv value.Bool, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "!":
		return value.NewBool(!bool(recv)), nil
	case "==":
		return value.NewBool(recv.Equal(arg0(args))), nil
	case "to_s":
		return value.NewStr(recv.Inspect()), nil
	case "nil?":
		return value.False, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Boolean#%s", method)
}

func nilBuiltin(method string, args []value.Value) (value.Value, error) {
	switch method {
	case "nil?":
		return value.True, nil
	case "to_s":
		return value.NewStr(""), nil
	case "!":
		return value.True, nil
	case "==":
		return value.NewBool(arg0(args) == value.Nil), nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "NilClass#%s", method)
}

func arrayBuiltin(recv *value.Array, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "length", "size":
		return value.NewInteger(int64(len(recv.Elems))), nil
	case "empty?":
		return value.NewBool(len(recv.Elems) == 0), nil
	case "nil?":
		return value.False, nil
	case "[]":
		idx, ok := arg0(args).(value.Integer)
		if !ok || int(idx) < 0 || int(idx) >= len(recv.Elems) {
			return value.Nil, nil
		}
		return recv.Elems[idx], nil
	case "[]=":
		idx, ok := args[0].(value.Integer)
		if !ok || int(idx) < 0 {
			return nil, errors.New("Array#[]= requires a non-negative integer index")
		}
		for len(recv.Elems) <= int(idx) {
			recv.Elems = append(recv.Elems, value.Nil)
		}
		recv.Elems[idx] = args[1]
		return args[1], nil
	case "push", "<<":
		recv.Elems = append(recv.Elems, args...)
		return recv, nil
	case "to_s":
		return value.NewStr(recv.Inspect()), nil
	case "max":
		return arrayReduce(recv, func(a, b value.Value) bool { return numLess(b, a) })
	case "min":
		return arrayReduce(recv, func(a, b value.Value) bool { return numLess(a, b) })
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Array#%s", method)
}

func numLess(a, b value.Value) bool {
	af, _ := numToFloat(a)
	bf, _ := numToFloat(b)
	return af < bf
}

func arrayReduce(recv *value.Array, better func(candidate, current value.Value) bool) (value.Value, error) {
	if len(recv.Elems) == 0 {
		return value.Nil, nil
	}
	best := recv.Elems[0]
	for _, v := range recv.Elems[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best, nil
}

func hashBuiltin(recv *value.Hash, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "[]":
		v, ok := recv.Get(arg0(args))
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case "[]=":
		recv.Set(args[0], args[1])
		return args[1], nil
	case "length", "size":
		return value.NewInteger(int64(recv.Len())), nil
	case "empty?":
		return value.NewBool(recv.Len() == 0), nil
	case "nil?":
		return value.False, nil
	case "to_s":
		return value.NewStr(recv.Inspect()), nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Hash#%s", method)
}

func rangeBuiltin(recv *value.Range, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "to_s":
		return value.NewStr(recv.Inspect()), nil
	case "nil?":
		return value.False, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "Range#%s", method)
}
