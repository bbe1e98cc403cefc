package exprutil

import (
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// pureFuncs is the allowlist of WDL standard-library functions TryConstEval
// is permitted to fold through when every argument is itself constant
// (spec §4.1: "no side-effectful standard-library function"). Functions
// like read_lines/size/stdout are deliberately excluded: they depend on
// runtime file-system state even with constant-looking arguments.
var pureFuncs = map[string]func([]wdlvalue.Value) (wdlvalue.Value, bool){
	"floor": func(a []wdlvalue.Value) (wdlvalue.Value, bool) {
		if len(a) != 1 || a[0].Kind() != wdlvalue.KindFloat {
			return wdlvalue.Value{}, false
		}
		f := a[0].AsFloat()
		return wdlvalue.Int(int64(f) - boolToInt(f < 0 && f != float64(int64(f)))), true
	},
	"ceil": func(a []wdlvalue.Value) (wdlvalue.Value, bool) {
		if len(a) != 1 || a[0].Kind() != wdlvalue.KindFloat {
			return wdlvalue.Value{}, false
		}
		f := a[0].AsFloat()
		i := int64(f)
		if f > float64(i) {
			i++
		}
		return wdlvalue.Int(i), true
	},
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// TryConstEval returns (literal, true) when expr can be evaluated with no
// environment and no side-effectful standard-library function; otherwise
// (_, false) (spec §4.1).
func TryConstEval(expr wdl.Expr) (wdlvalue.Value, bool) {
	switch e := expr.(type) {
	case *wdl.Literal:
		return e.Value, true

	case *wdl.ArrayLit:
		elems := make([]wdlvalue.Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, ok := TryConstEval(el)
			if !ok {
				return wdlvalue.Value{}, false
			}
			elems = append(elems, v)
		}
		return wdlvalue.Array(elems), true

	case *wdl.UnaryOp:
		v, ok := TryConstEval(e.X)
		if !ok {
			return wdlvalue.Value{}, false
		}
		return evalUnary(e.Op, v)

	case *wdl.BinaryOp:
		l, ok := TryConstEval(e.Left)
		if !ok {
			return wdlvalue.Value{}, false
		}
		r, ok := TryConstEval(e.Right)
		if !ok {
			return wdlvalue.Value{}, false
		}
		return evalBinary(e.Op, l, r)

	case *wdl.Apply:
		fn, ok := pureFuncs[e.Func]
		if !ok {
			return wdlvalue.Value{}, false
		}
		args := make([]wdlvalue.Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, ok := TryConstEval(a)
			if !ok {
				return wdlvalue.Value{}, false
			}
			args = append(args, v)
		}
		return fn(args)

	default:
		// Ident, Member, Index all require an environment to resolve.
		return wdlvalue.Value{}, false
	}
}

func evalUnary(op string, v wdlvalue.Value) (wdlvalue.Value, bool) {
	switch op {
	case "-":
		switch v.Kind() {
		case wdlvalue.KindInt:
			return wdlvalue.Int(-v.AsInt()), true
		case wdlvalue.KindFloat:
			return wdlvalue.Float(-v.AsFloat()), true
		}
	case "!":
		if v.Kind() == wdlvalue.KindBoolean {
			return wdlvalue.Bool(!v.AsBool()), true
		}
	}
	return wdlvalue.Value{}, false
}

func evalBinary(op string, l, r wdlvalue.Value) (wdlvalue.Value, bool) {
	switch {
	case l.Kind() == wdlvalue.KindInt && r.Kind() == wdlvalue.KindInt:
		a, b := l.AsInt(), r.AsInt()
		switch op {
		case "+":
			return wdlvalue.Int(a + b), true
		case "-":
			return wdlvalue.Int(a - b), true
		case "*":
			return wdlvalue.Int(a * b), true
		case "/":
			if b == 0 {
				return wdlvalue.Value{}, false
			}
			return wdlvalue.Int(a / b), true
		case ">":
			return wdlvalue.Bool(a > b), true
		case "<":
			return wdlvalue.Bool(a < b), true
		case ">=":
			return wdlvalue.Bool(a >= b), true
		case "<=":
			return wdlvalue.Bool(a <= b), true
		case "==":
			return wdlvalue.Bool(a == b), true
		case "!=":
			return wdlvalue.Bool(a != b), true
		}
	case l.Kind() == wdlvalue.KindString && r.Kind() == wdlvalue.KindString && op == "+":
		return wdlvalue.String(l.AsString() + r.AsString()), true
	case l.Kind() == wdlvalue.KindBoolean && r.Kind() == wdlvalue.KindBoolean:
		switch op {
		case "&&":
			return wdlvalue.Bool(l.AsBool() && r.AsBool()), true
		case "||":
			return wdlvalue.Bool(l.AsBool() || r.AsBool()), true
		}
	}
	return wdlvalue.Value{}, false
}
