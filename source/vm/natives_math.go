package vm

import (
	"github.com/skiff-lang/Skiff/source/values"
)

// The operators are all infix: the stepper hands them the value on their
// left as the first argument and they gather the rest like any action.
func (vm *Vm) installMath() {
	vm.register("+", []values.Key{n("left"), n("right")}, dispatchAdd, true)
	vm.register("-", []values.Key{n("left"), n("right")}, dispatchSubtract, true)
	vm.register("*", []values.Key{n("left"), n("right")}, dispatchMultiply, true)
	vm.register("/", []values.Key{n("left"), n("right")}, dispatchDivide, true)
	vm.register("=", []values.Key{n("left"), n("right")}, dispatchEq, true)
	vm.register("<>", []values.Key{n("left"), n("right")}, dispatchNeq, true)
	vm.register("<", []values.Key{n("left"), n("right")}, dispatchLess, true)
	vm.register(">", []values.Key{n("left"), n("right")}, dispatchGreater, true)
	vm.register("<=", []values.Key{n("left"), n("right")}, dispatchLessEq, true)
	vm.register(">=", []values.Key{n("left"), n("right")}, dispatchGreaterEq, true)
}

func isNumber(v values.Value) bool {
	return v.T == values.INTEGER || v.T == values.DECIMAL
}

// blameArith names the operand type the error should point at, which is
// the one an operator could not have worked with on its own.
func blameArith(a, b values.Value) string {
	if isNumber(a) || a.T == values.TEXT {
		return values.TypeName(b.T)
	}
	return values.TypeName(a.T)
}

func asDecimal(v values.Value) float64 {
	if v.T == values.INTEGER {
		return float64(v.V.(int))
	}
	return v.V.(float64)
}

func dispatchAdd(vm *Vm, lv *Level) Bounce {
	a, b := lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)
	switch {
	case a.T == values.INTEGER && b.T == values.INTEGER:
		*lv.Out = values.Value{T: values.INTEGER, V: a.V.(int) + b.V.(int)}
	case isNumber(a) && isNumber(b):
		*lv.Out = values.Value{T: values.DECIMAL, V: asDecimal(a) + asDecimal(b)}
	case a.T == values.TEXT && b.T == values.TEXT:
		*lv.Out = values.Value{T: values.TEXT, V: a.V.(string) + b.V.(string)}
	default:
		*lv.Out = vm.raise(lv, "math/bad-arg", "+", blameArith(a, b))
	}
	return BOUNCE_DONE
}

func dispatchSubtract(vm *Vm, lv *Level) Bounce {
	a, b := lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)
	switch {
	case a.T == values.INTEGER && b.T == values.INTEGER:
		*lv.Out = values.Value{T: values.INTEGER, V: a.V.(int) - b.V.(int)}
	case isNumber(a) && isNumber(b):
		*lv.Out = values.Value{T: values.DECIMAL, V: asDecimal(a) - asDecimal(b)}
	default:
		*lv.Out = vm.raise(lv, "math/bad-arg", "-", blameArith(a, b))
	}
	return BOUNCE_DONE
}

func dispatchMultiply(vm *Vm, lv *Level) Bounce {
	a, b := lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)
	switch {
	case a.T == values.INTEGER && b.T == values.INTEGER:
		*lv.Out = values.Value{T: values.INTEGER, V: a.V.(int) * b.V.(int)}
	case isNumber(a) && isNumber(b):
		*lv.Out = values.Value{T: values.DECIMAL, V: asDecimal(a) * asDecimal(b)}
	default:
		*lv.Out = vm.raise(lv, "math/bad-arg", "*", blameArith(a, b))
	}
	return BOUNCE_DONE
}

// Division of integers that divide evenly stays an integer; otherwise the
// result goes decimal rather than quietly truncating.
func dispatchDivide(vm *Vm, lv *Level) Bounce {
	a, b := lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)
	if !isNumber(a) || !isNumber(b) {
		*lv.Out = vm.raise(lv, "math/bad-arg", "/", blameArith(a, b))
		return BOUNCE_DONE
	}
	if asDecimal(b) == 0 {
		*lv.Out = vm.raise(lv, "math/zero-divide")
		return BOUNCE_DONE
	}
	if a.T == values.INTEGER && b.T == values.INTEGER && a.V.(int)%b.V.(int) == 0 {
		*lv.Out = values.Value{T: values.INTEGER, V: a.V.(int) / b.V.(int)}
		return BOUNCE_DONE
	}
	*lv.Out = values.Value{T: values.DECIMAL, V: asDecimal(a) / asDecimal(b)}
	return BOUNCE_DONE
}

func dispatchEq(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.MakeLogic(values.Equal(lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)))
	return BOUNCE_DONE
}

func dispatchNeq(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.MakeLogic(!values.Equal(lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)))
	return BOUNCE_DONE
}

// order does both operands of a comparison at once: -1, 0 or 1, or a raised
// error for things with no ordering between them.
func (vm *Vm) order(lv *Level, name string) (int, values.Value) {
	a, b := lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)
	if isNumber(a) && isNumber(b) {
		fa, fb := asDecimal(a), asDecimal(b)
		switch {
		case fa < fb:
			return -1, values.Value{}
		case fa > fb:
			return 1, values.Value{}
		}
		return 0, values.Value{}
	}
	if a.T == values.TEXT && b.T == values.TEXT {
		sa, sb := a.V.(string), b.V.(string)
		switch {
		case sa < sb:
			return -1, values.Value{}
		case sa > sb:
			return 1, values.Value{}
		}
		return 0, values.Value{}
	}
	return 0, vm.raise(lv, "math/bad-arg", name, blameArith(a, b))
}

func dispatchLess(vm *Vm, lv *Level) Bounce {
	ord, problem := vm.order(lv, "<")
	if problem.T == values.RAISED {
		*lv.Out = problem
	} else {
		*lv.Out = values.MakeLogic(ord < 0)
	}
	return BOUNCE_DONE
}

func dispatchGreater(vm *Vm, lv *Level) Bounce {
	ord, problem := vm.order(lv, ">")
	if problem.T == values.RAISED {
		*lv.Out = problem
	} else {
		*lv.Out = values.MakeLogic(ord > 0)
	}
	return BOUNCE_DONE
}

func dispatchLessEq(vm *Vm, lv *Level) Bounce {
	ord, problem := vm.order(lv, "<=")
	if problem.T == values.RAISED {
		*lv.Out = problem
	} else {
		*lv.Out = values.MakeLogic(ord <= 0)
	}
	return BOUNCE_DONE
}

func dispatchGreaterEq(vm *Vm, lv *Level) Bounce {
	ord, problem := vm.order(lv, ">=")
	if problem.T == values.RAISED {
		*lv.Out = problem
	} else {
		*lv.Out = values.MakeLogic(ord >= 0)
	}
	return BOUNCE_DONE
}
