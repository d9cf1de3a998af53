package vm

import (
	"github.com/skiff-lang/Skiff/source/values"
)

// States of the stepper. Like every dispatcher it re-enters from the top
// each time the trampoline wakes it and switches on these to find its place.
const (
	ST_STEP_NEXT    byte = iota // between expressions; begin the next one or finish
	ST_STEP_VALUE               // a value has landed in Spare; look ahead for an operator
	ST_STEP_SETWORD             // the value to assign has landed; the set-word waits in Scratch
)

// dispatchStep evaluates a feed, one expression per step, leaving the last
// expression's value as its result. With STEP_ONCE set it stops after one
// expression, which is how arguments and assignments get evaluated: the
// child shares the caller's feed, so consuming cells moves everyone along.
func dispatchStep(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_STEP_NEXT:
		if lv.Feed.AtEnd() {
			*lv.Out = endValue(lv.Spare)
			return BOUNCE_DONE
		}
		return vm.beginStep(lv)
	case ST_STEP_VALUE:
		return vm.valueReady(lv)
	default: // ST_STEP_SETWORD
		v := lv.Spare
		if v.T == values.RAISED {
			*lv.Out = v
			return BOUNCE_DONE
		}
		w := lv.Scratch.V.(values.Word)
		res := vm.setWord(lv, w, v)
		if res.T == values.RAISED {
			*lv.Out = res
			return BOUNCE_DONE
		}
		lv.Spare = res
		lv.Scratch = values.Value{}
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	}
}

// endValue is what a finished feed evaluates to: the last expression's
// value, or void if there never was an expression.
func endValue(v values.Value) values.Value {
	if v.T == values.UNDEFINED {
		return values.VOID_V
	}
	return v
}

func (vm *Vm) beginStep(lv *Level) Bounce {
	cell := lv.Feed.Peek()
	switch cell.T {
	case values.WORD:
		lv.Feed.Fetch()
		w := cell.V.(values.Word)
		v := vm.fetchWord(lv, w)
		if v.T == values.RAISED {
			*lv.Out = v
			return BOUNCE_DONE
		}
		if v.T == values.ACTION {
			act := v.V.(*values.Action)
			if act.Enfix {
				*lv.Out = vm.raise(lv, "eval/no-left-arg", w.Name)
				return BOUNCE_DONE
			}
			lv.State = ST_STEP_VALUE
			vm.pushApply(act, lv.Feed, &lv.Spare)
			return BOUNCE_CONTINUE
		}
		lv.Spare = v
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	case values.SET_WORD:
		lv.Feed.Fetch()
		w := cell.V.(values.Word)
		if lv.Feed.AtEnd() {
			*lv.Out = vm.raise(lv, "eval/need-arg", w.Name+":", "value")
			return BOUNCE_DONE
		}
		lv.Scratch = cell
		lv.State = ST_STEP_SETWORD
		vm.pushEvalOne(lv.Feed, &lv.Spare, "setting "+w.Name)
		return BOUNCE_CONTINUE
	case values.GET_WORD:
		lv.Feed.Fetch()
		v := vm.fetchWord(lv, cell.V.(values.Word))
		if v.T == values.RAISED {
			*lv.Out = v
			return BOUNCE_DONE
		}
		lv.Spare = v
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	case values.LIT_WORD:
		lv.Feed.Fetch()
		lv.Spare = values.Value{T: values.WORD, V: cell.V.(values.Word)}
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	case values.META_WORD:
		// the lifted form of the variable, unset and all
		lv.Feed.Fetch()
		w := cell.V.(values.Word)
		c, i, ok := vm.resolveWord(w)
		if !ok {
			*lv.Out = vm.raise(lv, "eval/unbound", w.Name)
			return BOUNCE_DONE
		}
		lv.Spare = values.Lift(c.VarAt(i))
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	case values.GROUP:
		lv.Feed.Fetch()
		lv.State = ST_STEP_VALUE
		vm.pushBlockEval(cell.V.(values.Series), &lv.Spare, "group")
		return BOUNCE_CONTINUE
	default:
		// numbers, text, blocks, blanks and the rest are inert
		lv.Feed.Fetch()
		lv.Spare = cell
		lv.State = ST_STEP_VALUE
		return BOUNCE_CONTINUE
	}
}

// valueReady finishes a step: if the next cell is a word for an infix
// action, the value just produced becomes its left argument and the step
// goes on; otherwise the step is over.
func (vm *Vm) valueReady(lv *Level) Bounce {
	if lv.Spare.T == values.RAISED {
		// a raised error abandons the rest of the feed and is the result
		*lv.Out = lv.Spare
		return BOUNCE_DONE
	}
	if lv.Flags&DEFER_ENFIX == 0 && !lv.Feed.AtEnd() {
		cell := lv.Feed.Peek()
		if cell.T == values.WORD {
			if act, ok := vm.peekEnfix(cell.V.(values.Word)); ok {
				lv.Feed.Fetch()
				lv.State = ST_STEP_VALUE
				vm.pushApply(act, lv.Feed, &lv.Spare, lv.Spare.Decay())
				return BOUNCE_CONTINUE
			}
		}
	}
	if lv.Flags&STEP_ONCE != 0 {
		*lv.Out = lv.Spare
		return BOUNCE_DONE
	}
	lv.State = ST_STEP_NEXT
	return BOUNCE_CONTINUE
}

// peekEnfix quietly asks whether a word means an infix action. No raising:
// if the word is unbound or unset that is the next step's problem.
func (vm *Vm) peekEnfix(w values.Word) (*values.Action, bool) {
	c, i, ok := vm.resolveWord(w)
	if !ok || c.IsInaccessible() {
		return nil, false
	}
	v := c.VarAt(i)
	if v.T == values.ACTION && v.V.(*values.Action).Enfix {
		return v.V.(*values.Action), true
	}
	return nil, false
}

// The high bit of the gatherer's State says an argument is in flight; the
// rest counts the parameters already filled.
const ARG_PENDING byte = 0x80

// pushApply begins a call to an action. Pre values fill the leading
// parameter slots, which is how an infix operator receives the value from
// its left. The level starts as the argument gatherer and phase-shifts to
// the action's own dispatcher once the frame is full.
func (vm *Vm) pushApply(act *values.Action, feed *Feed, out *values.Value, pre ...values.Value) *Level {
	frame := vm.Heap.NewFrame(act)
	lv := &Level{
		Dispatch: dispatchArgs,
		Out:      out,
		Feed:     feed,
		Varlist:  frame,
		Phase:    act,
		State:    byte(len(pre)),
		Label:    act.Name,
	}
	for i, v := range pre {
		frame.SetVar(i+1, v)
	}
	frame.Link = lv
	return vm.PushLevel(lv)
}

// dispatchArgs gathers an action's arguments into its frame, one child
// evaluation at a time. Each argument is evaluated into Spare and only then
// moved to its slot: out pointers aim at level-owned cells, never into a
// varlist, whose storage is free to move when it grows.
func dispatchArgs(vm *Vm, lv *Level) Bounce {
	act := lv.Phase
	if lv.State&ARG_PENDING != 0 {
		i := int(lv.State &^ ARG_PENDING)
		v := lv.Spare
		if v.T == values.RAISED {
			*lv.Out = v
			return BOUNCE_DONE
		}
		k := act.Keylist.KeyAt(i)
		if k.Flags&values.META != 0 {
			lv.Varlist.SetVar(i, values.Lift(v))
		} else {
			v = v.Decay()
			if v.T == values.VOID {
				*lv.Out = vm.raise(lv, "eval/arg-void", act.Name, k.Name)
				return BOUNCE_DONE
			}
			lv.Varlist.SetVar(i, v)
		}
		lv.State = byte(i)
	}
	n := act.NumParams()
	for int(lv.State) < n {
		i := int(lv.State) + 1
		k := act.Keylist.KeyAt(i)
		if lv.Feed == nil || lv.Feed.AtEnd() {
			*lv.Out = vm.raise(lv, "eval/need-arg", act.Name, k.Name)
			return BOUNCE_DONE
		}
		if k.Flags&values.QUOTED != 0 {
			lv.Varlist.SetVar(i, lv.Feed.Fetch())
			lv.State = byte(i)
			continue
		}
		lv.State = byte(i) | ARG_PENDING
		child := vm.pushEvalOne(lv.Feed, &lv.Spare, act.Name+" argument")
		if act.Enfix && i == n {
			child.Flags |= DEFER_ENFIX
		}
		return BOUNCE_CONTINUE
	}
	// the frame is full: shift phase and let the action itself take over
	lv.Dispatch = act.Dispatch.(Dispatcher)
	lv.State = 0
	lv.Spare = values.Value{}
	return BOUNCE_CONTINUE
}
