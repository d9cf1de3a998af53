package vm

import (
	"fmt"

	"github.com/skiff-lang/Skiff/source/values"
)

func (vm *Vm) installDataNatives() {
	vm.register("append", []values.Key{n("series"), n("value")}, dispatchAppend, false)
	vm.register("first", []values.Key{n("series")}, dispatchFirst, false)
	vm.register("last", []values.Key{n("series")}, dispatchLast, false)
	vm.register("pick", []values.Key{n("series"), n("index")}, dispatchPick, false)
	vm.register("skip", []values.Key{n("series"), n("offset")}, dispatchSkip, false)
	vm.register("length-of", []values.Key{n("value")}, dispatchLengthOf, false)
	vm.register("copy", []values.Key{n("value")}, dispatchCopy, false)
	vm.register("freeze", []values.Key{n("series")}, dispatchFreeze, false)
	vm.register("free", []values.Key{n("series")}, dispatchFree, false)
	vm.register("object", []values.Key{q("body")}, dispatchObject, false)
	vm.register("map", []values.Key{q("pairs")}, dispatchMap, false)
	vm.register("put", []values.Key{n("map"), n("key"), n("value")}, dispatchPut, false)
	vm.register("select", []values.Key{n("target"), n("key")}, dispatchSelect, false)
	vm.register("mold", []values.Key{m("value")}, dispatchMold, false)
	vm.register("form", []values.Key{n("value")}, dispatchForm, false)
	vm.register("print", []values.Key{n("value")}, dispatchPrint, false)
	vm.register("probe", []values.Key{n("value")}, dispatchProbe, false)
	vm.register("ask", []values.Key{n("prompt")}, dispatchAsk, false)
	vm.register("recycle", []values.Key{}, dispatchRecycle, false)
	vm.register("stats", []values.Key{}, dispatchStats, false)
}

// liveSeries unwraps a block argument, raising if it is some other kind of
// thing or has been freed.
func (vm *Vm) liveSeries(lv *Level, v values.Value) (values.Series, values.Value) {
	if v.T != values.BLOCK && v.T != values.GROUP {
		return values.Series{}, vm.raise(lv, "eval/wrong-type", "block", values.TypeName(v.T))
	}
	ser := v.V.(values.Series)
	if ser.Flex.IsInaccessible() {
		return values.Series{}, vm.raise(lv, "series/freed")
	}
	return ser, values.Value{}
}

func dispatchAppend(vm *Vm, lv *Level) Bounce {
	ser, problem := vm.liveSeries(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	v := lv.Varlist.VarAt(2)
	if ser.Flex.IsFrozen() {
		*lv.Out = vm.raise(lv, "series/frozen")
		return BOUNCE_DONE
	}
	if !ser.Flex.CanAdmit(v) {
		*lv.Out = vm.raise(lv, "series/antiform", values.TypeName(v.T))
		return BOUNCE_DONE
	}
	ser.Flex.Append(v)
	*lv.Out = lv.Varlist.VarAt(1)
	return BOUNCE_DONE
}

func dispatchFirst(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	*lv.Out = vm.pickAt(lv, v, 1)
	return BOUNCE_DONE
}

func dispatchLast(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser, problem := vm.liveSeries(lv, v)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		*lv.Out = vm.pickAt(lv, v, ser.Flex.Len()-ser.Index)
	case values.TEXT:
		runes := []rune(v.V.(string))
		*lv.Out = vm.pickAt(lv, v, len(runes))
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "series", values.TypeName(v.T))
	}
	return BOUNCE_DONE
}

func dispatchPick(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	idx := lv.Varlist.VarAt(2)
	if v.T == values.MAP {
		got, ok := v.V.(*values.Map).Get(idx)
		if !ok {
			*lv.Out = values.NULL_V
		} else {
			*lv.Out = got
		}
		return BOUNCE_DONE
	}
	if idx.T != values.INTEGER {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "integer", values.TypeName(idx.T))
		return BOUNCE_DONE
	}
	*lv.Out = vm.pickAt(lv, v, idx.V.(int))
	return BOUNCE_DONE
}

// pickAt gets the nth element counting from 1 at the series' own position.
// Out of range is a null, not an error, so that walking off the end of
// things can be tested for.
func (vm *Vm) pickAt(lv *Level, v values.Value, nth int) values.Value {
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser, problem := vm.liveSeries(lv, v)
		if problem.T == values.RAISED {
			return problem
		}
		i := ser.Index + nth - 1
		if nth < 1 || i >= ser.Flex.Len() {
			return values.NULL_V
		}
		return ser.Flex.At(i)
	case values.TEXT:
		runes := []rune(v.V.(string))
		if nth < 1 || nth > len(runes) {
			return values.NULL_V
		}
		return values.Value{T: values.TEXT, V: string(runes[nth-1])}
	default:
		return vm.raise(lv, "eval/wrong-type", "series", values.TypeName(v.T))
	}
}

// dispatchSkip moves a series' position without touching its flex. The cell
// it returns shares the underlying storage with the argument.
func dispatchSkip(vm *Vm, lv *Level) Bounce {
	ser, problem := vm.liveSeries(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	off := lv.Varlist.VarAt(2)
	if off.T != values.INTEGER {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "integer", values.TypeName(off.T))
		return BOUNCE_DONE
	}
	i := ser.Index + off.V.(int)
	if i < 0 {
		i = 0
	}
	if i > ser.Flex.Len() {
		i = ser.Flex.Len()
	}
	*lv.Out = values.Value{T: lv.Varlist.VarAt(1).T, V: values.Series{Flex: ser.Flex, Index: i}}
	return BOUNCE_DONE
}

func dispatchLengthOf(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser, problem := vm.liveSeries(lv, v)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		*lv.Out = values.Value{T: values.INTEGER, V: ser.Flex.Len() - ser.Index}
	case values.TEXT:
		*lv.Out = values.Value{T: values.INTEGER, V: len([]rune(v.V.(string)))}
	case values.MAP:
		*lv.Out = values.Value{T: values.INTEGER, V: v.V.(*values.Map).Len()}
	case values.OBJECT, values.FRAME, values.ERROR:
		c := v.V.(*values.VarList)
		count := 0
		for i := 1; i <= c.NumVars(); i++ {
			if c.Keylist.KeyAt(i).Flags&values.HIDDEN == 0 {
				count++
			}
		}
		*lv.Out = values.Value{T: values.INTEGER, V: count}
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "series", values.TypeName(v.T))
	}
	return BOUNCE_DONE
}

// dispatchCopy is shallow: a block's cells are copied into a fresh flex, so
// the copy does not see appends to the original, but blocks inside it are
// still the same blocks. Copying a map costs nothing beyond the header
// because the nodes underneath never mutate.
func dispatchCopy(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser, problem := vm.liveSeries(lv, v)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		f := vm.Heap.NewFlex(values.SOURCE, ser.Flex.Len()-ser.Index)
		for i := ser.Index; i < ser.Flex.Len(); i++ {
			f.Append(ser.Flex.At(i))
		}
		vm.Heap.Manage(f)
		*lv.Out = values.Value{T: v.T, V: values.Series{Flex: f}}
	case values.MAP:
		*lv.Out = values.Value{T: values.MAP, V: v.V.(*values.Map).Copy()}
	case values.TEXT:
		*lv.Out = v
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "series", values.TypeName(v.T))
	}
	return BOUNCE_DONE
}

func dispatchFreeze(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser, problem := vm.liveSeries(lv, v)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		ser.Flex.Freeze()
		*lv.Out = v
	case values.OBJECT:
		v.V.(*values.VarList).Freeze()
		*lv.Out = v
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "series", values.TypeName(v.T))
	}
	return BOUNCE_DONE
}

// dispatchFree decommissions the underlying flex. Every cell anywhere that
// still points at it now holds a stub which errors on use; the collector
// keeps the stub itself alive as long as they do.
func dispatchFree(vm *Vm, lv *Level) Bounce {
	ser, problem := vm.liveSeries(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	if ser.Flex.IsFrozen() {
		*lv.Out = vm.raise(lv, "series/frozen")
		return BOUNCE_DONE
	}
	ser.Flex.Decommission()
	*lv.Out = values.VOID_V
	return BOUNCE_DONE
}

// dispatchObject collects the set-words of its body into a fresh context,
// binds a copy of the body to it, and runs that copy. The object is what
// the words did to it, not what the body evaluated to.
func dispatchObject(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_NATIVE_BEGIN:
		ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		ctx := vm.Heap.NewContext(values.OBJECT)
		for _, name := range collectSetWords(ser) {
			vm.Heap.AppendVar(ctx, name, 0, values.UNSET)
		}
		bound := vm.copyDeep(values.Value{T: values.BLOCK, V: ser})
		bindDeep(bound, ctx)
		lv.Varlist.SetVar(1, bound)
		lv.Scratch = values.Value{T: values.OBJECT, V: ctx}
		lv.State = ST_NATIVE_RETURN
		vm.pushBlockEval(bound.V.(values.Series), &lv.Spare, "object")
		return BOUNCE_CONTINUE
	default:
		if lv.Spare.T == values.RAISED {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		*lv.Out = lv.Scratch
		return BOUNCE_DONE
	}
}

// dispatchMap reads a literal block of alternating keys and values.
func dispatchMap(vm *Vm, lv *Level) Bounce {
	ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	count := ser.Flex.Len() - ser.Index
	if count%2 != 0 {
		*lv.Out = vm.raise(lv, "map/odd", count)
		return BOUNCE_DONE
	}
	pm := values.NewMap()
	for i := ser.Index; i < ser.Flex.Len(); i += 2 {
		k := ser.Flex.At(i)
		if !values.CanBeMapKey(k) {
			*lv.Out = vm.raise(lv, "map/bad-key", values.TypeName(k.T))
			return BOUNCE_DONE
		}
		pm.Set(k, ser.Flex.At(i+1))
	}
	*lv.Out = values.Value{T: values.MAP, V: pm}
	return BOUNCE_DONE
}

// dispatchPut writes a key into a map. A null value removes the key, which
// is also why maps can never hold nulls and lookup can use null for absence.
func dispatchPut(vm *Vm, lv *Level) Bounce {
	target := lv.Varlist.VarAt(1)
	if target.T != values.MAP {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "map", values.TypeName(target.T))
		return BOUNCE_DONE
	}
	k := lv.Varlist.VarAt(2)
	if !values.CanBeMapKey(k) {
		*lv.Out = vm.raise(lv, "map/bad-key", values.TypeName(k.T))
		return BOUNCE_DONE
	}
	v := lv.Varlist.VarAt(3)
	pm := target.V.(*values.Map)
	switch {
	case v.T == values.NULL:
		pm.Delete(k)
	case v.IsAntiform():
		*lv.Out = vm.raise(lv, "series/antiform", values.TypeName(v.T))
		return BOUNCE_DONE
	default:
		pm.Set(k, v)
	}
	*lv.Out = target
	return BOUNCE_DONE
}

func dispatchSelect(vm *Vm, lv *Level) Bounce {
	target := lv.Varlist.VarAt(1)
	k := lv.Varlist.VarAt(2)
	switch target.T {
	case values.MAP:
		got, ok := target.V.(*values.Map).Get(k)
		if !ok {
			*lv.Out = values.NULL_V
		} else {
			*lv.Out = got
		}
	case values.OBJECT, values.FRAME, values.ERROR:
		c := target.V.(*values.VarList)
		if c.IsInaccessible() {
			*lv.Out = vm.raise(lv, "series/freed")
			return BOUNCE_DONE
		}
		name := ""
		switch k.T {
		case values.WORD, values.LIT_WORD:
			name = k.V.(values.Word).Name
		case values.TEXT:
			name = k.V.(string)
		default:
			*lv.Out = vm.raise(lv, "eval/wrong-type", "word", values.TypeName(k.T))
			return BOUNCE_DONE
		}
		i := c.Find(name)
		if i == 0 {
			*lv.Out = values.NULL_V
		} else {
			*lv.Out = c.VarAt(i)
		}
	case values.BLOCK:
		ser, problem := vm.liveSeries(lv, target)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		*lv.Out = values.NULL_V
		for i := ser.Index; i+1 < ser.Flex.Len(); i += 2 {
			if values.Equal(ser.Flex.At(i), k) {
				*lv.Out = ser.Flex.At(i + 1)
				break
			}
		}
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "map, object or block", values.TypeName(target.T))
	}
	return BOUNCE_DONE
}

// mold takes its argument meta so that antiforms can be molded too.
func dispatchMold(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1).Unlift()
	*lv.Out = values.Value{T: values.TEXT, V: values.Mold(v)}
	return BOUNCE_DONE
}

func dispatchForm(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.Value{T: values.TEXT, V: values.Form(lv.Varlist.VarAt(1))}
	return BOUNCE_DONE
}

func dispatchPrint(vm *Vm, lv *Level) Bounce {
	vm.Out.Out(lv.Varlist.VarAt(1))
	*lv.Out = values.VOID_V
	return BOUNCE_DONE
}

func dispatchProbe(vm *Vm, lv *Level) Bounce {
	v := lv.Varlist.VarAt(1)
	vm.Out.Write(values.Mold(v) + "\n")
	*lv.Out = v
	return BOUNCE_DONE
}

func dispatchAsk(vm *Vm, lv *Level) Bounce {
	prompt := lv.Varlist.VarAt(1)
	if prompt.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(prompt.T))
		return BOUNCE_DONE
	}
	*lv.Out = values.Value{T: values.TEXT, V: vm.In.Get(prompt.V.(string))}
	return BOUNCE_DONE
}

// dispatchRecycle forces a collection from inside a turn. This is fine: the
// levels below the trampoline's safe point are all reachable from the root
// marker, including this one.
func dispatchRecycle(vm *Vm, lv *Level) Bounce {
	swept := vm.Heap.Recycle()
	*lv.Out = values.Value{T: values.INTEGER, V: swept}
	return BOUNCE_DONE
}

func dispatchStats(vm *Vm, lv *Level) Bounce {
	st := vm.Heap.Stats()
	vm.Out.Write(fmt.Sprintf("cycles %v, swept %v, flexes %v, varlists %v, keylists %v, actions %v, handles %v\n",
		st.Cycles, st.Swept, st.Flexes, st.Varlists, st.Keylists, st.Actions, st.Handles))
	*lv.Out = values.VOID_V
	return BOUNCE_DONE
}
