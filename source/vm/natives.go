package vm

import (
	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/lexer"
	"github.com/skiff-lang/Skiff/source/values"
)

// Helpers for writing parameter lists: an ordinary parameter, a quoted one
// that takes its argument unevaluated, and a meta one that receives its
// argument lifted and so can see antiforms.
func n(name string) values.Key {
	return values.Key{Name: name}
}

func q(name string) values.Key {
	return values.Key{Name: name, Flags: values.QUOTED}
}

func m(name string) values.Key {
	return values.Key{Name: name, Flags: values.META}
}

func (vm *Vm) register(name string, keys []values.Key, d Dispatcher, enfix bool) {
	kl := vm.Heap.NewKeyList(keys)
	act := vm.Heap.NewAction(name, kl, 0, d)
	act.Enfix = enfix
	vm.Heap.AppendVar(vm.Global, name, 0, values.Value{T: values.ACTION, V: act})
}

func (vm *Vm) installNatives() {
	vm.register("do", []values.Key{n("value")}, dispatchDo, false)
	vm.register("if", []values.Key{n("condition"), q("branch")}, dispatchIf, false)
	vm.register("either", []values.Key{n("condition"), q("true-branch"), q("false-branch")}, dispatchEither, false)
	vm.register("repeat", []values.Key{n("count"), q("body")}, dispatchRepeat, false)
	vm.register("while", []values.Key{q("condition"), q("body")}, dispatchWhile, false)
	vm.register("for-each", []values.Key{q("word"), n("series"), q("body")}, dispatchForEach, false)
	vm.register("catch", []values.Key{q("body")}, dispatchCatch, false)
	vm.register("throw", []values.Key{n("value")}, dispatchThrow, false)
	vm.register("break", []values.Key{}, dispatchBreak, false)
	vm.register("func", []values.Key{q("spec"), q("body")}, dispatchMakeFunc, false)
	vm.register("return", []values.Key{n("value")}, dispatchReturn, false)
	vm.register("trap", []values.Key{q("body")}, dispatchTrap, false)
	vm.register("fail", []values.Key{n("reason")}, dispatchFail, false)
	vm.register("reduce", []values.Key{n("block")}, dispatchReduce, false)
	vm.register("pack", []values.Key{n("block")}, dispatchPack, false)
	vm.register("quote", []values.Key{q("value")}, dispatchQuote, false)
	vm.register("set", []values.Key{n("word"), n("value")}, dispatchSet, false)
	vm.register("get", []values.Key{n("word")}, dispatchGet, false)
	vm.register("null?", []values.Key{m("value")}, dispatchNullQ, false)
	vm.register("void?", []values.Key{m("value")}, dispatchVoidQ, false)
	vm.register("error?", []values.Key{m("value")}, dispatchErrorQ, false)
	vm.register("not", []values.Key{n("value")}, dispatchNot, false)
	vm.register("equal?", []values.Key{n("a"), n("b")}, dispatchEqualQ, false)
	vm.installDataNatives()
	vm.installMath()
	vm.installGeneratorNatives()
	vm.installSQLNatives()
	// true, false and null are just variables of the global context; void
	// has no storable form and so has to be an action
	vm.Heap.AppendVar(vm.Global, "true", 0, values.TRUE)
	vm.Heap.AppendVar(vm.Global, "false", 0, values.FALSE)
	vm.Heap.AppendVar(vm.Global, "null", 0, values.NULL_V)
	vm.register("void", []values.Key{}, dispatchVoid, false)
}

// Some one-shot natives push a single child and finish when it reports
// back, so they share a state pair.
const (
	ST_NATIVE_BEGIN byte = iota
	ST_NATIVE_RETURN
)

func dispatchVoid(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.VOID_V
	return BOUNCE_DONE
}

func dispatchDo(vm *Vm, lv *Level) Bounce {
	arg := lv.Varlist.VarAt(1)
	switch arg.T {
	case values.BLOCK:
		ser := arg.V.(values.Series)
		if ser.Flex.IsInaccessible() {
			*lv.Out = vm.raise(lv, "series/freed")
			return BOUNCE_DONE
		}
		vm.pushBlockEval(ser, lv.Out, "do")
		return BOUNCE_DELEGATE
	case values.TEXT:
		loaded, problem := lexer.Load(vm.Heap, "do input", arg.V.(string))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		vm.pushBlockEval(loaded.V.(values.Series), lv.Out, "do")
		return BOUNCE_DELEGATE
	default:
		*lv.Out = arg
		return BOUNCE_DONE
	}
}

func (vm *Vm) asCondition(lv *Level, v values.Value) (bool, values.Value) {
	truthy, ok := v.Truthy()
	if !ok {
		return false, vm.raise(lv, "eval/bad-conditional", values.TypeName(v.T))
	}
	return truthy, values.Value{}
}

func (vm *Vm) wantBlock(lv *Level, v values.Value) (values.Series, values.Value) {
	if v.T != values.BLOCK {
		return values.Series{}, vm.raise(lv, "eval/wrong-type", "block", values.TypeName(v.T))
	}
	ser := v.V.(values.Series)
	if ser.Flex.IsInaccessible() {
		return values.Series{}, vm.raise(lv, "series/freed")
	}
	return ser, values.Value{}
}

func dispatchIf(vm *Vm, lv *Level) Bounce {
	truthy, problem := vm.asCondition(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	if !truthy {
		*lv.Out = values.NULL_V
		return BOUNCE_DONE
	}
	ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(2))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	vm.pushBlockEval(ser, lv.Out, "if")
	return BOUNCE_DELEGATE
}

func dispatchEither(vm *Vm, lv *Level) Bounce {
	truthy, problem := vm.asCondition(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	branch := lv.Varlist.VarAt(2)
	if !truthy {
		branch = lv.Varlist.VarAt(3)
	}
	ser, problem := vm.wantBlock(lv, branch)
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	vm.pushBlockEval(ser, lv.Out, "either")
	return BOUNCE_DELEGATE
}

// Loop dispatchers: these catch breaks, so each begins by asking whether it
// was woken for a throw.

const (
	ST_LOOP_BEGIN byte = iota
	ST_LOOP_BODY
)

func isBreak(t *Thrown) bool {
	return t.Label.T == values.WORD && t.Label.V.(values.Word).Name == "break"
}

func dispatchRepeat(vm *Vm, lv *Level) Bounce {
	if vm.thrown != nil {
		if isBreak(vm.thrown) {
			vm.thrown = nil
			*lv.Out = values.NULL_V
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_LOOP_BEGIN:
		count := lv.Varlist.VarAt(1)
		if count.T != values.INTEGER {
			*lv.Out = vm.raise(lv, "eval/wrong-type", "integer", values.TypeName(count.T))
			return BOUNCE_DONE
		}
		if _, problem := vm.wantBlock(lv, lv.Varlist.VarAt(2)); problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.Flags |= CATCHES
		lv.Scratch = count
		lv.Spare = values.NULL_V
		lv.State = ST_LOOP_BODY
		return BOUNCE_CONTINUE
	default: // ST_LOOP_BODY
		if lv.Spare.T == values.RAISED {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		remaining := lv.Scratch.V.(int)
		if remaining <= 0 {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		lv.Scratch = values.Value{T: values.INTEGER, V: remaining - 1}
		vm.pushBlockEval(lv.Varlist.VarAt(2).V.(values.Series), &lv.Spare, "repeat")
		return BOUNCE_CONTINUE
	}
}

const (
	ST_WHILE_BEGIN byte = iota
	ST_WHILE_COND
	ST_WHILE_BODY
)

// dispatchWhile runs its condition block and its body block by turns. The
// condition's value lands in Spare, the last body value is kept in Scratch
// and becomes the result.
func dispatchWhile(vm *Vm, lv *Level) Bounce {
	if vm.thrown != nil {
		if isBreak(vm.thrown) {
			vm.thrown = nil
			*lv.Out = values.NULL_V
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_WHILE_BEGIN:
		if _, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1)); problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		if _, problem := vm.wantBlock(lv, lv.Varlist.VarAt(2)); problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.Flags |= CATCHES
		lv.Scratch = values.NULL_V
		lv.State = ST_WHILE_COND
		vm.pushBlockEval(lv.Varlist.VarAt(1).V.(values.Series), &lv.Spare, "while condition")
		return BOUNCE_CONTINUE
	case ST_WHILE_COND:
		if lv.Spare.T == values.RAISED {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		truthy, problem := vm.asCondition(lv, lv.Spare)
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		if !truthy {
			*lv.Out = lv.Scratch
			return BOUNCE_DONE
		}
		lv.State = ST_WHILE_BODY
		vm.pushBlockEval(lv.Varlist.VarAt(2).V.(values.Series), &lv.Scratch, "while")
		return BOUNCE_CONTINUE
	default: // ST_WHILE_BODY
		if lv.Scratch.T == values.RAISED {
			*lv.Out = lv.Scratch
			return BOUNCE_DONE
		}
		lv.State = ST_WHILE_COND
		vm.pushBlockEval(lv.Varlist.VarAt(1).V.(values.Series), &lv.Spare, "while condition")
		return BOUNCE_CONTINUE
	}
}

// for-each appends two working variables to its own frame, the snapshot
// cursor living in Scratch. Frames grow like any other context, which is
// also what forces the copy-on-write of the keylist they share with their
// action.
func dispatchForEach(vm *Vm, lv *Level) Bounce {
	if vm.thrown != nil {
		if isBreak(vm.thrown) {
			vm.thrown = nil
			*lv.Out = values.NULL_V
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_LOOP_BEGIN:
		word := lv.Varlist.VarAt(1)
		if word.T != values.WORD {
			*lv.Out = vm.raise(lv, "eval/wrong-type", "word", values.TypeName(word.T))
			return BOUNCE_DONE
		}
		elems, ok := values.Elements(lv.Varlist.VarAt(2))
		if !ok {
			*lv.Out = vm.raise(lv, "eval/wrong-type", "series", values.TypeName(lv.Varlist.VarAt(2).T))
			return BOUNCE_DONE
		}
		snapshot := vm.Heap.NewBlock(elems...)
		ctx := vm.Heap.NewContext(values.OBJECT)
		vm.Heap.AppendVar(ctx, word.V.(values.Word).Name, 0, values.UNSET)
		body, problem := vm.wantBlock(lv, lv.Varlist.VarAt(3))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		bound := vm.copyDeep(values.Value{T: values.BLOCK, V: body})
		bindDeep(bound, ctx)
		lv.Varlist.SetVar(3, bound)
		vm.Heap.AppendVar(lv.Varlist, "context", values.HIDDEN, values.Value{T: values.OBJECT, V: ctx})
		lv.Flags |= CATCHES
		lv.Scratch = snapshot
		lv.Spare = values.NULL_V
		lv.State = ST_LOOP_BODY
		return BOUNCE_CONTINUE
	default: // ST_LOOP_BODY
		if lv.Spare.T == values.RAISED {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		cursor := lv.Scratch.V.(values.Series)
		if cursor.Index >= cursor.Flex.Len() {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		elem := cursor.Flex.At(cursor.Index)
		lv.Scratch = values.Value{T: values.BLOCK, V: values.Series{Flex: cursor.Flex, Index: cursor.Index + 1}}
		ctx := lv.Varlist.VarAt(4).V.(*values.VarList)
		ctx.SetVar(1, elem)
		vm.pushBlockEval(lv.Varlist.VarAt(3).V.(values.Series), &lv.Spare, "for-each")
		return BOUNCE_CONTINUE
	}
}

func dispatchCatch(vm *Vm, lv *Level) Bounce {
	if vm.thrown != nil {
		if vm.thrown.Label.T == values.BLANK {
			*lv.Out = vm.thrown.Arg
			vm.thrown = nil
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_NATIVE_BEGIN:
		ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.Flags |= CATCHES
		lv.State = ST_NATIVE_RETURN
		vm.pushBlockEval(ser, &lv.Spare, "catch")
		return BOUNCE_CONTINUE
	default:
		if lv.Spare.T == values.RAISED {
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		// ran to the end without a throw
		*lv.Out = values.NULL_V
		return BOUNCE_DONE
	}
}

func dispatchThrow(vm *Vm, lv *Level) Bounce {
	vm.thrown = &Thrown{Label: values.BLANK_V, Arg: lv.Varlist.VarAt(1)}
	return BOUNCE_THROWN
}

func dispatchBreak(vm *Vm, lv *Level) Bounce {
	vm.thrown = &Thrown{
		Label: values.Value{T: values.WORD, V: values.Word{Name: "break"}},
		Arg:   values.NULL_V,
	}
	return BOUNCE_THROWN
}

// paramsFromSpec reads a spec block into a parameter list: plain words for
// ordinary parameters, lit-words for quoted ones, meta-words for lifted
// ones.
func (vm *Vm) paramsFromSpec(lv *Level, spec values.Series) ([]values.Key, values.Value) {
	keys := []values.Key{}
	for i := spec.Index; i < spec.Flex.Len(); i++ {
		cell := spec.Flex.At(i)
		switch cell.T {
		case values.WORD:
			keys = append(keys, n(cell.V.(values.Word).Name))
		case values.LIT_WORD:
			keys = append(keys, q(cell.V.(values.Word).Name))
		case values.META_WORD:
			keys = append(keys, m(cell.V.(values.Word).Name))
		default:
			return nil, vm.raise(lv, "eval/wrong-type", "word", values.TypeName(cell.T))
		}
	}
	return keys, values.Value{}
}

func dispatchMakeFunc(vm *Vm, lv *Level) Bounce {
	spec, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	body, problem := vm.wantBlock(lv, lv.Varlist.VarAt(2))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	keys, problem := vm.paramsFromSpec(lv, spec)
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	kl := vm.Heap.NewKeyList(keys)
	act := vm.Heap.NewAction("func", kl, 1, dispatchFunc)
	bound := vm.copyDeep(values.Value{T: values.BLOCK, V: body})
	bindRelative(bound, act)
	act.SetDetail(1, bound)
	*lv.Out = values.Value{T: values.ACTION, V: act}
	return BOUNCE_DONE
}

// dispatchFunc runs a user function: its frame is already full, so all
// that remains is to run the body and to field any return aimed at this
// particular frame.
func dispatchFunc(vm *Vm, lv *Level) Bounce {
	if vm.thrown != nil {
		t := vm.thrown
		if t.Label.T == values.FRAME && t.Label.V.(values.Frameish).Varlist == lv.Varlist {
			vm.thrown = nil
			*lv.Out = t.Arg
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_NATIVE_BEGIN:
		lv.Flags |= CATCHES | FUNC_FRAME
		lv.State = ST_NATIVE_RETURN
		body := lv.Phase.DetailAt(1)
		vm.pushBlockEval(body.V.(values.Series), &lv.Spare, "func body")
		return BOUNCE_CONTINUE
	default:
		*lv.Out = lv.Spare
		return BOUNCE_DONE
	}
}

// dispatchReturn throws at the innermost enclosing function frame. The
// throw's label is that specific frame, so returns nest correctly through
// recursion.
func dispatchReturn(vm *Vm, lv *Level) Bounce {
	arg := lv.Varlist.VarAt(1)
	for l := lv.Parent; l != nil; l = l.Parent {
		if l.Flags&FUNC_FRAME != 0 {
			vm.thrown = &Thrown{
				Label: values.Value{T: values.FRAME, V: values.Frameish{Varlist: l.Varlist, Phase: l.Phase}},
				Arg:   arg,
			}
			return BOUNCE_THROWN
		}
	}
	*lv.Out = vm.raise(lv, "flow/no-catch", "return")
	return BOUNCE_DONE
}

func dispatchTrap(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_NATIVE_BEGIN:
		ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.State = ST_NATIVE_RETURN
		vm.pushBlockEval(ser, &lv.Spare, "trap")
		return BOUNCE_CONTINUE
	default:
		if lv.Spare.T == values.RAISED {
			*lv.Out = err.Promote(lv.Spare)
		} else {
			*lv.Out = lv.Spare
		}
		return BOUNCE_DONE
	}
}

func dispatchFail(vm *Vm, lv *Level) Bounce {
	reason := lv.Varlist.VarAt(1)
	switch reason.T {
	case values.TEXT:
		*lv.Out = vm.raise(lv, "user/error", reason.V.(string))
	case values.ERROR:
		*lv.Out = err.Demote(reason)
	default:
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text or error", values.TypeName(reason.T))
	}
	return BOUNCE_DONE
}

const (
	ST_REDUCE_BEGIN byte = iota
	ST_REDUCE_NEXT
	ST_REDUCE_VALUE
)

// dispatchReduce evaluates each expression of a block, parking the values
// on the data stack until the end, then gathers them into a fresh block.
// The segment it builds sits above BaseDS, so a yield in mid-reduce carries
// the partial results away inside the plug and puts them back on resume.
func dispatchReduce(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_REDUCE_BEGIN:
		ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.Feed = NewFeed(ser.Flex, ser.Index)
		lv.State = ST_REDUCE_NEXT
		return BOUNCE_CONTINUE
	case ST_REDUCE_NEXT:
		if lv.Feed.AtEnd() {
			f := vm.Heap.NewFlex(values.SOURCE, len(vm.DS)-lv.BaseDS)
			for _, v := range vm.DS[lv.BaseDS:] {
				f.Append(v)
			}
			vm.Heap.Manage(f)
			vm.DS = vm.DS[:lv.BaseDS]
			*lv.Out = values.Value{T: values.BLOCK, V: values.Series{Flex: f}}
			return BOUNCE_DONE
		}
		lv.State = ST_REDUCE_VALUE
		vm.pushEvalOne(lv.Feed, &lv.Spare, "reduce")
		return BOUNCE_CONTINUE
	default: // ST_REDUCE_VALUE
		v := lv.Spare
		if v.T == values.RAISED {
			vm.DS = vm.DS[:lv.BaseDS]
			*lv.Out = v
			return BOUNCE_DONE
		}
		v = v.Decay()
		switch v.T {
		case values.VOID:
			// voids vanish rather than leaving a hole
		case values.NULL:
			vm.DS = vm.DS[:lv.BaseDS]
			*lv.Out = vm.raise(lv, "series/antiform", "null")
			return BOUNCE_DONE
		default:
			vm.DS = append(vm.DS, v)
		}
		lv.State = ST_REDUCE_NEXT
		return BOUNCE_CONTINUE
	}
}

// dispatchPack evaluates like reduce but bundles the results into a pack
// antiform rather than a block. A pack may carry nulls, which is most of
// the reason to want one; assignment and argument passing decay it to its
// first slot.
func dispatchPack(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_REDUCE_BEGIN:
		ser, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
		if problem.T == values.RAISED {
			*lv.Out = problem
			return BOUNCE_DONE
		}
		lv.Feed = NewFeed(ser.Flex, ser.Index)
		lv.State = ST_REDUCE_NEXT
		return BOUNCE_CONTINUE
	case ST_REDUCE_NEXT:
		if lv.Feed.AtEnd() {
			*lv.Out = values.MakePack(vm.DS[lv.BaseDS:]...)
			vm.DS = vm.DS[:lv.BaseDS]
			return BOUNCE_DONE
		}
		lv.State = ST_REDUCE_VALUE
		vm.pushEvalOne(lv.Feed, &lv.Spare, "pack")
		return BOUNCE_CONTINUE
	default: // ST_REDUCE_VALUE
		v := lv.Spare
		if v.T == values.RAISED {
			vm.DS = vm.DS[:lv.BaseDS]
			*lv.Out = v
			return BOUNCE_DONE
		}
		if v = v.Decay(); v.T != values.VOID {
			vm.DS = append(vm.DS, v)
		}
		lv.State = ST_REDUCE_NEXT
		return BOUNCE_CONTINUE
	}
}

func dispatchQuote(vm *Vm, lv *Level) Bounce {
	*lv.Out = lv.Varlist.VarAt(1)
	return BOUNCE_DONE
}

func dispatchSet(vm *Vm, lv *Level) Bounce {
	word := lv.Varlist.VarAt(1)
	if !word.IsWordlike() {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "word", values.TypeName(word.T))
		return BOUNCE_DONE
	}
	*lv.Out = vm.setWord(lv, word.V.(values.Word), lv.Varlist.VarAt(2))
	return BOUNCE_DONE
}

func dispatchGet(vm *Vm, lv *Level) Bounce {
	word := lv.Varlist.VarAt(1)
	if !word.IsWordlike() {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "word", values.TypeName(word.T))
		return BOUNCE_DONE
	}
	*lv.Out = vm.fetchWord(lv, word.V.(values.Word))
	return BOUNCE_DONE
}

// The predicates take their argument meta, since the whole point is to be
// able to ask about antiforms.

func dispatchNullQ(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.MakeLogic(lv.Varlist.VarAt(1).Unlift().T == values.NULL)
	return BOUNCE_DONE
}

func dispatchVoidQ(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.MakeLogic(lv.Varlist.VarAt(1).Unlift().T == values.VOID)
	return BOUNCE_DONE
}

func dispatchErrorQ(vm *Vm, lv *Level) Bounce {
	inner := lv.Varlist.VarAt(1).Unlift()
	*lv.Out = values.MakeLogic(inner.T == values.RAISED || inner.T == values.ERROR)
	return BOUNCE_DONE
}

func dispatchNot(vm *Vm, lv *Level) Bounce {
	truthy, problem := vm.asCondition(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	*lv.Out = values.MakeLogic(!truthy)
	return BOUNCE_DONE
}

func dispatchEqualQ(vm *Vm, lv *Level) Bounce {
	*lv.Out = values.MakeLogic(values.Equal(lv.Varlist.VarAt(1), lv.Varlist.VarAt(2)))
	return BOUNCE_DONE
}
