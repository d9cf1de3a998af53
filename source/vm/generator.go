package vm

import (
	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/values"
)

// A yielder's persistent state lives in its action's details, so it is
// shared by every call and traced by the collector like any other flex.
// The state slot is blank while the yielder is fresh, a tripwire while a
// call is on the stack, a frame value for the preserved context while
// suspended, true once finished, and an error if a call raised one.
const (
	YIELDER_STATE = iota + 1
	YIELDER_PLUG
	YIELDER_CHAINS
	YIELDER_BODY
)

// A yield action's one detail is the yielder it belongs to.
const YIELD_OWNER = 1

func (vm *Vm) installGeneratorNatives() {
	vm.register("yielder", []values.Key{q("spec"), q("body")}, dispatchMakeYielder, false)
	vm.register("generator", []values.Key{q("body")}, dispatchMakeGenerator, false)
	vm.register("chain", []values.Key{n("target"), q("addition")}, dispatchChain, false)
	vm.register("yield", []values.Key{n("value")}, dispatchYieldUnbound, false)
}

// Plug is a captured stack fragment: the levels strictly between a yield
// and its yielder, plus their stretch of the data stack. Once unplugged it
// is inert heap data, reachable only through the handle in the yielder's
// details, until a resume splices it back in.
type Plug struct {
	Top    *Level
	Bottom *Level
	Outs   []*Level // fragment levels whose out cell aimed at the yielder's spare
	DS     []values.Value
	Base   int
}

func (p *Plug) mark(m *values.Marker) {
	for lv := p.Top; lv != nil; lv = lv.Parent {
		lv.MarkLevel(m)
	}
	for _, v := range p.DS {
		m.MarkValue(v)
	}
}

// unplug detaches everything above glv into a Plug and makes glv current
// again. The fragment keeps its internal structure; only its connections to
// glv are cut: the bottom level's parent link, and any out pointers aimed
// at glv's spare cell, which would dangle once glv is gone.
func (vm *Vm) unplug(glv *Level) *Plug {
	p := &Plug{Top: vm.level, Base: glv.BaseDS}
	for lv := vm.level; ; lv = lv.Parent {
		if lv.Out == &glv.Spare {
			p.Outs = append(p.Outs, lv)
			lv.Out = nil
		}
		if lv.Parent == glv {
			p.Bottom = lv
			break
		}
	}
	p.Bottom.Parent = nil
	p.DS = append([]values.Value{}, vm.DS[glv.BaseDS:]...)
	vm.DS = vm.DS[:glv.BaseDS]
	vm.level = glv
	return p
}

// replug splices a fragment back in above lv, the new level of the yielder
// it was unplugged from. The fragment's levels get their data stack
// baselines rebased to the new height and their severed out pointers
// re-aimed at the new spare.
func (vm *Vm) replug(lv *Level, p *Plug) {
	delta := len(vm.DS) - p.Base
	for flv := p.Top; flv != nil; flv = flv.Parent {
		flv.BaseDS += delta
	}
	for _, flv := range p.Outs {
		flv.Out = &lv.Spare
	}
	vm.DS = append(vm.DS, p.DS...)
	p.Bottom.Parent = lv
	vm.level = p.Top
}

func dispatchMakeYielder(vm *Vm, lv *Level) Bounce {
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
	*lv.Out = vm.makeYielder("yielder", keys, body)
	return BOUNCE_DONE
}

func dispatchMakeGenerator(vm *Vm, lv *Level) Bounce {
	body, problem := vm.wantBlock(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	*lv.Out = vm.makeYielder("generator", nil, body)
	return BOUNCE_DONE
}

// makeYielder builds the instance action and its private yield action. The
// body copy is bound to the yield first and to the parameters second, so a
// parameter named yield would win; the yield action knows its owner through
// its detail, not through anything about the stack.
func (vm *Vm) makeYielder(name string, keys []values.Key, body values.Series) values.Value {
	kl := vm.Heap.NewKeyList(keys)
	inst := vm.Heap.NewAction(name, kl, 4, dispatchYielder)
	yieldKl := vm.Heap.NewKeyList([]values.Key{n("value")})
	yieldAct := vm.Heap.NewAction("yield", yieldKl, 1, dispatchYield)
	yieldAct.SetDetail(YIELD_OWNER, values.Value{T: values.ACTION, V: inst})
	yieldCtx := vm.Heap.NewContext(values.OBJECT)
	vm.Heap.AppendVar(yieldCtx, "yield", 0, values.Value{T: values.ACTION, V: yieldAct})
	bound := vm.copyDeep(values.Value{T: values.BLOCK, V: body})
	bindDeep(bound, yieldCtx)
	bindRelative(bound, inst)
	inst.SetDetail(YIELDER_CHAINS, vm.Heap.NewBlock())
	inst.SetDetail(YIELDER_BODY, bound)
	return values.Value{T: values.ACTION, V: inst}
}

// States of a yielder's own level.
const (
	ST_Y_BEGIN   byte = iota
	ST_Y_BODY         // the body eval came back: it ran out without yielding
	ST_Y_YIELDED      // a yield rewound to us with a value in Scratch
	ST_Y_CHAIN        // applying the chain blocks to the value in Scratch
)

// dispatchYielder runs one call into a yielder. What it does depends
// entirely on the state detail: a fresh yielder starts its body, a
// suspended one is resumed, a finished one reports exhaustion with a null,
// and a poisoned one reports the old error. A throw unwinding through the
// level finishes the yielder for good: a return aimed at this very frame
// supplies the result, anything else keeps going up.
func dispatchYielder(vm *Vm, lv *Level) Bounce {
	inst := lv.Phase
	if vm.thrown != nil {
		t := vm.thrown
		inst.SetDetail(YIELDER_STATE, values.TRUE)
		inst.SetDetail(YIELDER_PLUG, values.BLANK_V)
		if t.Label.T == values.FRAME && t.Label.V.(values.Frameish).Varlist == lv.Varlist {
			vm.thrown = nil
			*lv.Out = t.Arg
			return BOUNCE_DONE
		}
		return BOUNCE_THROWN
	}
	switch lv.State {
	case ST_Y_BEGIN:
		state := inst.DetailAt(YIELDER_STATE)
		switch state.T {
		case values.TRIPWIRE:
			*lv.Out = vm.raise(lv, "yielder/reentered")
			return BOUNCE_DONE
		case values.LOGIC:
			*lv.Out = values.NULL_V
			return BOUNCE_DONE
		case values.ERROR:
			*lv.Out = vm.raise(lv, "yielder/errored", err.ID(state))
			return BOUNCE_DONE
		case values.FRAME:
			return vm.resumeYielder(lv, inst, state)
		default:
			lv.Flags |= CATCHES | FUNC_FRAME
			inst.SetDetail(YIELDER_STATE, values.MakeTripwire("running"))
			lv.State = ST_Y_BODY
			body := inst.DetailAt(YIELDER_BODY)
			vm.pushBlockEval(body.V.(values.Series), &lv.Spare, inst.Name+" body")
			return BOUNCE_CONTINUE
		}
	case ST_Y_BODY:
		if lv.Spare.T == values.RAISED {
			inst.SetDetail(YIELDER_STATE, err.Promote(lv.Spare))
			inst.SetDetail(YIELDER_PLUG, values.BLANK_V)
			*lv.Out = lv.Spare
			return BOUNCE_DONE
		}
		// running out of body is exhaustion: the null says so, and the
		// body's own last value is not a yield, so it is discarded
		inst.SetDetail(YIELDER_STATE, values.TRUE)
		inst.SetDetail(YIELDER_PLUG, values.BLANK_V)
		*lv.Out = values.NULL_V
		return BOUNCE_DONE
	case ST_Y_YIELDED:
		lv.Spare = values.Value{T: values.INTEGER, V: 0}
		lv.State = ST_Y_CHAIN
		return BOUNCE_CONTINUE
	default: // ST_Y_CHAIN
		if lv.Scratch.T == values.RAISED {
			inst.SetDetail(YIELDER_STATE, err.Promote(lv.Scratch))
			inst.SetDetail(YIELDER_PLUG, values.BLANK_V)
			*lv.Out = lv.Scratch
			return BOUNCE_DONE
		}
		chains := inst.DetailAt(YIELDER_CHAINS).V.(values.Series)
		i := lv.Spare.V.(int)
		if i >= chains.Flex.Len() {
			*lv.Out = lv.Scratch
			return BOUNCE_DONE
		}
		ctx := vm.Heap.NewContext(values.OBJECT)
		vm.Heap.AppendVar(ctx, "it", 0, lv.Scratch)
		bound := vm.copyDeep(chains.Flex.At(i))
		bindDeep(bound, ctx)
		lv.Spare = values.Value{T: values.INTEGER, V: i + 1}
		vm.pushBlockEval(bound.V.(values.Series), &lv.Scratch, "chain")
		return BOUNCE_CONTINUE
	}
}

// resumeYielder is the other half of a yield. The captured fragment goes
// back on the stack, and the preserved frame keeps its identity from call
// to call: the freshly gathered arguments are copied over into its slots
// and the frame the gatherer just built is decommissioned, leaving a stub
// for anything that managed to keep a reference to it.
func (vm *Vm) resumeYielder(lv *Level, inst *values.Action, state values.Value) Bounce {
	preserved := state.V.(values.Frameish).Varlist
	plug := inst.DetailAt(YIELDER_PLUG).V.(*values.Handle).Datum.(*Plug)
	for i := 1; i <= inst.NumParams(); i++ {
		preserved.SetVar(i, lv.Varlist.VarAt(i))
	}
	fresh := lv.Varlist
	lv.Varlist = preserved
	preserved.Link = lv
	fresh.Decommission()
	inst.SetDetail(YIELDER_STATE, values.MakeTripwire("running"))
	inst.SetDetail(YIELDER_PLUG, values.BLANK_V)
	lv.Flags |= CATCHES | FUNC_FRAME
	lv.State = ST_Y_BODY
	vm.replug(lv, plug)
	return BOUNCE_REWIND
}

// States of a yield call. The second state is reached on a later call to
// the yielder entirely: the level sleeps in the plug in between.
const (
	ST_YIELD_BEGIN byte = iota
	ST_YIELD_RESUME
)

// dispatchYield suspends the yielder that owns it. Everything between this
// level and the yielder's is unplugged and parked in the yielder's details,
// and the yielder's level is rewound to with the yielded value. When a
// later call replugs the fragment, this level wakes up in its second state
// and the suspended code sees the yield return the value it yielded.
func dispatchYield(vm *Vm, lv *Level) Bounce {
	switch lv.State {
	case ST_YIELD_BEGIN:
		v := lv.Varlist.VarAt(1)
		if v.T == values.NULL {
			// a yielded null is a no-op: null from the yielder itself is
			// the exhaustion signal, so there is no way to pass one out
			*lv.Out = values.VOID_V
			return BOUNCE_DONE
		}
		owner := lv.Phase.DetailAt(YIELD_OWNER).V.(*values.Action)
		var glv *Level
		for l := lv.Parent; l != nil; l = l.Parent {
			if l.Phase == owner {
				glv = l
				break
			}
		}
		state := owner.DetailAt(YIELDER_STATE)
		if glv == nil || state.T != values.TRIPWIRE {
			if state.T == values.LOGIC {
				*lv.Out = vm.raise(lv, "yield/completed")
			} else {
				*lv.Out = vm.raise(lv, "yield/no-binding")
			}
			return BOUNCE_DONE
		}
		lv.State = ST_YIELD_RESUME
		plug := vm.unplug(glv)
		handle := vm.Heap.NewHandle("plug", plug, plug.mark, nil)
		owner.SetDetail(YIELDER_PLUG, values.Value{T: values.HANDLE, V: handle})
		owner.SetDetail(YIELDER_STATE,
			values.Value{T: values.FRAME, V: values.Frameish{Varlist: glv.Varlist, Phase: owner}})
		glv.Scratch = v
		glv.State = ST_Y_YIELDED
		return BOUNCE_REWIND
	default: // ST_YIELD_RESUME
		*lv.Out = lv.Varlist.VarAt(1)
		return BOUNCE_DONE
	}
}

// The yield of the global context, for a yield outside any yielder body.
func dispatchYieldUnbound(vm *Vm, lv *Level) Bounce {
	*lv.Out = vm.raise(lv, "yield/no-binding")
	return BOUNCE_DONE
}

// dispatchChain queues a block against a yielder. From then on every
// yielded value runs through the block, which sees it as the word it, and
// what the block makes of it is what the caller receives. The exhaustion
// null is delivered as is.
func dispatchChain(vm *Vm, lv *Level) Bounce {
	target := lv.Varlist.VarAt(1)
	if target.T != values.ACTION {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "yielder", values.TypeName(target.T))
		return BOUNCE_DONE
	}
	act := target.V.(*values.Action)
	if act.Name != "yielder" && act.Name != "generator" {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "yielder", act.Name)
		return BOUNCE_DONE
	}
	if _, problem := vm.wantBlock(lv, lv.Varlist.VarAt(2)); problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	chains := act.DetailAt(YIELDER_CHAINS).V.(values.Series)
	chains.Flex.Append(lv.Varlist.VarAt(2))
	*lv.Out = target
	return BOUNCE_DONE
}
