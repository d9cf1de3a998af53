// The vm package is the evaluator: a trampoline driving heap-allocated call
// frames. No dispatcher ever calls the evaluator recursively; it pushes a
// level and bounces back, so the Go stack stays flat however deep the Skiff
// stack gets, and the Skiff stack can be unplugged in the middle and carried
// around as a value.
package vm

import (
	"fmt"
	"strings"

	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/settings"
	"github.com/skiff-lang/Skiff/source/text"
	"github.com/skiff-lang/Skiff/source/values"
)

// How many trampoline turns pass between collections. Low enough that an
// idle loop can't swamp the heap, high enough that the sweep doesn't show up
// in profiles.
const RECYCLE_STRIDE = 4096

// Thrown is a throw in flight: a label saying who may catch it and the value
// being carried. The label is blank for a plain throw, the word break for
// break, and the frame of the function being returned from for return.
type Thrown struct {
	Label values.Value
	Arg   values.Value
}

type Vm struct {
	Heap   *values.Heap
	Global *values.VarList
	In     InHandler
	Out    OutHandler

	level  *Level
	thrown *Thrown

	// The data stack, for natives that accumulate intermediate values. A
	// level records the height at which it was pushed, and an unplug
	// captures its part of this along with its part of the level stack.
	DS []values.Value

	steps int
}

func NewVm(h *values.Heap) *Vm {
	vm := &Vm{Heap: h, In: MakeStandardInHandler(), Out: MakeStandardOutHandler()}
	vm.Global = h.NewContext(values.OBJECT)
	h.AddRoot(vm.markRoots)
	vm.installNatives()
	return vm
}

// markRoots is the root marker the trampoline registers with its heap: the
// live level stack, the data stack, the global context, and any throw that
// happens to be in flight at the safe point.
func (vm *Vm) markRoots(m *values.Marker) {
	m.MarkVarlist(vm.Global)
	for lv := vm.level; lv != nil; lv = lv.Parent {
		lv.MarkLevel(m)
	}
	for _, v := range vm.DS {
		m.MarkValue(v)
	}
	if vm.thrown != nil {
		m.MarkValue(vm.thrown.Label)
		m.MarkValue(vm.thrown.Arg)
	}
}

// PushLevel hangs a level below the current one and makes it current.
func (vm *Vm) PushLevel(lv *Level) *Level {
	lv.Parent = vm.level
	lv.BaseDS = len(vm.DS)
	vm.level = lv
	return lv
}

func (vm *Vm) pushEvalOne(feed *Feed, out *values.Value, label string) *Level {
	return vm.PushLevel(&Level{Dispatch: dispatchStep, Out: out, Feed: feed, Flags: STEP_ONCE, Label: label})
}

func (vm *Vm) pushBlockEval(ser values.Series, out *values.Value, label string) *Level {
	return vm.PushLevel(&Level{Dispatch: dispatchStep, Out: out, Feed: NewFeed(ser.Flex, ser.Index), Label: label})
}

// EvalBlock evaluates a block from its position and returns the result,
// which is a raised error if that is how it went. This is the way in for
// embedders; nothing inside the evaluator calls it.
func (vm *Vm) EvalBlock(block values.Value, label string) values.Value {
	var out values.Value
	ser := block.V.(values.Series)
	lv := &Level{Dispatch: dispatchStep, Out: &out, Feed: NewFeed(ser.Flex, ser.Index), Label: label}
	vm.PushLevel(lv)
	return vm.Run(lv)
}

// Run drives the trampoline until the given level and everything it spawns
// is finished. The top of this loop is the safe point: when it comes around,
// every live level is parked at a bounce with its whole state in reach of
// the root marker, so this is where collection happens.
func (vm *Vm) Run(top *Level) values.Value {
	base := top.Parent
	outCell := top.Out
	for {
		if settings.GC_STRESS {
			vm.Heap.Recycle()
		} else if vm.steps >= RECYCLE_STRIDE {
			vm.Heap.Recycle()
			vm.steps = 0
		}
		vm.steps++
		lv := vm.level
		bounce := lv.Dispatch(vm, lv)
		if settings.SHOW_TRAMPOLINE {
			fmt.Printf("trampoline: %s from %s, state %d\n", bounce, lv.Label, lv.State)
		}
		switch bounce {
		case BOUNCE_CONTINUE:
			// run whatever is now current: a fresh child, or lv again

		case BOUNCE_DONE:
			vm.dropLevel(lv)
			if vm.level == base {
				return *outCell
			}

		case BOUNCE_DELEGATE:
			child := vm.level
			if child == lv {
				panic("delegation with no child pushed")
			}
			child.Parent = lv.Parent
			vm.severLink(lv)

		case BOUNCE_THROWN:
			if !vm.unwind(lv, base) {
				*outCell = vm.uncaughtError()
				return *outCell
			}

		case BOUNCE_REWIND:
			// the dispatcher has already repointed vm.level
		}
	}
}

// dropLevel retires a finished level. If its varlist was being serviced by
// it, the varlist reverts to being plain data.
func (vm *Vm) dropLevel(lv *Level) {
	vm.level = lv.Parent
	vm.severLink(lv)
}

func (vm *Vm) severLink(lv *Level) {
	if lv.Varlist != nil && lv.Varlist.Link == lv {
		lv.Varlist.Link = nil
	}
}

// unwind drops levels until one that catches throws is found, truncating
// the data stack as it goes. It returns false if the throw fell off the
// bottom of the run.
func (vm *Vm) unwind(from *Level, base *Level) bool {
	lv := from
	for {
		vm.DS = vm.DS[:lv.BaseDS]
		vm.dropLevel(lv)
		if vm.level == base {
			return false
		}
		lv = vm.level
		if lv.Flags&CATCHES != 0 {
			// its dispatcher runs next and sees the throw
			return true
		}
	}
}

func (vm *Vm) uncaughtError() values.Value {
	label := values.Mold(vm.thrown.Label)
	vm.thrown = nil
	return err.Raise(vm.Heap, "flow/no-catch", "", "", label)
}

// raise makes a raised error with the near and where fields filled in from
// where the level stack is at.
func (vm *Vm) raise(lv *Level, id string, args ...any) values.Value {
	return err.Raise(vm.Heap, id, vm.nearOf(lv), vm.whereOf(lv), args...)
}

func (vm *Vm) nearOf(lv *Level) string {
	for l := lv; l != nil; l = l.Parent {
		if l.Feed == nil || l.Feed.Array.IsInaccessible() {
			continue
		}
		f := l.Feed.Array
		from := l.Feed.Index - 3
		if from < 0 {
			from = 0
		}
		s := text.Near(values.Mold(values.Value{T: values.BLOCK, V: values.Series{Flex: f, Index: from}}))
		if f.HasFileLine() {
			s = s + text.DescribePos(f.File, f.Line)
		}
		return s
	}
	return ""
}

func (vm *Vm) whereOf(lv *Level) string {
	labels := []string{}
	for l := lv; l != nil; l = l.Parent {
		if l.Label != "" {
			labels = append(labels, l.Label)
		}
	}
	return strings.Join(labels, " in ")
}

// resolveWord finds the variable a bound word refers to. A relatively bound
// word names a parameter of an action, and means the innermost live frame of
// that action; an unbound word falls back to attachment in the global
// context.
func (vm *Vm) resolveWord(w values.Word) (*values.VarList, int, bool) {
	if w.Ctx != nil {
		return w.Ctx, w.Idx, true
	}
	if w.Rel != nil {
		for lv := vm.level; lv != nil; lv = lv.Parent {
			if lv.Phase == w.Rel && lv.Varlist != nil {
				return lv.Varlist, w.Idx, true
			}
		}
		return nil, 0, false
	}
	if i := vm.Global.Find(w.Name); i != 0 {
		return vm.Global, i, true
	}
	return nil, 0, false
}

// fetchWord gives the value of a word, as a raised error if it has none.
func (vm *Vm) fetchWord(lv *Level, w values.Word) values.Value {
	c, i, ok := vm.resolveWord(w)
	if !ok {
		return vm.raise(lv, "eval/unbound", w.Name)
	}
	if c.IsInaccessible() {
		return vm.raise(lv, "series/freed")
	}
	v := c.VarAt(i)
	if v.T == values.TRIPWIRE {
		return vm.raise(lv, "eval/unset", w.Name)
	}
	return v
}

// setWord stores into a word's variable and passes the value through. An
// unbound word gets attached to the global context, which grows to fit; a
// word bound to a full context that lacks it is an error.
func (vm *Vm) setWord(lv *Level, w values.Word, v values.Value) values.Value {
	if v.T == values.RAISED {
		return v
	}
	v = v.Decay()
	if v.T == values.VOID {
		return vm.raise(lv, "eval/arg-void", w.Name+":", "value")
	}
	c, i, ok := vm.resolveWord(w)
	if !ok {
		if w.Ctx == nil && w.Rel == nil {
			vm.Heap.AppendVar(vm.Global, w.Name, 0, v)
			return v
		}
		return vm.raise(lv, "eval/unbound", w.Name)
	}
	if c.IsInaccessible() {
		return vm.raise(lv, "series/freed")
	}
	if c.IsFrozen() {
		return vm.raise(lv, "series/frozen")
	}
	c.SetVar(i, v)
	return v
}
