package vm

import (
	"github.com/skiff-lang/Skiff/source/values"
)

// Dispatcher is the type of the functions that do the actual work of a
// level. A dispatcher runs from the top every time the trampoline wakes its
// level, switching on the level's State byte to find where it left off; all
// its working storage lives in the level, never in Go locals that survive a
// return. This is what lets the whole stack be picked up and put down.
type Dispatcher func(vm *Vm, lv *Level) Bounce

type LevelFlags uint8

const (
	// The dispatcher wants to be woken while a throw is unwinding past it,
	// to have the chance to catch it.
	CATCHES LevelFlags = 1 << iota

	// The level evaluates one expression rather than running to the end of
	// its feed.
	STEP_ONCE

	// The level is a function application in its body-running phase, which
	// is what return throws at.
	FUNC_FRAME

	// The level evaluates the right argument of an infix action. Lookahead
	// is off here: a further infix word belongs to the finished operator
	// above, not to its half-gathered argument, so chains of operators run
	// left to right.
	DEFER_ENFIX
)

// Level is one rung of the call stack, heap-allocated precisely so that the
// stack can be taken apart and reassembled. Whatever a Go frame would have
// kept in locals lives here instead.
type Level struct {
	Parent   *Level
	Dispatch Dispatcher

	// Where the result goes. This aims at a cell owned by some ancestor
	// level, or at the cell the embedder gave the run; never into a flex,
	// whose storage could move under it.
	Out *values.Value

	// Two cells of working storage owned by the level itself, so children
	// have somewhere stable to write.
	Spare   values.Value
	Scratch values.Value

	Feed    *Feed
	Varlist *values.VarList
	Phase   *values.Action
	State   byte
	Flags   LevelFlags

	// The height of the data stack when this level was pushed. A throw
	// unwinding past the level truncates back to this; an unplug captures
	// from here up.
	BaseDS int

	// What to call this level in the where field of an error report.
	Label string
}

// MarkLevel makes Level a values.LevelLink, so a varlist being traced can
// mark the live frame that services it, and a plug can mark its captive
// fragment. The out cell is deliberately not marked here: it belongs to an
// ancestor, which marks its own cells.
func (lv *Level) MarkLevel(m *values.Marker) {
	m.MarkValue(lv.Spare)
	m.MarkValue(lv.Scratch)
	m.MarkVarlist(lv.Varlist)
	m.MarkAction(lv.Phase)
	if lv.Feed != nil {
		m.MarkFlex(lv.Feed.Array)
	}
}
