package values

import (
	"strconv"
)

// Flavor says what kinds of cell a flex may hold. Blocks and groups are
// SOURCE and refuse antiforms outright. Varlists relax this for the two
// antiforms that mean "no value here", and action details hold whatever
// their dispatcher needs.
type Flavor uint8

const (
	SOURCE Flavor = iota
	VARLIST
	DETAILS
)

type FlexFlags uint8

const (
	MANAGED FlexFlags = 1 << iota
	FROZEN
	INACCESSIBLE
	HAS_FILE_LINE
)

// Flex is a growable run of cells, the backing store for blocks, groups,
// varlists and action details. Indices into a flex are stable for its whole
// life. Growth appends; nothing ever moves or is removed.
type Flex struct {
	data   []Value
	flavor Flavor
	flags  FlexFlags
	marked bool
	File   string
	Line   int
}

func (f *Flex) Len() int {
	return len(f.data)
}

func (f *Flex) Flavor() Flavor {
	return f.flavor
}

func (f *Flex) IsManaged() bool {
	return f.flags&MANAGED != 0
}

func (f *Flex) IsFrozen() bool {
	return f.flags&FROZEN != 0
}

func (f *Flex) IsInaccessible() bool {
	return f.flags&INACCESSIBLE != 0
}

func (f *Flex) HasFileLine() bool {
	return f.flags&HAS_FILE_LINE != 0
}

func (f *Flex) SetFileLine(file string, line int) {
	f.File, f.Line = file, line
	f.flags |= HAS_FILE_LINE
}

// Freeze makes this flex immutable from now on. There is no thaw. Flexes
// reachable from its cells are not affected.
func (f *Flex) Freeze() {
	f.flags |= FROZEN
}

func (f *Flex) At(i int) Value {
	if f.flags&INACCESSIBLE != 0 {
		panic("read from a freed flex")
	}
	return f.data[i]
}

func (f *Flex) canHold(v Value) bool {
	switch f.flavor {
	case SOURCE:
		return !v.IsAntiform()
	case VARLIST:
		return !v.IsAntiform() || v.T == NULL || v.T == TRIPWIRE
	default:
		return true
	}
}

func (f *Flex) guardWrite(v Value) {
	if f.flags&INACCESSIBLE != 0 {
		panic("write to a freed flex")
	}
	if f.flags&FROZEN != 0 {
		panic("write to a frozen flex")
	}
	if !f.canHold(v) {
		panic("antiform " + TypeName(v.T) + " written to a " + flavorName(f.flavor) + " flex")
	}
}

// Set writes a cell in place. The write barrier panics on violations rather
// than returning an error because well-behaved callers check first with
// canHold and raise a cooperative error. Reaching the panic is a bug.
func (f *Flex) Set(i int, v Value) {
	f.guardWrite(v)
	f.data[i] = v
}

// Append writes a cell past the end and returns its index. The index remains
// valid forever, however much the flex grows afterwards.
func (f *Flex) Append(v Value) int {
	f.guardWrite(v)
	f.data = append(f.data, v)
	return len(f.data) - 1
}

// CanAdmit is the cooperative face of the write barrier, for natives that
// want to refuse a value politely before the barrier refuses it fatally.
func (f *Flex) CanAdmit(v Value) bool {
	return f.canHold(v)
}

// Decommission empties the flex and marks it inaccessible. Cells elsewhere
// may still point at the stub; they see the flag and never the old data. The
// stub itself stays until no cell refers to it, then the sweeper takes it.
func (f *Flex) Decommission() {
	f.data = nil
	f.flags |= INACCESSIBLE
}

func flavorName(fl Flavor) string {
	switch fl {
	case SOURCE:
		return "source"
	case VARLIST:
		return "varlist"
	case DETAILS:
		return "details"
	}
	return "flavor " + strconv.Itoa(int(fl))
}
