package values

import (
	"fmt"

	"github.com/skiff-lang/Skiff/source/set"
	"github.com/skiff-lang/Skiff/source/settings"
)

// Heap owns every collectable runtime object: flexes, varlists, keylists,
// actions and handles. Collection is explicit mark-and-sweep, kicked off by
// whoever owns the heap at a moment when no half-built structure is in
// flight. The trampoline does it at the top of its loop, which is the only
// safe point, so Go code never has a heap pointer invalidated under it
// mid-step.
//
// Each trampoline gets its own heap. Nothing here is global and nothing
// locks, per the share-nothing rule; two interpreters in two goroutines
// never touch each other's pools.
type Heap struct {
	flexes   []*Flex
	varlists []*VarList
	keylists []*KeyList
	actions  []*Action
	handles  []*Handle
	guarded  []Value
	roots    []func(*Marker)
	cycles   int
	swept    int
}

func NewHeap() *Heap {
	return &Heap{}
}

// NewFlex allocates an unmanaged flex. Unmanaged means the collector will
// not sweep it, but also will not trace it: the maker must either Manage it
// once it is safely reachable, or keep it entirely to itself. Losing an
// unmanaged flex leaks it; holding managed things only from an unmanaged
// flex across a collection dangles them.
func (h *Heap) NewFlex(flavor Flavor, capacity int) *Flex {
	f := &Flex{data: make([]Value, 0, capacity), flavor: flavor}
	h.flexes = append(h.flexes, f)
	return f
}

func (h *Heap) Manage(f *Flex) {
	f.flags |= MANAGED
}

// ManageDeep manages a whole tree at once. The loader builds its output
// unmanaged and hands it over with this before anyone else can see it.
func (h *Heap) ManageDeep(v Value) {
	switch v.T {
	case BLOCK, GROUP:
		f := v.V.(Series).Flex
		if f.IsManaged() || f.IsInaccessible() {
			return
		}
		f.flags |= MANAGED
		for i := 0; i < f.Len(); i++ {
			h.ManageDeep(f.At(i))
		}
	case OBJECT, ERROR:
		c := v.V.(*VarList)
		if c.IsManaged() || c.IsInaccessible() {
			return
		}
		c.flags |= MANAGED
		for i := 1; i <= c.NumVars(); i++ {
			h.ManageDeep(c.VarAt(i))
		}
	case LIFTED:
		h.ManageDeep(v.Unlift())
	}
}

// NewBlock wraps freshly made cells as a managed block at index 0.
func (h *Heap) NewBlock(vals ...Value) Value {
	f := h.NewFlex(SOURCE, len(vals))
	for _, v := range vals {
		f.Append(v)
	}
	h.Manage(f)
	return Value{T: BLOCK, V: Series{Flex: f}}
}

func (h *Heap) NewKeyList(keys []Key) *KeyList {
	kl := &KeyList{keys: keys, refs: 1}
	h.keylists = append(h.keylists, kl)
	return kl
}

// NewContext allocates a managed varlist whose archetype cell is of the
// given kind, OBJECT or ERROR, and whose keylist starts empty.
func (h *Heap) NewContext(t ValueType) *VarList {
	c := &VarList{Flex: Flex{flavor: VARLIST, flags: MANAGED}}
	c.Keylist = h.NewKeyList(nil)
	c.data = append(c.data, Value{T: t, V: c})
	h.varlists = append(h.varlists, c)
	return c
}

// NewFrame allocates a managed varlist for a call to the given action,
// sharing the action's keylist and with every argument slot unset.
func (h *Heap) NewFrame(act *Action) *VarList {
	c := &VarList{Flex: Flex{flavor: VARLIST, flags: MANAGED}}
	c.Keylist = act.Keylist.Share()
	c.data = append(c.data, Value{T: FRAME, V: Frameish{Varlist: c, Phase: act}})
	for i := 0; i < act.Keylist.Len(); i++ {
		c.data = append(c.data, UNSET)
	}
	h.varlists = append(h.varlists, c)
	return c
}

// EnsureUnique gives the varlist its own keylist if it has been sharing one.
// Anything about to change a context's shape calls this first, so a frame
// can grow or hide variables without the action or its other frames noticing.
func (h *Heap) EnsureUnique(c *VarList) {
	if !c.Keylist.IsShared() {
		return
	}
	c.Keylist.refs--
	keys := make([]Key, len(c.Keylist.keys))
	copy(keys, c.Keylist.keys)
	c.Keylist = h.NewKeyList(keys)
}

// AppendVar adds a variable to a context and returns its slot index. Growth
// is append-only; the index stays good for the life of the context.
func (h *Heap) AppendVar(c *VarList, name string, flags KeyFlags, v Value) int {
	h.EnsureUnique(c)
	c.Keylist.keys = append(c.Keylist.keys, Key{Name: name, Flags: flags})
	return c.Append(v)
}

// Hide makes a context's variable invisible to lookup from now on. Returns
// false if there is no such variable to hide.
func (h *Heap) Hide(c *VarList, name string) bool {
	i := c.Find(name)
	if i == 0 {
		return false
	}
	h.EnsureUnique(c)
	c.Keylist.keys[i-1].Flags |= HIDDEN
	return true
}

// NewAction allocates an action together with its details flex, which gets
// ndetails payload slots after the archetype in slot 0.
func (h *Heap) NewAction(name string, kl *KeyList, ndetails int, dispatch any) *Action {
	details := h.NewFlex(DETAILS, ndetails+1)
	h.Manage(details)
	a := &Action{Name: name, Keylist: kl.Share(), Details: details, Dispatch: dispatch}
	details.Append(Value{T: ACTION, V: a})
	for i := 0; i < ndetails; i++ {
		details.Append(Value{T: BLANK})
	}
	h.actions = append(h.actions, a)
	return a
}

func (h *Heap) NewHandle(name string, datum any, marker func(*Marker), cleanup func(*Handle)) *Handle {
	hd := &Handle{Name: name, Datum: datum, Marker: marker, Cleanup: cleanup}
	h.handles = append(h.handles, hd)
	return hd
}

// Guard pins a value live across collections until the matching Unguard.
// Guards nest; Unguard drops the most recent.
func (h *Heap) Guard(v Value) {
	h.guarded = append(h.guarded, v)
}

func (h *Heap) Unguard() {
	h.guarded = h.guarded[:len(h.guarded)-1]
}

// AddRoot registers a marker the collector will call at the start of every
// cycle. The trampoline registers one that walks its live levels; embedders
// register one for whatever they hold.
func (h *Heap) AddRoot(f func(*Marker)) {
	h.roots = append(h.roots, f)
}

type HeapStats struct {
	Cycles   int
	Swept    int
	Flexes   int
	Varlists int
	Keylists int
	Actions  int
	Handles  int
	Guards   int
}

func (h *Heap) Stats() HeapStats {
	return HeapStats{
		Cycles:   h.cycles,
		Swept:    h.swept,
		Flexes:   len(h.flexes),
		Varlists: len(h.varlists),
		Keylists: len(h.keylists),
		Actions:  len(h.actions),
		Handles:  len(h.handles),
		Guards:   len(h.guarded),
	}
}

// Marker carries the state of one mark phase. Marking is iterative with an
// explicit work stack, since a deeply nested block must not be able to blow
// the Go stack any more than deep user recursion can. The seen set guards
// against cyclic maps; everything else pooled carries a mark bit.
type Marker struct {
	heap  *Heap
	stack []Value
	seen  set.Set[*Map]
}

// MarkValue queues a cell's referents for marking.
func (m *Marker) MarkValue(v Value) {
	m.stack = append(m.stack, v)
}

func (m *Marker) MarkFlex(f *Flex) {
	if f == nil || f.marked {
		return
	}
	f.marked = true
	if f.flags&INACCESSIBLE != 0 {
		return // a decommissioned stub holds nothing; mark it, never read it
	}
	for _, v := range f.data {
		m.stack = append(m.stack, v)
	}
}

func (m *Marker) MarkVarlist(c *VarList) {
	if c == nil || c.marked {
		return
	}
	c.marked = true
	if c.flags&INACCESSIBLE != 0 {
		return
	}
	m.MarkKeylist(c.Keylist)
	for _, v := range c.data {
		m.stack = append(m.stack, v)
	}
	if c.Link != nil {
		c.Link.MarkLevel(m)
	}
}

func (m *Marker) MarkKeylist(kl *KeyList) {
	if kl == nil {
		return
	}
	kl.marked = true
}

func (m *Marker) MarkAction(a *Action) {
	if a == nil || a.marked {
		return
	}
	a.marked = true
	m.MarkKeylist(a.Keylist)
	m.MarkFlex(a.Details)
}

func (m *Marker) MarkHandle(hd *Handle) {
	if hd == nil || hd.marked {
		return
	}
	hd.marked = true
	if hd.Marker != nil {
		hd.Marker(m)
	}
}

func (m *Marker) markMap(pm *Map) {
	if m.seen.Contains(pm) {
		return
	}
	m.seen.Add(pm)
	pm.Range(func(k, v Value) {
		m.stack = append(m.stack, k, v)
	})
}

func (m *Marker) drain() {
	for len(m.stack) > 0 {
		v := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		switch v.T {
		case WORD, SET_WORD, GET_WORD, LIT_WORD, META_WORD:
			w := v.V.(Word)
			m.MarkVarlist(w.Ctx)
			m.MarkAction(w.Rel)
		case BLOCK, GROUP:
			m.MarkFlex(v.V.(Series).Flex)
		case OBJECT, ERROR, RAISED:
			m.MarkVarlist(v.V.(*VarList))
		case FRAME:
			fr := v.V.(Frameish)
			m.MarkVarlist(fr.Varlist)
			m.MarkAction(fr.Phase)
		case MAP:
			m.markMap(v.V.(*Map))
		case ACTION:
			m.MarkAction(v.V.(*Action))
		case HANDLE:
			m.MarkHandle(v.V.(*Handle))
		case LIFTED:
			m.stack = append(m.stack, v.Unlift())
		case PACK:
			for i := 0; i < PackLen(v); i++ {
				m.stack = append(m.stack, PackAt(v, i))
			}
		}
	}
}

// Recycle runs a full collection and reports how many objects were swept.
// The caller vouches that this is a safe point: every live thing is either
// reachable from a registered root or guarded.
func (h *Heap) Recycle() int {
	m := &Marker{heap: h, seen: set.Set[*Map]{}}
	for _, v := range h.guarded {
		m.MarkValue(v)
	}
	for _, root := range h.roots {
		root(m)
	}
	m.drain()
	if settings.CHECK_INVARIANTS {
		h.verify()
	}
	swept := h.sweep()
	h.cycles++
	h.swept += swept
	if settings.SHOW_GC {
		s := h.Stats()
		fmt.Printf("gc: cycle %d swept %d, live %d flexes, %d varlists, %d keylists, %d actions, %d handles\n",
			s.Cycles, swept, s.Flexes, s.Varlists, s.Keylists, s.Actions, s.Handles)
	}
	return swept
}

// verify runs the post-mark consistency checks and panics with diagnostics
// on the first violation. A violation means the marker has a hole in it, and
// carrying on would corrupt the heap, so dying loudly here is the point.
func (h *Heap) verify() {
	for _, c := range h.varlists {
		if !c.marked || c.IsInaccessible() {
			continue
		}
		if c.Keylist == nil {
			panic("gc consistency: marked varlist with no keylist")
		}
		if !c.Keylist.marked {
			panic("gc consistency: marked varlist with unmarked keylist")
		}
		if c.Keylist.Len() != c.NumVars() {
			panic(fmt.Sprintf("gc consistency: varlist has %d vars but keylist has %d keys",
				c.NumVars(), c.Keylist.Len()))
		}
	}
	for _, a := range h.actions {
		if !a.marked {
			continue
		}
		if a.Details == nil || !a.Details.marked {
			panic(fmt.Sprintf("gc consistency: marked action %s with unmarked details", a.Name))
		}
		arch := a.Details.At(0)
		if arch.T != ACTION {
			panic(fmt.Sprintf("gc consistency: action %s details archetype is %s, not action",
				a.Name, TypeName(arch.T)))
		}
		if back := arch.V.(*Action); back != a || !back.marked {
			panic(fmt.Sprintf("gc consistency: action %s details archetype points elsewhere", a.Name))
		}
		if !a.Keylist.marked {
			panic(fmt.Sprintf("gc consistency: marked action %s with unmarked keylist", a.Name))
		}
	}
}

func (h *Heap) sweep() int {
	swept := 0
	flexes := h.flexes[:0]
	for _, f := range h.flexes {
		if f.marked || f.flags&MANAGED == 0 {
			f.marked = false
			flexes = append(flexes, f)
		} else {
			f.data = nil
			swept++
		}
	}
	h.flexes = flexes
	varlists := h.varlists[:0]
	for _, c := range h.varlists {
		if c.marked || c.flags&MANAGED == 0 {
			c.marked = false
			varlists = append(varlists, c)
		} else {
			c.data = nil
			c.Link = nil
			swept++
		}
	}
	h.varlists = varlists
	// Keylists survive by being referenced from a surviving varlist or
	// action, not by their own mark. The mark bit exists for the benefit of
	// verify; an unmanaged varlist keeps its keylist alive through this set
	// even though no marker ever visits it.
	live := set.Set[*KeyList]{}
	for _, c := range h.varlists {
		live.Add(c.Keylist)
	}
	for _, a := range h.actions {
		if a.marked {
			live.Add(a.Keylist)
		}
	}
	keylists := h.keylists[:0]
	for _, kl := range h.keylists {
		kl.marked = false
		if live.Contains(kl) {
			keylists = append(keylists, kl)
		} else {
			swept++
		}
	}
	h.keylists = keylists
	actions := h.actions[:0]
	for _, a := range h.actions {
		if a.marked {
			a.marked = false
			actions = append(actions, a)
		} else {
			swept++
		}
	}
	h.actions = actions
	handles := h.handles[:0]
	for _, hd := range h.handles {
		if hd.marked {
			hd.marked = false
			handles = append(handles, hd)
		} else {
			if hd.Cleanup != nil {
				hd.Cleanup(hd)
			}
			swept++
		}
	}
	h.handles = handles
	return swept
}
