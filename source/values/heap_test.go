package values

import "testing"

func num(n int) Value {
	return Value{T: INTEGER, V: n}
}

func TestSweepUnreachable(t *testing.T) {
	h := NewHeap()
	h.NewBlock(num(1), num(2))
	if n := h.Recycle(); n != 1 {
		t.Fatalf("swept %d, wanted 1", n)
	}
	if s := h.Stats(); s.Flexes != 0 {
		t.Fatalf("%d flexes survived an empty root set", s.Flexes)
	}
}
func TestGuardPins(t *testing.T) {
	h := NewHeap()
	b := h.NewBlock(num(7))
	h.Guard(b)
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d guarded objects", n)
	}
	if got := b.V.(Series).Flex.At(0); got.V.(int) != 7 {
		t.Fatalf("guarded block lost its contents")
	}
	h.Unguard()
	if n := h.Recycle(); n != 1 {
		t.Fatalf("swept %d after unguard, wanted 1", n)
	}
}
func TestReachabilityIsDeep(t *testing.T) {
	h := NewHeap()
	inner := h.NewBlock(num(1))
	outer := h.NewBlock(inner)
	h.Guard(outer)
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d objects reachable through a block", n)
	}
	if s := h.Stats(); s.Flexes != 2 {
		t.Fatalf("%d flexes live, wanted 2", s.Flexes)
	}
}
func TestRootsMark(t *testing.T) {
	h := NewHeap()
	pinned := []Value{h.NewBlock(num(1))}
	h.AddRoot(func(m *Marker) {
		for _, v := range pinned {
			m.MarkValue(v)
		}
	})
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d objects held by a root", n)
	}
	pinned = pinned[:0]
	if n := h.Recycle(); n != 1 {
		t.Fatalf("swept %d after the root let go, wanted 1", n)
	}
}
func TestContextCollection(t *testing.T) {
	h := NewHeap()
	c := h.NewContext(OBJECT)
	h.AppendVar(c, "a", 0, num(1))
	h.Guard(c.Archetype())
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d parts of a guarded object", n)
	}
	h.Unguard()
	if n := h.Recycle(); n != 2 {
		t.Fatalf("swept %d, wanted the varlist and its keylist", n)
	}
}
func TestFrameKeylistSharing(t *testing.T) {
	h := NewHeap()
	kl := h.NewKeyList([]Key{{Name: "x"}})
	act := h.NewAction("f", kl, 0, nil)
	fr1 := h.NewFrame(act)
	fr2 := h.NewFrame(act)
	if fr1.Keylist != act.Keylist || fr2.Keylist != act.Keylist {
		t.Fatalf("frames should share their action's keylist")
	}
	slot := h.AppendVar(fr1, "y", 0, num(9))
	if slot != 2 {
		t.Fatalf("new variable landed in slot %d, wanted 2", slot)
	}
	if fr1.Keylist == act.Keylist {
		t.Fatalf("growing a frame must not keep the shared keylist")
	}
	if act.Keylist.Len() != 1 || fr2.Keylist.Len() != 1 {
		t.Fatalf("growing one frame changed the shape of the others")
	}
	if fr1.Find("y") != 2 || fr2.Find("y") != 0 {
		t.Fatalf("the new variable is visible in the wrong frames")
	}
}
func TestHideIsPerContext(t *testing.T) {
	h := NewHeap()
	kl := h.NewKeyList([]Key{{Name: "x"}})
	act := h.NewAction("f", kl, 0, nil)
	fr := h.NewFrame(act)
	if !h.Hide(fr, "x") {
		t.Fatalf("could not hide an existing variable")
	}
	if _, ok := fr.Fetch("x"); ok {
		t.Fatalf("hidden variable still visible to Fetch")
	}
	if fr.VarAt(1) != UNSET {
		t.Fatalf("hiding should not disturb the slot")
	}
	if act.Keylist.Find("x") != 1 {
		t.Fatalf("hiding in a frame leaked into the action's keylist")
	}
	if h.Hide(fr, "zonk") {
		t.Fatalf("hid a variable that does not exist")
	}
}
func TestHandleLifecycle(t *testing.T) {
	h := NewHeap()
	cleaned := false
	hd := h.NewHandle("resource", 42, nil, func(*Handle) { cleaned = true })
	v := Value{T: HANDLE, V: hd}
	h.Guard(v)
	h.Recycle()
	if cleaned {
		t.Fatalf("cleanup ran while the handle was still live")
	}
	h.Unguard()
	h.Recycle()
	if !cleaned {
		t.Fatalf("cleanup did not run when the handle was swept")
	}
	if s := h.Stats(); s.Handles != 0 {
		t.Fatalf("%d handles survived, wanted 0", s.Handles)
	}
}
func TestHandleMarkerHook(t *testing.T) {
	h := NewHeap()
	boxed := h.NewBlock(num(5))
	hd := h.NewHandle("box", boxed, func(m *Marker) { m.MarkValue(boxed) }, nil)
	h.Guard(Value{T: HANDLE, V: hd})
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d objects held through a handle's marker", n)
	}
	if s := h.Stats(); s.Flexes != 1 {
		t.Fatalf("the handle's marker hook did not keep its cargo")
	}
}
func TestDecommissionedStub(t *testing.T) {
	h := NewHeap()
	b := h.NewBlock(num(1), num(2))
	f := b.V.(Series).Flex
	h.Guard(b)
	f.Decommission()
	if !f.IsInaccessible() {
		t.Fatalf("decommissioned flex still claims to be accessible")
	}
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept a stub that cells still point at")
	}
	if got := Mold(b); got != "[<freed>]" {
		t.Fatalf("freed block molds as %s", got)
	}
	h.Unguard()
	if n := h.Recycle(); n != 1 {
		t.Fatalf("swept %d, the unreferenced stub should go", n)
	}
}
func TestCyclicMapMarking(t *testing.T) {
	h := NewHeap()
	pm := NewMap()
	mv := Value{T: MAP, V: pm}
	pm.Set(num(1), mv)
	pm.Set(num(2), h.NewBlock(num(3)))
	h.Guard(mv)
	if n := h.Recycle(); n != 0 {
		t.Fatalf("marking a cyclic map swept %d live objects", n)
	}
	if s := h.Stats(); s.Flexes != 1 {
		t.Fatalf("a block held through a map was swept")
	}
}
func TestUnmanagedStay(t *testing.T) {
	h := NewHeap()
	f := h.NewFlex(SOURCE, 4)
	f.Append(num(1))
	if n := h.Recycle(); n != 0 {
		t.Fatalf("swept %d unmanaged flexes", n)
	}
	if s := h.Stats(); s.Flexes != 1 {
		t.Fatalf("an unmanaged flex vanished")
	}
	h.Manage(f)
	if n := h.Recycle(); n != 1 {
		t.Fatalf("swept %d once managed and unreached, wanted 1", n)
	}
}
func TestAntiformBarrier(t *testing.T) {
	h := NewHeap()
	f := h.NewFlex(SOURCE, 1)
	if f.CanAdmit(NULL_V) {
		t.Fatalf("a source flex should not admit an antiform")
	}
	if !f.CanAdmit(num(1)) {
		t.Fatalf("a source flex should admit an ordinary value")
	}
	if !f.CanAdmit(Lift(NULL_V)) {
		t.Fatalf("a lifted antiform is an ordinary value and should be admitted")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("writing an antiform to a source flex did not panic")
		}
	}()
	f.Append(NULL_V)
}
func TestVarlistAdmitsAbsence(t *testing.T) {
	h := NewHeap()
	f := h.NewFlex(VARLIST, 2)
	f.Append(NULL_V)
	f.Append(UNSET)
	if f.CanAdmit(VOID_V) {
		t.Fatalf("a varlist flex should not admit void")
	}
}
