package values

// Action is an applicable value: a parameter schema shared with its frames,
// plus a details flex the dispatcher reads its body or captured state from.
// Slot 0 of the details is an archetype ACTION cell pointing back at the
// action, which the collector's consistency check leans on.
type Action struct {
	Name     string
	Keylist  *KeyList
	Details  *Flex
	Dispatch any // the trampoline's dispatcher func, opaque at this layer
	Enfix    bool
	marked   bool
}

func (a *Action) Archetype() Value {
	return a.Details.At(0)
}

func (a *Action) NumParams() int {
	return a.Keylist.Len()
}

// DetailAt reads a payload slot of the details. Slot numbering starts at 1;
// 0 is the archetype.
func (a *Action) DetailAt(i int) Value {
	return a.Details.At(i)
}

func (a *Action) SetDetail(i int, v Value) {
	if i == 0 {
		panic("write to the archetype slot")
	}
	a.Details.Set(i, v)
}
