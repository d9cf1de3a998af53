package values

type KeyFlags uint8

const (
	HIDDEN KeyFlags = 1 << iota
	QUOTED           // parameter takes its argument unevaluated
	META             // parameter receives its argument lifted
)

type Key struct {
	Name  string
	Flags KeyFlags
}

// KeyList names the slots of one or more varlists. Every frame made by
// calling the same action shares that action's keylist, so a thousand calls
// cost one copy of the parameter names. Anything that would change the shape
// of a shared keylist must copy it first; EnsureUnique does that.
type KeyList struct {
	keys   []Key
	refs   int
	marked bool
}

func (kl *KeyList) Len() int {
	return len(kl.keys)
}

// KeyAt is 1-based so that key indices line up with varlist slot indices,
// slot 0 being the archetype.
func (kl *KeyList) KeyAt(i int) Key {
	return kl.keys[i-1]
}

// Find returns the 1-based slot index of the named key, or 0. Hidden keys
// are invisible to it.
func (kl *KeyList) Find(name string) int {
	for i, k := range kl.keys {
		if k.Name == name && k.Flags&HIDDEN == 0 {
			return i + 1
		}
	}
	return 0
}

// Share hands out another reference to the keylist, bumping the count that
// EnsureUnique consults.
func (kl *KeyList) Share() *KeyList {
	kl.refs++
	return kl
}

func (kl *KeyList) IsShared() bool {
	return kl.refs > 1
}

// LevelLink lets a varlist point at the live call frame servicing it without
// this package knowing what a call frame is. The collector calls MarkLevel
// so the frame can mark the cells it owns.
type LevelLink interface {
	MarkLevel(m *Marker)
}

// VarList is a context: a flex of variables whose slot 0 holds the archetype
// value and whose keylist names slots 1 through Len()-1. Objects, frames and
// errors are all varlists with different archetypes.
type VarList struct {
	Flex
	Keylist *KeyList
	Link    LevelLink
}

func (c *VarList) Archetype() Value {
	return c.At(0)
}

func (c *VarList) NumVars() int {
	return c.Len() - 1
}

// VarAt reads the variable in the given 1-based slot.
func (c *VarList) VarAt(i int) Value {
	return c.At(i)
}

func (c *VarList) SetVar(i int, v Value) {
	if i == 0 {
		panic("write to the archetype slot")
	}
	c.Set(i, v)
}

func (c *VarList) Find(name string) int {
	return c.Keylist.Find(name)
}

// Fetch looks a variable up by name. The ok result is false both for names
// the context has never heard of and for hidden ones.
func (c *VarList) Fetch(name string) (Value, bool) {
	i := c.Find(name)
	if i == 0 {
		var zero Value
		return zero, false
	}
	return c.VarAt(i), true
}
