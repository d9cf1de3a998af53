// The values package defines the tagged cell that every Skiff value lives in,
// together with the heap structures the cells point into: flexes, contexts,
// actions, handles, maps. The garbage collector lives here too, since it is
// the owner of those structures.
package values

import (
	"src.elv.sh/pkg/persistent/vector"
)

type ValueType uint32

const ( // Cross-reference with typeNames below.
	UNDEFINED ValueType = iota // For debugging purposes, it is useful to have the zero value be something it should never actually be.
	BLANK
	LOGIC
	INTEGER
	DECIMAL
	TEXT
	WORD
	SET_WORD
	GET_WORD
	LIT_WORD
	META_WORD
	BLOCK
	GROUP
	OBJECT
	FRAME
	MAP
	ACTION
	HANDLE
	ERROR
	LIFTED
	// Everything from NULL on is an antiform. Antiforms exist only as the
	// products of evaluation. A flex with flavor SOURCE will panic rather
	// than store one, so no block a user can get hold of ever contains one.
	NULL
	VOID
	TRIPWIRE
	PACK
	RAISED
)

var typeNames = []string{"undefined", "blank", "logic", "integer", "decimal",
	"text", "word", "set-word", "get-word", "lit-word", "meta-word", "block",
	"group", "object", "frame", "map", "action", "handle", "error", "lifted",
	"null", "void", "tripwire", "pack", "raised"}

func TypeName(t ValueType) string {
	if int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

type Value struct {
	T ValueType
	V any
}

// Word is the payload of the word types. A word may be bound directly into a
// context (Ctx and Idx set), relatively to a parameter of an action (Rel and
// Idx set), or not at all.
type Word struct {
	Name string
	Ctx  *VarList
	Rel  *Action
	Idx  int
}

// Series is the payload of BLOCK and GROUP, a flex together with a position
// in it. Copying the cell copies the position, not the data.
type Series struct {
	Flex  *Flex
	Index int
}

// Frameish is the payload of FRAME, a varlist of arguments seen through a
// particular phase of an action.
type Frameish struct {
	Varlist *VarList
	Phase   *Action
}

var (
	FALSE   = Value{T: LOGIC, V: false}
	TRUE    = Value{T: LOGIC, V: true}
	BLANK_V = Value{T: BLANK}
	NULL_V  = Value{T: NULL}
	VOID_V  = Value{T: VOID}
	UNSET   = Value{T: TRIPWIRE, V: "unset"}
)

func MakeLogic(b bool) Value {
	if b {
		return TRUE
	}
	return FALSE
}

func MakeTripwire(msg string) Value {
	return Value{T: TRIPWIRE, V: msg}
}

// MakePack bundles the given values into a PACK antiform. The underlying
// vector is persistent, so a pack can be passed around freely.
func MakePack(vals ...Value) Value {
	vec := vector.Empty
	for _, v := range vals {
		vec = vec.Conj(v)
	}
	return Value{T: PACK, V: vec}
}

func PackLen(v Value) int {
	return v.V.(vector.Vector).Len()
}

func PackAt(v Value, i int) Value {
	item, ok := v.V.(vector.Vector).Index(i)
	if !ok {
		return VOID_V
	}
	return item.(Value)
}

func (v Value) IsAntiform() bool {
	return v.T >= NULL
}

// Lift wraps any value, antiforms included, as a storable LIFTED cell. This
// is how meta parameters and generator state can hold things the flex write
// barrier would otherwise refuse.
func Lift(v Value) Value {
	inner := v
	return Value{T: LIFTED, V: &inner}
}

// Unlift undoes Lift. It is the caller's business to know the cell is LIFTED.
func (v Value) Unlift() Value {
	return *(v.V.(*Value))
}

// Decay collapses a PACK down to its first slot, recursively, which is what
// happens when a multiple-return value meets a single variable. An empty
// pack decays to void.
func (v Value) Decay() Value {
	for v.T == PACK {
		vec := v.V.(vector.Vector)
		if vec.Len() == 0 {
			return VOID_V
		}
		first, _ := vec.Index(0)
		v = first.(Value)
	}
	return v
}

// Truthy says whether a value counts as true in a condition. The ok result
// is false for values that have no truth to them, void and tripwire and
// friends, so that conditionals can raise an error rather than guess.
func (v Value) Truthy() (res bool, ok bool) {
	switch v.T {
	case LOGIC:
		return v.V.(bool), true
	case NULL, BLANK:
		return false, true
	case VOID, TRIPWIRE, PACK, RAISED, UNDEFINED:
		return false, false
	default:
		return true, true
	}
}

func (v Value) IsWordlike() bool {
	switch v.T {
	case WORD, SET_WORD, GET_WORD, LIT_WORD, META_WORD:
		return true
	}
	return false
}

// compare is a strict weak ordering over the value types a map may use as
// keys. Heap-allocated kinds are not comparable and CanBeMapKey screens
// them out before we get here.
func (v Value) compare(w Value) bool {
	if v.T < w.T {
		return true
	}
	if w.T < v.T {
		return false
	}
	switch v.T {
	case BLANK:
		return false
	case LOGIC:
		return (!v.V.(bool)) && w.V.(bool)
	case INTEGER:
		return v.V.(int) < w.V.(int)
	case DECIMAL:
		return v.V.(float64) < w.V.(float64)
	case TEXT:
		return v.V.(string) < w.V.(string)
	case WORD, SET_WORD, GET_WORD, LIT_WORD, META_WORD:
		return v.V.(Word).Name < w.V.(Word).Name
	}
	return false
}

func CanBeMapKey(v Value) bool {
	switch v.T {
	case BLANK, LOGIC, INTEGER, DECIMAL, TEXT, WORD, SET_WORD, GET_WORD, LIT_WORD, META_WORD:
		return true
	}
	return false
}

// Equal is the equality the equal? native exposes. Scalars compare by value,
// series compare element by element from their positions, and the identity
// kinds (objects, frames, actions, maps, handles) compare by identity.
func Equal(v, w Value) bool {
	if v.T != w.T {
		if v.T == INTEGER && w.T == DECIMAL {
			return float64(v.V.(int)) == w.V.(float64)
		}
		if v.T == DECIMAL && w.T == INTEGER {
			return v.V.(float64) == float64(w.V.(int))
		}
		return false
	}
	switch v.T {
	case UNDEFINED, BLANK, NULL, VOID:
		return true
	case LOGIC:
		return v.V.(bool) == w.V.(bool)
	case INTEGER:
		return v.V.(int) == w.V.(int)
	case DECIMAL:
		return v.V.(float64) == w.V.(float64)
	case TEXT:
		return v.V.(string) == w.V.(string)
	case TRIPWIRE:
		return v.V.(string) == w.V.(string)
	case WORD, SET_WORD, GET_WORD, LIT_WORD, META_WORD:
		return v.V.(Word).Name == w.V.(Word).Name
	case BLOCK, GROUP:
		return seriesEqual(v.V.(Series), w.V.(Series))
	case OBJECT, ERROR, RAISED:
		return v.V.(*VarList) == w.V.(*VarList)
	case FRAME:
		return v.V.(Frameish).Varlist == w.V.(Frameish).Varlist
	case MAP:
		return v.V.(*Map) == w.V.(*Map)
	case ACTION:
		return v.V.(*Action) == w.V.(*Action)
	case HANDLE:
		return v.V.(*Handle) == w.V.(*Handle)
	case LIFTED:
		return Equal(v.Unlift(), w.Unlift())
	case PACK:
		if PackLen(v) != PackLen(w) {
			return false
		}
		for i := 0; i < PackLen(v); i++ {
			if !Equal(PackAt(v, i), PackAt(w, i)) {
				return false
			}
		}
		return true
	}
	return false
}

func seriesEqual(a, b Series) bool {
	if a.Flex == b.Flex && a.Index == b.Index {
		return true
	}
	if a.Flex.IsInaccessible() || b.Flex.IsInaccessible() {
		return false
	}
	la, lb := a.Flex.Len()-a.Index, b.Flex.Len()-b.Index
	if la != lb {
		return false
	}
	for i := 0; i < la; i++ {
		if !Equal(a.Flex.At(a.Index+i), b.Flex.At(b.Index+i)) {
			return false
		}
	}
	return true
}
