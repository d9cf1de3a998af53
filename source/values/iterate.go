package values

// Elements materializes the things a loop would visit: the cells of a block
// or group from its position, the keys of a map, the visible words of an
// object, the characters of a text. Loops take this snapshot up front so
// that mutating the collection mid-loop cannot confuse them. The ok result
// is false for values that cannot be iterated.
func Elements(v Value) ([]Value, bool) {
	switch v.T {
	case BLOCK, GROUP:
		ser := v.V.(Series)
		if ser.Flex.IsInaccessible() {
			return nil, false
		}
		out := make([]Value, 0, ser.Flex.Len()-ser.Index)
		for i := ser.Index; i < ser.Flex.Len(); i++ {
			out = append(out, ser.Flex.At(i))
		}
		return out, true
	case MAP:
		m := v.V.(*Map)
		out := make([]Value, 0, m.Len())
		m.Range(func(k, _ Value) {
			out = append(out, k)
		})
		return out, true
	case OBJECT:
		c := v.V.(*VarList)
		out := []Value{}
		for i := 1; i <= c.NumVars(); i++ {
			k := c.Keylist.KeyAt(i)
			if k.Flags&HIDDEN != 0 {
				continue
			}
			out = append(out, Value{T: WORD, V: Word{Name: k.Name, Ctx: c, Idx: i}})
		}
		return out, true
	case TEXT:
		s := v.V.(string)
		out := make([]Value, 0, len(s))
		for _, r := range s {
			out = append(out, Value{T: TEXT, V: string(r)})
		}
		return out, true
	}
	return nil, false
}
