package values

import (
	"strconv"
	"strings"
)

// Mold renders a value in source notation, or as near to it as the value
// allows. Antiforms mold in their quasi notation with tildes, which is
// display only: the loader will not read it back, because antiforms have no
// source form by construction.
func Mold(v Value) string {
	m := &molder{seenFlex: map[*Flex]bool{}, seenCtx: map[*VarList]bool{}}
	m.mold(v)
	return m.sb.String()
}

// Form renders a value for human eyes: text loses its quotes, blocks lose
// their brackets. Everything else molds.
func Form(v Value) string {
	switch v.T {
	case TEXT:
		return v.V.(string)
	case BLOCK, GROUP:
		ser := v.V.(Series)
		if ser.Flex.IsInaccessible() {
			return "<freed>"
		}
		parts := []string{}
		for i := ser.Index; i < ser.Flex.Len(); i++ {
			parts = append(parts, Form(ser.Flex.At(i)))
		}
		return strings.Join(parts, " ")
	case PACK:
		return Form(v.Decay())
	}
	return Mold(v)
}

type molder struct {
	sb       strings.Builder
	seenFlex map[*Flex]bool
	seenCtx  map[*VarList]bool
}

func (m *molder) mold(v Value) {
	switch v.T {
	case UNDEFINED:
		m.sb.WriteString("#[undefined]")
	case BLANK:
		m.sb.WriteString("_")
	case LOGIC:
		if v.V.(bool) {
			m.sb.WriteString("true")
		} else {
			m.sb.WriteString("false")
		}
	case INTEGER:
		m.sb.WriteString(strconv.Itoa(v.V.(int)))
	case DECIMAL:
		m.sb.WriteString(moldDecimal(v.V.(float64)))
	case TEXT:
		m.sb.WriteString(strconv.Quote(v.V.(string)))
	case WORD:
		m.sb.WriteString(v.V.(Word).Name)
	case SET_WORD:
		m.sb.WriteString(v.V.(Word).Name + ":")
	case GET_WORD:
		m.sb.WriteString(":" + v.V.(Word).Name)
	case LIT_WORD:
		m.sb.WriteString("'" + v.V.(Word).Name)
	case META_WORD:
		m.sb.WriteString("^" + v.V.(Word).Name)
	case BLOCK:
		m.moldSeries(v.V.(Series), "[", "]")
	case GROUP:
		m.moldSeries(v.V.(Series), "(", ")")
	case OBJECT:
		m.moldContext(v.V.(*VarList), "object [", "]")
	case FRAME:
		m.moldContext(v.V.(Frameish).Varlist, "frame! [", "]")
	case MAP:
		m.moldMap(v.V.(*Map))
	case ACTION:
		m.sb.WriteString("#[action! " + v.V.(*Action).Name + "]")
	case HANDLE:
		m.sb.WriteString("#[handle! " + v.V.(*Handle).Name + "]")
	case ERROR:
		m.sb.WriteString("#[error! " + errorID(v.V.(*VarList)) + "]")
	case LIFTED:
		inner := v.Unlift()
		if inner.IsAntiform() {
			m.mold(inner)
		} else {
			m.sb.WriteString("'")
			m.mold(inner)
		}
	case NULL:
		m.sb.WriteString("~null~")
	case VOID:
		m.sb.WriteString("~void~")
	case TRIPWIRE:
		m.sb.WriteString("~<" + v.V.(string) + ">~")
	case PACK:
		m.sb.WriteString("~[")
		for i := 0; i < PackLen(v); i++ {
			if i > 0 {
				m.sb.WriteString(" ")
			}
			m.mold(PackAt(v, i))
		}
		m.sb.WriteString("]~")
	case RAISED:
		m.sb.WriteString("~error: " + errorID(v.V.(*VarList)) + "~")
	default:
		m.sb.WriteString("#[" + TypeName(v.T) + "]")
	}
}

func (m *molder) moldSeries(ser Series, open, close string) {
	if ser.Flex.IsInaccessible() {
		m.sb.WriteString(open + "<freed>" + close)
		return
	}
	if m.seenFlex[ser.Flex] {
		m.sb.WriteString(open + "..." + close)
		return
	}
	m.seenFlex[ser.Flex] = true
	m.sb.WriteString(open)
	for i := ser.Index; i < ser.Flex.Len(); i++ {
		if i > ser.Index {
			m.sb.WriteString(" ")
		}
		m.mold(ser.Flex.At(i))
	}
	m.sb.WriteString(close)
	delete(m.seenFlex, ser.Flex)
}

func (m *molder) moldContext(c *VarList, open, close string) {
	if c.IsInaccessible() {
		m.sb.WriteString(open + "<freed>" + close)
		return
	}
	if m.seenCtx[c] {
		m.sb.WriteString(open + "..." + close)
		return
	}
	m.seenCtx[c] = true
	m.sb.WriteString(open)
	first := true
	for i := 1; i <= c.NumVars(); i++ {
		k := c.Keylist.KeyAt(i)
		if k.Flags&HIDDEN != 0 {
			continue
		}
		if !first {
			m.sb.WriteString(" ")
		}
		first = false
		m.sb.WriteString(k.Name + ": ")
		m.mold(c.VarAt(i))
	}
	m.sb.WriteString(close)
	delete(m.seenCtx, c)
}

func (m *molder) moldMap(pm *Map) {
	m.sb.WriteString("map [")
	first := true
	pm.Range(func(k, v Value) {
		if !first {
			m.sb.WriteString(" ")
		}
		first = false
		m.mold(k)
		m.sb.WriteString(" ")
		m.mold(v)
	})
	m.sb.WriteString("]")
}

func moldDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s = s + ".0"
	}
	return s
}

func errorID(c *VarList) string {
	if c.IsInaccessible() {
		return "freed"
	}
	if id, ok := c.Fetch("id"); ok && id.T == TEXT {
		return id.V.(string)
	}
	return "unknown"
}
