package lexer

// The RuneSupplier gives us something simpler than a lexer to build the lexer
// on: a window onto the source runes that keeps count of lines, which is all
// the position information the loader stamps onto the arrays it makes.
type RuneSupplier struct {
	code   []rune
	pos    int
	lineNo int
}

func NewRuneSupplier(code []rune) *RuneSupplier {
	return &RuneSupplier{code: code, lineNo: 1}
}

func (rs *RuneSupplier) CurrentRune() rune {
	if rs.pos < len(rs.code) {
		return rs.code[rs.pos]
	}
	return 0
}

func (rs *RuneSupplier) PeekRune() rune {
	if rs.pos+1 < len(rs.code) {
		return rs.code[rs.pos+1]
	}
	return 0
}

func (rs *RuneSupplier) Next() {
	if rs.pos >= len(rs.code) {
		return
	}
	if rs.code[rs.pos] == '\n' {
		rs.lineNo++
	}
	rs.pos++
}

func (rs *RuneSupplier) Line() int {
	return rs.lineNo
}
