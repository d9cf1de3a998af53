package lexer

import (
	"testing"

	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/values"
)

type loadItem struct {
	input string
	want  string
}

func testLoading(t *testing.T, items []loadItem) {
	for i, item := range items {
		h := values.NewHeap()
		block, problem := Load(h, "test", item.input)
		if problem.T == values.RAISED {
			t.Fatalf("tests[%d] - loading %q failed with %s", i, item.input, err.ID(problem))
		}
		got := values.Mold(block)
		if got != item.want {
			t.Fatalf("tests[%d] - loaded %q as %s, wanted %s", i, item.input, got, item.want)
		}
	}
}

func testLoadingFails(t *testing.T, items []loadItem) {
	for i, item := range items {
		h := values.NewHeap()
		_, problem := Load(h, "test", item.input)
		if problem.T != values.RAISED {
			t.Fatalf("tests[%d] - loading %q should have failed with %s", i, item.input, item.want)
		}
		if got := err.ID(problem); got != item.want {
			t.Fatalf("tests[%d] - loading %q failed with %s, wanted %s", i, item.input, got, item.want)
		}
	}
}

func TestLoadingValues(t *testing.T) {
	testLoading(t, []loadItem{
		{`1 2 3`, `[1 2 3]`},
		{`-3`, `[-3]`},
		{`+5`, `[5]`},
		{`- 3`, `[- 3]`},
		{`2.5`, `[2.5]`},
		{`10.0`, `[10.0]`},
		{`1e3`, `[1000.0]`},
		{`_`, `[_]`},
		{`_x`, `[_x]`},
		{`"hi"`, `["hi"]`},
		{``, `[]`},
		{`   `, `[]`},
	})
}
func TestLoadingWords(t *testing.T) {
	testLoading(t, []loadItem{
		{`foo`, `[foo]`},
		{`a+b`, `[a+b]`},
		{`foo: 42`, `[foo: 42]`},
		{`x: y: 1`, `[x: y: 1]`},
		{`:foo`, `[:foo]`},
		{`'foo`, `['foo]`},
		{`^foo`, `[^foo]`},
		{`null?`, `[null?]`},
		{`length-of`, `[length-of]`},
		{`<= >= <>`, `[<= >= <>]`},
	})
}
func TestLoadingStructure(t *testing.T) {
	testLoading(t, []loadItem{
		{`[a [b]]`, `[[a [b]]]`},
		{`(a)`, `[(a)]`},
		{`[1 (2) 3]`, `[[1 (2) 3]]`},
		{`1, 2`, `[1 2]`},
		{"1 ; two\n3", `[1 3]`},
		{`; nothing here`, `[]`},
	})
}
func TestLoadingEscapes(t *testing.T) {
	testLoading(t, []loadItem{
		{`"a^/b"`, `["a\nb"]`},
		{`"tab^-end"`, `["tab\tend"]`},
		{`"q^""`, `["q\""]`},
		{`"up^^"`, `["up^"]`},
		{`"hex^(41)"`, `["hexA"]`},
	})
}
func TestLoadingProblems(t *testing.T) {
	testLoadingFails(t, []loadItem{
		{`[1 2`, `load/mismatched`},
		{`(1 2`, `load/mismatched`},
		{`[1)`, `load/mismatched`},
		{`1]`, `load/extra-close`},
		{`)`, `load/extra-close`},
		{`"unclosed`, `load/unterminated-text`},
		{`"bad^q"`, `load/bad-escape`},
		{`"bad^(GG)"`, `load/bad-escape`},
		{`1.2.3`, `load/bad-number`},
		{`12abc`, `load/bad-number`},
		{`@`, `load/bad-char`},
	})
}
