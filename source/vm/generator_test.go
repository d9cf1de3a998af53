package vm_test

import (
	"testing"

	"github.com/skiff-lang/Skiff/source/test_helper"
)

func TestGeneratorSequence(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `1`},
		{`reduce [g g g]`, `[1 2 3]`},
		{`reduce [g g g] null? g`, `true`},
		{`reduce [g g g] g null? g`, `true`},
	}
	test_helper.RunTest(t, `g: generator [yield 1 yield 2 yield 3]`, tests, test_helper.TestValues)
}
func TestGeneratorIndependence(t *testing.T) {
	tests := []test_helper.TestItem{
		{`reduce [g1 g2 g2]`, `[2 1 2]`},
	}
	setup := `g1: generator [yield 1 yield 2] g2: generator [yield 1 yield 2] g1`
	test_helper.RunTest(t, setup, tests, test_helper.TestValues)
}
func TestYielderArgs(t *testing.T) {
	tests := []test_helper.TestItem{
		{`y 1`, `1`},
		{`y 1 y 2`, `2`},
		{`y 1 y 2 y 3`, `30`},
		{`y 1 y 2 y 3 null? y 0`, `true`},
	}
	test_helper.RunTest(t, `y: yielder [x] [yield x yield x yield x * 10]`, tests, test_helper.TestValues)
}
func TestYielderTwoParams(t *testing.T) {
	tests := []test_helper.TestItem{
		{`p 10 4`, `14`},
		{`p 10 4 p 1 2`, `-1`},
	}
	test_helper.RunTest(t, `p: yielder [a b] [yield a + b yield a - b]`, tests, test_helper.TestValues)
}

// What a resumed yield hands back to the suspended code is the value it
// yielded, not anything about the call that woke it up.
func TestYieldReturnValue(t *testing.T) {
	tests := []test_helper.TestItem{
		{`y 1`, `1`},
		{`y 1 y 5`, `6`},
	}
	test_helper.RunTest(t, `y: yielder [x] [acc: yield x yield acc + x]`, tests, test_helper.TestValues)
}
func TestYieldNull(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `1`},
		{`g g`, `2`},
		{`g g null? g`, `true`},
	}
	test_helper.RunTest(t, `g: generator [yield 1 yield null yield 2]`, tests, test_helper.TestValues)
}
func TestYielderReentry(t *testing.T) {
	tests := []test_helper.TestItem{
		{`r`, `#[error! yielder/reentered]`},
		{`r r`, `2`},
		{`r r null? r`, `true`},
	}
	test_helper.RunTest(t, `r: yielder [] [yield trap [r] yield 2]`, tests, test_helper.TestValues)
}
func TestYielderReentryPoisons(t *testing.T) {
	tests := []test_helper.TestItem{
		{`r`, `error: yielder/reentered`},
		{`trap [r] r`, `error: yielder/errored`},
	}
	test_helper.RunTest(t, `r: yielder [] [r]`, tests, test_helper.TestValues)
}
func TestYielderErrorIsFinal(t *testing.T) {
	tests := []test_helper.TestItem{
		{`b`, `1`},
		{`b b`, `error: user/error`},
		{`b trap [b] b`, `error: yielder/errored`},
	}
	test_helper.RunTest(t, `b: yielder [] [yield 1 fail "bad" yield 2]`, tests, test_helper.TestValues)
}
func TestThrowThroughYielder(t *testing.T) {
	tests := []test_helper.TestItem{
		{`t`, `1`},
		{`catch [t t]`, `7`},
		{`catch [t t] null? t`, `true`},
	}
	test_helper.RunTest(t, `t: yielder [] [yield 1 throw 7 yield 2]`, tests, test_helper.TestValues)
}
func TestReturnInYielder(t *testing.T) {
	tests := []test_helper.TestItem{
		{`t`, `1`},
		{`t t`, `99`},
		{`t t null? t`, `true`},
	}
	test_helper.RunTest(t, `t: yielder [] [yield 1 return 99 yield 2]`, tests, test_helper.TestValues)
}
func TestSuspendedSurvivesRecycle(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g recycle recycle g`, `100`},
	}
	test_helper.RunTest(t, `g: generator [x: 100 yield 1 yield x]`, tests, test_helper.TestValues)
}
func TestNestedSuspension(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `7`},
		{`g recycle g`, `8`},
	}
	test_helper.RunTest(t, `g: generator [do [do [yield 7 yield 8]]]`, tests, test_helper.TestValues)
}

// A yield in mid-reduce carries the partial results away in the plug and
// puts them back on resume.
func TestYieldAcrossReduce(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `10`},
		{`g g`, `[1 10 3]`},
		{`g recycle g`, `[1 10 3]`},
		{`g g g null? g`, `true`},
	}
	test_helper.RunTest(t, `g: generator [yield reduce [1 yield 10 3]]`, tests, test_helper.TestValues)
}
func TestChains(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `10`},
		{`reduce [g g]`, `[10 20]`},
		{`reduce [g g] null? g`, `true`},
	}
	test_helper.RunTest(t, `g: generator [yield 1 yield 2] chain :g [it * 10]`, tests, test_helper.TestValues)
}
func TestChainsStack(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `30`},
	}
	test_helper.RunTest(t, `g: generator [yield 2] chain :g [it + 1] chain :g [it * 10]`, tests, test_helper.TestValues)
}
func TestChainErrorPoisons(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `error: math/zero-divide`},
		{`trap [g] g`, `error: yielder/errored`},
	}
	test_helper.RunTest(t, `g: generator [yield 1 yield 2] chain :g [it / 0]`, tests, test_helper.TestValues)
}
func TestChainCannotYield(t *testing.T) {
	tests := []test_helper.TestItem{
		{`g`, `error: yield/no-binding`},
	}
	test_helper.RunTest(t, `g: generator [yield 1] chain :g [yield it]`, tests, test_helper.TestValues)
}
func TestChainWantsAYielder(t *testing.T) {
	tests := []test_helper.TestItem{
		{`chain 5 [it]`, `error: eval/wrong-type`},
		{`chain :do [it]`, `error: eval/wrong-type`},
		{`f: func [] [1] chain :f [it]`, `error: eval/wrong-type`},
		{`y: generator [yield 1] equal? :y chain :y [it]`, `true`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestYieldNeedsItsYielder(t *testing.T) {
	tests := []test_helper.TestItem{
		{`yield 5`, `error: yield/no-binding`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}

// A yield action smuggled out of its body still knows its owner: it can
// tell whether the owner is merely not running or is done for good.
func TestEscapedYield(t *testing.T) {
	tests := []test_helper.TestItem{
		{`keep 5`, `error: yield/no-binding`},
		{`g keep 5`, `error: yield/completed`},
	}
	test_helper.RunTest(t, `g: generator [keep: :yield yield 1] g`, tests, test_helper.TestValues)
}
