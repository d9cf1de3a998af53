package vm_test

import (
	"testing"

	"github.com/skiff-lang/Skiff/source/test_helper"
)

func TestLiterals(t *testing.T) {
	tests := []test_helper.TestItem{
		{`42`, `42`},
		{`-17`, `-17`},
		{`2.5`, `2.5`},
		{`42.0`, `42.0`},
		{`"foo"`, `"foo"`},
		{`true`, `true`},
		{`false`, `false`},
		{`null`, `~null~`},
		{`_`, `_`},
		{`'foo`, `foo`},
		{`[1 2 3]`, `[1 2 3]`},
		{`[1 [2] "three"]`, `[1 [2] "three"]`},
		{`(1 + 2)`, `3`},
		{``, `~void~`},
		{`; a comment and nothing else`, `~void~`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestArithmetic(t *testing.T) {
	tests := []test_helper.TestItem{
		{`1 + 2`, `3`},
		{`2 + 3 * 4`, `20`},
		{`10 - 3 - 4`, `3`},
		{`1 + 2.5`, `3.5`},
		{`2.0 * 3`, `6.0`},
		{`7 / 2`, `3.5`},
		{`6 / 3`, `2`},
		{`6 / 4`, `1.5`},
		{`1 / 0`, `error: math/zero-divide`},
		{`1.5 / 0`, `error: math/zero-divide`},
		{`"foo" + "bar"`, `"foobar"`},
		{`1 + "x"`, `error: math/bad-arg`},
		{`_ + 1`, `error: math/bad-arg`},
		{`+ 1`, `error: eval/no-left-arg`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestComparison(t *testing.T) {
	tests := []test_helper.TestItem{
		{`3 < 5`, `true`},
		{`5 < 3`, `false`},
		{`3 <= 3`, `true`},
		{`4 > 1`, `true`},
		{`4 >= 5`, `false`},
		{`2.5 < 3`, `true`},
		{`"apple" < "banana"`, `true`},
		{`5 = 5`, `true`},
		{`5 = 6`, `false`},
		{`5 <> 6`, `true`},
		{`1 = 1.0`, `true`},
		{`1 + 2 = 3`, `true`},
		{`"a" = "a"`, `true`},
		{`[1 2] = [1 2]`, `true`},
		{`[1 2] = [1 3]`, `false`},
		{`true < 5`, `error: math/bad-arg`},
		{`equal? 1 1.0`, `true`},
		{`equal? "a" "b"`, `false`},
		{`not true`, `false`},
		{`not null`, `true`},
		{`not 0`, `false`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestWords(t *testing.T) {
	tests := []test_helper.TestItem{
		{`x: 5`, `5`},
		{`x: 5 x`, `5`},
		{`x: 5 y: x + 1 y`, `6`},
		{`x: 10 x: x + 1 x`, `11`},
		{`x: 5 :x`, `5`},
		{`x: 5 ^x`, `'5`},
		{`x: 5 -3 x`, `5`},
		{`x: (2 * 4)`, `8`},
		{`nonesuch`, `error: eval/unbound`},
		{`^nonesuch`, `error: eval/unbound`},
		{`x:`, `error: eval/need-arg`},
		{`x: void`, `error: eval/arg-void`},
		{`quote foo`, `foo`},
		{`set 'foo 9 foo`, `9`},
		{`x: 3 get 'x`, `3`},
		{`set 5 1`, `error: eval/wrong-type`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestConditionals(t *testing.T) {
	tests := []test_helper.TestItem{
		{`if true [1]`, `1`},
		{`if false [1]`, `~null~`},
		{`if 0 [1]`, `1`},
		{`if null [1]`, `~null~`},
		{`if "" [1]`, `1`},
		{`if _ [1]`, `~null~`},
		{`if true []`, `~void~`},
		{`if void [1]`, `error: eval/arg-void`},
		{`either true [1] [2]`, `1`},
		{`either false [1] [2]`, `2`},
		{`either 1 < 2 ["yes"] ["no"]`, `"yes"`},
		{`do [1 + 2]`, `3`},
		{`do "3 * 4"`, `12`},
		{`x: 1 do [x: x + 1] x`, `2`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestLoops(t *testing.T) {
	tests := []test_helper.TestItem{
		{`repeat 3 [7]`, `7`},
		{`repeat 0 [7]`, `~null~`},
		{`n: 0 repeat 5 [n: n + 1] n`, `5`},
		{`n: 1 repeat 4 [n: n * 2]`, `16`},
		{`repeat "x" [1]`, `error: eval/wrong-type`},
		{`while [false] [1]`, `~null~`},
		{`n: 0 while [n < 3] [n: n + 1]`, `3`},
		{`while [true] [break]`, `~null~`},
		{`n: 0 while [n < 100] [n: n + 1 if n = 7 [break]] n`, `7`},
		{`acc: 0 for-each x [1 2 3 4] [acc: acc + x] acc`, `10`},
		{`for-each x [1 2 3] [x * 2]`, `6`},
		{`for-each x [] [x]`, `~null~`},
		{`for-each c "ab" [c]`, `"b"`},
		{`for-each x [1 2 3] [if x = 2 [break]]`, `~null~`},
		{`b: [1 2 3] for-each x b [append b 9] length-of b`, `6`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestCatchAndThrow(t *testing.T) {
	tests := []test_helper.TestItem{
		{`catch [throw 42]`, `42`},
		{`catch [1 2 3]`, `~null~`},
		{`catch [repeat 9 [throw 7]]`, `7`},
		{`catch [throw 1 + 2]`, `3`},
		{`catch [throw catch [throw 5]]`, `5`},
		{`x: 0 catch [x: 1 throw 0 x: 2] x`, `1`},
		{`throw 3`, `error: flow/no-catch`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestFunctions(t *testing.T) {
	tests := []test_helper.TestItem{
		{`f: func [x] [x + 1] f 2`, `3`},
		{`add2: func [a b] [a + b] add2 3 4`, `7`},
		{`f: func [] [42] f`, `42`},
		{`f: func [x] [x * x] f f 2`, `16`},
		{`f: func [x] [x] f 2 + 3`, `5`},
		{`f: func [a] [b: a * 2 b + 1] f 3`, `7`},
		{`f: func [x] [return x * 2 99] f 5`, `10`},
		{`f: func [x] [if x > 0 [return "pos"] "other"] f 3`, `"pos"`},
		{`f: func [x] [if x > 0 [return "pos"] "other"] f 0`, `"other"`},
		{`f: func ['w] [w] f hello`, `hello`},
		{`x: 100 f: func [x] [x + 1] f 1`, `2`},
		{`x: 100 f: func [x] [x: x + 1 x] f 1 x`, `100`},
		{`f: func [x] [x + 1] g: :f g 4`, `5`},
		{`f: func [x] [x] f`, `error: eval/need-arg`},
		{`return 5`, `error: flow/no-catch`},
		{`f: func [1] [2]`, `error: eval/wrong-type`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestRecursion(t *testing.T) {
	tests := []test_helper.TestItem{
		{`fact: func [n] [either n < 2 [1] [n * fact n - 1]] fact 10`, `3628800`},
		{`fib: func [n] [either n < 2 [n] [(fib n - 1) + (fib n - 2)]] fib 15`, `610`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}

// The stack is flat: recursion this deep would kill a real call stack, and
// the collector gets forced around mid-descent by the allocation stride.
func TestDeepRecursion(t *testing.T) {
	tests := []test_helper.TestItem{
		{`count: func [n] [either n = 0 [0] [1 + count n - 1]] count 5000`, `5000`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestAntiforms(t *testing.T) {
	tests := []test_helper.TestItem{
		{`null? null`, `true`},
		{`null? 5`, `false`},
		{`null? if false [1]`, `true`},
		{`void? void`, `true`},
		{`void? null`, `false`},
		{`void? if true []`, `true`},
		{`null? void`, `false`},
		{`x: null null? x`, `true`},
		{`x: if false [1] null? x`, `true`},
		{`error? trap [fail "boo"]`, `true`},
		{`error? 5`, `false`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestPacks(t *testing.T) {
	tests := []test_helper.TestItem{
		{`x: pack [5 6] x`, `5`},
		{`x: pack [null 7] x`, `~null~`},
		{`mold pack [1 2]`, `"~[1 2]~"`},
		{`if pack [1] [2]`, `2`},
		{`x: pack [] x`, `error: eval/arg-void`},
		{`pack [1 / 0]`, `error: math/zero-divide`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestErrors(t *testing.T) {
	tests := []test_helper.TestItem{
		{`fail "boom"`, `error: user/error`},
		{`fail 42`, `error: eval/wrong-type`},
		{`1 / 0 "unreached"`, `error: math/zero-divide`},
		{`trap [fail "boom"]`, `#[error! user/error]`},
		{`trap [1 / 0]`, `#[error! math/zero-divide]`},
		{`trap [42]`, `42`},
		{`trap []`, `~void~`},
		{`trap [trap [fail "inner"]]`, `#[error! user/error]`},
		{`e: trap [fail "boom"] fail e`, `error: user/error`},
		{`e: trap [1 / 0] select e 'id`, `"math/zero-divide"`},
		{`f: func [] [fail "in f"] trap [f]`, `#[error! user/error]`},
		{`catch [trap [throw 9]]`, `9`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestReduce(t *testing.T) {
	tests := []test_helper.TestItem{
		{`reduce [1 + 1 2 * 3]`, `[2 6]`},
		{`reduce []`, `[]`},
		{`reduce [1 2 3]`, `[1 2 3]`},
		{`x: 5 reduce [x x + 1]`, `[5 6]`},
		{`reduce [1 void 2]`, `[1 2]`},
		{`reduce [null]`, `error: series/antiform`},
		{`reduce [1 1 / 0 2]`, `error: math/zero-divide`},
		{`reduce [reduce [1] reduce [2]]`, `[[1] [2]]`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestSeries(t *testing.T) {
	tests := []test_helper.TestItem{
		{`length-of [1 2 3]`, `3`},
		{`length-of []`, `0`},
		{`length-of "héllo"`, `5`},
		{`first [7 8]`, `7`},
		{`last [7 8]`, `8`},
		{`first []`, `~null~`},
		{`last []`, `~null~`},
		{`first "abc"`, `"a"`},
		{`pick [1 2 3] 2`, `2`},
		{`pick [1 2 3] 0`, `~null~`},
		{`pick [1 2 3] 9`, `~null~`},
		{`pick "abc" 2`, `"b"`},
		{`append [1 2] 3`, `[1 2 3]`},
		{`b: [1 2] append b 3 b`, `[1 2 3]`},
		{`b: [1 2] append b [3 4] b`, `[1 2 [3 4]]`},
		{`append [1 2] null`, `error: series/antiform`},
		{`append "ab" "cd"`, `error: eval/wrong-type`},
		{`b: [1 2 3] s: skip b 1 first s`, `2`},
		{`b: [1 2 3] s: skip b 1 append b 9 s`, `[2 3 9]`},
		{`length-of skip [1 2 3 4] 3`, `1`},
		{`first skip [1 2 3] 5`, `~null~`},
		{`b: [1 2] c: copy b append b 9 c`, `[1 2]`},
		{`b: [1 2] c: copy b append c 9 b`, `[1 2]`},
		{`copy "abc"`, `"abc"`},
		{`select [a 1 b 2] 'b`, `2`},
		{`select [a 1 b 2] 'z`, `~null~`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestFreezeAndFree(t *testing.T) {
	tests := []test_helper.TestItem{
		{`freeze [1 2]`, `[1 2]`},
		{`b: [1 2] freeze b first b`, `1`},
		{`b: [1 2] freeze b append b 3`, `error: series/frozen`},
		{`b: [1 2] free b`, `~void~`},
		{`b: [1 2] free b first b`, `error: series/freed`},
		{`b: [1 2] free b b`, `[<freed>]`},
		{`b: [1 2] free b do b`, `error: series/freed`},
		{`b: [1 2] freeze b free b`, `error: series/frozen`},
		{`free 5`, `error: eval/wrong-type`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestObjects(t *testing.T) {
	tests := []test_helper.TestItem{
		{`o: object [a: 1 b: 2] select o 'a`, `1`},
		{`o: object [a: 1 b: a + 1] select o 'b`, `2`},
		{`o: object [a: 1] select o 'zz`, `~null~`},
		{`o: object [a: 1 a: a + 1] select o 'a`, `2`},
		{`length-of object [a: 1 b: 2]`, `2`},
		{`object [a: 1 b: 2]`, `object [a: 1 b: 2]`},
		{`o: object [a: 1] equal? o o`, `true`},
		{`equal? object [a: 1] object [a: 1]`, `false`},
		{`o: object [a: 1 / 0]`, `error: math/zero-divide`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestMaps(t *testing.T) {
	tests := []test_helper.TestItem{
		{`m: map ["a" 1 "b" 2] select m "a"`, `1`},
		{`m: map ["a" 1] select m "zz"`, `~null~`},
		{`length-of map ["a" 1 "b" 2]`, `2`},
		{`m: map [1 "one"] select m 1`, `"one"`},
		{`map ["a" 1]`, `map ["a" 1]`},
		{`m: map ["a" 1] put m "b" 2 length-of m`, `2`},
		{`m: map ["a" 1] put m "a" 99 select m "a"`, `99`},
		{`m: map ["a" 1] put m "a" null length-of m`, `0`},
		{`m: map ["a" 1] c: copy m put m "b" 2 length-of c`, `1`},
		{`map ["a"]`, `error: map/odd`},
		{`map [[1] 2]`, `error: map/bad-key`},
		{`put 5 1 2`, `error: eval/wrong-type`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestMoldAndForm(t *testing.T) {
	tests := []test_helper.TestItem{
		{`mold 5`, `"5"`},
		{`mold "foo"`, `"\"foo\""`},
		{`mold [1 "a"]`, `"[1 \"a\"]"`},
		{`mold null`, `"~null~"`},
		{`mold 'x`, `"x"`},
		{`form "foo"`, `"foo"`},
		{`form 5`, `"5"`},
		{`form [1 "a" [2]]`, `"1 a 2"`},
		{`1 + probe 2`, `3`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
func TestPrinting(t *testing.T) {
	tests := []test_helper.TestItem{
		{`print "hello"`, "hello\n"},
		{`print 42`, "42\n"},
		{`print [1 2 3]`, "1 2 3\n"},
		{`repeat 3 [print "x"]`, "x\nx\nx\n"},
		{`probe [1 2]`, "[1 2]\n"},
		{`print "a" print "b"`, "a\nb\n"},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestOutput)
}
func TestRecycling(t *testing.T) {
	tests := []test_helper.TestItem{
		{`recycle recycle 42`, `42`},
		{`b: [1 2 3] repeat 100 [copy b] recycle first b`, `1`},
		{`x: "keep" repeat 50 [copy [1 2 3]] recycle x`, `"keep"`},
		{`o: object [a: 7] recycle select o 'a`, `7`},
		{`m: map ["k" 5] recycle recycle select m "k"`, `5`},
		{`f: func [x] [x + 1] recycle f 1`, `2`},
	}
	test_helper.RunTest(t, "", tests, test_helper.TestValues)
}
