// The err package turns error identifiers into error contexts. An error in
// Skiff is an ordinary context with id, message, near, where and args fields,
// so user code can pick it apart; this package is where the wording lives.
//
// An error context gets used two ways. Wrapped as a RAISED antiform it is a
// definitional error, traveling outward through the trampoline until a trap
// takes it or a step boundary escalates it. Wrapped as a plain ERROR value
// it is just data, which is what trap hands you.
package err

import (
	"fmt"

	"github.com/skiff-lang/Skiff/source/text"
	"github.com/skiff-lang/Skiff/source/values"
)

// ErrorCreator contains the planned wording of an error: the Message is what
// the REPL blurts out at you, the Explanation is what you get if you then
// type 'explain'.
type ErrorCreator struct {
	Message     func(args ...any) string
	Explanation func(args ...any) string
}

// New builds an ERROR context. The id must exist in the ErrorCreatorMap;
// asking for one that doesn't is a bug in the caller, not a user error, and
// panics accordingly.
func New(h *values.Heap, id string, near string, where string, args ...any) values.Value {
	creator, ok := ErrorCreatorMap[id]
	if !ok {
		panic("tried to create error " + id + ", which doesn't exist")
	}
	c := h.NewContext(values.ERROR)
	h.AppendVar(c, "id", 0, values.Value{T: values.TEXT, V: id})
	h.AppendVar(c, "message", 0, values.Value{T: values.TEXT, V: creator.Message(args...)})
	h.AppendVar(c, "near", 0, values.Value{T: values.TEXT, V: near})
	h.AppendVar(c, "where", 0, values.Value{T: values.TEXT, V: where})
	argCells := make([]values.Value, 0, len(args))
	for _, a := range args {
		argCells = append(argCells, values.Value{T: values.TEXT, V: fmt.Sprint(a)})
	}
	h.AppendVar(c, "args", 0, h.NewBlock(argCells...))
	return values.Value{T: values.ERROR, V: c}
}

// Raise is New with the result already demoted to a RAISED antiform.
func Raise(h *values.Heap, id string, near string, where string, args ...any) values.Value {
	return Demote(New(h, id, near, where, args...))
}

// Promote turns a raised error into a plain, inert error value.
func Promote(v values.Value) values.Value {
	return values.Value{T: values.ERROR, V: v.V}
}

// Demote turns an error value back into a raised one.
func Demote(v values.Value) values.Value {
	return values.Value{T: values.RAISED, V: v.V}
}

// Field fetches a text field out of an error context, returning "" rather
// than complaining if it isn't there.
func Field(v values.Value, name string) string {
	c, ok := v.V.(*values.VarList)
	if !ok || c.IsInaccessible() {
		return ""
	}
	f, ok := c.Fetch(name)
	if !ok || f.T != values.TEXT {
		return ""
	}
	return f.V.(string)
}

func ID(v values.Value) string {
	return Field(v, "id")
}

// Describe renders an error context the way the REPL reports it.
func Describe(v values.Value) string {
	s := "** Error: " + Field(v, "message")
	if w := Field(v, "where"); w != "" {
		s = s + "\n** Where: " + w
	}
	if n := Field(v, "near"); n != "" {
		s = s + "\n** Near: " + n
	}
	return s
}

// Explain renders the long-form explanation of an error, for the REPL's
// 'explain' command.
func Explain(v values.Value) string {
	id := ID(v)
	creator, ok := ErrorCreatorMap[id]
	if !ok || creator.Explanation == nil {
		return "There is no more to say about this error than the message already says."
	}
	args := []any{}
	c := v.V.(*values.VarList)
	if blk, ok := c.Fetch("args"); ok && blk.T == values.BLOCK {
		ser := blk.V.(values.Series)
		for i := ser.Index; i < ser.Flex.Len(); i++ {
			args = append(args, ser.Flex.At(i).V)
		}
	}
	return creator.Explanation(args...)
}

func emph(a any) string {
	return text.Emph(fmt.Sprint(a))
}

var ErrorCreatorMap = map[string]ErrorCreator{

	// Errors from the evaluator proper.

	"eval/unbound": {
		Message: func(args ...any) string {
			return "the word " + emph(args[0]) + " has no binding"
		},
		Explanation: func(args ...any) string {
			return "Before a word can be evaluated it has to be attached to some context that " +
				"gives it a value. This one never was: it isn't a variable of any object or frame " +
				"in sight, and it isn't the name of anything built in."
		},
	},

	"eval/unset": {
		Message: func(args ...any) string {
			return "the variable " + emph(args[0]) + " is unset"
		},
		Explanation: func(args ...any) string {
			return "The word is bound to a variable slot, but nothing has ever been put in the " +
				"slot. Typically this means you've referred to a function argument before the " +
				"call got around to filling it in, or to a variable declared but not initialized."
		},
	},

	"eval/need-arg": {
		Message: func(args ...any) string {
			return emph(args[0]) + " is missing its " + emph(args[1]) + " argument"
		},
		Explanation: func(args ...any) string {
			return "The block or group being evaluated came to an end while the action named was " +
				"still gathering its arguments, so there is nothing left to evaluate for the " +
				"parameter named."
		},
	},

	"eval/arg-void": {
		Message: func(args ...any) string {
			return emph(args[0]) + " can't take void as its " + emph(args[1]) + " argument"
		},
		Explanation: func(args ...any) string {
			return "The expression supplying this argument evaluated to void, i.e. to nothing at " +
				"all, and an ordinary parameter refuses that. Only a parameter declared with a " +
				"caret, which receives its argument in lifted form, can see a void."
		},
	},

	"eval/bad-conditional": {
		Message: func(args ...any) string {
			return "a value of type " + emph(args[0]) + " can't be used as a condition"
		},
		Explanation: func(args ...any) string {
			return "Conditions have to be able to say yes or no. Most values count as yes, and " +
				"false, null and blank count as no, but the value given has no answer either way."
		},
	},

	"eval/wrong-type": {
		Message: func(args ...any) string {
			return "expected " + emph(args[0]) + ", got " + emph(args[1])
		},
	},

	"eval/no-left-arg": {
		Message: func(args ...any) string {
			return emph(args[0]) + " has nothing to its left to operate on"
		},
		Explanation: func(args ...any) string {
			return "The operator named takes its first argument from the expression on its left, " +
				"and it is sitting at the start of a block or group where there is no such thing."
		},
	},

	// Arithmetic.

	"math/bad-arg": {
		Message: func(args ...any) string {
			return emph(args[0]) + " can't operate on a value of type " + emph(args[1])
		},
	},

	"math/zero-divide": {
		Message: func(args ...any) string {
			return "attempt to divide by zero"
		},
		Explanation: func(args ...any) string {
			return "It is traditional at this point to explain why division by zero is undefined, " +
				"but you probably know, and the short version is that the division was not performed."
		},
	},

	// Errors about series and their storage.

	"series/frozen": {
		Message: func(args ...any) string {
			return "attempt to modify a frozen series"
		},
		Explanation: func(args ...any) string {
			return "The series was frozen, which makes it permanently immutable. There is no way " +
				"to thaw it; if you need a changed version, copy it and change the copy."
		},
	},

	"series/freed": {
		Message: func(args ...any) string {
			return "attempt to use a freed series"
		},
		Explanation: func(args ...any) string {
			return "The storage behind the series was explicitly freed, so the data is gone. " +
				"References to it remain valid to hold, but not to read or write through."
		},
	},

	"series/antiform": {
		Message: func(args ...any) string {
			return "a " + emph(args[0]) + " antiform can't be put in a block"
		},
		Explanation: func(args ...any) string {
			return "Antiforms are states that only exist in evaluation, like null and void, and " +
				"blocks may only contain things that have a source form. If you genuinely need to " +
				"store one, lift it first; the lifted form is an ordinary value."
		},
	},

	"map/bad-key": {
		Message: func(args ...any) string {
			return "a value of type " + emph(args[0]) + " can't be a map key"
		},
		Explanation: func(args ...any) string {
			return "Map keys are restricted to values that compare by content: the scalars, text " +
				"and words. Blocks, objects and the like compare by identity and would make the " +
				"map's behavior depend on which copy of a key you happened to hold."
		},
	},

	"map/odd": {
		Message: func(args ...any) string {
			return "a map literal needs an even number of elements, not " + emph(args[0])
		},
	},

	// Errors about non-local flow.

	"flow/no-catch": {
		Message: func(args ...any) string {
			return "a throw of " + emph(args[0]) + " was never caught"
		},
		Explanation: func(args ...any) string {
			return "Something threw a value up the stack and nothing between it and the top was " +
				"prepared to catch it. For a break this means there was no enclosing loop; for a " +
				"return, no enclosing function frame; for a plain throw, no catch."
		},
	},

	// Errors about yielders and generators.

	"yield/no-binding": {
		Message: func(args ...any) string {
			return "yield used outside of any yielder"
		},
		Explanation: func(args ...any) string {
			return "The yield word is only meaningful inside the body of a yielder or generator, " +
				"where it is bound to the particular instance being run. This one has no such " +
				"binding, so there is nowhere for the yielded value to go."
		},
	},

	"yield/completed": {
		Message: func(args ...any) string {
			return "yield into a yielder that has already finished"
		},
		Explanation: func(args ...any) string {
			return "The yielder this yield belongs to already ran to completion or failed, and a " +
				"finished yielder can never be resumed. A yield could still be attempted after " +
				"that if the body smuggled its yield out to other code; that is what happened here."
		},
	},

	"yielder/reentered": {
		Message: func(args ...any) string {
			return "a yielder was called while it was already running"
		},
		Explanation: func(args ...any) string {
			return "Somewhere in the body of the yielder, something called that same yielder " +
				"again before the first call had yielded or returned. A yielder has only one " +
				"suspended stack, so it can't be in two places at once."
		},
	},

	"yielder/errored": {
		Message: func(args ...any) string {
			return "a previous call into this yielder failed with the error " + emph(args[0])
		},
		Explanation: func(args ...any) string {
			return "An error got raised inside the yielder's body on an earlier call and was not " +
				"handled there, which poisons the yielder: its internal state can't be trusted to " +
				"resume. Any later call reports this instead of running."
		},
	},

	// Errors from the loader.

	"load/unterminated-text": {
		Message: func(args ...any) string {
			return "text starting at line " + emph(args[0]) + " is never closed"
		},
	},

	"load/mismatched": {
		Message: func(args ...any) string {
			return emph(args[0]) + " at line " + emph(args[1]) + " is closed by " + emph(args[2])
		},
	},

	"load/extra-close": {
		Message: func(args ...any) string {
			return "unexpected " + emph(args[0]) + " at line " + emph(args[1])
		},
	},

	"load/bad-number": {
		Message: func(args ...any) string {
			return emph(args[0]) + " at line " + emph(args[1]) + " looks like a number but isn't one"
		},
	},

	"load/bad-char": {
		Message: func(args ...any) string {
			return "the character " + emph(args[0]) + " at line " + emph(args[1]) + " can't begin anything"
		},
	},

	"load/bad-escape": {
		Message: func(args ...any) string {
			return "unrecognized escape " + emph(args[0]) + " at line " + emph(args[1])
		},
		Explanation: func(args ...any) string {
			return "Inside text, the caret begins an escape sequence and must be followed by one " +
				"of a small set of characters: a slash for newline, a hyphen for tab, a doubled " +
				"caret or a quote for those characters themselves, or a bracketed hex codepoint."
		},
	},

	// Errors from the SQL interface.

	"sql/unknown-driver": {
		Message: func(args ...any) string {
			return emph(args[0]) + " is not the name of a database driver we support"
		},
	},

	"sql/open": {
		Message: func(args ...any) string {
			return "the database connection failed, saying: " + fmt.Sprint(args[0])
		},
	},

	"sql/closed": {
		Message: func(args ...any) string {
			return "the database connection has been closed"
		},
	},

	"sql/bad-dsn": {
		Message: func(args ...any) string {
			return "expected a connection string or a block of " +
				emph("[host port database user password]")
		},
	},

	"sql/bad-handle": {
		Message: func(args ...any) string {
			return "expected a database connection, got " + emph(args[0])
		},
	},

	"sql/exec": {
		Message: func(args ...any) string {
			return "the database refused the statement, saying: " + fmt.Sprint(args[0])
		},
	},

	"sql/query": {
		Message: func(args ...any) string {
			return "the query failed, saying: " + fmt.Sprint(args[0])
		},
	},

	"crypt/hash": {
		Message: func(args ...any) string {
			return "hashing failed, saying: " + fmt.Sprint(args[0])
		},
	},

	// The error the fail native makes out of whatever you hand it.

	"user/error": {
		Message: func(args ...any) string {
			return fmt.Sprint(args[0])
		},
	},
}
