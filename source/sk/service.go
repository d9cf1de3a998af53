// The public face of Skiff, for people who want to embed it in their Go.
package sk

import (
	"errors"
	"os"

	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/lexer"
	"github.com/skiff-lang/Skiff/source/values"
	"github.com/skiff-lang/Skiff/source/vm"
)

// A Service is one Skiff interpreter: a heap, an evaluator, a global
// context, and the handlers joining it to the world outside.
type Service struct {
	heap *values.Heap
	vm   *vm.Vm
}

// Returns a new service, with the natives installed and ready to go.
func NewService() *Service {
	h := values.NewHeap()
	return &Service{heap: h, vm: vm.NewVm(h)}
}

// A struct representing a Skiff value, consisting of a field `T`, a `Type`,
// and `V`, the payload, of type `any`.
type Value = values.Value

// The type of a Skiff value.
type Type = values.ValueType

// An interface with one method, `Get(prompt string) string`, which supplies
// a line of input when the Skiff code calls `ask`.
type InHandler = vm.InHandler

// An interface with two methods: `Out(v Value)`, which takes the value
// supplied when the Skiff code calls `print` and does something with it;
// and `Write(s string)`, which lets the service put a plain string in the
// same place.
type OutHandler = vm.OutHandler

// An OutHandler which remembers everything written to it, for tests and
// for anyone else who wants the output as a string.
type CapturingOutHandler = vm.CapturingOutHandler

// Constants representing Skiff types, for embedders who want to pick a
// result apart.
const (
	BLANK   Type = values.BLANK
	LOGIC   Type = values.LOGIC
	INTEGER Type = values.INTEGER
	DECIMAL Type = values.DECIMAL
	TEXT    Type = values.TEXT
	WORD    Type = values.WORD
	BLOCK   Type = values.BLOCK
	GROUP   Type = values.GROUP
	OBJECT  Type = values.OBJECT
	MAP     Type = values.MAP
	ACTION  Type = values.ACTION
	ERROR   Type = values.ERROR
	NULL    Type = values.NULL
	VOID    Type = values.VOID
	RAISED  Type = values.RAISED
)

// Interprets the string as though it had been typed into the service's
// REPL, and returns the result. The error is non-nil only when the service
// itself is misused; anything that goes wrong in the Skiff code, from a
// typo to a raised error, comes back in the Value, where `IsError` can
// recognize it.
func (sv *Service) Do(line string) (Value, error) {
	if sv.vm == nil {
		return Value{}, errors.New("service is uninitialized")
	}
	return sv.run("REPL input", line), nil
}

// Reads the file indicated by the filepath and evaluates it as a script.
func (sv *Service) DoFile(scriptFilepath string) (Value, error) {
	if sv.vm == nil {
		return Value{}, errors.New("service is uninitialized")
	}
	sourcecode, e := os.ReadFile(scriptFilepath)
	if e != nil {
		return Value{}, e
	}
	return sv.run(scriptFilepath, string(sourcecode)), nil
}

func (sv *Service) run(source, code string) Value {
	block, problem := lexer.Load(sv.heap, source, code)
	if problem.T != values.NULL {
		return problem
	}
	return sv.vm.EvalBlock(block, source)
}

// Evaluates a block value, running a nested trampoline to completion, and
// returns the result the same way Do does.
func (sv *Service) RunBlock(block Value) (Value, error) {
	if sv.vm == nil {
		return Value{}, errors.New("service is uninitialized")
	}
	if block.T != BLOCK {
		return Value{}, errors.New("RunBlock needs a block")
	}
	return sv.vm.EvalBlock(block, "host block"), nil
}

// Hold pins a value against collection until the matching Release. An
// embedder keeping a Skiff value across evaluations must hold it, since
// anything unreachable from Skiff is swept at the next safe point.
func (sv *Service) Hold(v Value) {
	sv.heap.Guard(v)
}

// Release lets go of the most recently held value. Holds nest.
func (sv *Service) Release() {
	sv.heap.Unguard()
}

// Reports whether a result is an error, raised or otherwise.
func IsError(v Value) bool {
	return v.T == values.RAISED || v.T == values.ERROR
}

// Renders an error result the way the REPL does.
func DescribeError(v Value) string {
	return err.Describe(v)
}

// Supplies the longer explanation of an error, for when the message has
// left the user none the wiser.
func ExplainError(v Value) string {
	return err.Explain(v)
}

// Renders any value as Skiff source.
func Literal(v Value) string {
	return values.Mold(v)
}

// Renders any value for display, which for text means without the quotes.
func String(v Value) string {
	return values.Form(v)
}

// Sets an InHandler, i.e. the thing that decides where `ask` gets its
// answers from.
func (sv *Service) SetInHandler(in InHandler) error {
	if sv.vm == nil {
		return errors.New("service is uninitialized")
	}
	sv.vm.In = in
	return nil
}

// Sets an OutHandler, i.e. the thing that decides what happens to values
// the Skiff code prints.
func (sv *Service) SetOutHandler(out OutHandler) error {
	if sv.vm == nil {
		return errors.New("service is uninitialized")
	}
	sv.vm.Out = out
	return nil
}

// Makes an OutHandler which remembers what was written, and points the
// service at it.
func (sv *Service) CaptureOutput() *CapturingOutHandler {
	capture := vm.MakeCapturingOutHandler()
	sv.vm.Out = capture
	return capture
}

// Gets the value of a global variable given its name.
func (sv *Service) GetVariable(vname string) (Value, error) {
	if sv.vm == nil {
		return Value{}, errors.New("service is uninitialized")
	}
	v, ok := sv.vm.Global.Fetch(vname)
	if !ok {
		return Value{}, errors.New("variable does not exist")
	}
	return v, nil
}

// Sets the value of a global variable given its name, creating it if it
// doesn't exist yet.
func (sv *Service) SetVariable(vname string, v Value) error {
	if sv.vm == nil {
		return errors.New("service is uninitialized")
	}
	if i := sv.vm.Global.Find(vname); i > 0 {
		sv.vm.Global.SetVar(i, v)
		return nil
	}
	sv.heap.AppendVar(sv.vm.Global, vname, 0, v)
	return nil
}

// Outputs a value via the outhandler.
func (sv *Service) Output(v Value) {
	sv.vm.Out.Out(v)
}

// Runs a collection by hand and returns how many heap structures it swept.
func (sv *Service) Recycle() int {
	return sv.heap.Recycle()
}
