package vm

import (
	"io"
	"os"
	"strings"

	"github.com/skiff-lang/Skiff/source/values"

	"github.com/lmorg/readline"
)

// The handlers decide what ask and print actually do, so an embedder can
// reroute them. The default pair talks to the terminal.

type InHandler interface {
	Get(prompt string) string
}

type OutHandler interface {
	Out(v values.Value)
	Write(s string)
}

func MakeStandardInHandler() InHandler {
	return &standardInHandler{}
}

type standardInHandler struct{}

func (iH *standardInHandler) Get(prompt string) string {
	rline := readline.NewInstance()
	rline.SetPrompt(prompt)
	line, _ := rline.Readline()
	return line
}

func MakeStandardOutHandler() OutHandler {
	return &simpleOutHandler{out: os.Stdout}
}

func MakeSimpleOutHandler(out io.Writer) OutHandler {
	return &simpleOutHandler{out: out}
}

type simpleOutHandler struct {
	out io.Writer
}

func (oH *simpleOutHandler) Out(v values.Value) {
	oH.out.Write([]byte(values.Form(v) + "\n"))
}

func (oH *simpleOutHandler) Write(s string) {
	oH.out.Write([]byte(s))
}

// A CapturingOutHandler remembers everything printed, for the tests.
type CapturingOutHandler struct {
	data strings.Builder
}

func MakeCapturingOutHandler() *CapturingOutHandler {
	return &CapturingOutHandler{}
}

func (oH *CapturingOutHandler) Out(v values.Value) {
	oH.data.WriteString(values.Form(v))
	oH.data.WriteString("\n")
}

func (oH *CapturingOutHandler) Write(s string) {
	oH.data.WriteString(s)
}

// Dump returns everything written since the last call and clears the store.
func (oH *CapturingOutHandler) Dump() string {
	s := oH.data.String()
	oH.data.Reset()
	return s
}
