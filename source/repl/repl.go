package repl

import (
	"fmt"
	"strings"

	"github.com/skiff-lang/Skiff/source/sk"
	"github.com/skiff-lang/Skiff/source/text"

	"github.com/lmorg/readline"
)

// Start runs a REPL over the given service until the user quits. A few
// words are claimed by the REPL itself before the evaluator sees them,
// `quit` and `help` and suchlike; everything else goes to the service.
func Start(sv *sk.Service) {
	rline := readline.NewInstance()
	var lastError sk.Value
	for {
		rline.SetPrompt(text.PROMPT)
		line, e := rline.Readline()
		if e != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "quit":
			return
		case "help":
			fmt.Print(text.HELP)
			continue
		case "version":
			fmt.Println("Skiff version " + text.VERSION)
			continue
		case "explain":
			if !sk.IsError(lastError) {
				fmt.Println("There is no error to explain.")
			} else {
				fmt.Print(text.Pretty(sk.ExplainError(lastError), 2, 78))
			}
			continue
		}
		result, e := sv.Do(line)
		if e != nil {
			fmt.Println(text.Red(e.Error()))
			continue
		}
		if sk.IsError(result) {
			lastError = result
			fmt.Println(text.Red(sk.DescribeError(result)))
			continue
		}
		if result.T != sk.VOID {
			fmt.Println("== " + sk.Literal(result))
		}
	}
}
