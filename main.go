package main

import (
	"fmt"
	"os"

	"github.com/skiff-lang/Skiff/source/repl"
	"github.com/skiff-lang/Skiff/source/sk"
	"github.com/skiff-lang/Skiff/source/text"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-v", "--version":
			fmt.Println("Skiff version " + text.VERSION)
		case "-h", "--help":
			fmt.Print(text.HELP)
		default:
			runScript(os.Args[1])
		}
		return
	}
	fmt.Print(text.Logo())
	repl.Start(sk.NewService())
}

func runScript(scriptFilepath string) {
	sv := sk.NewService()
	result, e := sv.DoFile(scriptFilepath)
	if e != nil {
		fmt.Println(text.Red(e.Error()))
		os.Exit(1)
	}
	if sk.IsError(result) {
		fmt.Println(text.Red(sk.DescribeError(result)))
		os.Exit(2)
	}
}
