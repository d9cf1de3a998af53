package text

// This consists of a bunch of text utilities to help in generating pretty and meaningful
// console output, error messages, etc.

import (
	"strconv"
	"strings"
)

const (
	VERSION        = "0.2.1"
	BULLET         = "  ▪ "
	BULLET_SPACING = "    " // I.e. whitespace the same width as BULLET.
	GOOD_BULLET    = "\033[32m  ▪ \033[0m"
	BROKEN         = "\033[31m  ✖ \033[0m"
	PROMPT         = ">> "
)

const (
	RESET  = "\033[0m"
	RED    = "\033[31m"
	GREEN  = "\033[32m"
	YELLOW = "\033[33m"
	CYAN   = "\033[36m"
)

func Cyan(s string) string {
	return CYAN + s + RESET
}

func Emph(s string) string {
	return "'" + s + "'"
}

func Red(s string) string {
	return RED + s + RESET
}

func Green(s string) string {
	return GREEN + s + RESET
}

func Yellow(s string) string {
	return YELLOW + s + RESET
}

func Logo() string {
	var padding string
	if len(VERSION)%2 == 1 {
		padding = ","
	}
	titleText := " Skiff" + padding + " version " + VERSION + " "
	sail := Cyan("⛵")
	leftMargin := "  "
	bar := strings.Repeat("═", len(titleText)/2)
	logoString := "\n" +
		leftMargin + "╔" + bar + sail + bar + "╗\n" +
		leftMargin + "║" + titleText + "║\n" +
		leftMargin + "╚" + bar + sail + bar + "╝\n\n"
	return logoString
}

const HELP = "\nUsage: skiff [-v | --version] [-h | --help]\n" +
	"             [<file>]\n\n" +
	"With no arguments, skiff starts a REPL. With a filename it loads and\n" +
	"evaluates the file and exits.\n\n" +
	"In the REPL, the words 'quit', 'help', 'version' and 'explain' are\n" +
	"claimed by the REPL itself; 'explain' expands on the last error.\n\n"

// Describes a source location as stashed on a loaded array, i.e. at the granularity
// the loader records it: file and line of the start of the array.
func DescribePos(file string, line int) string {
	prettySource := file
	if prettySource == "" {
		return ""
	}
	if prettySource != "REPL input" {
		prettySource = "'" + prettySource + "'"
	}
	if line > 0 {
		return " at line " + strconv.Itoa(line) + " of " + prettySource
	}
	return " in " + prettySource
}

// For truncating a molded value down to something that can serve as the 'near' field
// of an error without swamping the message it's attached to.
func Near(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 60 {
		runes := []rune(s)
		if len(runes) > 60 {
			return string(runes[:57]) + "..."
		}
	}
	return s
}

func Pretty(s string, lMargin, rMargin int) string {
	lineLength := rMargin - lMargin
	result := ""
	margin := strings.Repeat(" ", lMargin)
	for _, line := range strings.Split(s, "\n") {
		for len([]rune(line)) > lineLength {
			runes := []rune(line)
			cut := lineLength
			for cut > 0 && runes[cut] != ' ' {
				cut--
			}
			if cut == 0 {
				cut = lineLength
			}
			result = result + margin + string(runes[:cut]) + "\n"
			line = strings.TrimLeft(string(runes[cut:]), " ")
		}
		result = result + margin + line + "\n"
	}
	return result
}
