package test_helper

import (
	"testing"

	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/settings"
	"github.com/skiff-lang/Skiff/source/sk"
	"github.com/skiff-lang/Skiff/source/text"
)

// Auxiliary types and functions for testing the evaluator.

type TestItem struct {
	Input string
	Want  string
}

// RunTest makes a fresh service for each test, evaluates the setup code if
// there is any, and compares what F makes of the input against Want.
func RunTest(t *testing.T, setup string, tests []TestItem, F func(sv *sk.Service, s string) (string, error)) {
	for _, test := range tests {
		if settings.SHOW_TESTS {
			println(text.BULLET + "Running test " + text.Emph(test.Input))
		}
		sv := sk.NewService()
		if setup != "" {
			prep, e := sv.Do(setup)
			if e != nil {
				t.Fatalf("There were errors doing the setup code: \n" + e.Error())
			}
			if sk.IsError(prep) {
				t.Fatalf("There were errors in the setup code: \n" + sk.DescribeError(prep))
			}
		}
		got, e := F(sv, test.Input)
		if e != nil {
			println(text.Red(test.Input))
			println("There were errors doing the line: \n" + e.Error() + "\n")
		}
		if !(test.Want == got) {
			t.Fatalf(`Test failed with input %s | Wanted : %s | Got : %s.`, test.Input, test.Want, got)
		}
	}
}

// TestValues renders the result of the line as Skiff source, with raised
// errors cut down to their ids so the tests can match on them.
func TestValues(sv *sk.Service, s string) (string, error) {
	v, e := sv.Do(s)
	if e != nil {
		return "", e
	}
	if v.T == sk.RAISED {
		return "error: " + err.ID(v), nil
	}
	return sk.Literal(v), nil
}

// TestOutput runs the line for what it prints rather than what it returns.
func TestOutput(sv *sk.Service, s string) (string, error) {
	capture := sv.CaptureOutput()
	_, e := sv.Do(s)
	if e != nil {
		return "", e
	}
	return capture.Dump(), nil
}
