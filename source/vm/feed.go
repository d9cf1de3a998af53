package vm

import (
	"github.com/skiff-lang/Skiff/source/values"
)

// Feed is an instruction pointer: an array being evaluated and the index of
// the next cell. A level evaluating a subexpression shares its parent's feed
// outright, so when the child consumes cells the parent's position moves
// too. That is the whole trick of argument gathering.
type Feed struct {
	Array *values.Flex
	Index int
}

func NewFeed(f *values.Flex, index int) *Feed {
	return &Feed{Array: f, Index: index}
}

func (fd *Feed) AtEnd() bool {
	return fd.Index >= fd.Array.Len()
}

func (fd *Feed) Peek() values.Value {
	return fd.Array.At(fd.Index)
}

// Fetch returns the current cell and steps past it.
func (fd *Feed) Fetch() values.Value {
	v := fd.Array.At(fd.Index)
	fd.Index++
	return v
}
