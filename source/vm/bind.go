package vm

import (
	"github.com/skiff-lang/Skiff/source/set"
	"github.com/skiff-lang/Skiff/source/values"
)

// copyDeep copies a tree of blocks and groups, cells and all. Bodies get
// copied before they get bound, so that two actions made from the same
// source block can't fight over its bindings.
func (vm *Vm) copyDeep(v values.Value) values.Value {
	switch v.T {
	case values.BLOCK, values.GROUP:
		ser := v.V.(values.Series)
		f := vm.Heap.NewFlex(values.SOURCE, ser.Flex.Len())
		for i := 0; i < ser.Flex.Len(); i++ {
			f.Append(vm.copyDeep(ser.Flex.At(i)))
		}
		if ser.Flex.HasFileLine() {
			f.SetFileLine(ser.Flex.File, ser.Flex.Line)
		}
		vm.Heap.Manage(f)
		return values.Value{T: v.T, V: values.Series{Flex: f, Index: ser.Index}}
	}
	return v
}

// bindDeep attaches every word in the tree whose name the context knows to
// that context. It overwrites what was there: the binder applied last is the
// innermost scope, and the innermost scope wins.
func bindDeep(v values.Value, ctx *values.VarList) {
	if v.T != values.BLOCK && v.T != values.GROUP {
		return
	}
	f := v.V.(values.Series).Flex
	for i := 0; i < f.Len(); i++ {
		cell := f.At(i)
		switch {
		case cell.T == values.BLOCK || cell.T == values.GROUP:
			bindDeep(cell, ctx)
		case cell.IsWordlike():
			w := cell.V.(values.Word)
			if idx := ctx.Find(w.Name); idx != 0 {
				w.Ctx, w.Rel, w.Idx = ctx, nil, idx
				f.Set(i, values.Value{T: cell.T, V: w})
			}
		}
	}
}

// bindRelative attaches every word in the tree that names a parameter of
// the action to that action, relatively: the word says which parameter it
// means, and which frame it means is a question answered at evaluation time
// by whichever frame of the action is innermost on the stack.
func bindRelative(v values.Value, act *values.Action) {
	if v.T != values.BLOCK && v.T != values.GROUP {
		return
	}
	f := v.V.(values.Series).Flex
	for i := 0; i < f.Len(); i++ {
		cell := f.At(i)
		switch {
		case cell.T == values.BLOCK || cell.T == values.GROUP:
			bindRelative(cell, act)
		case cell.IsWordlike():
			w := cell.V.(values.Word)
			if idx := act.Keylist.Find(w.Name); idx != 0 {
				w.Ctx, w.Rel, w.Idx = nil, act, idx
				f.Set(i, values.Value{T: cell.T, V: w})
			}
		}
	}
}

// collectSetWords gathers the names of the top-level set-words of a block,
// in order of first appearance. This is how object finds out what its
// variables are before it runs its body.
func collectSetWords(ser values.Series) []string {
	names := []string{}
	seen := set.Set[string]{}
	for i := ser.Index; i < ser.Flex.Len(); i++ {
		cell := ser.Flex.At(i)
		if cell.T == values.SET_WORD {
			name := cell.V.(values.Word).Name
			if !seen.Contains(name) {
				seen.Add(name)
				names = append(names, name)
			}
		}
	}
	return names
}
