// Package symtab assigns dense integer indices to circuit unknowns: node
// voltages first, auxiliary branch currents after them. Index 0 is ground.
package symtab

import (
	"errors"
	"fmt"

	"mnaspice/internal/consts"
)

var ErrCapacity = errors.New("too many variables")

type Table struct {
	names []string
	index map[string]int
	nodes int // highest node index; aux currents live above it
}

func New() *Table {
	t := &Table{
		names: []string{"0"},
		index: map[string]int{"0": 0},
	}
	return t
}

// Intern returns the index bound to name, binding a new one if needed.
// "0" and "gnd" are the ground node.
func (t *Table) Intern(name string) (int, error) {
	if name == "gnd" {
		name = "0"
	}
	if idx, ok := t.index[name]; ok {
		return idx, nil
	}
	if len(t.names) > consts.MaxVariables {
		return 0, fmt.Errorf("node %q: %w (max %d)", name, ErrCapacity, consts.MaxVariables)
	}
	idx := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = idx
	t.nodes = idx
	return idx, nil
}

// Current appends an auxiliary branch-current unknown named prefix+elem
// ("j", "jx" or "jy") and returns its index.
func (t *Table) Current(prefix, elem string) (int, error) {
	name := prefix + elem
	if len(t.names) > consts.MaxVariables {
		return 0, fmt.Errorf("current %q: %w (max %d)", name, ErrCapacity, consts.MaxVariables)
	}
	idx := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = idx
	return idx, nil
}

// Lookup returns the index of name, or -1.
func (t *Table) Lookup(name string) int {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	return -1
}

// NumVariables is nv: node voltages plus auxiliary currents, ground excluded.
func (t *Table) NumVariables() int { return len(t.names) - 1 }

// NumNodes is nn: the node-voltage unknowns, ground excluded.
func (t *Table) NumNodes() int { return t.nodes }

// Name returns the name bound to index i.
func (t *Table) Name(i int) string { return t.names[i] }

// Names lists all variable names in index order, starting at ground.
func (t *Table) Names() []string { return t.names }
