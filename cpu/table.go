// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

import (
	"errors"
	"fmt"
	"sync"
)

//==============================================================================
// Instruction declaration
//==============================================================================

// Instruction is one entry of the dispatch table.
type Instruction struct {
	Mnemonic string
	Mode     AddrMode
	Cycles   int
	Exec     func(c *CPU, op Operand) error
}

// DuplicateOpcodeError is returned when an opcode is registered twice.
type DuplicateOpcodeError struct {
	Opcode   uint8
	Existing string
	New      string
}

func (e *DuplicateOpcodeError) Error() string {
	return fmt.Sprintf("opcode %#02x: %s already registered, refusing %s", e.Opcode, e.Existing, e.New)
}
func (e *DuplicateOpcodeError) Is(target error) bool {
	return target == ErrDuplicateOpcode
}

//==============================================================================
// Dispatch table
//==============================================================================

// Table maps every opcode byte to an instruction. It can't be changed once
// built, so one table may be shared by any number of CPUs.
type Table struct {
	instrs [256]*Instruction
}

// Lookup returns the instruction for opcode, or false if the opcode is illegal.
func (t *Table) Lookup(opcode uint8) (Instruction, bool) {
	in := t.instrs[opcode]
	if in == nil {
		return Instruction{}, false
	}
	return *in, true
}

// Len returns the number of legal opcodes.
func (t *Table) Len() int {
	n := 0
	for _, in := range t.instrs {
		if in != nil {
			n++
		}
	}
	return n
}

// Registrar is handed to each Family while a table is being built.
type Registrar interface {
	Register(opcode uint8, in Instruction) error
}

// Family registers a group of related opcodes.
type Family func(r Registrar) error

type tableBuilder struct {
	t      *Table
	sealed bool
}

// Register rejects an opcode that is already taken; the first registration
// always wins.
func (b *tableBuilder) Register(opcode uint8, in Instruction) error {
	if b.sealed {
		return fmt.Errorf("opcode %#02x (%s): %w", opcode, in.Mnemonic, ErrTableSealed)
	}
	if in.Exec == nil {
		return fmt.Errorf("opcode %#02x (%s): no exec function", opcode, in.Mnemonic)
	}
	if !in.Mode.valid() {
		return fmt.Errorf("opcode %#02x (%s): unknown addressing mode %d", opcode, in.Mnemonic, in.Mode)
	}
	if old := b.t.instrs[opcode]; old != nil {
		return &DuplicateOpcodeError{Opcode: opcode, Existing: old.Mnemonic, New: in.Mnemonic}
	}
	b.t.instrs[opcode] = &in
	return nil
}

// BuildTable runs each family against a fresh table. The Registrar stops
// accepting opcodes once BuildTable returns.
func BuildTable(families ...Family) (*Table, error) {
	b := &tableBuilder{t: &Table{}}
	defer func() { b.sealed = true }()
	var errs []error
	for _, f := range families {
		if err := f(b); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b.t, nil
}

// StandardFamilies returns the instruction set DefaultTable is built from.
func StandardFamilies() []Family {
	return []Family{
		RegisterNOP,
		RegisterINC,
		RegisterDEC,
		RegisterIndexSteps,
	}
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := BuildTable(StandardFamilies()...)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTable returns the table built from StandardFamilies.
func DefaultTable() *Table {
	return defaultTable()
}
