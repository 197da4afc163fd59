// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

// Package cpu is the instruction execution core of a 6502 emulator: opcode
// dispatch, addressing mode resolution, and the read-modify-write and flag
// rules shared by the instructions.
//
// A CPU is not safe for concurrent use. Separate CPUs share nothing except an
// optional read-only Table and may run in parallel.
package cpu

import "fmt"

//==============================================================================
// State
//==============================================================================

type CPU struct {
	bus   Bus
	table *Table
	regs  registers

	ir     uint8  // Instruction register
	cycles uint64 // Total cycles since Reset

	accScratch bool
	tracer     func(TraceEvent) error
}

// TraceEvent describes an instruction that has been decoded and is about to
// execute.
type TraceEvent struct {
	PC     uint16 // Address of the opcode
	Opcode uint8
	Disasm string
}

type Option func(c *CPU)

// WithTable makes the CPU dispatch through t instead of DefaultTable.
func WithTable(t *Table) Option {
	return func(c *CPU) { c.table = t }
}

// WithTracer installs fn to be called for every decoded instruction. An error
// from fn aborts the tick before the instruction executes.
func WithTracer(fn func(TraceEvent) error) Option {
	return func(c *CPU) { c.tracer = fn }
}

// WithAccumulatorScratch makes memory read-modify-write instructions leave
// their result in A as well, reproducing an emulator this core is compared
// against. Real hardware never does this.
func WithAccumulatorScratch() Option {
	return func(c *CPU) { c.accScratch = true }
}

// New returns a CPU in its power-on state, attached to bus.
func New(bus Bus, opts ...Option) *CPU {
	c := &CPU{bus: bus}
	for _, opt := range opts {
		opt(c)
	}
	if c.table == nil {
		c.table = DefaultTable()
	}
	c.Reset()
	return c
}

// SetTracer replaces the tracer; nil disables tracing.
func (c *CPU) SetTracer(fn func(TraceEvent) error) {
	c.tracer = fn
}

// Cycles returns the number of cycles consumed since the last Reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// IR returns the opcode of the most recently fetched instruction.
func (c *CPU) IR() uint8 {
	return c.ir
}

//==============================================================================
// Execution
//==============================================================================

// Tick runs exactly one instruction and returns the cycles it took.
//
// An opcode without a handler returns an *IllegalOpcodeError with PC left on
// the opcode. Bus failures come back as *BusError; whatever the instruction did
// before the failure is not undone.
func (c *CPU) Tick() (int, error) {
	instrPc := c.regs.pc
	// Fetch the opcode --------------------------------------------------------
	opcode, err := c.fetchInstrB()
	if err != nil {
		return 0, err
	}
	c.ir = opcode
	in, ok := c.table.Lookup(opcode)
	if !ok {
		c.regs.pc = instrPc
		return 0, &IllegalOpcodeError{PC: instrPc, Opcode: opcode}
	}
	// Decode the operand ------------------------------------------------------
	op, operandDisasm, err := c.decodeOperand(in.Mode)
	if err != nil {
		return 0, err
	}
	// Emit trace execution event ----------------------------------------------
	if c.tracer != nil {
		disasm := in.Mnemonic
		if operandDisasm != "" {
			disasm = fmt.Sprintf("%s %s", in.Mnemonic, operandDisasm)
		}
		if err := c.tracer(TraceEvent{PC: instrPc, Opcode: opcode, Disasm: disasm}); err != nil {
			return 0, err
		}
	}
	// Execute -----------------------------------------------------------------
	if err := in.Exec(c, op); err != nil {
		return 0, err
	}
	c.cycles += uint64(in.Cycles)
	return in.Cycles, nil
}
