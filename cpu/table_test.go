// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

import (
	"errors"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tests := []struct {
		opcode   uint8
		mnemonic string
		mode     AddrMode
		cycles   int
	}{
		{0xe6, "inc", AddrModeZp, 5},
		{0xf6, "inc", AddrModeZpIdx, 6},
		{0xee, "inc", AddrModeAbs, 6},
		{0xfe, "inc", AddrModeAbsIdx, 7},
		{0xc6, "dec", AddrModeZp, 5},
		{0xd6, "dec", AddrModeZpIdx, 6},
		{0xce, "dec", AddrModeAbs, 6},
		{0xde, "dec", AddrModeAbsIdx, 7},
		{0xe8, "inx", AddrModeImp, 2},
		{0xc8, "iny", AddrModeImp, 2},
		{0xca, "dex", AddrModeImp, 2},
		{0x88, "dey", AddrModeImp, 2},
		{0xea, "nop", AddrModeImp, 2},
	}
	table := DefaultTable()
	if table.Len() != len(tests) {
		t.Errorf("Len() = %d, want %d", table.Len(), len(tests))
	}
	for _, tt := range tests {
		in, ok := table.Lookup(tt.opcode)
		if !ok {
			t.Errorf("opcode %#02x missing", tt.opcode)
			continue
		}
		if in.Mnemonic != tt.mnemonic || in.Mode != tt.mode || in.Cycles != tt.cycles {
			t.Errorf("opcode %#02x = %s/%s/%d, want %s/%s/%d", tt.opcode,
				in.Mnemonic, in.Mode, in.Cycles, tt.mnemonic, tt.mode, tt.cycles)
		}
	}
	if _, ok := table.Lookup(0x00); ok {
		t.Errorf("opcode 0x00 should be illegal")
	}
	if DefaultTable() != table {
		t.Errorf("DefaultTable() built twice")
	}
}

func TestBuildTableRejectsDuplicates(t *testing.T) {
	_, err := BuildTable(RegisterINC, RegisterDEC, RegisterINC)
	if !errors.Is(err, ErrDuplicateOpcode) {
		t.Fatalf("err = %v, want ErrDuplicateOpcode", err)
	}
	var dup *DuplicateOpcodeError
	if !errors.As(err, &dup) {
		t.Fatalf("err is %T, want *DuplicateOpcodeError", err)
	}
	if dup.Opcode != 0xe6 || dup.Existing != "inc" || dup.New != "inc" {
		t.Errorf("got %+v", dup)
	}
}

func TestRegisterKeepsFirstEntry(t *testing.T) {
	var regErr error
	table, err := BuildTable(RegisterNOP, func(r Registrar) error {
		regErr = r.Register(0xea, Instruction{Mnemonic: "xxx", Mode: AddrModeImp, Cycles: 9, Exec: nopExec})
		return nil
	})
	if err != nil {
		t.Fatalf("BuildTable() failed: %v", err)
	}
	if !errors.Is(regErr, ErrDuplicateOpcode) {
		t.Errorf("Register() = %v, want ErrDuplicateOpcode", regErr)
	}
	if in, _ := table.Lookup(0xea); in.Mnemonic != "nop" || in.Cycles != 2 {
		t.Errorf("opcode 0xea = %s/%d, want nop/2", in.Mnemonic, in.Cycles)
	}
}

func TestRegisterAfterBuildFails(t *testing.T) {
	var kept Registrar
	table, err := BuildTable(RegisterNOP, func(r Registrar) error {
		kept = r
		return nil
	})
	if err != nil {
		t.Fatalf("BuildTable() failed: %v", err)
	}
	err = kept.Register(0x02, Instruction{Mnemonic: "late", Mode: AddrModeImp, Cycles: 2, Exec: nopExec})
	if !errors.Is(err, ErrTableSealed) {
		t.Errorf("Register() = %v, want ErrTableSealed", err)
	}
	if _, ok := table.Lookup(0x02); ok {
		t.Errorf("opcode 0x02 was added after the table was built")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestRegisterRejectsBadInstructions(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
	}{
		{"nil exec", Instruction{Mnemonic: "bad", Mode: AddrModeImp, Cycles: 2}},
		{"bad mode", Instruction{Mnemonic: "bad", Mode: AddrMode(99), Cycles: 2, Exec: nopExec}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTable(func(r Registrar) error {
				return r.Register(0x02, tt.in)
			})
			if err == nil {
				t.Fatalf("BuildTable() succeeded")
			}
		})
	}
}

// Instructions outside the standard families, exercising the immediate and
// accumulator operands.
func testFamily(r Registrar) error {
	lda := func(c *CPU, op Operand) error {
		v, err := op.Read(c)
		if err != nil {
			return err
		}
		c.SetA(v)
		c.updateNZ(v)
		return nil
	}
	incA := func(c *CPU, op Operand) error {
		res, err := op.ReadModifyWrite(c, inc)
		if err != nil {
			return err
		}
		c.updateNZ(res)
		return nil
	}
	readImplied := func(c *CPU, op Operand) error {
		_, err := op.Read(c)
		return err
	}
	writeImmediate := func(c *CPU, op Operand) error {
		return op.Write(c, 0)
	}
	for _, e := range []struct {
		opcode uint8
		in     Instruction
	}{
		{0xa9, Instruction{"lda", AddrModeImm, 2, lda}},
		{0x1a, Instruction{"ina", AddrModeAcc, 2, incA}},
		{0x02, Instruction{"rdi", AddrModeImp, 2, readImplied}},
		{0x03, Instruction{"wri", AddrModeImm, 2, writeImmediate}},
	} {
		if err := r.Register(e.opcode, e.in); err != nil {
			return err
		}
	}
	return nil
}

func TestCustomTable(t *testing.T) {
	table, err := BuildTable(testFamily, RegisterNOP)
	if err != nil {
		t.Fatalf("BuildTable() failed: %v", err)
	}
	c, bus := setupCPU(t, WithTable(table))
	bus.load(0x8000,
		0xa9, 0xff, // lda #$ff
		0x1a,       // ina
		0xe6, 0x10, // inc $10: not in this table
	)

	tick(t, c)
	if c.A() != 0xff || !c.Flag(FlagNegative) || c.PC() != 0x8002 {
		t.Errorf("after lda: A=%#02x P=%#02x PC=%#04x", c.A(), c.P(), c.PC())
	}
	tick(t, c)
	if c.A() != 0x00 || !c.Flag(FlagZero) || c.Flag(FlagNegative) || c.PC() != 0x8003 {
		t.Errorf("after ina: A=%#02x P=%#02x PC=%#04x", c.A(), c.P(), c.PC())
	}
	if _, err := c.Tick(); !errors.Is(err, ErrIllegalOpcode) {
		t.Errorf("inc with custom table: err = %v, want ErrIllegalOpcode", err)
	}
}

func TestOperandMisuse(t *testing.T) {
	table, err := BuildTable(testFamily)
	if err != nil {
		t.Fatalf("BuildTable() failed: %v", err)
	}
	for _, program := range [][]uint8{{0x02}, {0x03, 0x00}} {
		c, bus := setupCPU(t, WithTable(table))
		bus.load(0x8000, program...)
		if _, err := c.Tick(); !errors.Is(err, ErrOperandMisuse) {
			t.Errorf("opcode %#02x: err = %v, want ErrOperandMisuse", program[0], err)
		}
	}
}
