// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

//==============================================================================
// Instruction implementation
//==============================================================================

type modeOpcode struct {
	mode   AddrMode
	opcode uint8
	cycles int
}

func registerModes(r Registrar, mnemonic string, exec func(*CPU, Operand) error, opcodes []modeOpcode) error {
	for _, mo := range opcodes {
		in := Instruction{Mnemonic: mnemonic, Mode: mo.mode, Cycles: mo.cycles, Exec: exec}
		if err := r.Register(mo.opcode, in); err != nil {
			return err
		}
	}
	return nil
}

func inc(v uint8) uint8 { return v + 1 }
func dec(v uint8) uint8 { return v - 1 }

// rmwExec builds the exec function of a read-modify-write instruction that
// only defines N and Z.
func rmwExec(f func(uint8) uint8) func(*CPU, Operand) error {
	return func(c *CPU, op Operand) error {
		res, err := op.ReadModifyWrite(c, f)
		if err != nil {
			return err
		}
		c.updateNZ(res)
		return nil
	}
}

// INC -------------------------------------------------------------------------

func RegisterINC(r Registrar) error {
	return registerModes(r, "inc", rmwExec(inc), []modeOpcode{
		{AddrModeZp, 0xe6, 5},
		{AddrModeZpIdx, 0xf6, 6},
		{AddrModeAbs, 0xee, 6},
		{AddrModeAbsIdx, 0xfe, 7},
	})
}

// DEC -------------------------------------------------------------------------

func RegisterDEC(r Registrar) error {
	return registerModes(r, "dec", rmwExec(dec), []modeOpcode{
		{AddrModeZp, 0xc6, 5},
		{AddrModeZpIdx, 0xd6, 6},
		{AddrModeAbs, 0xce, 6},
		{AddrModeAbsIdx, 0xde, 7},
	})
}

// INX, INY, DEX, DEY ----------------------------------------------------------

func stepIndex(reg func(c *CPU) *uint8, f func(uint8) uint8) func(*CPU, Operand) error {
	return func(c *CPU, op Operand) error {
		r := reg(c)
		*r = f(*r)
		c.updateNZ(*r)
		return nil
	}
}

func regX(c *CPU) *uint8 { return &c.regs.x }
func regY(c *CPU) *uint8 { return &c.regs.y }

func RegisterIndexSteps(r Registrar) error {
	steps := []struct {
		opcode   uint8
		mnemonic string
		exec     func(*CPU, Operand) error
	}{
		{0xe8, "inx", stepIndex(regX, inc)},
		{0xc8, "iny", stepIndex(regY, inc)},
		{0xca, "dex", stepIndex(regX, dec)},
		{0x88, "dey", stepIndex(regY, dec)},
	}
	for _, s := range steps {
		in := Instruction{Mnemonic: s.mnemonic, Mode: AddrModeImp, Cycles: 2, Exec: s.exec}
		if err := r.Register(s.opcode, in); err != nil {
			return err
		}
	}
	return nil
}

// NOP -------------------------------------------------------------------------

func nopExec(c *CPU, op Operand) error {
	return nil
}

func RegisterNOP(r Registrar) error {
	return r.Register(0xea, Instruction{Mnemonic: "nop", Mode: AddrModeImp, Cycles: 2, Exec: nopExec})
}
