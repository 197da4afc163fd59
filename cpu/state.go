// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

//==============================================================================
// Status flags
//==============================================================================

// Flag is a single bit of the processor status register.
type Flag uint8

const (
	FlagCarry     = Flag(0x01)
	FlagZero      = Flag(0x02)
	FlagInterrupt = Flag(0x04) // Interrupt disable
	FlagDecimal   = Flag(0x08)
	FlagBreak     = Flag(0x10)
	FlagUnused    = Flag(0x20)
	FlagOverflow  = Flag(0x40)
	FlagNegative  = Flag(0x80)
)

//==============================================================================
// Registers
//==============================================================================

type registers struct {
	a  uint8  // Accumulator
	x  uint8  // X register
	y  uint8  // Y register
	s  uint8  // Stack pointer
	p  uint8  // Processor status
	pc uint16 // Program counter
}

const powerOnS = 0xfd

func (c *CPU) A() uint8       { return c.regs.a }
func (c *CPU) SetA(v uint8)   { c.regs.a = v }
func (c *CPU) X() uint8       { return c.regs.x }
func (c *CPU) SetX(v uint8)   { c.regs.x = v }
func (c *CPU) Y() uint8       { return c.regs.y }
func (c *CPU) SetY(v uint8)   { c.regs.y = v }
func (c *CPU) S() uint8       { return c.regs.s }
func (c *CPU) SetS(v uint8)   { c.regs.s = v }
func (c *CPU) P() uint8       { return c.regs.p }
func (c *CPU) SetP(v uint8)   { c.regs.p = v }
func (c *CPU) PC() uint16     { return c.regs.pc }
func (c *CPU) SetPC(v uint16) { c.regs.pc = v }

// Flag reports whether f is set in the status register.
func (c *CPU) Flag(f Flag) bool {
	return c.regs.p&uint8(f) != 0
}

// SetFlag sets or clears f, leaving every other status bit alone.
func (c *CPU) SetFlag(f Flag, set bool) {
	if set {
		c.regs.p |= uint8(f)
	} else {
		c.regs.p &^= uint8(f)
	}
}

// Reset puts the registers back to their power-on values. The reset vector is
// not read; the caller is expected to load PC itself.
func (c *CPU) Reset() {
	c.regs = registers{s: powerOnS}
	c.cycles = 0
}

//==============================================================================
// Flag policy
//==============================================================================

// updateNZ sets N from bit 7 of res and Z from res == 0. C and V are untouched.
func (c *CPU) updateNZ(res uint8) {
	c.SetFlag(FlagNegative, res&0x80 != 0)
	c.SetFlag(FlagZero, res == 0)
}
