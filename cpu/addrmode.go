// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

import "fmt"

//==============================================================================
// Addressing modes
//==============================================================================

type AddrMode uint8

const (
	AddrModeImp    = AddrMode(iota) // Implied
	AddrModeAcc                     // Accumulator
	AddrModeImm                     // Immediate
	AddrModeZp                      // Zeropage
	AddrModeZpIdx                   // Zeropage, indexed by a second operand byte
	AddrModeAbs                     // Absolute
	AddrModeAbsIdx                  // Absolute, indexed by a third operand byte
	addrModeCount
)

var addrModeNames = [addrModeCount]string{
	AddrModeImp:    "implied",
	AddrModeAcc:    "accumulator",
	AddrModeImm:    "immediate",
	AddrModeZp:     "zeropage",
	AddrModeZpIdx:  "zeropage,indexed",
	AddrModeAbs:    "absolute",
	AddrModeAbsIdx: "absolute,indexed",
}

var addrModeOperandBytes = [addrModeCount]int{
	AddrModeImm:    1,
	AddrModeZp:     1,
	AddrModeZpIdx:  2,
	AddrModeAbs:    2,
	AddrModeAbsIdx: 3,
}

func (m AddrMode) String() string {
	if m >= addrModeCount {
		return fmt.Sprintf("AddrMode(%d)", m)
	}
	return addrModeNames[m]
}

// OperandBytes is the number of bytes following the opcode.
func (m AddrMode) OperandBytes() int {
	if m >= addrModeCount {
		return 0
	}
	return addrModeOperandBytes[m]
}

func (m AddrMode) valid() bool {
	return m < addrModeCount
}

//==============================================================================
// Instruction stream
//==============================================================================

func (c *CPU) fetchInstrB() (uint8, error) {
	res, err := c.readBus(c.regs.pc)
	if err != nil {
		return 0, err
	}
	c.regs.pc++
	return res, nil
}

//==============================================================================
// Effective address resolution
//==============================================================================

// fetchOperand consumes the operand bytes of mode, advancing PC past them.
func (c *CPU) fetchOperand(mode AddrMode) ([3]uint8, error) {
	var raw [3]uint8
	for i := range mode.OperandBytes() {
		v, err := c.fetchInstrB()
		if err != nil {
			return raw, err
		}
		raw[i] = v
	}
	return raw, nil
}

// effectiveAddr computes the address a memory mode refers to.
//
// The indexed forms take their index from the operand bytes, not from X or Y.
// Zeropage,indexed wraps within page zero; absolute,indexed is a plain 16-bit
// sum and crossing a page costs nothing extra.
func effectiveAddr(mode AddrMode, raw [3]uint8) uint16 {
	switch mode {
	case AddrModeZp:
		return uint16(raw[0])
	case AddrModeZpIdx:
		return uint16(raw[0] + raw[1])
	case AddrModeAbs:
		return uint16(raw[1])<<8 | uint16(raw[0])
	case AddrModeAbsIdx:
		return (uint16(raw[1])<<8 | uint16(raw[0])) + uint16(raw[2])
	}
	return 0
}

func disasmOperand(mode AddrMode, raw [3]uint8) string {
	switch mode {
	case AddrModeAcc:
		return "a"
	case AddrModeImm:
		return fmt.Sprintf("#$%02x", raw[0])
	case AddrModeZp:
		return fmt.Sprintf("$%02x", raw[0])
	case AddrModeZpIdx:
		return fmt.Sprintf("$%02x+$%02x", raw[0], raw[1])
	case AddrModeAbs:
		return fmt.Sprintf("$%02x%02x", raw[1], raw[0])
	case AddrModeAbsIdx:
		return fmt.Sprintf("$%02x%02x+$%02x", raw[1], raw[0], raw[2])
	}
	return ""
}

// decodeOperand consumes the operand bytes for mode and returns the operand
// along with its disassembly text.
func (c *CPU) decodeOperand(mode AddrMode) (Operand, string, error) {
	if !mode.valid() {
		return nil, "", fmt.Errorf("unknown addressing mode %d", mode)
	}
	if mode == AddrModeImp || mode == AddrModeAcc {
		// Dummy cycle
		if _, err := c.readBus(c.regs.pc); err != nil {
			return nil, "", err
		}
	}
	raw, err := c.fetchOperand(mode)
	if err != nil {
		return nil, "", err
	}
	disasm := disasmOperand(mode, raw)
	switch mode {
	case AddrModeImp:
		return impOperand{}, disasm, nil
	case AddrModeAcc:
		return accOperand{}, disasm, nil
	case AddrModeImm:
		return immOperand{raw[0]}, disasm, nil
	}
	return memOperand{effectiveAddr(mode, raw)}, disasm, nil
}
