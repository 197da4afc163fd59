// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

import (
	"errors"
	"fmt"
)

// Bus is the memory the processor runs against. Both methods are called
// synchronously from within Tick and must not call back into the CPU.
type Bus interface {
	ReadBus(addr uint16) (uint8, error)
	WriteBus(addr uint16, v uint8) error
}

type busDir uint8

const (
	busDirRead = busDir(iota)
	busDirWrite
)

func (d busDir) String() string {
	if d == busDirWrite {
		return "write"
	}
	return "read"
}

//==============================================================================
// Errors
//==============================================================================

var (
	ErrIllegalOpcode   = errors.New("illegal opcode")
	ErrDuplicateOpcode = errors.New("opcode already registered")
	ErrOperandMisuse   = errors.New("operand does not support this access")
	ErrTableSealed     = errors.New("table already built")
)

// IllegalOpcodeError is returned by Tick when the fetched byte has no handler.
type IllegalOpcodeError struct {
	PC     uint16 // Address the opcode was fetched from
	Opcode uint8
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode %#02x at %#04x", e.Opcode, e.PC)
}
func (e *IllegalOpcodeError) Is(target error) bool {
	return target == ErrIllegalOpcode
}

// BusError wraps a failure reported by the Bus.
type BusError struct {
	Write bool
	Addr  uint16
	Err   error
}

func (e *BusError) Error() string {
	dir := busDirRead
	if e.Write {
		dir = busDirWrite
	}
	return fmt.Sprintf("bus %s at %#04x: %v", dir, e.Addr, e.Err)
}
func (e *BusError) Unwrap() error {
	return e.Err
}

//==============================================================================
// Memory bus
//==============================================================================

func (c *CPU) readBus(addr uint16) (uint8, error) {
	v, err := c.bus.ReadBus(addr)
	if err != nil {
		return 0, &BusError{Addr: addr, Err: err}
	}
	return v, nil
}
func (c *CPU) writeBus(addr uint16, v uint8) error {
	if err := c.bus.WriteBus(addr, v); err != nil {
		return &BusError{Write: true, Addr: addr, Err: err}
	}
	return nil
}
