// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause

package cpu

// Operand is what an instruction acts on once its addressing mode has been
// decoded.
type Operand interface {
	Read(c *CPU) (uint8, error)
	Write(c *CPU, v uint8) error
	// ReadModifyWrite loads the operand, stores f of it back and returns the
	// stored value.
	ReadModifyWrite(c *CPU, f func(uint8) uint8) (uint8, error)
}

// Implied ---------------------------------------------------------------------
type impOperand struct{}

func (op impOperand) Read(c *CPU) (uint8, error) {
	return 0, ErrOperandMisuse
}
func (op impOperand) Write(c *CPU, v uint8) error {
	return ErrOperandMisuse
}
func (op impOperand) ReadModifyWrite(c *CPU, f func(uint8) uint8) (uint8, error) {
	return 0, ErrOperandMisuse
}

// Immediate -------------------------------------------------------------------
type immOperand struct{ val uint8 }

func (op immOperand) Read(c *CPU) (uint8, error) {
	return op.val, nil
}
func (op immOperand) Write(c *CPU, v uint8) error {
	return ErrOperandMisuse
}
func (op immOperand) ReadModifyWrite(c *CPU, f func(uint8) uint8) (uint8, error) {
	return 0, ErrOperandMisuse
}

// Accumulator -----------------------------------------------------------------
type accOperand struct{}

func (op accOperand) Read(c *CPU) (uint8, error) {
	return c.regs.a, nil
}
func (op accOperand) Write(c *CPU, v uint8) error {
	c.regs.a = v
	return nil
}
func (op accOperand) ReadModifyWrite(c *CPU, f func(uint8) uint8) (uint8, error) {
	c.regs.a = f(c.regs.a)
	return c.regs.a, nil
}

// Memory ----------------------------------------------------------------------
type memOperand struct{ addr uint16 }

func (op memOperand) Read(c *CPU) (uint8, error) {
	return c.readBus(op.addr)
}
func (op memOperand) Write(c *CPU, v uint8) error {
	return c.writeBus(op.addr, v)
}

// The loaded byte lives in v only. With the accumulator scratch quirk enabled
// the result is also copied into A.
func (op memOperand) ReadModifyWrite(c *CPU, f func(uint8) uint8) (uint8, error) {
	v, err := c.readBus(op.addr)
	if err != nil {
		return 0, err
	}
	v = f(v)
	if c.accScratch {
		c.regs.a = v
	}
	if err := c.writeBus(op.addr, v); err != nil {
		return 0, err
	}
	return v, nil
}
