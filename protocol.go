// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/inseo-oh/con65core/cpu"
)

//==============================================================================
// Networking
//==============================================================================

// Every message(request or response) starts with header byte telling what kind of message it's sending
// Note that commands always come from the client
type netOpbyte uint8

const (
	// 0x - Response type.
	// Every response starts with this byte,
	netOpbyteAck  = netOpbyte(0x00) // Acknowledged
	netOpbyteFail = netOpbyte(0x01) // Failed

	// 1x - General commands
	netOpbyteBye          = netOpbyte(0x10) // Close the connection
	netOpbyteTraceExecOn  = netOpbyte(0x11) // Trace Execution - Enable
	netOpbyteTraceExecOff = netOpbyte(0x12) // Trace Execution - Disable
	netOpbyteReset        = netOpbyte(0x13) // Put registers back to power-on state
	netOpbyteTick         = netOpbyte(0x1f) // Run the CPU for a tick

	// 2x - CPU state manipulation commands
	netOpbyteWriteA  = netOpbyte(0x20) // Accumulator write
	netOpbyteReadA   = netOpbyte(0x21) // Accumulator read
	netOpbyteWriteX  = netOpbyte(0x22) // X Register write
	netOpbyteReadX   = netOpbyte(0x23) // X Register read
	netOpbyteWriteY  = netOpbyte(0x24) // Y Register write
	netOpbyteReadY   = netOpbyte(0x25) // Y Register read
	netOpbyteWriteS  = netOpbyte(0x26) // Stack pointer write
	netOpbyteReadS   = netOpbyte(0x27) // Stack pointer read
	netOpbyteWriteP  = netOpbyte(0x28) // Processor status write
	netOpbyteReadP   = netOpbyte(0x29) // Processor status read
	netOpbyteWritePc = netOpbyte(0x2a) // PC write
	netOpbyteReadPc  = netOpbyte(0x2b) // PC read

	// 8x - Server events
	// When client receives one of these, it should respond to it accordingly.
	netOpbyteEventReadBus   = netOpbyte(0x80) // Read from address
	netOpbyteEventWriteBus  = netOpbyte(0x81) // Write to address
	netOpbyteEventTraceExec = netOpbyte(0x82) // Event for Trace Execution
)

// Byte following FAIL in a Tick response
type tickFailReason uint8

const (
	tickFailIllegalOpcode = tickFailReason(0x01)
	tickFailBusFault      = tickFailReason(0x02) // Client answered FAIL to a bus event
	tickFailAborted       = tickFailReason(0x03) // Client answered FAIL to a trace event
)

// errClientFailed is returned when the client answers an event with FAIL.
var errClientFailed = errors.New("client responded with FAIL")

// regB describes an 8-bit register reachable from the 2x commands.
type regB struct {
	name string
	get  func(c *cpu.CPU) uint8
	set  func(c *cpu.CPU, v uint8)
}

var (
	regBA = regB{"A", (*cpu.CPU).A, (*cpu.CPU).SetA}
	regBX = regB{"X", (*cpu.CPU).X, (*cpu.CPU).SetX}
	regBY = regB{"Y", (*cpu.CPU).Y, (*cpu.CPU).SetY}
	regBS = regB{"S", (*cpu.CPU).S, (*cpu.CPU).SetS}
	regBP = regB{"P", (*cpu.CPU).P, (*cpu.CPU).SetP}
)

func (ctx *clientContext) serveNextCmd() error {
	const (
		debugNetmsg = false
	)

	var hdrByte uint8
	hdrByte, err := ctx.conn.inB()
	if err != nil {
		return err
	}
	switch op := netOpbyte(hdrByte); op {
	case netOpbyteBye:
		if debugNetmsg {
			ctx.logger.Printf("Bye")
		}
		ctx.closed = true

	case netOpbyteTraceExecOn, netOpbyteTraceExecOff:
		if debugNetmsg {
			ctx.logger.Printf("TraceExec %v", op == netOpbyteTraceExecOn)
		}
		ctx.setTraceExec(op == netOpbyteTraceExecOn)
		return ctx.conn.out(newNetAckResponse(0))

	case netOpbyteReset:
		if debugNetmsg {
			ctx.logger.Printf("Reset")
		}
		ctx.cpu.Reset()
		return ctx.conn.out(newNetAckResponse(0))

	case netOpbyteTick:
		if debugNetmsg {
			ctx.logger.Printf("Tick")
		}
		return ctx.serveTick()

	case netOpbyteWriteA:
		return ctx.serveWriteRegB(regBA, debugNetmsg)
	case netOpbyteReadA:
		return ctx.serveReadRegB(regBA, debugNetmsg)
	case netOpbyteWriteX:
		return ctx.serveWriteRegB(regBX, debugNetmsg)
	case netOpbyteReadX:
		return ctx.serveReadRegB(regBX, debugNetmsg)
	case netOpbyteWriteY:
		return ctx.serveWriteRegB(regBY, debugNetmsg)
	case netOpbyteReadY:
		return ctx.serveReadRegB(regBY, debugNetmsg)
	case netOpbyteWriteS:
		return ctx.serveWriteRegB(regBS, debugNetmsg)
	case netOpbyteReadS:
		return ctx.serveReadRegB(regBS, debugNetmsg)
	case netOpbyteWriteP:
		return ctx.serveWriteRegB(regBP, debugNetmsg)
	case netOpbyteReadP:
		return ctx.serveReadRegB(regBP, debugNetmsg)

	case netOpbyteWritePc:
		val, err := ctx.conn.inW()
		if err != nil {
			return err
		}
		if debugNetmsg {
			ctx.logger.Printf("WritePc %#x", val)
		}
		ctx.cpu.SetPC(val)
		return ctx.conn.out(newNetAckResponse(0))

	case netOpbyteReadPc:
		if debugNetmsg {
			ctx.logger.Printf("ReadPc")
		}
		res := newNetAckResponse(2)
		res.appendW(ctx.cpu.PC())
		return ctx.conn.out(res)

	default:
		ctx.logger.Printf("Unrecognized message type %x", hdrByte)
		return ctx.conn.out(newNetFailResponse(0))
	}
	return nil
}

func (ctx *clientContext) serveWriteRegB(reg regB, debug bool) error {
	val, err := ctx.conn.inB()
	if err != nil {
		return err
	}
	if debug {
		ctx.logger.Printf("Write%s %#x", reg.name, val)
	}
	reg.set(ctx.cpu, val)
	return ctx.conn.out(newNetAckResponse(0))
}

func (ctx *clientContext) serveReadRegB(reg regB, debug bool) error {
	if debug {
		ctx.logger.Printf("Read%s", reg.name)
	}
	res := newNetAckResponse(1)
	res.appendB(reg.get(ctx.cpu))
	return ctx.conn.out(res)
}

// serveTick runs one instruction. Illegal opcodes and FAIL answers from the
// client are reported back with FAIL; anything else is a broken connection.
func (ctx *clientContext) serveTick() error {
	cycles, err := ctx.cpu.Tick()
	if err == nil {
		res := newNetAckResponse(1)
		res.appendB(uint8(cycles))
		return ctx.conn.out(res)
	}
	var busErr *cpu.BusError
	var reason tickFailReason
	switch {
	case errors.Is(err, cpu.ErrIllegalOpcode):
		reason = tickFailIllegalOpcode
	case errors.As(err, &busErr) && errors.Is(err, errClientFailed):
		reason = tickFailBusFault
	case errors.Is(err, errClientFailed):
		reason = tickFailAborted
	default:
		return fmt.Errorf("tick: %w", err)
	}
	ctx.logger.Printf("Tick failed: %v", err)
	res := newNetFailResponse(1)
	res.appendB(uint8(reason))
	return ctx.conn.out(res)
}

func (ctx *clientContext) eventReadBus(addr uint16) (uint8, error) {
	// Send event --------------------------------------------------------------
	event := newNetEvent(netOpbyteEventReadBus, 2)
	event.appendW(addr)
	if err := ctx.conn.out(event); err != nil {
		return 0, err
	}
	// Receive response --------------------------------------------------------
	if err := ctx.expectAckOrFail(); err != nil {
		return 0, err
	}
	return ctx.conn.inB()
}
func (ctx *clientContext) eventWriteBus(addr uint16, v uint8) error {
	// Send event --------------------------------------------------------------
	event := newNetEvent(netOpbyteEventWriteBus, 3)
	event.appendW(addr)
	event.appendB(v)
	if err := ctx.conn.out(event); err != nil {
		return err
	}
	// Receive response --------------------------------------------------------
	return ctx.expectAckOrFail()
}
func (ctx *clientContext) eventTraceExec(pc uint16, ir uint8, disasm string) error {
	// Send event --------------------------------------------------------------
	event := newNetEvent(netOpbyteEventTraceExec, 4+len(disasm))
	event.appendW(pc)
	event.appendB(ir)
	event.appendS(disasm)
	if err := ctx.conn.out(event); err != nil {
		return err
	}
	// Receive response --------------------------------------------------------
	return ctx.expectAckOrFail()
}

type sendBuf struct {
	buf  []uint8
	dest []uint8
}

func newNetEvent(typ netOpbyte, restLen int) sendBuf {
	buf := make([]uint8, restLen+1)
	buf[0] = uint8(typ)
	return sendBuf{buf: buf, dest: buf[1:]}
}
func newNetAckResponse(restLen int) sendBuf {
	return newNetEvent(netOpbyteAck, restLen)
}
func newNetFailResponse(restLen int) sendBuf {
	return newNetEvent(netOpbyteFail, restLen)
}

func (b *sendBuf) appendB(v uint8) {
	b.dest[0] = v
	b.dest = b.dest[1:]
}
func (b *sendBuf) appendW(v uint16) {
	binary.BigEndian.PutUint16(b.dest[0:2], v)
	b.dest = b.dest[2:]
}
func (b *sendBuf) appendS(s string) {
	if 255 < len(s) {
		panic("string cannot be sent because it's too long(max: 255 bytes)")
	}
	b.appendB(byte(len(s)))
	for i := range len(s) {
		b.dest[0] = s[i]
		b.dest = b.dest[1:]
	}
}

// bytes returns the finished message.
func (b *sendBuf) bytes() []uint8 {
	// Make sure we were not wasting more space by accident
	if len(b.dest) != 0 {
		panic("too many bytes were allocated")
	}
	return b.buf
}

func (ctx *clientContext) expectAckOrFail() error {
	ackByte, err := ctx.conn.inB()
	if err != nil {
		return err
	}
	switch netOpbyte(ackByte) {
	case netOpbyteAck:
		return nil
	case netOpbyteFail:
		return errClientFailed
	default:
		return fmt.Errorf("communication error: expected ACK(%#x) or FAIL(%#x), got %#x", netOpbyteAck, netOpbyteFail, ackByte)
	}
}
