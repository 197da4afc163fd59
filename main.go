// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inseo-oh/con65core/cpu"
)

const grpcStopTimeout = 2 * time.Second

func main() {
	tcpAddr := flag.String("tcp", "127.0.0.1:6502", "TCP listen address (empty to disable)")
	wsAddr := flag.String("ws", "", "HTTP(WebSocket) listen address (empty to disable)")
	grpcAddr := flag.String("grpc", "", "gRPC listen address (empty to disable)")
	wwwDir := flag.String("www", "", "Directory served as static files next to the WebSocket endpoint")
	accScratch := flag.Bool("acc-scratch-quirk", false, "Leave the result of memory INC/DEC in the accumulator")
	flag.Parse()

	if *tcpAddr == "" && *wsAddr == "" && *grpcAddr == "" {
		log.Fatalf("Nothing to listen on -- give at least one of -tcp, -ws, -grpc")
	}
	cfg := &serverConfig{
		table:      cpu.DefaultTable(),
		accScratch: *accScratch,
		wwwDir:     *wwwDir,
	}
	if *tcpAddr != "" {
		go startTcpServer(*tcpAddr, cfg)
	}
	if *wsAddr != "" {
		go startWsServer(*wsAddr, cfg)
	}
	if *grpcAddr != "" {
		srv := startGrpcServer(*grpcAddr, cfg)
		defer stopGrpcServer(srv, grpcStopTimeout)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	sig := <-sigs
	log.Printf("Received %v, shutting down", sig)
}

//==============================================================================
// State
//==============================================================================

type serverConfig struct {
	table      *cpu.Table
	accScratch bool
	wwwDir     string
}

func (cfg *serverConfig) cpuOptions() []cpu.Option {
	opts := []cpu.Option{cpu.WithTable(cfg.table)}
	if cfg.accScratch {
		opts = append(opts, cpu.WithAccumulatorScratch())
	}
	return opts
}

// clientConn is the transport a client is connected through.
type clientConn interface {
	close() error
	out(b sendBuf) error
	inB() (uint8, error)
	inW() (uint16, error)
}

type clientContext struct {
	logger *log.Logger
	conn   clientConn
	closed bool

	cpu *cpu.CPU
}

func newClientContext(conn clientConn, logger *log.Logger, cfg *serverConfig) *clientContext {
	ctx := &clientContext{
		logger: logger,
		conn:   conn,
	}
	ctx.cpu = cpu.New(ctx, cfg.cpuOptions()...)
	return ctx
}

// serve runs commands until the client says bye or the connection breaks.
func (ctx *clientContext) serve() {
	for !ctx.closed {
		err := ctx.serveNextCmd()
		if err != nil {
			ctx.logger.Printf("Closing client connection due to an error: %v", err)
			break
		}
	}
	ctx.logger.Printf("Closing client connection")
	if err := ctx.conn.close(); err != nil {
		ctx.logger.Printf("Error while closing: %v", err)
	}
	ctx.logger.Printf("Closed client connection")
}

func (ctx *clientContext) setTraceExec(on bool) {
	if on {
		ctx.cpu.SetTracer(func(ev cpu.TraceEvent) error {
			return ctx.eventTraceExec(ev.PC, ev.Opcode, ev.Disasm)
		})
	} else {
		ctx.cpu.SetTracer(nil)
	}
}

//==============================================================================
// Memory bus
//==============================================================================

// The client owns memory, so every bus access is a round trip to it.

func (ctx *clientContext) ReadBus(addr uint16) (uint8, error) {
	return ctx.eventReadBus(addr)
}
func (ctx *clientContext) WriteBus(addr uint16, v uint8) error {
	return ctx.eventWriteBus(addr, v)
}
