// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
)

type tcpClientConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func startTcpServer(serverAddr string, cfg *serverConfig) {
	listener, err := net.Listen("tcp", serverAddr)
	if err != nil {
		log.Fatalf("Failed to listen to connection -- %v", err)
	}
	log.Printf("Started TCP server at %s", serverAddr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("Failed to accept to connection -- %v", err)
			continue
		}
		log.Printf("New client connection from %s", conn.RemoteAddr().String())
		go serveTcpClient(conn, cfg)
	}
}

func serveTcpClient(conn net.Conn, cfg *serverConfig) {
	clientConn := tcpClientConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	logger := log.New(log.Writer(), fmt.Sprintf("[client/%s] ", conn.RemoteAddr()), log.Flags())
	newClientContext(&clientConn, logger, cfg).serve()
}

func (conn *tcpClientConn) close() error {
	return conn.conn.Close()
}
func (conn *tcpClientConn) out(b sendBuf) error {
	_, err := conn.conn.Write(b.bytes())
	return err
}

func (conn *tcpClientConn) inB() (uint8, error) {
	return conn.reader.ReadByte()
}
func (conn *tcpClientConn) inW() (uint16, error) {
	bytes := [2]uint8{}
	_, err := io.ReadFull(conn.reader, bytes[:])
	if err != nil {
		return 0, err
	}
	res := (uint16(bytes[0]) << 8) | uint16(bytes[1])
	return res, nil
}
