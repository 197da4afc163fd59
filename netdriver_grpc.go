// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

import (
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The gRPC transport is one bidirectional stream per client. Every message is
// a google.protobuf.BytesValue carrying a chunk of the same byte protocol the
// TCP and WebSocket transports speak.
//
//	service BusLink {
//	  rpc Session(stream google.protobuf.BytesValue) returns (stream google.protobuf.BytesValue);
//	}
var busLinkServiceDesc = grpc.ServiceDesc{
	ServiceName: "con65.BusLink",
	HandlerType: (*any)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Session",
			Handler:       serveGrpcClient,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "con65.proto",
}

const busLinkSessionMethod = "/con65.BusLink/Session"

type grpcBusLink struct {
	cfg *serverConfig
}

type grpcClientConn struct {
	msgReader
	stream grpc.ServerStream
}

func newGrpcServer(cfg *serverConfig) *grpc.Server {
	srv := grpc.NewServer()
	srv.RegisterService(&busLinkServiceDesc, &grpcBusLink{cfg: cfg})
	return srv
}

func startGrpcServer(serverAddr string, cfg *serverConfig) *grpc.Server {
	listener, err := net.Listen("tcp", serverAddr)
	if err != nil {
		log.Fatalf("Failed to listen to connection -- %v", err)
	}
	srv := newGrpcServer(cfg)
	log.Printf("Started gRPC server at %s", serverAddr)
	go func() {
		if err := srv.Serve(listener); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()
	return srv
}

// stopGrpcServer drains the server, cutting off sessions still open after
// timeout. Sessions only end on BYE, so an idle client would otherwise hold
// GracefulStop forever.
func stopGrpcServer(srv *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("gRPC clients still connected after %v, closing them", timeout)
		srv.Stop()
		<-done
	}
}

func serveGrpcClient(srv any, stream grpc.ServerStream) error {
	link := srv.(*grpcBusLink)
	remote := "unknown"
	if p, ok := peer.FromContext(stream.Context()); ok {
		remote = p.Addr.String()
	}
	log.Printf("New client connection from %s", remote)

	clientConn := &grpcClientConn{stream: stream}
	clientConn.recvMsg = clientConn.recvGrpcMsg
	logger := log.New(log.Writer(), fmt.Sprintf("[client/%s] ", remote), log.Flags())
	newClientContext(clientConn, logger, link.cfg).serve()
	return nil
}

// The stream ends when the handler returns.
func (conn *grpcClientConn) close() error {
	return nil
}
func (conn *grpcClientConn) out(b sendBuf) error {
	return conn.stream.SendMsg(wrapperspb.Bytes(b.bytes()))
}
func (conn *grpcClientConn) recvGrpcMsg() ([]uint8, error) {
	msg := &wrapperspb.BytesValue{}
	if err := conn.stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg.GetValue(), nil
}
