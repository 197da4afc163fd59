// Copyright (c) 2025, Oh Inseo (YJK) -- Licensed under BSD-2-Clause
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

type wsClientConn struct {
	msgReader
	conn *websocket.Conn
}

var wsUpgrader = websocket.Upgrader{} // use default options
var wsPath = "/con65"

func startWsServer(serverAddr string, cfg *serverConfig) {
	log.Printf("Started HTTP(WebSocket) server at %s%s", serverAddr, wsPath)
	log.Fatal(http.ListenAndServe(serverAddr, newWsHandler(cfg)))
}

func newWsHandler(cfg *serverConfig) http.Handler {
	mux := http.NewServeMux()
	if cfg.wwwDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.wwwDir)))
	}
	mux.HandleFunc(wsPath, func(w http.ResponseWriter, r *http.Request) {
		serveWsClient(w, r, cfg)
	})
	return mux
}

func serveWsClient(w http.ResponseWriter, r *http.Request, cfg *serverConfig) {
	log.Printf("New client connection from %s", r.RemoteAddr)
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("websocket upgrade error:", err)
		return
	}

	clientConn := &wsClientConn{conn: conn}
	clientConn.recvMsg = clientConn.recvWsMsg
	logger := log.New(log.Writer(), fmt.Sprintf("[client/%s] ", conn.RemoteAddr()), log.Flags())
	newClientContext(clientConn, logger, cfg).serve()
}

func (conn *wsClientConn) close() error {
	return conn.conn.Close()
}
func (conn *wsClientConn) out(b sendBuf) error {
	return conn.conn.WriteMessage(websocket.BinaryMessage, b.bytes())
}
func (conn *wsClientConn) recvWsMsg() ([]uint8, error) {
	tp, msg, err := conn.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if tp != websocket.BinaryMessage {
		return nil, errors.New("expected binary message, got something else")
	}
	return msg, nil
}
