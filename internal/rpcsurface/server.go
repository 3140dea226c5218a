// server.go runs Surface.Handle over a line-delimited TCP listener, bound
// to AE_RPC_PORT (default 35678, spec.md §6 "Environment variables").
//
// Grounded on the teacher's Serve (internal/mcp/server.go) for the
// "blocks until ctx is done, one server per process" lifecycle shape, and
// on internal/plugin/host.go's bufio.Reader/ReadString('\n') framing for
// the wire format itself — this is the server side of the same
// line-delimited JSON-RPC 2.0 protocol the plugin host speaks as a client.
package rpcsurface

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"

	"github.com/google/uuid"
)

// Serve accepts connections on addr until ctx is canceled, handling each as
// an independent line-delimited JSON-RPC 2.0 session.
func Serve(ctx context.Context, sf *Surface, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("rpc surface listening", "addr", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		connID := uuid.NewString()
		go sf.handleConn(ctx, conn, connID)
	}
}

func (sf *Surface) handleConn(ctx context.Context, conn net.Conn, connID string) {
	defer conn.Close()
	log := slog.With("conn_id", connID, "remote", conn.RemoteAddr().String())
	log.Info("rpc connection opened")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := sf.Handle(ctx, append([]byte(nil), line...))
		if err := enc.Encode(resp); err != nil {
			log.Warn("rpc write failed", "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("rpc connection read error", "error", err)
	}
	log.Info("rpc connection closed")
}
