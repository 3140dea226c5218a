// Package rpcsurface implements the JSON-RPC 2.0 surface spec.md §4.9/§6
// exposes over TCP: repos_*, scan_*, docs_*, import_docs, export_docs,
// search, graph_*, ai_run, anchors_*, fts_stats.
//
// Grounded on the same line-delimited JSON-RPC 2.0 envelope
// internal/plugin.Host speaks to child processes (internal/plugin/host.go)
// — this package serves that protocol instead of issuing it, so the wire
// shape and error-surfacing convention (a bare kind string as the error
// message) are kept symmetric with the plugin host's CallRaw/roundTrip.
package rpcsurface

import "encoding/json"

// Request is one JSON-RPC 2.0 call (spec.md §4.9).
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one JSON-RPC 2.0 reply. Exactly one of Result/Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError carries a bare error-kind string in Message, per spec.md §7's
// taxonomy (not_found, invalid_request, forbidden, ...). Code is fixed at
// -32000 for all handler failures; JSON-RPC's reserved parse/invalid-request
// codes are used only for envelope-level failures (see handleLine).
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeHandlerError   = -32000
)

func errorResponse(id json.RawMessage, code int, kind string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: kind}}
}

func resultResponse(id json.RawMessage, result interface{}) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}
