// Package mcp implements a JSON-RPC 2.0 over stdio MCP server that exposes
// the analyzer and the analysis store as tools.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "codegauge"
	jsonRPCVersion  = "2.0"

	maxLineSize = 10 * 1024 * 1024
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// request is a JSON-RPC 2.0 request, or a notification when ID is nil.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *request) isNotification() bool { return r.ID == nil }

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Message) }

func errorf(code int, format string, args ...any) *rpcError {
	return &rpcError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      implInfo     `json:"serverInfo"`
	Capabilities    capabilities `json:"capabilities"`
	Instructions    string       `json:"instructions,omitempty"`
}

type implInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type capabilities struct {
	Tools map[string]any `json:"tools"`
}

// toolResult is the result of tools/call. Tool failures are reported here
// with IsError rather than as JSON-RPC errors.
type toolResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handler serves one method. A nil *rpcError means success.
type handler func(ctx context.Context, params json.RawMessage) (any, *rpcError)

// Server handles JSON-RPC 2.0 requests over stdio for MCP.
type Server struct {
	registry *Registry
	version  string
	reader   io.Reader
	log      *slog.Logger
	methods  map[string]handler

	mu     sync.Mutex
	writer io.Writer
}

// NewServer creates an MCP server that reads from stdin and writes to stdout.
func NewServer(registry *Registry, version string) *Server {
	return NewServerWithIO(registry, version, os.Stdin, os.Stdout)
}

// NewServerWithIO creates an MCP server with custom I/O.
func NewServerWithIO(registry *Registry, version string, reader io.Reader, writer io.Writer) *Server {
	s := &Server{
		registry: registry,
		version:  version,
		reader:   reader,
		writer:   writer,
		log:      registry.logger(),
	}
	s.methods = map[string]handler{
		"initialize": s.initialize,
		"ping": func(context.Context, json.RawMessage) (any, *rpcError) {
			return struct{}{}, nil
		},
		"tools/list": s.listTools,
		"tools/call": s.callTool,
	}
	return s
}

// Run serves newline-delimited requests until the reader is exhausted or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.reader)
	// Tool arguments carry whole source files.
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if resp := s.handleLine(ctx, line); resp != nil {
			s.write(resp)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

// handleLine decodes and serves one request. It returns nil for
// notifications, which never get a response.
func (s *Server) handleLine(ctx context.Context, line []byte) *response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return &response{JSONRPC: jsonRPCVersion, Error: errorf(codeParseError, "Parse error: %v", err)}
	}

	switch req.Method {
	case "initialized", "notifications/initialized", "notifications/cancelled":
		return nil
	}

	if req.JSONRPC != jsonRPCVersion {
		if req.isNotification() {
			return nil
		}
		return &response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: errorf(codeInvalidRequest, "Invalid request: jsonrpc must be %q", jsonRPCVersion)}
	}

	h, ok := s.methods[req.Method]
	if !ok {
		if req.isNotification() {
			return nil
		}
		return &response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: errorf(codeMethodNotFound, "Method not found: %s", req.Method)}
	}

	result, rerr := h(ctx, req.Params)
	if req.isNotification() {
		return nil
	}
	if rerr != nil {
		s.log.Debug("request failed", "method", req.Method, "code", rerr.Code, "message", rerr.Message)
		return &response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: rerr}
	}
	return &response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result}
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, *rpcError) {
	return initializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      implInfo{Name: serverName, Version: s.version},
		Capabilities:    capabilities{Tools: map[string]any{}},
		Instructions:    "Measure JavaScript quality metrics with analyze_code; store, browse and remove results with the *_analysis tools.",
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, *rpcError) {
	return map[string]any{"tools": s.registry.Definitions()}, nil
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (result any, rerr *rpcError) {
	var params callParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errorf(codeInvalidParams, "Invalid params: %v", err)
	}
	if _, ok := s.registry.Get(params.Name); !ok {
		return nil, errorf(codeInvalidParams, "unknown tool: %s", params.Name)
	}

	defer func() {
		if p := recover(); p != nil {
			s.log.Error("tool panicked", "tool", params.Name, "panic", p)
			result, rerr = nil, errorf(codeInternalError, "tool %s failed: %v", params.Name, p)
		}
	}()

	text, ok, err := s.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		return nil, errorf(codeInvalidParams, "%v", err)
	}
	return toolResult{
		Content: []textContent{{Type: "text", Text: text}},
		IsError: !ok,
	}, nil
}

// write emits one response per line.
func (s *Server) write(resp *response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encode response", "error", err)
		data, _ = json.Marshal(&response{JSONRPC: jsonRPCVersion, ID: resp.ID, Error: errorf(codeInternalError, "encode response: %v", err)})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Write(append(data, '\n'))
}
