package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sleeve/internal/api"
	"sleeve/internal/logging"
	"sleeve/internal/services"
)

// JSON-RPC 2.0 error codes used on the /mcp endpoint.
const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleMCP serves the JSON-RPC tool endpoint. GET answers a probe
// blob so operators can confirm the mount, POST carries the protocol,
// and everything else is turned away with a hint.
func (s *apiServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "mcp": true, "path": "/mcp"})
		return
	case http.MethodPost:
	default:
		http.Error(w, "MCP expects POST JSON-RPC 2.0", http.StatusMethodNotAllowed)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeRPCError(w, nil, &rpcError{Code: rpcParseError, Message: "parse error: body is not valid JSON"})
		return
	}

	switch req.Method {
	case "initialize":
		s.writeRPCResult(w, req.ID, map[string]any{
			"protocol": "mcp",
			"serverInfo": map[string]any{
				"name":    "sleeve",
				"version": api.Version,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
		})
	case "tools/list":
		s.writeRPCResult(w, req.ID, map[string]any{"tools": toolDescriptors()})
	case "tools/call":
		s.handleToolCall(r.Context(), w, req)
	default:
		s.writeRPCError(w, req.ID, &rpcError{Code: rpcMethodNotFound, Message: "method not found: " + req.Method})
	}
}

func (s *apiServer) handleToolCall(ctx context.Context, w http.ResponseWriter, req rpcRequest) {
	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeRPCError(w, req.ID, &rpcError{Code: rpcInvalidParams, Message: "invalid params: " + err.Error()})
			return
		}
	}

	payload, rpcErr := s.callTool(services.WithTool(ctx, params.Name), params.Name, params.Arguments)
	if rpcErr != nil {
		logging.WithContext(ctx, s.logger).Warn("tool call failed",
			logging.String("tool", params.Name),
			logging.Int("code", rpcErr.Code),
			logging.String("message", rpcErr.Message))
		s.writeRPCError(w, req.ID, rpcErr)
		return
	}

	s.writeRPCResult(w, req.ID, map[string]any{
		"content": []map[string]any{{"type": "json", "json": payload}},
	})
}

func (s *apiServer) callTool(ctx context.Context, name string, args json.RawMessage) (any, *rpcError) {
	switch name {
	case toolSearchCoverArt:
		var in struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if rpcErr := decodeArguments(args, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if strings.TrimSpace(in.Query) == "" {
			return nil, missingArgument("query")
		}
		resp, err := s.service.SearchCoverArt(ctx, in.Query, clampRPCLimit(in.Limit), false)
		if err != nil {
			return nil, toolError(err)
		}
		return map[string]any{"results": resp.Results}, nil

	case toolSearch:
		var in struct {
			Query string `json:"query"`
		}
		if rpcErr := decodeArguments(args, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if strings.TrimSpace(in.Query) == "" {
			return nil, missingArgument("query")
		}
		listing, err := s.service.Listing(ctx, in.Query)
		if err != nil {
			return nil, toolError(err)
		}
		return listing, nil

	case toolFetch:
		var in struct {
			ID string `json:"id"`
		}
		if rpcErr := decodeArguments(args, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if strings.TrimSpace(in.ID) == "" {
			return nil, missingArgument("id")
		}
		doc, err := s.service.FetchDetail(ctx, in.ID)
		if err != nil {
			return nil, toolError(err)
		}
		return doc, nil

	case toolVibeBoard:
		var in struct {
			Query    string `json:"query"`
			MaxItems int    `json:"max_items"`
			Debug    bool   `json:"debug"`
		}
		if rpcErr := decodeArguments(args, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if strings.TrimSpace(in.Query) == "" {
			return nil, missingArgument("query")
		}
		board, err := s.service.VibeBoard(ctx, in.Query, in.MaxItems, in.Debug)
		if err != nil {
			return nil, toolError(err)
		}
		return board, nil

	case toolRagSummarize:
		var in struct {
			Board json.RawMessage `json:"board"`
			Style string          `json:"style"`
		}
		if rpcErr := decodeArguments(args, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if len(in.Board) == 0 || bytes.Equal(bytes.TrimSpace(in.Board), []byte("null")) {
			return nil, missingArgument("board")
		}
		resp, err := s.service.Summarize(ctx, string(in.Board), in.Style)
		if err != nil {
			return nil, toolError(err)
		}
		return resp, nil

	default:
		return nil, &rpcError{Code: rpcMethodNotFound, Message: "unknown tool: " + name}
	}
}

// clampRPCLimit applies the wire-level limit contract: absent or
// non-positive limits become the default, anything above the ceiling
// is capped.
func clampRPCLimit(limit int) int {
	if limit <= 0 {
		return rpcDefaultLimit
	}
	if limit > rpcMaxLimit {
		return rpcMaxLimit
	}
	return limit
}

func decodeArguments(args json.RawMessage, dst any) *rpcError {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return &rpcError{Code: rpcInvalidParams, Message: "invalid arguments: " + err.Error()}
	}
	return nil
}

func missingArgument(name string) *rpcError {
	return &rpcError{Code: rpcInvalidParams, Message: "missing required argument: " + name}
}

func toolError(err error) *rpcError {
	if errors.Is(err, services.ErrValidation) {
		return &rpcError{Code: rpcInvalidParams, Message: err.Error()}
	}
	return &rpcError{Code: rpcInternalError, Message: err.Error()}
}

func (s *apiServer) writeRPCResult(w http.ResponseWriter, id any, result any) {
	s.writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// writeRPCError reports protocol failures. RPC-level errors ride an
// HTTP 400 so plain HTTP clients notice something went wrong without
// parsing the envelope.
func (s *apiServer) writeRPCError(w http.ResponseWriter, id any, rpcErr *rpcError) {
	s.writeJSON(w, http.StatusBadRequest, rpcResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
}
