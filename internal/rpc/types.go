package rpc

import (
	"context"
	"encoding/json"
)

// Request is the JSON-RPC request envelope.
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcContext carries request-scoped information into method handlers.
type RpcContext struct {
	Context  context.Context
	ClientIP string
}

// HandlerFunc executes one RPC method. A non-nil *RpcError becomes an error
// result; otherwise the returned value is the result object.
type HandlerFunc func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

// MethodRegistry maps method names to their handlers.
type MethodRegistry struct {
	methods map[string]HandlerFunc
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]HandlerFunc),
	}
}

func (r *MethodRegistry) Register(name string, handler HandlerFunc) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (HandlerFunc, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}

// decodeParams unmarshals a params object into dst.
func decodeParams(params json.RawMessage, dst interface{}) *RpcError {
	if params == nil {
		return RpcErrorInvalidParams("Missing params object")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return RpcErrorInvalidParams("Invalid params: " + err.Error())
	}
	return nil
}
