// Package graphql implements a small query engine for the front-end GraphQL
// surface. It supports single-operation queries and mutations with flat field
// selection, which is all the front-end issues.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ResolverFunc resolves a single named query or mutation. Arguments carry the
// parsed literal values; values bound through request variables keep their
// JSON types (objects and lists arrive as map[string]interface{} / []interface{}).
type ResolverFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Request represents an incoming GraphQL request.
type Request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// Response represents the result of executing a Request.
type Response struct {
	Data   interface{} `json:"data,omitempty"`
	Errors []Error     `json:"errors,omitempty"`
}

// Error represents a single error from query execution.
type Error struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// parsedQuery holds the result of parsing a query string.
type parsedQuery struct {
	Operation string // "query" or "mutation"
	Name      string
	Args      map[string]string
	Fields    []string
}

// Engine executes named queries and mutations registered by the domain
// packages.
type Engine struct {
	mu        sync.RWMutex
	queries   map[string]ResolverFunc
	mutations map[string]ResolverFunc
}

// NewEngine creates an engine with no resolvers registered.
func NewEngine() *Engine {
	return &Engine{
		queries:   make(map[string]ResolverFunc),
		mutations: make(map[string]ResolverFunc),
	}
}

// RegisterQuery registers a resolver for the named query.
func (e *Engine) RegisterQuery(name string, fn ResolverFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries[name] = fn
}

// RegisterMutation registers a resolver for the named mutation.
func (e *Engine) RegisterMutation(name string, fn ResolverFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mutations[name] = fn
}

// Execute parses and executes a GraphQL request, returning a response.
func (e *Engine) Execute(ctx context.Context, req Request) *Response {
	parsed, err := parseQuery(req.Query)
	if err != nil {
		return &Response{Errors: []Error{{Message: err.Error()}}}
	}

	e.mu.RLock()
	table := e.queries
	if parsed.Operation == "mutation" {
		table = e.mutations
	}
	resolver, ok := table[parsed.Name]
	e.mu.RUnlock()

	if !ok {
		return &Response{Errors: []Error{{
			Message: fmt.Sprintf("no %s named %s", parsed.Operation, parsed.Name),
			Path:    []string{parsed.Name},
		}}}
	}

	args := bindArgs(parsed.Args, req.Variables)
	result, err := resolver(ctx, args)
	if err != nil {
		return &Response{Errors: []Error{{
			Message: err.Error(),
			Path:    []string{parsed.Name},
		}}}
	}

	return &Response{Data: map[string]interface{}{
		parsed.Name: applySelection(result, parsed.Fields),
	}}
}

// bindArgs resolves $var references against the request variables, keeping
// their JSON types; literal values stay strings.
func bindArgs(raw map[string]string, variables map[string]interface{}) map[string]interface{} {
	args := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(v, "$") {
			if bound, ok := variables[strings.TrimPrefix(v, "$")]; ok {
				args[k] = bound
			}
			continue
		}
		args[k] = v
	}
	return args
}

// applySelection filters resolver output to the requested fields. Selection
// applies to object results and lists of objects; anything else passes
// through unchanged.
func applySelection(result interface{}, fields []string) interface{} {
	if len(fields) == 0 {
		return result
	}
	switch v := result.(type) {
	case map[string]interface{}:
		return selectFields(v, fields)
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, selectFields(item, fields))
		}
		return out
	default:
		return result
	}
}

func selectFields(obj map[string]interface{}, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if val, ok := obj[f]; ok {
			out[f] = val
		}
	}
	return out
}

// queryPattern matches single-operation queries:
//
//	[query|mutation] { name(args) { fields } }
var queryPattern = regexp.MustCompile(
	`^\s*(?:(query|mutation)\b[^{]*)?\{\s*(\w+)\s*(?:\(([^)]*)\))?\s*\{\s*([^{}]+)\}\s*\}\s*$`,
)

// argPattern matches key: "value", key: bareword/number, or key: $var pairs.
var argPattern = regexp.MustCompile(`(\w+)\s*:\s*(?:"([^"]*)"|([\w$.-]+))`)

func parseQuery(query string) (*parsedQuery, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	matches := queryPattern.FindStringSubmatch(query)
	if matches == nil {
		return nil, fmt.Errorf("invalid GraphQL query syntax")
	}

	pq := &parsedQuery{
		Operation: matches[1],
		Name:      matches[2],
		Args:      make(map[string]string),
	}
	if pq.Operation == "" {
		pq.Operation = "query"
	}

	if matches[3] != "" {
		for _, m := range argPattern.FindAllStringSubmatch(matches[3], -1) {
			value := m[2]
			if value == "" {
				value = m[3]
			}
			pq.Args[m[1]] = value
		}
	}

	for _, f := range strings.Split(matches[4], ",") {
		if f = strings.TrimSpace(f); f != "" {
			pq.Fields = append(pq.Fields, f)
		}
	}

	return pq, nil
}

// ArgString returns the named argument as a string.
func ArgString(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ArgInt64 returns the named argument as an int64, handling both literal
// tokens and JSON numbers bound through variables.
func ArgInt64(args map[string]interface{}, key string) (int64, error) {
	switch v := args[key].(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %s must be an integer", key)
		}
		return n, nil
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %s must be an integer", key)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("argument %s is required", key)
	default:
		return 0, fmt.Errorf("argument %s must be an integer", key)
	}
}

// ArgObject returns the named argument as a JSON object when it was bound
// through variables, or nil otherwise.
func ArgObject(args map[string]interface{}, key string) map[string]interface{} {
	obj, _ := args[key].(map[string]interface{})
	return obj
}
