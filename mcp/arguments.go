package mcp

import (
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// arguments returns the argument object of a tool call; anything else
// reads as no arguments
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key, def string) string {
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

// toInt accepts JSON numbers and numeric strings
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func intArg(args map[string]interface{}, key string, def int) int {
	if n, ok := toInt(args[key]); ok {
		return n
	}
	return def
}

func optionalIntArg(args map[string]interface{}, key string) *int {
	n, ok := toInt(args[key])
	if !ok {
		return nil
	}
	return &n
}

// stringSliceArg accepts a list or a single string; absent means nil
func stringSliceArg(args map[string]interface{}, key string) []string {
	switch v := args[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64:
				out = append(out, strconv.Itoa(int(s)))
			}
		}
		return out
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

func intSliceArg(args map[string]interface{}, key string) []int {
	raw, ok := args[key].([]interface{})
	if !ok {
		if n, ok := toInt(args[key]); ok {
			return []int{n}
		}
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if n, ok := toInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}
