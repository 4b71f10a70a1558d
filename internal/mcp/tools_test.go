package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestStringArgReturnsValue(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"name": "foo"}

	v, ok := stringArg(req, "name")
	assert.True(t, ok)
	assert.Equal(t, "foo", v)
}

func TestStringArgMissingKey(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{}

	_, ok := stringArg(req, "name")
	assert.False(t, ok)
}

func TestIntArgFallsBackToDefault(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"limit": float64(5)}

	assert.Equal(t, 5, intArg(req, "limit", 15))
	assert.Equal(t, 15, intArg(req, "missing", 15))
}
