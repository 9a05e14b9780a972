package mcp

import (
	"strings"

	cogerrors "cog/internal/errors"
)

// Resource represents a static resource.
type Resource struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ResourceTemplate represents a dynamic resource with a URI template.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
}

// ResourceHandler handles a resource read by URI.
type ResourceHandler func(uri string) (interface{}, error)

// RegisterResources is a hook for future resource registration; cog
// currently serves only the static cog://status resource handled inline
// by handleResourceRead.
func (s *MCPServer) RegisterResources() {}

// GetResourceDefinitions returns static resources and resource templates.
func (s *MCPServer) GetResourceDefinitions() ([]Resource, []ResourceTemplate) {
	return []Resource{
		{URI: "cog://status", Name: "Index status"},
	}, nil
}

// handleResourceRead reads a resource by URI.
func (s *MCPServer) handleResourceRead(uri string) (interface{}, error) {
	if !strings.HasPrefix(uri, "cog://") {
		return nil, cogerrors.New(cogerrors.UserInput, "unsupported resource scheme, expected cog://")
	}

	switch strings.TrimPrefix(uri, "cog://") {
	case "status":
		return s.toolStatus(map[string]interface{}{})
	default:
		return nil, cogerrors.New(cogerrors.UserInput, "unknown resource: "+uri)
	}
}
