package mcp

// Tool describes one MCP tool for tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler handles a tools/call invocation.
type ToolHandler func(params map[string]interface{}) (interface{}, error)

// RegisterTools wires the seven cog_code_* tools spec §6 names.
func (s *MCPServer) RegisterTools() {
	s.tools["cog_code_index"] = s.toolIndex
	s.tools["cog_code_query"] = s.toolQuery
	s.tools["cog_code_edit"] = s.toolEdit
	s.tools["cog_code_create"] = s.toolCreate
	s.tools["cog_code_delete"] = s.toolDelete
	s.tools["cog_code_rename"] = s.toolRename
	s.tools["cog_code_status"] = s.toolStatus
}

// GetToolDefinitions returns all tool definitions for tools/list.
func (s *MCPServer) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "cog_code_index",
			Description: "Index files matching a glob pattern (default **/*) into the workspace's symbol index",
			InputSchema: objectSchema(map[string]interface{}{
				"pattern": stringProp("Glob pattern: * (no slash), ** (any depth), ? (single char); defaults to **/*"),
			}, nil),
		},
		{
			Name:        "cog_code_query",
			Description: "Query the symbol index: find a definition, list references, list a file's symbols, or summarize repo structure",
			InputSchema: objectSchema(map[string]interface{}{
				"mode":  enumProp("Query mode", "find", "refs", "symbols", "structure"),
				"name":  stringProp("Symbol display name (required for find/refs)"),
				"file":  stringProp("Workspace-relative file path (required for symbols)"),
				"kind":  stringProp("Optional symbol kind filter: function, class, method, interface, module, constant, variable, type, enum, struct, constructor, field, property, macro, namespace, trait, implementation"),
				"limit": intProp("Maximum results: find defaults to 1, refs defaults to 100"),
			}, []string{"mode"}),
		},
		{
			Name:        "cog_code_edit",
			Description: "Replace the first occurrence of old text with new text in a file, re-extracting and persisting the index; rolls back on failure",
			InputSchema: objectSchema(map[string]interface{}{
				"file": stringProp("Workspace-relative file path"),
				"old":  stringProp("Exact text to replace"),
				"new":  stringProp("Replacement text"),
			}, []string{"file", "old", "new"}),
		},
		{
			Name:        "cog_code_create",
			Description: "Create a new file with optional content, index it, and persist",
			InputSchema: objectSchema(map[string]interface{}{
				"file":    stringProp("Workspace-relative file path"),
				"content": stringProp("Initial file content; defaults to empty"),
			}, []string{"file"}),
		},
		{
			Name:        "cog_code_delete",
			Description: "Delete a file and remove it from the symbol index",
			InputSchema: objectSchema(map[string]interface{}{
				"file": stringProp("Workspace-relative file path"),
			}, []string{"file"}),
		},
		{
			Name:        "cog_code_rename",
			Description: "Rename a file on disk and in the symbol index",
			InputSchema: objectSchema(map[string]interface{}{
				"old": stringProp("Current workspace-relative path"),
				"to":  stringProp("New workspace-relative path"),
			}, []string{"old", "to"}),
		},
		{
			Name:        "cog_code_status",
			Description: "Report index presence, document count, symbol count, and content hash",
			InputSchema: objectSchema(map[string]interface{}{}, nil),
		},
	}
}

func objectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values, "description": description}
}
