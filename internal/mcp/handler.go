package mcp

import (
	"encoding/json"
)

// handleMessage classifies msg and dispatches it.
func (s *MCPServer) handleMessage(msg *MCPMessage) *MCPMessage {
	switch {
	case msg.IsResponse():
		return nil
	case msg.IsRequest():
		return s.handleRequest(msg)
	case msg.IsNotification():
		s.handleNotification(msg)
		return nil
	default:
		return NewErrorMessage(msg.Id, InvalidRequest, "invalid message: not a request or notification", nil)
	}
}

// handleRequest handles a JSON-RPC request, per spec §6's method list.
func (s *MCPServer) handleRequest(msg *MCPMessage) *MCPMessage {
	s.logger.Debug("handling request", map[string]interface{}{"method": msg.Method, "id": msg.Id})

	params, _ := msg.Params.(map[string]interface{})
	if params == nil {
		params = make(map[string]interface{})
	}

	switch msg.Method {
	case "initialize":
		return NewResultMessage(msg.Id, s.handleInitialize(params))
	case "shutdown":
		return NewResultMessage(msg.Id, nil)
	case "ping":
		return NewResultMessage(msg.Id, map[string]interface{}{})
	case "tools/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"tools": s.GetToolDefinitions()})
	case "tools/call":
		return s.handleCallToolRequest(msg, params)
	case "resources/list":
		resources, templates := s.GetResourceDefinitions()
		return NewResultMessage(msg.Id, map[string]interface{}{"resources": resources, "resourceTemplates": templates})
	case "resources/read":
		return s.handleReadResourceRequest(msg, params)
	case "prompts/list":
		return NewResultMessage(msg.Id, map[string]interface{}{"prompts": []interface{}{}})
	case "prompts/get":
		return NewErrorMessage(msg.Id, MethodNotFound, "no prompts are defined", nil)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, "method not found: "+msg.Method, nil)
	}
}

// handleNotification handles exit and the no-op notifications spec §6 lists.
func (s *MCPServer) handleNotification(msg *MCPMessage) {
	s.logger.Debug("handling notification", map[string]interface{}{"method": msg.Method})
	switch msg.Method {
	case "exit":
		s.logger.Info("received exit notification", nil)
	case "notifications/initialized", "notifications/cancelled", "notifications/progress":
		// no-op: cog has no session state tied to these signals.
	default:
		s.logger.Debug("unknown notification", map[string]interface{}{"method": msg.Method})
	}
}

func (s *MCPServer) handleCallToolRequest(msg *MCPMessage, params map[string]interface{}) *MCPMessage {
	toolName, ok := params["name"].(string)
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "missing required string param \"name\"", nil)
	}
	toolParams, ok := params["arguments"].(map[string]interface{})
	if !ok {
		toolParams = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return NewErrorMessage(msg.Id, MethodNotFound, "unknown tool: "+toolName, nil)
	}

	s.logger.Info("calling tool", map[string]interface{}{"tool": toolName, "params": toolParams})

	result, err := handler(toolParams)
	if err != nil {
		return NewResultMessage(msg.Id, textContent(map[string]interface{}{"error": err.Error()}))
	}
	return NewResultMessage(msg.Id, textContent(result))
}

func (s *MCPServer) handleReadResourceRequest(msg *MCPMessage, params map[string]interface{}) *MCPMessage {
	uri, ok := params["uri"].(string)
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "missing required string param \"uri\"", nil)
	}

	s.logger.Info("reading resource", map[string]interface{}{"uri": uri})
	result, err := s.handleResourceRead(uri)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}

	data, _ := json.Marshal(result)
	return NewResultMessage(msg.Id, map[string]interface{}{
		"contents": []map[string]interface{}{
			{"uri": uri, "mimeType": "application/json", "text": string(data)},
		},
	})
}

// textContent wraps a tool result in the MCP tools/call text-content shape.
func textContent(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"failed to marshal tool result"}`)
	}
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(data)},
		},
	}
}
