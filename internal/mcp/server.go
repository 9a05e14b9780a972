package mcp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"cog/internal/indexstore"
	"cog/internal/logging"
	"cog/internal/maintainer"
)

// MCPServer is the minimal MCP server: it exposes the cog_code_* tools over
// a Content-Length-framed JSON-RPC 2.0 stdio transport (spec §6), backed
// directly by an Index Store and a Maintainer rather than a federation of
// query backends.
type MCPServer struct {
	stdin  io.Reader
	stdout io.Writer
	reader *bufio.Reader
	logger *logging.Logger

	version string
	root    string

	Store      *indexstore.Store
	Maintainer *maintainer.Maintainer

	tools     map[string]ToolHandler
	resources map[string]ResourceHandler
}

// NewMCPServer constructs a server rooted at root, wired to store and m.
func NewMCPServer(version, root string, store *indexstore.Store, m *maintainer.Maintainer, logger *logging.Logger) *MCPServer {
	server := &MCPServer{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		logger:     logger,
		version:    version,
		root:       root,
		Store:      store,
		Maintainer: m,
		tools:      make(map[string]ToolHandler),
		resources:  make(map[string]ResourceHandler),
	}
	server.RegisterTools()
	server.RegisterResources()
	return server
}

// Start begins the read-handle-write loop; it returns nil on a clean EOF
// shutdown. Any other read or parse error is logged and the loop goes on
// to the next message, so Start never returns a non-nil error.
func (s *MCPServer) Start() error {
	s.logger.Info("MCP server starting", map[string]interface{}{"version": s.version})

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)", nil)
				return nil
			}
			s.logger.Error("error reading message", map[string]interface{}{"error": err.Error()})
			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, fmt.Sprintf("failed to parse message: %v", err))
			}
			continue
		}

		response := s.handleMessage(msg)
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("error writing response", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// SetStdin sets the input stream (for testing).
func (s *MCPServer) SetStdin(r io.Reader) {
	s.stdin = r
	s.reader = nil
}

// SetStdout sets the output stream (for testing).
func (s *MCPServer) SetStdout(w io.Writer) {
	s.stdout = w
}

// SendNotification sends a JSON-RPC notification to the client.
func (s *MCPServer) SendNotification(method string, params interface{}) error {
	return s.writeMessage(&MCPMessage{Jsonrpc: "2.0", Method: method, Params: params})
}
