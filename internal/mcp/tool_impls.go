package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	cogerrors "cog/internal/errors"
	"cog/internal/indexstore"
	"cog/internal/scip"
)

func paramKind(params map[string]interface{}) (*int32, error) {
	raw, ok := params["kind"].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	k, ok := scip.KindByName[strings.ToLower(raw)]
	if !ok {
		return nil, cogerrors.New(cogerrors.UserInput, "unknown kind: "+raw)
	}
	return &k, nil
}

func paramLimit(params map[string]interface{}) int {
	switch v := params["limit"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func requiredString(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", cogerrors.New(cogerrors.UserInput, "missing required param: "+key)
	}
	return v, nil
}

// toolIndex implements cog_code_index.
func (s *MCPServer) toolIndex(params map[string]interface{}) (interface{}, error) {
	pattern, _ := params["pattern"].(string)
	count, err := s.Maintainer.IndexGlob(context.Background(), pattern)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"filesIndexed": count}, nil
}

// toolQuery implements cog_code_query's four modes.
func (s *MCPServer) toolQuery(params map[string]interface{}) (interface{}, error) {
	mode, err := requiredString(params, "mode")
	if err != nil {
		return nil, err
	}
	kind, err := paramKind(params)
	if err != nil {
		return nil, err
	}

	switch mode {
	case "find":
		name, err := requiredString(params, "name")
		if err != nil {
			return nil, err
		}
		return s.Store.Find(name, kind, paramLimit(params)), nil
	case "refs":
		name, err := requiredString(params, "name")
		if err != nil {
			return nil, err
		}
		return s.Store.Refs(name, kind, paramLimit(params)), nil
	case "symbols":
		file, err := requiredString(params, "file")
		if err != nil {
			return nil, err
		}
		return s.Store.Symbols(file, kind), nil
	case "structure":
		return s.Store.Structure(), nil
	default:
		return nil, cogerrors.New(cogerrors.UserInput, "unknown query mode: "+mode)
	}
}

// toolEdit implements cog_code_edit: replace the first occurrence of old
// with new in file, then re-extract and persist with rollback.
func (s *MCPServer) toolEdit(params map[string]interface{}) (interface{}, error) {
	file, err := requiredString(params, "file")
	if err != nil {
		return nil, err
	}
	old, err := requiredString(params, "old")
	if err != nil {
		return nil, err
	}
	newText, _ := params["new"].(string)

	abs := filepath.Join(s.root, file)
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, cogerrors.Wrap(cogerrors.Filesystem, "reading "+file, err)
	}
	if !strings.Contains(string(content), old) {
		return nil, cogerrors.New(cogerrors.UserInput, "old text not found in "+file)
	}
	updated := strings.Replace(string(content), old, newText, 1)

	if err := s.Maintainer.EditWithRollback(file, []byte(updated)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"file": file, "edited": true}, nil
}

// toolCreate implements cog_code_create.
func (s *MCPServer) toolCreate(params map[string]interface{}) (interface{}, error) {
	file, err := requiredString(params, "file")
	if err != nil {
		return nil, err
	}
	content, _ := params["content"].(string)

	if err := s.Maintainer.CreateWithRollback(file, []byte(content)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"file": file, "created": true}, nil
}

// toolDelete implements cog_code_delete.
func (s *MCPServer) toolDelete(params map[string]interface{}) (interface{}, error) {
	file, err := requiredString(params, "file")
	if err != nil {
		return nil, err
	}
	if err := s.Maintainer.DeleteWithRollback(file); err != nil {
		return nil, err
	}
	return map[string]interface{}{"file": file, "deleted": true}, nil
}

// toolRename implements cog_code_rename.
func (s *MCPServer) toolRename(params map[string]interface{}) (interface{}, error) {
	oldPath, err := requiredString(params, "old")
	if err != nil {
		return nil, err
	}
	newPath, err := requiredString(params, "to")
	if err != nil {
		return nil, err
	}
	if err := s.Maintainer.RenameWithRollback(oldPath, newPath); err != nil {
		return nil, err
	}
	return map[string]interface{}{"old": oldPath, "to": newPath, "renamed": true}, nil
}

// toolStatus implements cog_code_status.
func (s *MCPServer) toolStatus(params map[string]interface{}) (interface{}, error) {
	result := map[string]interface{}{
		"documentCount": s.Store.DocumentCount(),
		"symbolCount":   s.Store.SymbolCount(),
		"contentHash":   s.Store.ContentHash(),
	}

	meta, err := indexstore.LoadMeta(filepath.Join(s.root, ".cog"))
	if err != nil {
		result["indexed"] = false
		return result, nil
	}
	result["indexed"] = true
	result["createdAt"] = meta.CreatedAt
	result["fileCount"] = meta.FileCount
	result["indexer"] = meta.Indexer
	return result, nil
}
