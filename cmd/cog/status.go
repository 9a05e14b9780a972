package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cog/internal/indexstore"
)

// statusReport is the JSON shape printed by `cog status` and returned by
// the cog_code_status MCP tool.
type statusReport struct {
	Indexed       bool       `json:"indexed"`
	DocumentCount int        `json:"documentCount"`
	SymbolCount   int        `json:"symbolCount"`
	ContentHash   string     `json:"contentHash"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	FileCount     int        `json:"fileCount,omitempty"`
	Indexer       string     `json:"indexer,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the current index's state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	report := statusReport{
		DocumentCount: w.Store.DocumentCount(),
		SymbolCount:   w.Store.SymbolCount(),
		ContentHash:   w.Store.ContentHash(),
	}

	meta, metaErr := indexstore.LoadMeta(filepath.Join(w.Root, cogDirName))
	if metaErr == nil {
		report.Indexed = true
		report.FileCount = meta.FileCount
		report.Indexer = meta.Indexer
		created := meta.CreatedAt
		report.CreatedAt = &created
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return nil
}
