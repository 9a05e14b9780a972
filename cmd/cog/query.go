package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cog/internal/scip"
)

var (
	queryFind      string
	queryRefs      string
	querySymbols   string
	queryStructure bool
	queryKind      string
	queryLimit     int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the workspace index",
	Long: `Runs one of four query modes against the persisted index:

  --find NAME       exact/case-insensitive name lookup, ranked by match quality
  --refs NAME       every occurrence (definitions and references) of NAME
  --symbols FILE    every symbol declared in FILE
  --structure       a per-directory document/symbol summary

Exactly one mode flag must be given. Results are printed as JSON.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryFind, "find", "", "Find a symbol by name")
	queryCmd.Flags().StringVar(&queryRefs, "refs", "", "Find references to a symbol by name")
	queryCmd.Flags().StringVar(&querySymbols, "symbols", "", "List symbols declared in a file")
	queryCmd.Flags().BoolVar(&queryStructure, "structure", false, "Summarize the workspace structure")
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "Restrict to a symbol kind (function, class, method, ...)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum results (mode-specific default if 0)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	var kind *int32
	if queryKind != "" {
		k, ok := scip.KindByName[strings.ToLower(queryKind)]
		if !ok {
			return fmt.Errorf("unknown kind: %s", queryKind)
		}
		kind = &k
	}

	modes := 0
	for _, set := range []bool{queryFind != "", queryRefs != "", querySymbols != "", queryStructure} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return fmt.Errorf("exactly one of --find, --refs, --symbols, --structure is required")
	}

	var result interface{}
	switch {
	case queryFind != "":
		result = w.Store.Find(queryFind, kind, queryLimit)
	case queryRefs != "":
		result = w.Store.Refs(queryRefs, kind, queryLimit)
	case querySymbols != "":
		result = w.Store.Symbols(querySymbols, kind)
	case queryStructure:
		result = w.Store.Structure()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
