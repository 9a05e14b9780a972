package indexstore

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	cogerrors "cog/internal/errors"

	"golang.org/x/crypto/blake2b"
)

// MetadataVersion is the current version of the on-disk metadata format.
const MetadataVersion = 1

const metadataFile = "index-meta.json"

// IndexMeta records provenance for a persisted SCIP index: when it was
// built, by what, and how long it took. It carries no git-freshness
// tracking — the watcher keeps the in-memory index current instead of
// comparing against repo history.
type IndexMeta struct {
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	FileCount   int       `json:"fileCount"`
	Duration    string    `json:"duration"`
	Indexer     string    `json:"indexer"`
	IndexerArgs []string  `json:"indexerArgs,omitempty"`
	// ContentHash is a blake2b-256 fingerprint of the encoded index.scip
	// bytes as last persisted. `cog status` reports the store's own
	// in-process hash and does not compare it against this field.
	ContentHash string `json:"contentHash,omitempty"`
}

// HashIndex fingerprints encoded index bytes for IndexMeta.ContentHash.
func HashIndex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LoadMeta reads index-meta.json from cogDir. A missing file is reported as
// a Filesystem error so callers can distinguish "never indexed" from a
// corrupt metadata file.
func LoadMeta(cogDir string) (*IndexMeta, error) {
	path := filepath.Join(cogDir, metadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cogerrors.Wrap(cogerrors.Filesystem, "no index metadata found, run \"cog index\" first", err)
		}
		return nil, cogerrors.Wrap(cogerrors.Filesystem, "reading index metadata", err)
	}

	var meta IndexMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, cogerrors.Wrap(cogerrors.Codec, "decoding index metadata", err)
	}
	return &meta, nil
}

// Save writes meta to cogDir/index-meta.json via write-to-temp-then-rename,
// so a crash mid-write never leaves a half-written metadata file behind.
func Save(cogDir string, meta *IndexMeta) error {
	meta.Version = MetadataVersion

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return cogerrors.Wrap(cogerrors.Codec, "encoding index metadata", err)
	}

	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "creating cog directory", err)
	}

	final := filepath.Join(cogDir, metadataFile)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "writing index metadata", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "committing index metadata", err)
	}
	return nil
}
