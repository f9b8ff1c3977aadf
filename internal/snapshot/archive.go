package snapshot

import (
	"os"
	"path/filepath"
	"sync"
	"time"
	"tsd/internal/providers"
	"tsd/internal/snapshot/interfaces"
	"tsd/internal/structures"

	json "github.com/goccy/go-json"
)

const archiveFileName = "expired.arc.zst"

// ArchiveEntry is one expired record kept for the books.
type ArchiveEntry struct {
	Value     json.RawMessage `json:"value"`
	EvictedAt time.Time       `json:"evicted_at"`
}

type archiveFile struct {
	Entries map[string]ArchiveEntry `json:"entries"`
}

// Archive collects records evicted by the retention sweep and appends them
// to a compressed file instead of dropping them. Disabled when no archive
// directory is configured.
type Archive struct {
	mu         sync.Mutex
	dir        string
	pending    map[string]ArchiveEntry
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchive(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *Archive {
	return &Archive{
		dir:        conf.Ledger.ArchiveDir,
		pending:    make(map[string]ArchiveEntry),
		compressor: compressor,
		logger:     logger,
	}
}

// Evict buffers an expired record. No disk I/O happens until Flush.
func (a *Archive) Evict(key string, value []byte) {
	if a.dir == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[key] = ArchiveEntry{
		Value:     append(json.RawMessage(nil), value...),
		EvictedAt: time.Now(),
	}
}

// Flush merges pending entries into the archive file, atomically.
func (a *Archive) Flush() error {
	if a.dir == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pending) == 0 {
		return nil
	}

	af := a.load()
	for k, e := range af.Entries {
		if _, ok := a.pending[k]; !ok {
			a.pending[k] = e
		}
	}
	af.Entries = a.pending

	jsonData, err := json.Marshal(af)
	if err != nil {
		return err
	}
	compressed, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}
	path := a.path()
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, compressed, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		return err
	}

	a.pending = make(map[string]ArchiveEntry)
	return nil
}

func (a *Archive) load() *archiveFile {
	af := &archiveFile{Entries: make(map[string]ArchiveEntry)}
	data, err := os.ReadFile(a.path())
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Errorf(providers.TypeApp, "Failed to read archive: %s", err)
		}
		return af
	}
	decompressed, err := a.compressor.Decompress(data)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to decompress archive: %s", err)
		return af
	}
	if err := json.Unmarshal(decompressed, af); err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to parse archive: %s", err)
		af.Entries = make(map[string]ArchiveEntry)
	}
	if af.Entries == nil {
		af.Entries = make(map[string]ArchiveEntry)
	}
	return af
}

func (a *Archive) path() string {
	return filepath.Join(a.dir, archiveFileName)
}
