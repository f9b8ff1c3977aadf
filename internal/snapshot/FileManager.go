package snapshot

import (
	"os"
	"tsd/internal/models"
	"tsd/internal/providers"
	"tsd/internal/snapshot/interfaces"

	json "github.com/goccy/go-json"
)

// FileManager saves and restores the ledger state: every store entry with
// its retention deadline, plus the balance book. Record values are carried
// verbatim, so a record still encoded in the legacy stream schema stays
// legacy across a save/load cycle.
type FileManager struct {
	store      models.StoreInterface
	book       providers.TransferProviderInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store models.StoreInterface, book providers.TransferProviderInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		book:       book,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	envelope := models.SnapshotV2{
		Version:  models.SnapshotVersion,
		Entries:  f.store.Snapshot(),
		Balances: f.book.Snapshot(),
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Try the current envelope format
	var envelope models.SnapshotV2
	if err := json.Unmarshal(decompressedData, &envelope); err == nil && envelope.Entries != nil {
		f.store.Restore(envelope.Entries)
		if envelope.Balances != nil {
			f.book.Restore(envelope.Balances)
		}
		return nil
	}

	// Try the old format: a bare entry map, no envelope, no retention data
	f.logger.Warnf(providers.TypeApp, "Inconsistent snapshot found, try to migrate from old data format")
	var old map[string]json.RawMessage
	if err := json.Unmarshal(decompressedData, &old); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	entries := make(map[string]models.StoreEntry, len(old))
	for k, v := range old {
		entries[k] = models.StoreEntry{Value: v}
	}
	f.store.Restore(entries)
	f.logger.Warnf(providers.TypeApp, "Migration from v1 snapshot format successful")
	return nil
}
