package models

// SnapshotV2 is the on-disk snapshot envelope with an explicit version
// field. Entries preserve each record's encoding verbatim, so records still
// stored in the legacy stream schema survive save/load cycles unconverted.
type SnapshotV2 struct {
	Version  int                         `json:"version"`
	Entries  map[string]StoreEntry       `json:"entries"`
	Balances map[string]map[string]int64 `json:"balances"`
}

// Snapshot files written before the envelope was introduced are a bare
// map[string]json.RawMessage of store entries with no retention metadata;
// the file manager falls back to that shape on load.
const SnapshotVersion = 2
