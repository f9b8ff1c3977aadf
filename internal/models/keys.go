package models

import (
	"strconv"
	"strings"
)

// Scalar store keys.
const (
	KeyStreamID        = "stream_id"
	KeyAdmin           = "admin"
	KeyFeeBps          = "fee_bps"
	KeyTreasury        = "treasury"
	KeyIsPaused        = "is_paused"
	KeyContractVersion = "contract_version"
)

const streamKeyPrefix = "stream:"

// StreamKey returns the store key for a stream record.
func StreamKey(id uint64) string {
	return streamKeyPrefix + strconv.FormatUint(id, 10)
}

// ParseStreamKey extracts the id from a stream record key.
func ParseStreamKey(key string) (uint64, bool) {
	rest, ok := strings.CutPrefix(key, streamKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// MigrationKey returns the store key for a per-version executed flag.
func MigrationKey(version uint32) string {
	return "migration:" + strconv.FormatUint(uint64(version), 10)
}
