package models

import (
	json "github.com/goccy/go-json"
)

// Stream is the current record schema (version 2).
type Stream struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Token     string `json:"token"`
	Amount    int64  `json:"amount"`
	StartTime uint64 `json:"start_time"`
	CliffTime uint64 `json:"cliff_time"`
	EndTime   uint64 `json:"end_time"`
	Withdrawn int64  `json:"withdrawn_amount"`
}

// LegacyStream is the version 1 record schema, before cliff support.
// It exists only to be read during migration.
type LegacyStream struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Token     string `json:"token"`
	Amount    int64  `json:"amount"`
	StartTime uint64 `json:"start_time"`
	EndTime   uint64 `json:"end_time"`
	Withdrawn int64  `json:"withdrawn_amount"`
}

// ToStream converts a legacy record to the current schema. Legacy streams
// had no cliff, so they unlock immediately from start_time.
func (ls *LegacyStream) ToStream() *Stream {
	return &Stream{
		Sender:    ls.Sender,
		Receiver:  ls.Receiver,
		Token:     ls.Token,
		Amount:    ls.Amount,
		StartTime: ls.StartTime,
		CliffTime: ls.StartTime,
		EndTime:   ls.EndTime,
		Withdrawn: ls.Withdrawn,
	}
}

// StreamRequest is an unsaved creation intent used by batch creation.
// Sender and token are shared across the batch.
type StreamRequest struct {
	Receiver  string `json:"receiver"`
	Amount    int64  `json:"amount"`
	StartTime uint64 `json:"start_time"`
	CliffTime uint64 `json:"cliff_time"`
	EndTime   uint64 `json:"end_time"`
}

// StreamRecord is the tagged result of decoding a stored record: exactly one
// of Current or Legacy is set.
type StreamRecord struct {
	Current *Stream
	Legacy  *LegacyStream
}

// schemaProbe discriminates the two record shapes without relying on decode
// failure: the cliff_time key is present iff the record is current-schema.
type schemaProbe struct {
	CliffTime *uint64 `json:"cliff_time"`
}

// DecodeStreamRecord reads a stored record as either the current or the
// legacy schema.
func DecodeStreamRecord(data []byte) (*StreamRecord, error) {
	var probe schemaProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.CliffTime != nil {
		var s Stream
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &StreamRecord{Current: &s}, nil
	}
	var ls LegacyStream
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, err
	}
	return &StreamRecord{Legacy: &ls}, nil
}
