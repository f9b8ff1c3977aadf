package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStreamRecord_CurrentSchema(t *testing.T) {
	raw := `{"sender":"alice","receiver":"bob","token":"usdc","amount":1000,"start_time":10,"cliff_time":20,"end_time":100,"withdrawn_amount":5}`

	rec, err := DecodeStreamRecord([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, rec.Current)
	assert.Nil(t, rec.Legacy)
	assert.Equal(t, "alice", rec.Current.Sender)
	assert.Equal(t, uint64(20), rec.Current.CliffTime)
	assert.Equal(t, int64(5), rec.Current.Withdrawn)
}

func TestDecodeStreamRecord_CurrentSchemaZeroCliff(t *testing.T) {
	// cliff_time present but zero is still the current schema; only an
	// absent key marks a legacy record.
	raw := `{"sender":"alice","receiver":"bob","token":"usdc","amount":1000,"start_time":10,"cliff_time":0,"end_time":100,"withdrawn_amount":0}`

	rec, err := DecodeStreamRecord([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, rec.Current)
	assert.Equal(t, uint64(0), rec.Current.CliffTime)
}

func TestDecodeStreamRecord_LegacySchema(t *testing.T) {
	raw := `{"sender":"alice","receiver":"bob","token":"usdc","amount":1000,"start_time":10,"end_time":100,"withdrawn_amount":200}`

	rec, err := DecodeStreamRecord([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, rec.Legacy)
	assert.Nil(t, rec.Current)
	assert.Equal(t, int64(200), rec.Legacy.Withdrawn)
}

func TestDecodeStreamRecord_InvalidJSON(t *testing.T) {
	_, err := DecodeStreamRecord([]byte("not json"))
	assert.Error(t, err)
}

func TestLegacyStream_ToStream(t *testing.T) {
	ls := &LegacyStream{
		Sender:    "alice",
		Receiver:  "bob",
		Token:     "usdc",
		Amount:    700,
		StartTime: 50,
		EndTime:   150,
		Withdrawn: 30,
	}

	s := ls.ToStream()
	assert.Equal(t, ls.Sender, s.Sender)
	assert.Equal(t, ls.Receiver, s.Receiver)
	assert.Equal(t, ls.Amount, s.Amount)
	assert.Equal(t, ls.Withdrawn, s.Withdrawn)
	// Legacy records unlock from start, so the cliff lands on start_time.
	assert.Equal(t, ls.StartTime, s.CliffTime)
}

func TestStream_EncodeCarriesCliff(t *testing.T) {
	s := &Stream{Sender: "alice", CliffTime: 0, EndTime: 10}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	rec, err := DecodeStreamRecord(data)
	require.NoError(t, err)
	assert.NotNil(t, rec.Current)
}

func TestStreamKey_Roundtrip(t *testing.T) {
	key := StreamKey(42)
	assert.Equal(t, "stream:42", key)

	id, ok := ParseStreamKey(key)
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestParseStreamKey_Rejects(t *testing.T) {
	for _, key := range []string{"stream_id", "admin", "stream:", "stream:x", "str:1"} {
		_, ok := ParseStreamKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestMigrationKey(t *testing.T) {
	assert.Equal(t, "migration:2", MigrationKey(2))
}
