package providers

import (
	"testing"
	"time"
	"tsd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local logger mock to avoid import cycle with testutil
type cacheTestLogger struct{}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

func cacheConfig(enabled bool, sizeMB int, ttl time.Duration) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    sizeMB,
			TTL:     ttl,
		},
	}
}

func TestNewCacheProvider_Disabled(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10, time.Minute), &cacheTestLogger{})
	assert.IsType(t, &noopCache{}, c)

	_, ok := c.Get("anything")
	assert.False(t, ok)
	c.Set("k", []byte("v"))
	c.Del("k")
}

func TestNewCacheProvider_ZeroSize(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0, time.Minute), &cacheTestLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{})
	require.IsType(t, &CacheProvider{}, c)

	c.Set("key1", []byte("value1"))
	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, []byte("value1"), val)
}

func TestCacheProvider_Miss(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{})

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCacheProvider_Overwrite(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{})

	c.Set("key", []byte("first"))
	c.Set("key", []byte("second"))

	val, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), val)
}

func TestCacheProvider_Del(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Minute), &cacheTestLogger{})

	c.Set("key", []byte("value"))
	c.Del("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, time.Second), &cacheTestLogger{})

	c.Set("key", []byte("value"))
	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(1100 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestUnsafeStringToBytes(t *testing.T) {
	assert.Nil(t, unsafeStringToBytes(""))
	assert.Equal(t, []byte("abc"), unsafeStringToBytes("abc"))
}
