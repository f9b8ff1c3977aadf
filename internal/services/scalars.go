package services

import (
	"sync"
	"time"
	"tsd/internal/models"

	json "github.com/goccy/go-json"
)

// Ledger event topics.
const (
	TopicCreate        = "create"
	TopicWithdraw      = "withdraw"
	TopicCancel        = "cancel"
	TopicTransfer      = "transfer"
	TopicMigrate       = "migrate"
	TopicMigrateStream = "mig_strm"
)

// CustodyAccount holds principal between creation and withdrawal or
// cancellation.
const CustodyAccount = "custody"

// TransferServiceInterface is the slice of the external settlement system
// the ledger needs: an atomic all-or-nothing value transfer.
type TransferServiceInterface interface {
	Transfer(token, from, to string, amount int64) error
}

// EventEmitterInterface publishes ledger events.
type EventEmitterInterface interface {
	Emit(topic, key string, payload any)
}

// Clock supplies the ledger timestamp, in unix seconds. Injected so tests
// can pin time.
type Clock func() uint64

func NewSystemClock() Clock {
	return func() uint64 {
		return uint64(time.Now().Unix())
	}
}

// NewOpsLock provides the mutex shared by all ledger-mutating services.
// One held lock = one atomically committed operation; nothing else orders
// operations against each other.
func NewOpsLock() *sync.Mutex {
	return &sync.Mutex{}
}

func getScalar[T any](store models.StoreInterface, key string) (T, bool) {
	var v T
	data, ok := store.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

func setScalar[T any](store models.StoreInterface, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	store.Set(key, data)
}

func encodeStream(s *models.Stream) ([]byte, error) {
	return json.Marshal(s)
}

func isPaused(store models.StoreInterface) bool {
	paused, _ := getScalar[bool](store, models.KeyIsPaused)
	return paused
}

func requireAdmin(store models.StoreInterface, caller string) error {
	admin, ok := getScalar[string](store, models.KeyAdmin)
	if !ok {
		return models.ErrAdminNotSet
	}
	if caller != admin {
		return models.ErrUnauthorized
	}
	return nil
}
