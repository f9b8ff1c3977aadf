package services

import (
	"strconv"
	"sync"
	"tsd/internal/models"
	"tsd/internal/structures"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

type LedgerServiceInterface interface {
	CreateStream(sender, receiver, token string, amount int64, start, cliff, end uint64) (uint64, error)
	CreateBatchStreams(sender, token string, requests []models.StreamRequest) ([]uint64, error)
	Withdraw(streamID uint64, receiver string) (int64, error)
	CancelStream(streamID uint64, caller string) error
	TransferReceiver(streamID uint64, caller, newReceiver string) error
	ExtendStreamTTL(streamID uint64) error
	GetStream(streamID uint64) (*models.Stream, error)
	ListStreamIDs() []uint64
	LiveStreamCount() uint64
	StreamsCreated() uint64
	StreamsCancelled() uint64
	ValueWithdrawn() int64
	RebuildIndex()
}

// withdrawEvent is the payload of a withdraw event.
type withdrawEvent struct {
	StreamID uint64 `json:"stream_id"`
	Amount   int64  `json:"amount"`
}

// LedgerService owns the stream records. Every mutating operation runs
// under the shared ops lock: it either commits all of its store writes and
// transfers or none of them.
type LedgerService struct {
	store    models.StoreInterface
	transfer TransferServiceInterface
	events   EventEmitterInterface
	clock    Clock
	opsMu    *sync.Mutex

	maxBatchSize int

	idxMu sync.RWMutex
	ids   *roaring64.Bitmap

	created   atomic.Uint64
	cancelled atomic.Uint64
	withdrawn atomic.Int64
}

func NewLedgerService(conf *structures.Config, store models.StoreInterface, transfer TransferServiceInterface, events EventEmitterInterface, clock Clock, opsMu *sync.Mutex) LedgerServiceInterface {
	return &LedgerService{
		store:        store,
		transfer:     transfer,
		events:       events,
		clock:        clock,
		opsMu:        opsMu,
		maxBatchSize: conf.Ledger.MaxBatchSize,
		ids:          roaring64.New(),
	}
}

func validateSchedule(amount int64, start, cliff, end uint64) error {
	if end <= start {
		return models.ErrInvalidRange
	}
	if cliff < start || cliff >= end {
		return models.ErrInvalidRange
	}
	if amount <= 0 {
		return models.ErrInvalidAmount
	}
	return nil
}

func (ls *LedgerService) CreateStream(sender, receiver, token string, amount int64, start, cliff, end uint64) (uint64, error) {
	ls.opsMu.Lock()
	defer ls.opsMu.Unlock()

	if isPaused(ls.store) {
		return 0, models.ErrPaused
	}
	if err := validateSchedule(amount, start, cliff, end); err != nil {
		return 0, err
	}

	feeBps, _ := getScalar[uint32](ls.store, models.KeyFeeBps)
	fee, err := models.CalculateFee(amount, feeBps)
	if err != nil {
		return 0, err
	}
	principal := amount - fee

	if err := ls.transfer.Transfer(token, sender, CustodyAccount, principal); err != nil {
		return 0, err
	}
	if fee > 0 {
		treasury, ok := getScalar[string](ls.store, models.KeyTreasury)
		if !ok {
			_ = ls.transfer.Transfer(token, CustodyAccount, sender, principal)
			return 0, models.ErrTreasuryNotSet
		}
		if err := ls.transfer.Transfer(token, sender, treasury, fee); err != nil {
			_ = ls.transfer.Transfer(token, CustodyAccount, sender, principal)
			return 0, err
		}
	}

	id := ls.nextStreamID()
	ls.extendScalarTTLs()

	ls.putStream(id, &models.Stream{
		Sender:    sender,
		Receiver:  receiver,
		Token:     token,
		Amount:    principal,
		StartTime: start,
		CliffTime: cliff,
		EndTime:   end,
	})
	ls.store.ExtendTTL(models.StreamKey(id))

	ls.indexAdd(id)
	ls.created.Inc()
	ls.events.Emit(TopicCreate, sender, id)
	return id, nil
}

// CreateBatchStreams creates one stream per request against a single
// aggregate transfer. The batch path charges no fee, does not validate
// cliff placement and does not refresh record retention; only end>start
// and a positive amount are enforced, before any value moves.
func (ls *LedgerService) CreateBatchStreams(sender, token string, requests []models.StreamRequest) ([]uint64, error) {
	ls.opsMu.Lock()
	defer ls.opsMu.Unlock()

	if ls.maxBatchSize > 0 && len(requests) > ls.maxBatchSize {
		return nil, models.ErrBatchTooLarge
	}

	var total int64
	for _, req := range requests {
		if req.EndTime <= req.StartTime {
			return nil, models.ErrInvalidRange
		}
		if req.Amount <= 0 {
			return nil, models.ErrInvalidAmount
		}
		next := total + req.Amount
		if next < total {
			return nil, models.ErrOverflow
		}
		total = next
	}
	if len(requests) == 0 {
		return []uint64{}, nil
	}

	if err := ls.transfer.Transfer(token, sender, CustodyAccount, total); err != nil {
		return nil, err
	}

	id, _ := getScalar[uint64](ls.store, models.KeyStreamID)
	ids := make([]uint64, 0, len(requests))
	for _, req := range requests {
		id++
		ls.putStream(id, &models.Stream{
			Sender:    sender,
			Receiver:  req.Receiver,
			Token:     token,
			Amount:    req.Amount,
			StartTime: req.StartTime,
			CliffTime: req.CliffTime,
			EndTime:   req.EndTime,
		})
		ls.indexAdd(id)
		ls.created.Inc()
		ls.events.Emit(TopicCreate, sender, id)
		ids = append(ids, id)
	}
	setScalar(ls.store, models.KeyStreamID, id)

	return ids, nil
}

func (ls *LedgerService) Withdraw(streamID uint64, receiver string) (int64, error) {
	ls.opsMu.Lock()
	defer ls.opsMu.Unlock()

	if isPaused(ls.store) {
		return 0, models.ErrPaused
	}

	stream, err := ls.getStream(streamID)
	if err != nil {
		return 0, err
	}
	if receiver != stream.Receiver {
		return 0, models.ErrUnauthorized
	}

	unlocked, err := models.CalculateUnlocked(stream.Amount, stream.StartTime, stream.CliffTime, stream.EndTime, ls.clock())
	if err != nil {
		return 0, err
	}
	payable := unlocked - stream.Withdrawn
	if payable <= 0 {
		return 0, models.ErrNothingWithdrawable
	}

	if err := ls.transfer.Transfer(stream.Token, CustodyAccount, receiver, payable); err != nil {
		return 0, err
	}

	stream.Withdrawn += payable
	ls.putStream(streamID, stream)
	ls.store.ExtendTTL(models.StreamKey(streamID))

	ls.withdrawn.Add(payable)
	ls.events.Emit(TopicWithdraw, receiver, withdrawEvent{StreamID: streamID, Amount: payable})
	return payable, nil
}

// CancelStream settles the unlocked remainder to the receiver, refunds the
// rest to the sender and removes the record. The id is permanently retired.
func (ls *LedgerService) CancelStream(streamID uint64, caller string) error {
	ls.opsMu.Lock()
	defer ls.opsMu.Unlock()

	if isPaused(ls.store) {
		return models.ErrPaused
	}

	stream, err := ls.getStream(streamID)
	if err != nil {
		return err
	}
	if caller != stream.Sender {
		return models.ErrUnauthorized
	}

	now := ls.clock()
	if now >= stream.EndTime {
		return models.ErrAlreadyCompleted
	}

	unlocked, err := models.CalculateUnlocked(stream.Amount, stream.StartTime, stream.CliffTime, stream.EndTime, now)
	if err != nil {
		return err
	}
	toReceiver := unlocked - stream.Withdrawn
	refund := stream.Amount - unlocked

	if toReceiver > 0 {
		if err := ls.transfer.Transfer(stream.Token, CustodyAccount, stream.Receiver, toReceiver); err != nil {
			return err
		}
	}
	if refund > 0 {
		if err := ls.transfer.Transfer(stream.Token, CustodyAccount, stream.Sender, refund); err != nil {
			if toReceiver > 0 {
				_ = ls.transfer.Transfer(stream.Token, stream.Receiver, CustodyAccount, toReceiver)
			}
			return err
		}
	}

	ls.store.Remove(models.StreamKey(streamID))
	ls.indexRemove(streamID)
	ls.cancelled.Inc()
	ls.events.Emit(TopicCancel, strconv.FormatUint(streamID, 10), stream.Sender)
	return nil
}

func (ls *LedgerService) TransferReceiver(streamID uint64, caller, newReceiver string) error {
	ls.opsMu.Lock()
	defer ls.opsMu.Unlock()

	stream, err := ls.getStream(streamID)
	if err != nil {
		return err
	}
	if caller != stream.Receiver {
		return models.ErrUnauthorized
	}

	stream.Receiver = newReceiver
	ls.putStream(streamID, stream)
	ls.events.Emit(TopicTransfer, strconv.FormatUint(streamID, 10), newReceiver)
	return nil
}

func (ls *LedgerService) ExtendStreamTTL(streamID uint64) error {
	key := models.StreamKey(streamID)
	if !ls.store.Has(key) {
		return models.ErrNotFound
	}
	ls.store.ExtendTTL(key)
	return nil
}

func (ls *LedgerService) GetStream(streamID uint64) (*models.Stream, error) {
	return ls.getStream(streamID)
}

func (ls *LedgerService) ListStreamIDs() []uint64 {
	ls.idxMu.RLock()
	defer ls.idxMu.RUnlock()
	return ls.ids.ToArray()
}

func (ls *LedgerService) LiveStreamCount() uint64 {
	ls.idxMu.RLock()
	defer ls.idxMu.RUnlock()
	return ls.ids.GetCardinality()
}

func (ls *LedgerService) StreamsCreated() uint64   { return ls.created.Load() }
func (ls *LedgerService) StreamsCancelled() uint64 { return ls.cancelled.Load() }
func (ls *LedgerService) ValueWithdrawn() int64    { return ls.withdrawn.Load() }

// RebuildIndex re-derives the live-id index from store keys. Called after a
// snapshot restore.
func (ls *LedgerService) RebuildIndex() {
	ids := roaring64.New()
	for _, key := range ls.store.Keys("stream:") {
		if id, ok := models.ParseStreamKey(key); ok {
			ids.Add(id)
		}
	}
	ls.idxMu.Lock()
	ls.ids = ids
	ls.idxMu.Unlock()
}

func (ls *LedgerService) nextStreamID() uint64 {
	id, _ := getScalar[uint64](ls.store, models.KeyStreamID)
	id++
	setScalar(ls.store, models.KeyStreamID, id)
	return id
}

// extendScalarTTLs refreshes retention on the ledger-wide scalars so an
// active ledger never loses its configuration.
func (ls *LedgerService) extendScalarTTLs() {
	for _, key := range []string{
		models.KeyStreamID, models.KeyAdmin, models.KeyFeeBps,
		models.KeyTreasury, models.KeyIsPaused, models.KeyContractVersion,
	} {
		ls.store.ExtendTTL(key)
	}
}

func (ls *LedgerService) getStream(streamID uint64) (*models.Stream, error) {
	data, ok := ls.store.Get(models.StreamKey(streamID))
	if !ok {
		return nil, models.ErrNotFound
	}
	rec, err := models.DecodeStreamRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.Current == nil {
		return nil, models.ErrLegacyRecord
	}
	return rec.Current, nil
}

func (ls *LedgerService) putStream(streamID uint64, stream *models.Stream) {
	data, err := json.Marshal(stream)
	if err != nil {
		return
	}
	ls.store.Set(models.StreamKey(streamID), data)
}

func (ls *LedgerService) indexAdd(id uint64) {
	ls.idxMu.Lock()
	ls.ids.Add(id)
	ls.idxMu.Unlock()
}

func (ls *LedgerService) indexRemove(id uint64) {
	ls.idxMu.Lock()
	ls.ids.Remove(id)
	ls.idxMu.Unlock()
}
