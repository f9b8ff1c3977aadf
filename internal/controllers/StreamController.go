package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"tsd/internal/models"
	"tsd/internal/providers"
	"tsd/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type StreamController struct {
	logger   providers.Logger
	ledger   services.LedgerServiceInterface
	transfer providers.TransferProviderInterface
	auth     providers.AuthProviderInterface
	cache    providers.CacheProviderInterface
}

func NewStreamController(logger providers.Logger, ledger services.LedgerServiceInterface, transfer providers.TransferProviderInterface, auth providers.AuthProviderInterface, cache providers.CacheProviderInterface) *StreamController {
	return &StreamController{
		logger:   logger,
		ledger:   ledger,
		transfer: transfer,
		auth:     auth,
		cache:    cache,
	}
}

// --- shared helpers (package-wide) ---

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrPaused):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrNothingWithdrawable),
		errors.Is(err, models.ErrAlreadyCompleted),
		errors.Is(err, models.ErrAlreadyMigrated),
		errors.Is(err, models.ErrNonMonotonicMigration),
		errors.Is(err, models.ErrLegacyRecord),
		errors.Is(err, models.ErrNotLegacy),
		errors.Is(err, models.ErrAdminNotSet),
		errors.Is(err, models.ErrTreasuryNotSet):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrFeeOutOfBounds),
		errors.Is(err, models.ErrUndefinedMigrationStep),
		errors.Is(err, models.ErrBatchTooLarge),
		errors.Is(err, models.ErrOverflow):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func streamCacheKey(id uint64) string {
	return "stream:" + strconv.FormatUint(id, 10)
}

const listCacheKey = "streams"

// --- request payloads ---

type createStreamRequest struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Token     string `json:"token"`
	Amount    int64  `json:"amount"`
	StartTime uint64 `json:"start_time"`
	CliffTime uint64 `json:"cliff_time"`
	EndTime   uint64 `json:"end_time"`
}

type createBatchRequest struct {
	Sender   string                 `json:"sender"`
	Token    string                 `json:"token"`
	Requests []models.StreamRequest `json:"requests"`
}

type withdrawRequest struct {
	StreamID uint64 `json:"stream_id"`
	Receiver string `json:"receiver"`
}

type cancelRequest struct {
	StreamID uint64 `json:"stream_id"`
	Sender   string `json:"sender"`
}

type transferReceiverRequest struct {
	StreamID    uint64 `json:"stream_id"`
	Receiver    string `json:"receiver"`
	NewReceiver string `json:"new_receiver"`
}

type extendTTLRequest struct {
	StreamID uint64 `json:"stream_id"`
}

type depositRequest struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// --- handlers ---

func (sc *StreamController) CreateStream(w http.ResponseWriter, r *http.Request) {
	var payload createStreamRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Sender); err != nil {
		writeError(w, err)
		return
	}

	id, err := sc.ledger.CreateStream(payload.Sender, payload.Receiver, payload.Token,
		payload.Amount, payload.StartTime, payload.CliffTime, payload.EndTime)
	if err != nil {
		writeError(w, err)
		return
	}

	sc.cache.Del(listCacheKey)
	writeJSON(w, http.StatusCreated, map[string]uint64{"stream_id": id})
}

func (sc *StreamController) CreateBatchStreams(w http.ResponseWriter, r *http.Request) {
	var payload createBatchRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Sender); err != nil {
		writeError(w, err)
		return
	}

	ids, err := sc.ledger.CreateBatchStreams(payload.Sender, payload.Token, payload.Requests)
	if err != nil {
		writeError(w, err)
		return
	}

	sc.cache.Del(listCacheKey)
	writeJSON(w, http.StatusCreated, map[string][]uint64{"stream_ids": ids})
}

func (sc *StreamController) Withdraw(w http.ResponseWriter, r *http.Request) {
	var payload withdrawRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Receiver); err != nil {
		writeError(w, err)
		return
	}

	amount, err := sc.ledger.Withdraw(payload.StreamID, payload.Receiver)
	if err != nil {
		writeError(w, err)
		return
	}

	sc.cache.Del(streamCacheKey(payload.StreamID))
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

func (sc *StreamController) CancelStream(w http.ResponseWriter, r *http.Request) {
	var payload cancelRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Sender); err != nil {
		writeError(w, err)
		return
	}

	if err := sc.ledger.CancelStream(payload.StreamID, payload.Sender); err != nil {
		writeError(w, err)
		return
	}

	sc.cache.Del(streamCacheKey(payload.StreamID))
	sc.cache.Del(listCacheKey)
	w.WriteHeader(http.StatusNoContent)
}

func (sc *StreamController) TransferReceiver(w http.ResponseWriter, r *http.Request) {
	var payload transferReceiverRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Receiver); err != nil {
		writeError(w, err)
		return
	}

	if err := sc.ledger.TransferReceiver(payload.StreamID, payload.Receiver, payload.NewReceiver); err != nil {
		writeError(w, err)
		return
	}

	sc.cache.Del(streamCacheKey(payload.StreamID))
	w.WriteHeader(http.StatusNoContent)
}

func (sc *StreamController) ExtendStreamTTL(w http.ResponseWriter, r *http.Request) {
	var payload extendTTLRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := sc.ledger.ExtendStreamTTL(payload.StreamID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (sc *StreamController) GetStream(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sc.serveFromCacheOrCompute(w, streamCacheKey(id), func() (any, error) {
		return sc.ledger.GetStream(id)
	})
}

func (sc *StreamController) ListStreams(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, listCacheKey, func() (any, error) {
		return map[string][]uint64{"stream_ids": sc.ledger.ListStreamIDs()}, nil
	})
}

func (sc *StreamController) Deposit(w http.ResponseWriter, r *http.Request) {
	var payload depositRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := sc.auth.RequireAuth(r, payload.Account); err != nil {
		writeError(w, err)
		return
	}

	if err := sc.transfer.Deposit(payload.Token, payload.Account, payload.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (sc *StreamController) GetBalance(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	account := r.URL.Query().Get("account")
	if token == "" || account == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": sc.transfer.Balance(token, account)})
}

func (sc *StreamController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := sc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
