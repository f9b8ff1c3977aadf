package controllers

import (
	"net/http"
	"tsd/internal/providers"
	"tsd/internal/services"
)

type AdminController struct {
	logger    providers.Logger
	admin     services.AdminServiceInterface
	migration services.MigrationServiceInterface
	auth      providers.AuthProviderInterface
	cache     providers.CacheProviderInterface
}

func NewAdminController(logger providers.Logger, admin services.AdminServiceInterface, migration services.MigrationServiceInterface, auth providers.AuthProviderInterface, cache providers.CacheProviderInterface) *AdminController {
	return &AdminController{
		logger:    logger,
		admin:     admin,
		migration: migration,
		auth:      auth,
		cache:     cache,
	}
}

type initializeRequest struct {
	Admin string `json:"admin"`
}

type initializeFeeRequest struct {
	Admin    string `json:"admin"`
	FeeBps   uint32 `json:"fee_bps"`
	Treasury string `json:"treasury"`
}

type updateFeeRequest struct {
	Admin  string `json:"admin"`
	FeeBps uint32 `json:"fee_bps"`
}

type setPauseRequest struct {
	Admin  string `json:"admin"`
	Paused bool   `json:"paused"`
}

type migrateRequest struct {
	Admin         string `json:"admin"`
	TargetVersion uint32 `json:"target_version"`
}

type migrateStreamRequest struct {
	Admin    string `json:"admin"`
	StreamID uint64 `json:"stream_id"`
}

func (ac *AdminController) Initialize(w http.ResponseWriter, r *http.Request) {
	var payload initializeRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.admin.Initialize(payload.Admin); err != nil {
		writeError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Ledger initialized, admin=%s", payload.Admin)
	w.WriteHeader(http.StatusCreated)
}

func (ac *AdminController) InitializeFee(w http.ResponseWriter, r *http.Request) {
	var payload initializeFeeRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.admin.InitializeFee(payload.Admin, payload.FeeBps, payload.Treasury); err != nil {
		writeError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Fee initialized: %d bps, treasury=%s", payload.FeeBps, payload.Treasury)
	w.WriteHeader(http.StatusCreated)
}

func (ac *AdminController) UpdateFee(w http.ResponseWriter, r *http.Request) {
	var payload updateFeeRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.admin.UpdateFee(payload.Admin, payload.FeeBps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AdminController) SetPause(w http.ResponseWriter, r *http.Request) {
	var payload setPauseRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.admin.SetPause(payload.Admin, payload.Paused); err != nil {
		writeError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Pause flag set to %t", payload.Paused)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AdminController) Migrate(w http.ResponseWriter, r *http.Request) {
	var payload migrateRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.migration.Migrate(payload.Admin, payload.TargetVersion); err != nil {
		writeError(w, err)
		return
	}
	ac.logger.Infof(providers.TypeApp, "Migrated ledger to version %d", payload.TargetVersion)
	writeJSON(w, http.StatusOK, map[string]uint32{"version": ac.migration.Version()})
}

func (ac *AdminController) MigrateSingleStream(w http.ResponseWriter, r *http.Request) {
	var payload migrateStreamRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.auth.RequireAuth(r, payload.Admin); err != nil {
		writeError(w, err)
		return
	}

	if err := ac.migration.MigrateSingleStream(payload.Admin, payload.StreamID); err != nil {
		writeError(w, err)
		return
	}
	ac.cache.Del(streamCacheKey(payload.StreamID))
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AdminController) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint32{"version": ac.migration.Version()})
}
