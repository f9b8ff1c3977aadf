package services

import (
	"sync"
	"tsd/internal/models"
)

type MigrationServiceInterface interface {
	Version() uint32
	Migrate(admin string, targetVersion uint32) error
	MigrateSingleStream(admin string, streamID uint64) error
}

// MigrationService upgrades stored records across schema versions. The
// version counter only moves forward and each target version executes at
// most once, even if the counter were ever rolled back.
type MigrationService struct {
	store  models.StoreInterface
	events EventEmitterInterface
	opsMu  *sync.Mutex
}

func NewMigrationService(store models.StoreInterface, events EventEmitterInterface, opsMu *sync.Mutex) MigrationServiceInterface {
	return &MigrationService{store: store, events: events, opsMu: opsMu}
}

// Version returns the current schema version, defaulting to 1 when unset.
func (ms *MigrationService) Version() uint32 {
	if v, ok := getScalar[uint32](ms.store, models.KeyContractVersion); ok {
		return v
	}
	return 1
}

func (ms *MigrationService) Migrate(admin string, targetVersion uint32) error {
	ms.opsMu.Lock()
	defer ms.opsMu.Unlock()

	if err := requireAdmin(ms.store, admin); err != nil {
		return err
	}
	if ms.isExecuted(targetVersion) {
		return models.ErrAlreadyMigrated
	}
	current := ms.Version()
	if targetVersion <= current {
		return models.ErrNonMonotonicMigration
	}

	for version := current + 1; version <= targetVersion; version++ {
		switch version {
		case 2:
			ms.migrateV1ToV2()
		default:
			return models.ErrUndefinedMigrationStep
		}
	}

	setScalar(ms.store, models.MigrationKey(targetVersion), true)
	setScalar(ms.store, models.KeyContractVersion, targetVersion)
	ms.events.Emit(TopicMigrate, admin, targetVersion)
	return nil
}

// migrateV1ToV2 walks every allocated stream id. Records already in the
// current schema are skipped. Records still in the legacy schema are left
// untouched here: converting them is done per record via
// MigrateSingleStream.
func (ms *MigrationService) migrateV1ToV2() {
	count, _ := getScalar[uint64](ms.store, models.KeyStreamID)
	for streamID := uint64(1); streamID <= count; streamID++ {
		key := models.StreamKey(streamID)
		if !ms.store.Has(key) {
			continue
		}
		data, ok := ms.store.Get(key)
		if !ok {
			continue
		}
		if rec, err := models.DecodeStreamRecord(data); err == nil && rec.Current != nil {
			continue
		}
	}
}

// MigrateSingleStream converts one legacy record to the current schema,
// setting the cliff to the start time. It is the remedial path for records
// the bulk step leaves behind.
func (ms *MigrationService) MigrateSingleStream(admin string, streamID uint64) error {
	ms.opsMu.Lock()
	defer ms.opsMu.Unlock()

	if err := requireAdmin(ms.store, admin); err != nil {
		return err
	}

	key := models.StreamKey(streamID)
	data, ok := ms.store.Get(key)
	if !ok {
		return models.ErrNotFound
	}
	rec, err := models.DecodeStreamRecord(data)
	if err != nil || rec.Legacy == nil {
		return models.ErrNotLegacy
	}

	migrated, err := encodeStream(rec.Legacy.ToStream())
	if err != nil {
		return err
	}
	ms.store.Set(key, migrated)
	ms.events.Emit(TopicMigrateStream, admin, streamID)
	return nil
}

func (ms *MigrationService) isExecuted(version uint32) bool {
	executed, _ := getScalar[bool](ms.store, models.MigrationKey(version))
	return executed
}
