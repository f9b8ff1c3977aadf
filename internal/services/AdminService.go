package services

import (
	"sync"
	"tsd/internal/models"
)

const maxFeeBps = 1000

type AdminServiceInterface interface {
	Initialize(admin string) error
	InitializeFee(admin string, feeBps uint32, treasury string) error
	UpdateFee(admin string, feeBps uint32) error
	SetPause(admin string, paused bool) error
	IsPaused() bool
	FeeBps() uint32
	Treasury() (string, bool)
}

// AdminService holds the ledger-wide configuration: admin identity, fee
// rate, treasury address and the pause flag.
type AdminService struct {
	store models.StoreInterface
	opsMu *sync.Mutex
}

func NewAdminService(store models.StoreInterface, opsMu *sync.Mutex) AdminServiceInterface {
	return &AdminService{store: store, opsMu: opsMu}
}

// Initialize bootstraps the admin identity and clears the pause flag. It
// overwrites any previous admin: authentication of the caller is the
// guard, not prior state.
func (as *AdminService) Initialize(admin string) error {
	if admin == "" {
		return models.ErrUnauthorized
	}
	as.opsMu.Lock()
	defer as.opsMu.Unlock()
	setScalar(as.store, models.KeyAdmin, admin)
	setScalar(as.store, models.KeyIsPaused, false)
	return nil
}

func (as *AdminService) InitializeFee(admin string, feeBps uint32, treasury string) error {
	if admin == "" {
		return models.ErrUnauthorized
	}
	if feeBps > maxFeeBps {
		return models.ErrFeeOutOfBounds
	}
	as.opsMu.Lock()
	defer as.opsMu.Unlock()
	setScalar(as.store, models.KeyAdmin, admin)
	setScalar(as.store, models.KeyFeeBps, feeBps)
	setScalar(as.store, models.KeyTreasury, treasury)
	return nil
}

func (as *AdminService) UpdateFee(admin string, feeBps uint32) error {
	as.opsMu.Lock()
	defer as.opsMu.Unlock()
	if err := requireAdmin(as.store, admin); err != nil {
		return err
	}
	if feeBps > maxFeeBps {
		return models.ErrFeeOutOfBounds
	}
	setScalar(as.store, models.KeyFeeBps, feeBps)
	return nil
}

func (as *AdminService) SetPause(admin string, paused bool) error {
	as.opsMu.Lock()
	defer as.opsMu.Unlock()
	if err := requireAdmin(as.store, admin); err != nil {
		return err
	}
	setScalar(as.store, models.KeyIsPaused, paused)
	return nil
}

func (as *AdminService) IsPaused() bool {
	return isPaused(as.store)
}

func (as *AdminService) FeeBps() uint32 {
	feeBps, _ := getScalar[uint32](as.store, models.KeyFeeBps)
	return feeBps
}

func (as *AdminService) Treasury() (string, bool) {
	return getScalar[string](as.store, models.KeyTreasury)
}
