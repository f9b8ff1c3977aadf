package providers

import (
	"tsd/internal/models"
	"tsd/internal/structures"
)

// NewStoreProvider builds the record store with retention settings from
// config.
func NewStoreProvider(conf *structures.Config, logger Logger) models.StoreInterface {
	logger.Infof(TypeApp, "Store retention: limit=%s threshold=%s",
		conf.Ledger.TTLLimit, conf.Ledger.TTLThreshold)
	return models.NewMemoryStore(conf.Ledger.TTLThreshold, conf.Ledger.TTLLimit)
}
