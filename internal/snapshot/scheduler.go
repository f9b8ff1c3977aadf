package snapshot

import (
	"sync"
	"time"
	"tsd/internal/models"
	"tsd/internal/providers"
	"tsd/internal/services"
	"tsd/internal/snapshot/interfaces"
	"tsd/internal/structures"

	"github.com/roylee0704/gron"
)

// Scheduler drives the two periodic maintenance tasks: snapshot
// persistence and the retention sweep that archives expired records.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	ledger      services.LedgerServiceInterface
	store       models.StoreInterface
	fileManager *FileManager
	archive     *Archive
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron

	// opsMu is the mutex shared with the ledger services. Holding it
	// while snapshotting or sweeping keeps the store and the balance
	// book from being captured mid-operation.
	opsMu *sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted snapshot to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(s.config.Ledger.SweepInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		evicted := s.store.SweepExpired()
		if len(evicted) == 0 {
			return
		}
		for key, value := range evicted {
			if _, ok := models.ParseStreamKey(key); ok {
				s.archive.Evict(key, value)
			}
		}
		if err := s.archive.Flush(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while archiving expired records: %s", err)
		}
		s.ledger.RebuildIndex()
		s.logger.Infof(providers.TypeApp, "Retention sweep evicted %d records", len(evicted))
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	s.ledger.RebuildIndex()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting ledger snapshot to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, ledger services.LedgerServiceInterface, store models.StoreInterface, fileManager *FileManager, archive *Archive, metrics providers.MetricsProviderInterface, opsMu *sync.Mutex) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		ledger:      ledger,
		store:       store,
		fileManager: fileManager,
		archive:     archive,
		metrics:     metrics,
		opsMu:       opsMu,
	}
}
