package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"tsd/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "TSD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "TSD_SAVE_INTERVAL")
	viper.BindEnv("ledger.sweepInterval", "TSD_SWEEP_INTERVAL")
	viper.BindEnv("ledger.authSecret", "TSD_AUTH_SECRET")
	viper.BindEnv("cache.enabled", "TSD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TSD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	applyLedgerDefaults(&conf.Ledger)

	conf.AppName = "TokenStreamDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// Retention defaults: records live ~60 days
// and are topped up once less than ~30 days remain.
func applyLedgerDefaults(lc *structures.LedgerConfig) {
	if lc.TTLLimit <= 0 {
		lc.TTLLimit = 60 * 24 * time.Hour
	}
	if lc.TTLThreshold <= 0 {
		lc.TTLThreshold = 30 * 24 * time.Hour
	}
	if lc.SweepInterval <= 0 {
		lc.SweepInterval = time.Hour
	}
	if lc.MaxBatchSize <= 0 {
		lc.MaxBatchSize = 100
	}
}
