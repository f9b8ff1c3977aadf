package controllers

import (
	"fmt"
	"net/http"
	"time"
	"tsd/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	ledger    services.LedgerServiceInterface
	admin     services.AdminServiceInterface
	migration services.MigrationServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Version          uint32  `json:"version"`
	Paused           bool    `json:"paused"`
	LiveStreams      uint64  `json:"live_streams"`
	StreamsCreated   uint64  `json:"streams_created"`
	StreamsCancelled uint64  `json:"streams_cancelled"`
	ValueWithdrawn   int64   `json:"value_withdrawn"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:           "ok",
		Uptime:           formatDuration(uptime),
		UptimeSeconds:    uptime.Seconds(),
		Version:          hc.migration.Version(),
		Paused:           hc.admin.IsPaused(),
		LiveStreams:      hc.ledger.LiveStreamCount(),
		StreamsCreated:   hc.ledger.StreamsCreated(),
		StreamsCancelled: hc.ledger.StreamsCancelled(),
		ValueWithdrawn:   hc.ledger.ValueWithdrawn(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(ledger services.LedgerServiceInterface, admin services.AdminServiceInterface, migration services.MigrationServiceInterface) *HealthController {
	return &HealthController{
		ledger:    ledger,
		admin:     admin,
		migration: migration,
		startTime: time.Now(),
	}
}
