package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"tsd/internal/controllers"
	"tsd/internal/models"
	"tsd/internal/providers"
	"tsd/internal/services"
	"tsd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- minimal mocks for routes test ---

type routeTestLogger struct{}

func (m *routeTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Close()                                                  {}

type routeTestCache struct{}

func (m *routeTestCache) Get(_ string) ([]byte, bool) { return nil, false }
func (m *routeTestCache) Set(_ string, _ []byte)      {}
func (m *routeTestCache) Del(_ string)                {}

type routeTestAuth struct{}

func (m *routeTestAuth) RequireAuth(_ *http.Request, principal string) error {
	if principal == "" {
		return models.ErrUnauthorized
	}
	return nil
}

type routeTestEvents struct{}

func (routeTestEvents) Emit(_, _ string, _ any) {}

func routeTestControllers() (*controllers.StreamController, *controllers.AdminController, *structures.Config) {
	conf := &structures.Config{
		Ledger: structures.LedgerConfig{MaxBatchSize: 100},
	}
	store := models.NewMemoryStore(0, 0)
	book := providers.NewBalanceBook()
	opsMu := services.NewOpsLock()
	ledger := services.NewLedgerService(conf, store, book, routeTestEvents{}, services.NewSystemClock(), opsMu)
	admin := services.NewAdminService(store, opsMu)
	migration := services.NewMigrationService(store, routeTestEvents{}, opsMu)

	logger := &routeTestLogger{}
	cache := &routeTestCache{}
	auth := &routeTestAuth{}
	sc := controllers.NewStreamController(logger, ledger, book, auth, cache)
	ac := controllers.NewAdminController(logger, admin, migration, auth, cache)
	return sc, ac, conf
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	sc, ac, conf := routeTestControllers()

	router := InitRoutes(sc, ac, conf)
	routes := router.GetRoutes()

	require.Len(t, routes, 17)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/streams")
	assert.Contains(t, urls, "/streams/batch")
	assert.Contains(t, urls, "/streams/withdraw")
	assert.Contains(t, urls, "/streams/cancel")
	assert.Contains(t, urls, "/streams/transfer")
	assert.Contains(t, urls, "/streams/extend")
	assert.Contains(t, urls, "/streams/list")
	assert.Contains(t, urls, "/stream")
	assert.Contains(t, urls, "/accounts/deposit")
	assert.Contains(t, urls, "/accounts/balance")
	assert.Contains(t, urls, "/admin/initialize")
	assert.Contains(t, urls, "/admin/fee/initialize")
	assert.Contains(t, urls, "/admin/fee")
	assert.Contains(t, urls, "/admin/pause")
	assert.Contains(t, urls, "/admin/migrate")
	assert.Contains(t, urls, "/admin/migrate/stream")
	assert.Contains(t, urls, "/version")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	sc, ac, conf := routeTestControllers()

	router := InitRoutes(sc, ac, conf)
	routes := router.GetRoutes()

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Url, r.Handler)
	}

	// POST /streams with GET should fail
	req := httptest.NewRequest(http.MethodGet, "/streams", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// GET /version with POST should fail
	req = httptest.NewRequest(http.MethodPost, "/version", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
