//go:build integration

package e2e

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
	httpserver "github.com/WailSalutem-Health-Care/patient-registry-service/internal/http"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/metrics"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/telemetry"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/testutil"
)

// TestServer is a full registry backed by the test database, an in-memory
// report folder and an in-memory event publisher.
type TestServer struct {
	Server        *httptest.Server
	DB            *sql.DB
	Reports       *reports.DiskStore
	MockPublisher *testutil.MockPublisher
	Metrics       *metrics.Collector
}

// SetupE2ETest wires the production router against test doubles for the
// filesystem and the broker.
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.CleanupTestDB(t, db)

	store, err := reports.NewDiskStore(afero.NewMemMapFs(), "/srv/reports", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create report store: %v", err)
	}

	appMetrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("Failed to init metrics: %v", err)
	}

	mockPublisher := testutil.NewMockPublisher()
	collector := metrics.NewCollector("e2e")

	service := patient.NewService(patient.NewRepository(db), store, mockPublisher, appMetrics, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := httpserver.SetupRouter(httpserver.RouterDeps{
		ServiceName:    "patient-registry",
		PatientHandler: patient.NewHandler(service, 1<<20, zap.NewNop()),
		Metrics:        collector,
		Limiter:        httpserver.NewIPRateLimiter(ctx, 1000, 1000),
		DB:             db,
		CORS:           config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Logger:         zap.NewNop(),
	})

	return &TestServer{
		Server:        httptest.NewServer(router),
		DB:            db,
		Reports:       store,
		MockPublisher: mockPublisher,
		Metrics:       collector,
	}
}

// Cleanup cleans up all test resources
func (ts *TestServer) Cleanup(t *testing.T) {
	t.Helper()

	ts.Server.Close()

	testutil.CleanupTestDB(t, ts.DB)
	ts.DB.Close()
}

// NewClient creates a new HTTP test client for this server
func (ts *TestServer) NewClient() *testutil.HTTPTestClient {
	return testutil.NewHTTPTestClient(ts.Server.URL)
}
