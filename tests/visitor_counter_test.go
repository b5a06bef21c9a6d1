// Package tests contains integration tests that run against a real PostgreSQL server
package tests

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/cereal-box/app/handlers"
	"github.com/amirphl/cereal-box/app/router"
	"github.com/amirphl/cereal-box/app/services"
	businessflow "github.com/amirphl/cereal-box/business_flow"
	"github.com/amirphl/cereal-box/config"
	"github.com/amirphl/cereal-box/models"
	"github.com/amirphl/cereal-box/repository"
	testingutil "github.com/amirphl/cereal-box/testing"
	"github.com/amirphl/cereal-box/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func runWithDB(t *testing.T, fn func(t *testing.T, testDB *testingutil.TestDB)) {
	t.Helper()

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fn(t, testDB)
		return nil
	})
	if errors.Is(err, testingutil.ErrTestDBUnavailable) {
		t.Skipf("skipping integration test: %v", err)
	}
	require.NoError(t, err)
}

func databaseConfig(url string) config.DatabaseConfig {
	return config.DatabaseConfig{
		URL:            url,
		ConnectTimeout: 5 * time.Second,
		FailOpen:       true,
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		SlowQueryTime:  time.Second,
	}
}

func connectGateway(t *testing.T, url string) *repository.DatabaseGateway {
	t.Helper()

	gateway := repository.NewDatabaseGateway(databaseConfig(url), logger.Default.LogMode(logger.Silent))
	require.NoError(t, gateway.Connect(testingutil.CreateTestContext()))
	t.Cleanup(func() { _ = gateway.Close() })
	return gateway
}

func storedCount(t *testing.T, testDB *testingutil.TestDB) int64 {
	t.Helper()

	var row models.VisitorCounter
	require.NoError(t, testDB.DB.First(&row, utils.VisitorCounterRowID).Error)
	return row.Count
}

func TestDatabaseGateway_Bootstrap(t *testing.T) {
	runWithDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		gateway := connectGateway(t, testDB.URL)

		assert.True(t, gateway.Configured())
		assert.True(t, gateway.Connected())
		assert.Equal(t, int64(0), storedCount(t, testDB))

		t.Run("Idempotent", func(t *testing.T) {
			_, err := gateway.IncrementAndFetch(ctx)
			require.NoError(t, err)

			require.NoError(t, gateway.Bootstrap(ctx))
			require.NoError(t, gateway.Bootstrap(ctx))

			var rows int64
			require.NoError(t, testDB.DB.Model(&models.VisitorCounter{}).Count(&rows).Error)
			assert.Equal(t, int64(1), rows)
			assert.Equal(t, int64(1), storedCount(t, testDB))
		})

		t.Run("Repository", func(t *testing.T) {
			require.NotNil(t, gateway.DB())
			repo := repository.NewVisitorCounterRepository(gateway.DB())

			row, err := repo.ByID(ctx, utils.VisitorCounterRowID)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, uint(utils.VisitorCounterRowID), row.ID)

			missing, err := repo.ByID(ctx, 999)
			require.NoError(t, err)
			assert.Nil(t, missing)

			id := uint(utils.VisitorCounterRowID)
			exists, err := repo.Exists(ctx, models.VisitorCounterFilter{ID: &id})
			require.NoError(t, err)
			assert.True(t, exists)

			count, err := repo.Count(ctx, models.VisitorCounterFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("SecondGatewayKeepsCount", func(t *testing.T) {
			other := connectGateway(t, testDB.URL)
			row, err := other.IncrementAndFetch(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), row.Count)
		})
	})
}

func TestDatabaseGateway_BootstrapSeedsMissingSingleton(t *testing.T) {
	runWithDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		// A table left behind by another deployment, holding rows but not id = 1
		require.NoError(t, testDB.DB.Exec(`CREATE TABLE visitor_counter (
			id SERIAL PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0,
			last_visit TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`).Error)
		require.NoError(t, testDB.DB.Exec("INSERT INTO visitor_counter (id, count) VALUES (7, 99)").Error)

		gateway := connectGateway(t, testDB.URL)

		row, err := gateway.IncrementAndFetch(testingutil.CreateTestContext())
		require.NoError(t, err)
		assert.Equal(t, int64(1), row.Count)

		var other models.VisitorCounter
		require.NoError(t, testDB.DB.First(&other, 7).Error)
		assert.Equal(t, int64(99), other.Count)
	})
}

func TestDatabaseGateway_IncrementAndFetch(t *testing.T) {
	runWithDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		gateway := connectGateway(t, testDB.URL)

		t.Run("Sequential", func(t *testing.T) {
			var previous time.Time
			for i := int64(1); i <= 5; i++ {
				row, err := gateway.IncrementAndFetch(ctx)
				require.NoError(t, err)
				require.NotNil(t, row)
				assert.Equal(t, i, row.Count)
				assert.Equal(t, time.UTC, row.LastVisit.Location())
				assert.False(t, row.LastVisit.Before(previous))
				previous = row.LastVisit
			}
		})

		t.Run("ConcurrentNoLostUpdates", func(t *testing.T) {
			before := storedCount(t, testDB)

			const workers = 20
			var wg sync.WaitGroup
			counts := make(chan int64, workers)
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					row, err := gateway.IncrementAndFetch(ctx)
					if assert.NoError(t, err) {
						counts <- row.Count
					}
				}()
			}
			wg.Wait()
			close(counts)

			seen := make(map[int64]bool)
			for c := range counts {
				assert.False(t, seen[c], "duplicate count %d", c)
				seen[c] = true
			}
			assert.Len(t, seen, workers)
			assert.Equal(t, before+workers, storedCount(t, testDB))
		})

		t.Run("MissingRow", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			_, err := gateway.IncrementAndFetch(ctx)
			assert.ErrorIs(t, err, repository.ErrVisitorCounterMissing)
		})
	})
}

func TestRouter_AgainstDatabase(t *testing.T) {
	runWithDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		gateway := connectGateway(t, testDB.URL)
		flow := businessflow.NewVisitorFlow(gateway, services.NewMockMetricsService())
		handler := handlers.NewVisitorHandler(flow, "integration", 5*time.Second)

		r := router.NewFiberRouter(config.ServerConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		}, handler, router.Options{})
		r.SetupRoutes()
		app := r.GetApp()

		call := func(path string) map[string]any {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			return body
		}

		// Empty database: the first greeting sees 1, the second 2
		assert.Equal(t, 1.0, call("/")["visitorCount"])
		assert.Equal(t, 2.0, call("/")["visitorCount"])

		for range 3 {
			body := call("/health")
			assert.Equal(t, "connected", body["database"])
		}
		assert.Equal(t, int64(2), storedCount(t, testDB))

		body := call("/db")
		db := body["database"].(map[string]any)
		assert.Equal(t, true, db["connected"])
		assert.Equal(t, "configured", db["url"])
		assert.Equal(t, 3.0, body["visitor"].(map[string]any)["count"])
	})
}
