package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/pkg/domain"
	"convoy/pkg/platform/retry"
)

func window() (time.Time, time.Time) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -90), end
}

func TestGetScores_ReturnsProviderScores(t *testing.T) {
	driverID := domain.DriverID(uuid.New())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scores", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start_date"))
		assert.NotEmpty(t, r.URL.Query().Get("end_date"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scores":[{"driver_id":"` + driverID.String() + `","score":87.5}]}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "test-key")
	start, end := window()
	result := g.GetScores(context.Background(), start, end)

	assert.False(t, result.Degraded)
	require.Len(t, result.Scores, 1)
	assert.Equal(t, driverID, result.Scores[0].DriverID)
	require.NotNil(t, result.Scores[0].Score)
	assert.Equal(t, 87.5, *result.Scores[0].Score)
}

func TestGetScores_DegradedOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(srv.URL, "")
	start, end := window()
	result := g.GetScores(context.Background(), start, end)

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Scores)
}

func TestGetScores_DegradedOnNetworkError(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := New(srv.URL, "")
	start, end := window()
	result := g.GetScores(context.Background(), start, end)

	assert.True(t, result.Degraded)
}

func TestGetScores_DegradedOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := New(srv.URL, "", WithTimeout(20*time.Millisecond))
	start, end := window()
	result := g.GetScores(context.Background(), start, end)

	assert.True(t, result.Degraded)
}

func TestGetScores_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"scores":[]}`))
	}))
	defer srv.Close()

	policy, err := retry.New(2, time.Millisecond)
	require.NoError(t, err)

	g := New(srv.URL, "", WithRetryPolicy(policy))
	start, end := window()
	result := g.GetScores(context.Background(), start, end)

	assert.False(t, result.Degraded, "succeeds on the final retry attempt")
	assert.Equal(t, 3, calls)
}
