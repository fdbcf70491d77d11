package cas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formulynx/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "https://registry.example.com/api", 2.5)

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, "https://registry.example.com/api", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.InDelta(t, 2.5, float64(client.rateLimiter.Limit()), 1e-9)
	assert.False(t, client.debug)
}

func TestNewClientDefaultRate(t *testing.T) {
	client := NewClient("test-key", "https://registry.example.com/api", 0)
	assert.InDelta(t, defaultRequestsPerSecond, float64(client.rateLimiter.Limit()), 1e-9)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("test-key", "https://registry.example.com/api", 5)

	assert.False(t, client.debug)
	client.SetDebug(true)
	assert.True(t, client.debug)
}

// fakeRegistry serves canned search/detail responses the way the Common
// Chemistry API shapes them.
func fakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("q") {
		case "Tocopherol":
			fmt.Fprint(w, `{"count": 1, "results": [{"rn": "59-02-9", "name": "Vitamin E"}]}`)
		case "Unobtainium":
			w.WriteHeader(http.StatusNotFound)
		default:
			fmt.Fprint(w, `{"count": 0, "results": []}`)
		}
	})

	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cas_rn") != "59-02-9" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"rn": "59-02-9", "name": "Vitamin E", "synonyms": ["alpha-Tocopherol", "VITAMIN E", "Tocopherol"]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSearchSubstance_Success(t *testing.T) {
	server := fakeRegistry(t)
	client := NewClient("test-key", server.URL, 100)

	sub, err := client.SearchSubstance(context.Background(), "Tocopherol")

	require.NoError(t, err)
	assert.Equal(t, "59-02-9", sub.RN)
	assert.Equal(t, "Vitamin E", sub.Name)
}

func TestSearchSubstance_NotFound(t *testing.T) {
	server := fakeRegistry(t)
	client := NewClient("test-key", server.URL, 100)

	_, err := client.SearchSubstance(context.Background(), "Unobtainium")
	assert.ErrorIs(t, err, domain.ErrSubstanceNotFound)

	// An empty result set means the same thing as a 404.
	_, err = client.SearchSubstance(context.Background(), "Whatever")
	assert.ErrorIs(t, err, domain.ErrSubstanceNotFound)
}

func TestSearchSubstance_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"count": 1, "results": [{"rn": "50-00-0", "name": "Formaldehyde"}]}`)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 100)
	sub, err := client.SearchSubstance(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, "50-00-0", sub.RN)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDetailByRN(t *testing.T) {
	server := fakeRegistry(t)
	client := NewClient("test-key", server.URL, 100)

	detail, err := client.DetailByRN(context.Background(), "59-02-9")
	require.NoError(t, err)
	assert.Len(t, detail.Synonyms, 3)

	_, err = client.DetailByRN(context.Background(), "0-00-0")
	assert.ErrorIs(t, err, domain.ErrSubstanceNotFound)
}

func TestSynonymsFor(t *testing.T) {
	server := fakeRegistry(t)
	client := NewClient("test-key", server.URL, 100)

	t.Run("dedupes case-insensitively with original first", func(t *testing.T) {
		got, err := client.SynonymsFor(context.Background(), "Tocopherol")

		require.NoError(t, err)
		// "VITAMIN E" and the trailing "Tocopherol" collapse into earlier entries.
		assert.Equal(t, []string{"Tocopherol", "Vitamin E", "alpha-Tocopherol"}, got)
	})

	t.Run("unknown name yields empty list, not error", func(t *testing.T) {
		got, err := client.SynonymsFor(context.Background(), "Unobtainium")

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSynonymsBatch(t *testing.T) {
	server := fakeRegistry(t)
	client := NewClient("test-key", server.URL, 100)

	got, err := client.SynonymsBatch(context.Background(), []string{"Tocopherol", "Unobtainium", "Whatever"})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.NotEmpty(t, got["Tocopherol"])
	assert.Nil(t, got["Unobtainium"])
	assert.Nil(t, got["Whatever"])
}

func TestSynonymsBatch_AbsorbsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 1000)
	got, err := client.SynonymsBatch(context.Background(), []string{"A", "B"})

	require.NoError(t, err, "per-name failures must be absorbed")
	require.Len(t, got, 2)
	assert.Nil(t, got["A"])
	assert.Nil(t, got["B"])
}
