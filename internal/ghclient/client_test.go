package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastThrottle() ThrottleConfig {
	return ThrottleConfig{
		RequestsPerSecond: 1000,
		BurstSize:         10,
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), Config{
		Token:    "test-token",
		BaseURL:  server.URL,
		Throttle: fastThrottle(),
	}, nil)
	require.NoError(t, err)
	return client
}

func setRateHeaders(w http.ResponseWriter, remaining int, reset time.Time) {
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

func TestListOrgRepositoriesPaginatesAndCaps(t *testing.T) {
	reset := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "public", r.URL.Query().Get("type"))
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			setRateHeaders(w, 4999, reset)
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/orgs/acme/repos?page=2>; rel="next", <http://%s/orgs/acme/repos?page=2>; rel="last"`, r.Host, r.Host))
			_, _ = fmt.Fprint(w, `[
				{"name":"a","full_name":"acme/a","stargazers_count":5,"language":"Go","license":{"name":"MIT License"},"topics":["cli"]},
				{"name":"b","full_name":"acme/b","stargazers_count":7,"language":""}
			]`)
		case "2":
			setRateHeaders(w, 4998, reset)
			_, _ = fmt.Fprint(w, `[
				{"name":"c","full_name":"acme/c","created_at":"2020-01-01T00:00:00Z"},
				{"name":"d","full_name":"acme/d"}
			]`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	client := newTestClient(t, mux)
	records, quota, err := client.ListOrgRepositories(context.Background(), "acme", 3)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"acme/a", "acme/b", "acme/c"}, []string{records[0].FullName, records[1].FullName, records[2].FullName})
	assert.Equal(t, "acme", records[0].Organization)
	require.NotNil(t, records[0].Language)
	assert.Equal(t, "Go", *records[0].Language)
	require.NotNil(t, records[0].License)
	assert.Equal(t, "MIT License", *records[0].License)
	assert.Equal(t, []string{"cli"}, records[0].Topics)
	assert.Nil(t, records[1].Language, "empty language must normalise to nil")
	assert.Equal(t, []string{}, records[1].Topics)
	require.NotNil(t, records[2].CreatedAt)
	assert.Equal(t, 2020, records[2].CreatedAt.Year())

	assert.Equal(t, 4998, quota.Remaining)
	assert.Equal(t, 5000, quota.Limit)
	assert.Equal(t, 2, quota.Used)
	assert.True(t, quota.ResetAt.Equal(reset))
}

func TestListOrgRepositoriesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/missing/repos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	client := newTestClient(t, mux)
	records, _, err := client.ListOrgRepositories(context.Background(), "missing", 10)
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestListContributorsCountsViaLastPage(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/contributors", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		setRateHeaders(w, 4000, time.Now().Add(time.Hour))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/acme/widgets/contributors?page=2>; rel="next", <http://%s/repos/acme/widgets/contributors?page=3>; rel="last"`, r.Host, r.Host))
			_, _ = fmt.Fprint(w, `[
				{"login":"alice","contributions":50,"type":"User","site_admin":true},
				{"login":"bob","contributions":30,"type":"User"},
				{"login":"carol","contributions":10,"type":"User"}
			]`)
		case "3":
			_, _ = fmt.Fprint(w, `[{"login":"zed","contributions":1},{"login":"yan","contributions":1}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	client := newTestClient(t, mux)
	records, total, quota, err := client.ListContributors(context.Background(), "acme/widgets", 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Login)
	assert.True(t, records[0].SiteAdmin)
	assert.Equal(t, "bob", records[1].Login)
	assert.Equal(t, 2*perPage+2, total)
	assert.Equal(t, 4000, quota.Remaining)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListContributorsSinglePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/tiny/contributors", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `[{"login":"alice","contributions":3},{"login":"bob","contributions":1}]`)
	})

	client := newTestClient(t, mux)
	records, total, _, err := client.ListContributors(context.Background(), "acme/tiny", 20)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, total)
}

func TestListContributorsInvalidName(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	_, _, _, err := client.ListContributors(context.Background(), "not-a-full-name", 5)
	assert.Error(t, err)
}

func TestSecondaryRateLimitIsRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/busy/contributors", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			_, _ = fmt.Fprint(w, `{"message":"You have exceeded a secondary rate limit","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`)
			return
		}
		_, _ = fmt.Fprint(w, `[{"login":"alice","contributions":3}]`)
	})

	client := newTestClient(t, mux)
	records, total, _, err := client.ListContributors(context.Background(), "acme/busy", 5)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(1), client.Stats().TotalRetries)
}

func TestRateLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":120,"reset":1704888000}}}`)
	})

	client := newTestClient(t, mux)
	quota, err := client.RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000, quota.Limit)
	assert.Equal(t, 120, quota.Remaining)
	assert.Equal(t, 4880, quota.Used)
	assert.Equal(t, int64(1704888000), quota.ResetAt.Unix())
}

func TestConvertRepositoryNormalisesOptionalFields(t *testing.T) {
	empty := ""
	repo := &github.Repository{
		Name:        github.String("w"),
		FullName:    github.String("acme/w"),
		Description: &empty,
		License:     &github.License{Name: &empty},
	}

	record := ConvertRepository("acme", repo)
	assert.Nil(t, record.Description)
	assert.Nil(t, record.License)
	assert.Nil(t, record.Language)
	assert.Nil(t, record.UpdatedAt)
	assert.NotNil(t, record.Topics)
}
