package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRequestTracking(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                  string
		requestID             string
		correlationID         string
		expectedCorrelationID string
	}{
		{
			name:                  "propagates caller ids",
			requestID:             "req-1",
			correlationID:         "corr-1",
			expectedCorrelationID: "corr-1",
		},
		{
			name:                  "correlation id falls back to request id",
			requestID:             "req-2",
			expectedCorrelationID: "req-2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var seen string

			handler := RequestTracking()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/markets", nil)
			req.Header.Set(RequestIDHeader, tc.requestID)
			req.Header.Set(CorrelationIDHeader, tc.correlationID)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.requestID, seen)
			require.Equal(t, tc.requestID, rec.Header().Get(RequestIDHeader))
			require.Equal(t, tc.expectedCorrelationID, rec.Header().Get(CorrelationIDHeader))
		})
	}

	t.Run("generates a request id", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		RequestTracking()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	handler := Recovery(logger.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/markets", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())

	aborting := Recovery(logger.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		aborting.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestConditionalGET(t *testing.T) {
	t.Parallel()

	body := []byte(`{"registryCode":"4041-0"}`)
	etag := ETag(body)

	cases := []struct {
		name           string
		method         string
		status         int
		ifNoneMatch    string
		expectedStatus int
		expectETag     bool
		expectBody     bool
	}{
		{name: "tags fresh responses", method: http.MethodGet, status: http.StatusOK, expectedStatus: http.StatusOK, expectETag: true, expectBody: true},
		{name: "matching tag", method: http.MethodGet, status: http.StatusOK, ifNoneMatch: etag, expectedStatus: http.StatusNotModified, expectETag: true},
		{name: "weak matching tag", method: http.MethodGet, status: http.StatusOK, ifNoneMatch: `"other", W/` + etag, expectedStatus: http.StatusNotModified, expectETag: true},
		{name: "stale tag", method: http.MethodGet, status: http.StatusOK, ifNoneMatch: `"0000000000000000"`, expectedStatus: http.StatusOK, expectETag: true, expectBody: true},
		{name: "errors are not tagged", method: http.MethodGet, status: http.StatusNotFound, ifNoneMatch: "*", expectedStatus: http.StatusNotFound, expectBody: true},
		{name: "writes pass through", method: http.MethodPatch, status: http.StatusOK, ifNoneMatch: etag, expectedStatus: http.StatusOK, expectBody: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := ConditionalGET(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write(body)
			}))

			req := httptest.NewRequest(tc.method, "/v1/markets/65f1c0a2b3d4e5f6a7b8c9d0", nil)
			if tc.ifNoneMatch != "" {
				req.Header.Set(headerIfNoneMatch, tc.ifNoneMatch)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectETag {
				require.Equal(t, etag, rec.Header().Get(headerETag))
			} else {
				require.Empty(t, rec.Header().Get(headerETag))
			}

			if tc.expectBody {
				require.Equal(t, body, rec.Body.Bytes())
			} else {
				require.Empty(t, rec.Body.Bytes())
			}
		})
	}
}

func TestETag_IsStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, ETag([]byte("a")), ETag([]byte("a")))
	require.NotEqual(t, ETag([]byte("a")), ETag([]byte("b")))
	require.Len(t, ETag([]byte("a")), 18)
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SecurityHeaders("v1")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "v1", rec.Header().Get("API-Version"))
}

func TestHealthCheckFilter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		logHealthChecks bool
		path            string
		expectedSkip    bool
	}{
		{name: "probe skipped", path: "/v1/readiness", expectedSkip: true},
		{name: "probe with trailing slash skipped", path: "/v1/liveness/", expectedSkip: true},
		{name: "probe logged when enabled", logHealthChecks: true, path: "/v1/health"},
		{name: "api requests logged", path: "/v1/markets"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var skipped bool

			handler := NewHealthCheckFilter(tc.logHealthChecks).Middleware(
				http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
					skipped = shouldSkipAccessLog(r.Context())
				}),
			)

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			require.Equal(t, tc.expectedSkip, skipped)
		})
	}
}

var errStoreDown = errors.New("store down")

type failingGCRAStore struct{}

func (failingGCRAStore) GetWithTime(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, errStoreDown
}

func (failingGCRAStore) SetIfNotExistsWithTTL(context.Context, string, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func (failingGCRAStore) CompareAndSwapWithTTL(context.Context, string, int64, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func TestRateLimiting_StoreFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name             string
		gracefulDegraded bool
		expectedStatus   int
	}{
		{name: "fails closed", expectedStatus: http.StatusServiceUnavailable},
		{name: "degrades gracefully", gracefulDegraded: true, expectedStatus: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			limit, err := RateLimiting(config.RateLimiting{
				Enabled:           true,
				RequestsPerSecond: 10,
				BurstSize:         5,
				GracefulDegraded:  tc.gracefulDegraded,
			}, failingGCRAStore{}, logger.NewTestLogger())
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/markets", nil))

			require.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}
