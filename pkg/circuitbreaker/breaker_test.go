package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("market store unavailable")

func storeConfig(name string, threshold uint) Config {
	return Config{
		Name:             name,
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: threshold,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		cfg      Config
		wantNil  bool
		wantName string
	}{
		{
			name:     "creates breaker when enabled",
			cfg:      storeConfig("markets-store", 5),
			wantName: "markets-store",
		},
		{
			name:    "returns nil when disabled",
			cfg:     Config{Name: "markets-store", Enabled: false},
			wantNil: true,
		},
		{
			name:     "accepts zero threshold",
			cfg:      storeConfig("zero-threshold", 0),
			wantName: "zero-threshold",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := New[string](tc.cfg)

			if tc.wantNil {
				require.Nil(t, cb)

				return
			}

			require.NotNil(t, cb)
			require.Equal(t, tc.wantName, cb.Name())
			require.Equal(t, "closed", cb.State())
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cb      *CircuitBreaker[string]
		fn      func() (string, error)
		wantVal string
		wantErr error
	}{
		{
			name:    "returns value through breaker",
			cb:      New[string](storeConfig("success", 5)),
			fn:      func() (string, error) { return "4041-0", nil },
			wantVal: "4041-0",
		},
		{
			name:    "passes through nil breaker",
			fn:      func() (string, error) { return "direct", nil },
			wantVal: "direct",
		},
		{
			name:    "returns error from call",
			cb:      New[string](storeConfig("failure", 5)),
			fn:      func() (string, error) { return "", errStoreDown },
			wantErr: errStoreDown,
		},
		{
			name:    "nil breaker returns error from call",
			fn:      func() (string, error) { return "", errStoreDown },
			wantErr: errStoreDown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := Execute(tc.cb, tc.fn)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.Equal(t, tc.wantVal, result)
		})
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := New[string](storeConfig("open-state", 2))

	for range 2 {
		_, err := Execute(cb, func() (string, error) { return "", errStoreDown })
		require.ErrorIs(t, err, errStoreDown)
	}

	called := false
	_, err := Execute(cb, func() (string, error) {
		called = true

		return "", nil
	})

	require.ErrorIs(t, err, ErrCircuitOpen)
	require.False(t, called)
	require.Equal(t, "open", cb.State())
}

func TestCircuitBreaker_RecoversWhenHalfOpen(t *testing.T) {
	t.Parallel()

	cb := New[string](storeConfig("half-open", 1))

	_, _ = Execute(cb, func() (string, error) { return "", errStoreDown })

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, "half-open", cb.State())

	result, err := Execute(cb, func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	require.Equal(t, "recovered", result)
	require.Equal(t, "closed", cb.State())
}

func TestCircuitBreaker_TooManyRequests(t *testing.T) {
	t.Parallel()

	cb := New[string](storeConfig("too-many", 1))

	_, _ = Execute(cb, func() (string, error) { return "", errStoreDown })

	time.Sleep(150 * time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_, _ = Execute(cb, func() (string, error) {
			close(started)
			time.Sleep(50 * time.Millisecond)

			return "slow", nil
		})
		close(done)
	}()

	<-started

	_, err := Execute(cb, func() (string, error) { return "should not run", nil })
	require.ErrorIs(t, err, ErrTooManyRequests)

	<-done
}

func TestCircuitBreaker_SuccessPredicate(t *testing.T) {
	t.Parallel()

	errNotFound := errors.New("market not found")

	cb := New[string](storeConfig("predicate", 1), WithSuccessPredicate(func(err error) bool {
		return err == nil || errors.Is(err, errNotFound)
	}))

	for range 3 {
		_, err := Execute(cb, func() (string, error) { return "", errNotFound })
		require.ErrorIs(t, err, errNotFound)
	}

	require.Equal(t, "closed", cb.State())

	_, err := Execute(cb, func() (string, error) { return "", errStoreDown })
	require.ErrorIs(t, err, errStoreDown)
	require.Equal(t, "open", cb.State())
}

func TestCircuitBreaker_StateObserver(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		transitions []string
	)

	cb := New[string](storeConfig("observed", 1), WithStateObserver(func(name, from, to string) {
		mu.Lock()
		defer mu.Unlock()

		transitions = append(transitions, name+":"+from+"->"+to)
	}))

	_, _ = Execute(cb, func() (string, error) { return "", errStoreDown })

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []string{"observed:closed->open"}, transitions)
}

func TestCircuitBreaker_PointerResults(t *testing.T) {
	t.Parallel()

	type market struct {
		RegistryCode string
	}

	cb := New[*market](storeConfig("pointer", 3))

	result, err := Execute(cb, func() (*market, error) {
		return &market{RegistryCode: "4041-0"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "4041-0", result.RegistryCode)

	result, err = Execute(cb, func() (*market, error) { return nil, nil })
	require.NoError(t, err)
	require.Nil(t, result)
}
