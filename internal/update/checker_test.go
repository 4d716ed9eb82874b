package update

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func releaseServer(t *testing.T, version string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"version":%q}`, version)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		published string
		want      string
		newer     bool
	}{
		{"newer patch", "1.2.3", "1.2.4", "v1.2.4", true},
		{"same", "v1.2.3", "1.2.3", "v1.2.3", false},
		{"older", "1.3.0", "v1.2.9", "v1.2.9", false},
		{"prerelease is older", "1.3.0", "1.3.0-rc.1", "v1.3.0-rc.1", false},
		{"major", "0.9.0", "1.0.0", "v1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := releaseServer(t, tt.published, nil)
			c, err := New(srv.URL, tt.current)
			require.NoError(t, err)

			latest, newer, err := c.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, latest)
			assert.Equal(t, tt.newer, newer)
		})
	}
}

func TestChecker_CheckErrors(t *testing.T) {
	t.Run("bad published version", func(t *testing.T) {
		srv := releaseServer(t, "latest", nil)
		c, err := New(srv.URL, "1.0.0")
		require.NoError(t, err)
		_, _, err = c.Check(context.Background())
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		c, err := New(srv.URL, "1.0.0")
		require.NoError(t, err)
		_, _, err = c.Check(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()
		c, err := New(srv.URL, "1.0.0")
		require.NoError(t, err)
		_, _, err = c.Check(context.Background())
		assert.Error(t, err)
	})
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("", "1.0.0")
	assert.Error(t, err)

	_, err = New("http://example.invalid", "dev")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestChecker_RunNotifiesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := releaseServer(t, "2.0.0", &hits)

	core, logs := observer.New(zap.InfoLevel)
	c, err := New(srv.URL, "1.0.0",
		WithInterval(10*time.Millisecond),
		WithLogger(zap.New(core)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "v2.0.0", c.Notified())
	assert.Equal(t, 1, logs.FilterMessage("a newer version is available").Len())
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	srv := releaseServer(t, "1.0.0", nil)
	c, err := New(srv.URL, "1.0.0", WithInterval(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, c.Notified())
}
