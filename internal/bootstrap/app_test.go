package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solar-dashboard/internal/infra/config"
)

func TestAppServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cfg := &config.Config{HTTP: config.HTTPConfig{ShutdownGrace: time.Second}}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &http.Server{Handler: mux})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppRunReportsListenError(t *testing.T) {
	cfg := &config.Config{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &http.Server{Addr: "127.0.0.1:99999"})
	require.Error(t, app.Run(context.Background()))
}
