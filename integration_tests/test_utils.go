//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/conneroisu/redactor/internal/server"
	"github.com/conneroisu/redactor/internal/testutils"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:3000"

// HealthResponse represents the structure of health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Clients   int       `json:"clients"`
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// startTestServer runs a server on a free port until the test ends and
// waits for its health endpoint to answer.
func startTestServer(t *testing.T) (*server.Server, string) {
	t.Helper()

	cfg := testutils.CreateTestConfig(t, t.TempDir())
	cfg.Server.Port = freePort(t)
	cfg.Server.AllowedOrigins = []string{testOrigin}

	srv := server.New(cfg, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("server stopped with error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	baseURL := fmt.Sprintf("http://%s", srv.Addr())
	waitForHealthy(t, baseURL, 5*time.Second)
	return srv, baseURL
}

// waitForHealthy polls /healthz until it reports healthy.
func waitForHealthy(t *testing.T, baseURL string, timeout time.Duration) HealthResponse {
	t.Helper()

	client := &http.Client{Timeout: time.Second}
	var health HealthResponse
	require.Eventually(t, func() bool {
		resp, err := client.Get(baseURL + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&health) == nil && health.Status == "healthy"
	}, timeout, 50*time.Millisecond, "server never became healthy")

	return health
}
