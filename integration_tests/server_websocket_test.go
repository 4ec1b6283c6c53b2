//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialEditor(t *testing.T, ctx context.Context, baseURL, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	return websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{origin}},
	})
}

func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, req server.Request) server.Response {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, req))
	var resp server.Response
	require.NoError(t, wsjson.Read(ctx, conn, &resp))
	require.Equal(t, req.ID, resp.ID)
	return resp
}

func TestIntegration_Server_EditorSession(t *testing.T) {
	srv, baseURL := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := dialEditor(t, ctx, baseURL, testOrigin)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Build a document the way an editor toolbar would, then lint it.
	text := "Intro text"
	resp := roundTrip(t, ctx, conn, server.Request{
		ID: "1", Op: server.OpBlock, Text: text, Cursor: len(text), Tag: "alerta", Title: "Ojo",
	})
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Result)
	text = resp.Result.Text
	assert.Equal(t, "Intro text\n\n[[alerta:Ojo]]\n...\n[[/alerta]]", text)
	assert.Equal(t, "...", text[resp.Result.SelectionStart:resp.Result.SelectionEnd])

	resp = roundTrip(t, ctx, conn, server.Request{
		ID: "2", Op: server.OpInline, Text: text,
		SelectionStart: 0, SelectionEnd: 5, Tag: "dorado",
	})
	require.Empty(t, resp.Error)
	text = resp.Result.Text
	assert.True(t, strings.HasPrefix(text, "[[dorado:Intro]] text"))

	resp = roundTrip(t, ctx, conn, server.Request{ID: "3", Op: server.OpLint, Text: text})
	require.Empty(t, resp.Error)
	assert.Empty(t, resp.Issues)

	broken := strings.TrimSuffix(text, "[[/alerta]]")
	resp = roundTrip(t, ctx, conn, server.Request{ID: "4", Op: server.OpLint, Text: broken})
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, markup.CodeUnclosedBlock, resp.Issues[0].Code)

	resp = roundTrip(t, ctx, conn, server.Request{ID: "5", Op: server.OpNormalize, Text: text + "\r\n\r\n\r\n\r\n"})
	require.NotNil(t, resp.Text)
	assert.Equal(t, text, *resp.Text)
}

func TestIntegration_Server_ConcurrentClients(t *testing.T) {
	srv, baseURL := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const clients = 5
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, _, err := dialEditor(t, ctx, baseURL, testOrigin)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close(websocket.StatusNormalClosure, "")

			for j := 0; j < 10; j++ {
				if err := wsjson.Write(ctx, conn, server.Request{ID: "lint", Op: server.OpLint, Text: "[[caja:x]]"}); err != nil {
					errs <- err
					return
				}
				var resp server.Response
				if err := wsjson.Read(ctx, conn, &resp); err != nil {
					errs <- err
					return
				}
				if len(resp.Issues) != 1 {
					errs <- assert.AnError
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	require.Eventually(t, func() bool { return srv.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestIntegration_Server_RejectsForeignOrigin(t *testing.T) {
	_, baseURL := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := dialEditor(t, ctx, baseURL, "http://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
