package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbulk/campaign-gateway/internal/config"
	"github.com/swiftbulk/campaign-gateway/internal/model"
)

type recordedRequest struct {
	Path    string
	Payload map[string]any
}

func newTestClient(t *testing.T, status int, body string, breaker config.BreakerConfig) (*Client, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		reqs = append(reqs, recordedRequest{Path: r.URL.Path, Payload: payload})

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.ProviderConfig{
		BaseURL:           srv.URL,
		AccountKeys:       map[string]string{"ca": "CAKEY", "au": "AUKEY"},
		DefaultAccountKey: "DEFKEY",
		SenderID:          "SwiftBulk",
		Breaker:           breaker,
	})
	return c, &reqs
}

func TestAccountKeyFor(t *testing.T) {
	c, _ := newTestClient(t, 200, "", config.BreakerConfig{})

	assert.Equal(t, "CAKEY", c.AccountKeyFor(model.CountryCA))
	assert.Equal(t, "AUKEY", c.AccountKeyFor(model.CountryAU))
	// no NZ key configured, falls back to the default
	assert.Equal(t, "DEFKEY", c.AccountKeyFor(model.CountryNZ))
}

func TestSendBulk(t *testing.T) {
	c, reqs := newTestClient(t, 200, " Message queued \n", config.BreakerConfig{})

	res, err := c.SendBulk(context.Background(), "CAKEY",
		[]string{"15551234567"}, "Hi Jo", "cmp_REF1", "")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 200, res.HTTPCode)
	assert.Equal(t, "Message queued", res.Body)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, "/CAKEY/Bulk", got.Path)
	assert.Equal(t, "Hi Jo", got.Payload["MessageBody"])
	assert.Equal(t, "cmp_REF1", got.Payload["Reference"])
	assert.Equal(t, []any{"15551234567"}, got.Payload["CellNumbers"])
	// empty sender id falls back to the configured default
	assert.Equal(t, "SwiftBulk", got.Payload["SenderID"])
}

func TestSendBulkExplicitSenderID(t *testing.T) {
	c, reqs := newTestClient(t, 200, "ok", config.BreakerConfig{})

	_, err := c.SendBulk(context.Background(), "CAKEY",
		[]string{"15551234567"}, "Hi", "cmp_REF1", "AcmeCo")
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	assert.Equal(t, "AcmeCo", (*reqs)[0].Payload["SenderID"])
}

func TestSendBulkNon200(t *testing.T) {
	c, _ := newTestClient(t, 429, "rate exceeded", config.BreakerConfig{})

	res, err := c.SendBulk(context.Background(), "CAKEY",
		[]string{"15551234567"}, "Hi", "cmp_REF1", "")
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, 429, res.HTTPCode)
	assert.Equal(t, "rate exceeded", res.Body)
}

func TestStop(t *testing.T) {
	c, reqs := newTestClient(t, 200, "stopped", config.BreakerConfig{})

	res, err := c.Stop(context.Background(), "CAKEY", "cmp_REF1")
	require.NoError(t, err)
	assert.True(t, res.OK())

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/CAKEY/Stop", (*reqs)[0].Path)
	assert.Equal(t, "cmp_REF1", (*reqs)[0].Payload["Reference"])
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	c, reqs := newTestClient(t, 500, "boom", config.BreakerConfig{
		FailThreshold: 2,
		OpenForMs:     60_000,
	})

	for i := 0; i < 2; i++ {
		res, err := c.SendBulk(context.Background(), "CAKEY",
			[]string{"15551234567"}, "Hi", "cmp_REF1", "")
		require.NoError(t, err)
		assert.False(t, res.OK())
	}

	// Threshold reached: the next call is rejected before the network.
	_, err := c.SendBulk(context.Background(), "CAKEY",
		[]string{"15551234567"}, "Hi", "cmp_REF1", "")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, *reqs, 2)

	// Stop is best-effort and bypasses the breaker.
	res, err := c.Stop(context.Background(), "CAKEY", "cmp_REF1")
	require.NoError(t, err)
	assert.Equal(t, 500, res.HTTPCode)
	assert.Len(t, *reqs, 3)
}
