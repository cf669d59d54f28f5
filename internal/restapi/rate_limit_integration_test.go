package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig(fakeEFA(t).URL + "/efa/")
	cfg.Server.RateLimit = 3
	cfg.Server.APIKeys = []string{testAPIKey, "OTHER"}
	api := createTestApiWithConfig(t, cfg)
	server := newTestServer(t, api)

	get := func(key string) int {
		resp, err := http.Get(server.URL + "/api/transit/stations?query=Bozen&key=" + key)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(testAPIKey), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(testAPIKey))
	assert.Equal(t, http.StatusOK, get("OTHER"), "other keys keep their own budget")

	t.Run("health is not rate limited", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			resp, err := http.Get(server.URL + "/healthz")
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})
}
