package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"ridehub.org/transit/internal/app"
	"ridehub.org/transit/internal/appconf"
	"ridehub.org/transit/internal/logging"
	"ridehub.org/transit/internal/models"
)

const testAPIKey = "TEST"

// fakeEFA serves recorded provider payloads. Trip origins "slow" and
// "broken" simulate a hanging and a failing provider.
func fakeEFA(t *testing.T) *httptest.Server {
	t.Helper()

	trip := models.ReadFixture(t, "efa_trip_bozen_meran.json")
	ambiguous := models.ReadFixture(t, "efa_trip_ambiguous.json")
	stop := models.ReadFixture(t, "efa_stopfinder_bozen.json")
	nearby := models.ReadFixture(t, "efa_stopfinder_nearby.json")
	board := models.ReadFixture(t, "efa_dm_bozen.json")
	unknown := models.ReadFixture(t, "efa_dm_unknown_stop.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/efa/XML_TRIP_REQUEST2", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("name_origin") {
		case "slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		case "broken":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		case "Boz":
			_, _ = w.Write(ambiguous)
		default:
			_, _ = w.Write(trip)
		}
	})
	mux.HandleFunc("/efa/XML_STOPFINDER_REQUEST", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type_sf") == "coord" {
			_, _ = w.Write(nearby)
			return
		}
		_, _ = w.Write(stop)
	})
	mux.HandleFunc("/efa/XML_DM_REQUEST", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name_dm") == "66000123" {
			_, _ = w.Write(board)
			return
		}
		_, _ = w.Write(unknown)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(providerURL string) appconf.Config {
	cfg := appconf.Default()
	cfg.Server.Env = appconf.Test.String()
	cfg.Server.APIKeys = []string{testAPIKey}
	cfg.Server.RateLimit = 0
	cfg.Provider.BaseURL = providerURL
	cfg.Provider.Timeout = 300 * time.Millisecond
	cfg.Provider.RateLimit = 1000
	cfg.Provider.Burst = 1000
	return cfg
}

// createTestApi creates a RestAPI backed by the fake provider and an in-memory cache.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithConfig(t, testConfig(fakeEFA(t).URL+"/efa/"))
}

func createTestApiWithConfig(t *testing.T, cfg appconf.Config) *RestAPI {
	t.Helper()
	application, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	api := NewRestAPI(application)
	t.Cleanup(func() {
		api.Close()
		_ = application.Close()
	})
	return api
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	api.SetRoutes(router)
	server := httptest.NewServer(api.Handler(router))
	t.Cleanup(server.Close)
	return server
}

// testResponse is the decoded envelope plus any fieldErrors.
type testResponse struct {
	models.ResponseModel
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// serveApiAndRetrieveEndpoint makes a request to the specified endpoint and
// returns the response and decoded envelope.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, testResponse) {
	t.Helper()
	server := newTestServer(t, api)

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

// listData re-decodes the envelope data as a list of T.
func listData[T any](t *testing.T, model testResponse) ([]T, int) {
	t.Helper()
	raw, err := json.Marshal(model.Data)
	require.NoError(t, err)

	var data struct {
		List  []T `json:"list"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	return data.List, data.Count
}
