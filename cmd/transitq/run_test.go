package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return data
}

func fakeProvider(t *testing.T) string {
	t.Helper()
	stop := fixture(t, "efa_stopfinder_bozen.json")
	board := fixture(t, "efa_dm_bozen.json")
	ambiguous := fixture(t, "efa_trip_ambiguous.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/XML_STOPFINDER_REQUEST", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(stop) })
	mux.HandleFunc("/XML_DM_REQUEST", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(board) })
	mux.HandleFunc("/XML_TRIP_REQUEST2", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(ambiguous) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRun(t *testing.T) {
	base := []string{"-env-file", "", "-log-level", "error", "-provider-url", fakeProvider(t)}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		check    func(t *testing.T, stdout []byte)
	}{
		{
			name:     "stations",
			args:     []string{"stations", "Bozen"},
			wantCode: exitOK,
			check: func(t *testing.T, stdout []byte) {
				var out []map[string]interface{}
				require.NoError(t, json.Unmarshal(stdout, &out))
				require.Len(t, out, 1)
				assert.Equal(t, "66000123", out[0]["id"])
			},
		},
		{
			name:     "departures",
			args:     []string{"departures", "66000123"},
			wantCode: exitOK,
			check: func(t *testing.T, stdout []byte) {
				var out []map[string]interface{}
				require.NoError(t, json.Unmarshal(stdout, &out))
				assert.Len(t, out, 4)
			},
		},
		{
			name:     "ambiguous route",
			args:     []string{"route", "Bozen", "Meran"},
			wantCode: exitNoResult,
			check: func(t *testing.T, stdout []byte) {
				var out failure
				require.NoError(t, json.Unmarshal(stdout, &out))
				assert.Equal(t, "ambiguous_location", out.Kind)
				assert.Equal(t, []string{"origin"}, out.Endpoints)
			},
		},
		{
			name:     "invalid input",
			args:     []string{"stations", "Bo"},
			wantCode: exitInvalidInput,
			check: func(t *testing.T, stdout []byte) {
				var out failure
				require.NoError(t, json.Unmarshal(stdout, &out))
				assert.Contains(t, out.Fields, "query")
			},
		},
		{name: "no command", args: nil, wantCode: exitUsage},
		{name: "unknown command", args: []string{"weather", "Bozen"}, wantCode: exitUsage},
		{name: "wrong arity", args: []string{"route", "Bozen"}, wantCode: exitUsage},
		{name: "non-numeric coordinate", args: []string{"nearby", "north", "11.35"}, wantCode: exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), append(append([]string{}, base...), tt.args...), &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code, stderr.String())
			if tt.check != nil {
				tt.check(t, stdout.Bytes())
			}
		})
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-env-file", "", "-cache-backend", "redis", "stations", "Bozen"}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
	assert.NotEmpty(t, stderr.String())
}
