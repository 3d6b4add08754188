package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnkNkm/Lipona/server/dao/inmem"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit"), bcrypt.MinCost)
	require.NoError(t, err)

	return &API{
		Executions:   inmem.NewExecutionsRepository(),
		Secret:       []byte("0123456789012345678901234567890123456789"),
		AdminKeyHash: string(hash),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func Test_HandleRun_success(t *testing.T) {
	a := newTestAPI(t)
	rr := doJSON(t, a.Routes(), http.MethodPost, "/run", runRequest{Source: "pana e 1 + 2"}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp runResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "3", resp.Result)
}

func Test_HandleRun_parseError(t *testing.T) {
	a := newTestAPI(t)
	rr := doJSON(t, a.Routes(), http.MethodPost, "/run", runRequest{Source: "x li jo e"}, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func Test_HandleRun_infiniteLoopIsUnprocessable(t *testing.T) {
	a := newTestAPI(t)
	a.MaxLoopIterations = 10
	rr := doJSON(t, a.Routes(), http.MethodPost, "/run", runRequest{Source: `
i li jo e 0
wile lon la open
  i li jo e i + 1
pini
pana e i
`}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func Test_Executions_requireBearerAuth(t *testing.T) {
	a := newTestAPI(t)
	rr := doJSON(t, a.Routes(), http.MethodPost, "/executions", runRequest{Source: "pana e 1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func Test_AuthToken_thenCreateAndFetchExecution(t *testing.T) {
	a := newTestAPI(t)
	a.UnauthDelay = 0

	rr := doJSON(t, a.Routes(), http.MethodPost, "/auth/token", tokenRequest{AdminKey: "sekrit"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var tokResp tokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokResp))
	require.NotEmpty(t, tokResp.Token)

	headers := map[string]string{"Authorization": "Bearer " + tokResp.Token}

	rr = doJSON(t, a.Routes(), http.MethodPost, "/executions", runRequest{Source: "pana e 42"}, headers)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "42", created["result"])

	req := httptest.NewRequest(http.MethodGet, "/executions/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+tokResp.Token)
	rr2 := httptest.NewRecorder()
	a.Routes().ServeHTTP(rr2, req)
	assert.Equal(t, http.StatusOK, rr2.Code)
}

func Test_AuthToken_wrongKey(t *testing.T) {
	a := newTestAPI(t)
	rr := doJSON(t, a.Routes(), http.MethodPost, "/auth/token", tokenRequest{AdminKey: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
