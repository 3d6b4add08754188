// Package api provides the liposerver HTTP endpoints: run a program
// statelessly, persist an execution and fetch it back, and mint a bearer
// token for the single configured admin identity.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnkNkm/Lipona"
	"github.com/hnkNkm/Lipona/internal/lipona/interp"
	"github.com/hnkNkm/Lipona/server/dao"
	"github.com/hnkNkm/Lipona/server/middle"
)

// PathPrefix is the prefix of all paths in the API. Routers should mount a
// sub-router that routes all requests to the API at this path.
const PathPrefix = "/api/v1"

const jwtIssuer = "liposerver"

// API holds the parameters and collaborators needed by the endpoint
// handlers.
type API struct {
	// Executions persists run records for POST/GET /executions.
	Executions dao.ExecutionRepository

	// Secret signs and verifies issued JWTs.
	Secret []byte

	// AdminKeyHash is the bcrypt hash of the one admin key POST
	// /auth/token accepts.
	AdminKeyHash string

	// UnauthDelay is added before responding to an unauthenticated or
	// unauthorized request, to deprioritize such requests.
	UnauthDelay time.Duration

	// MaxLoopIterations and MaxCallDepth configure each Evaluator created
	// to service a request. Zero means use the interpreter's built-in
	// default.
	MaxLoopIterations int
	MaxCallDepth      int
}

// Routes builds the liposerver router, mounted at PathPrefix by the caller.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware(middle.DontPanic()))

	r.Post("/run", a.handleRun)
	r.Post("/auth/token", a.handleAuthToken)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware(middle.RequireBearerAuth(a.Secret, a.UnauthDelay)))
		r.Post("/executions", a.handleCreateExecution)
		r.Get("/executions/{id}", a.handleGetExecution)
	})

	return r
}

func chiMiddleware(m middle.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return m(next) }
}

type runRequest struct {
	Source string `json:"source"`
}

type runResponse struct {
	Result string `json:"result"`
	Stdout string `json:"stdout"`
}

func (a *API) evalOpts() []lipona.Option {
	var opts []lipona.Option
	if a.MaxLoopIterations > 0 {
		opts = append(opts, lipona.WithMaxLoopIterations(a.MaxLoopIterations))
	}
	if a.MaxCallDepth > 0 {
		opts = append(opts, lipona.WithMaxCallDepth(a.MaxCallDepth))
	}
	return opts
}

func (a *API) handleRun(w http.ResponseWriter, req *http.Request) {
	var body runRequest
	if err := parseJSON(req, &body); err != nil {
		writeJSONError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	var stdout bytes.Buffer
	opts := append(a.evalOpts(), lipona.WithStdout(&stdout))

	prog, err := lipona.Parse(body.Source)
	if err != nil {
		writeJSONError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	result, err := lipona.Run(prog, opts...)
	if err != nil {
		writeJSONError(w, req, statusForRuntimeError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, runResponse{Result: result.Display(), Stdout: stdout.String()})
}

func (a *API) handleCreateExecution(w http.ResponseWriter, req *http.Request) {
	var body runRequest
	if err := parseJSON(req, &body); err != nil {
		writeJSONError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	exec := dao.Execution{Source: body.Source}

	var stdout bytes.Buffer
	opts := append(a.evalOpts(), lipona.WithStdout(&stdout))

	prog, parseErr := lipona.Parse(body.Source)
	if parseErr != nil {
		exec.ErrMsg = parseErr.Error()
	} else {
		result, runErr := lipona.Run(prog, opts...)
		exec.Stdout = stdout.String()
		if runErr != nil {
			exec.ErrMsg = runErr.Error()
		} else {
			exec.Result = result.Display()
		}
	}

	stored, err := a.Executions.Create(req.Context(), exec)
	if err != nil {
		writeJSONError(w, req, http.StatusInternalServerError, "could not persist execution: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

func (a *API) handleGetExecution(w http.ResponseWriter, req *http.Request) {
	idStr := chi.URLParam(req, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeJSONError(w, req, http.StatusBadRequest, "id is not a valid UUID")
		return
	}

	exec, err := a.Executions.GetByID(req.Context(), id)
	if err != nil {
		if err == dao.ErrNotFound {
			writeJSONError(w, req, http.StatusNotFound, err.Error())
			return
		}
		writeJSONError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, exec)
}

type tokenRequest struct {
	AdminKey string `json:"admin_key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *API) handleAuthToken(w http.ResponseWriter, req *http.Request) {
	var body tokenRequest
	if err := parseJSON(req, &body); err != nil {
		writeJSONError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	err := bcrypt.CompareHashAndPassword([]byte(a.AdminKeyHash), []byte(body.AdminKey))
	if err != nil {
		time.Sleep(a.UnauthDelay)
		writeJSONError(w, req, http.StatusUnauthorized, "incorrect admin key")
		return
	}

	claims := &jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tokStr, err := tok.SignedString(a.Secret)
	if err != nil {
		writeJSONError(w, req, http.StatusInternalServerError, "could not sign token: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: tokStr})
}

// statusForRuntimeError maps the RuntimeError taxonomy to an HTTP status.
// Resource-cap violations (InfiniteLoop, StackOverflow) are reported as 422
// rather than 400: the program was well-formed, it just exceeded a
// documented limit, which is closer to "unprocessable" than "bad request".
func statusForRuntimeError(err error) int {
	re, ok := err.(*interp.RuntimeError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch re.Kind {
	case interp.ErrInfiniteLoop, interp.ErrStackOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func parseJSON(req *http.Request, v interface{}) error {
	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer req.Body.Close()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

type errorBody struct {
	Error string `json:"error"`
}
