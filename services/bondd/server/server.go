// Package server exposes the bond host over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/host"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
	"olympuspro/observability"
	"olympuspro/services/bondd/bootstrap"
)

const maxBodyBytes = 1 << 20

var (
	errRateLimited = errors.New("rate limit exceeded")
	errEmptyMsg    = errors.New("msg required")
)

// Host is the part of the contract host the API drives.
type Host interface {
	Instantiate(sender crypto.Address, codeID uint64, msg []byte, funds []types.Coin, label string) (*host.Result, error)
	Execute(sender, contract crypto.Address, msg []byte, funds []types.Coin) (*host.Result, error)
	Query(contract crypto.Address, msg []byte) ([]byte, error)
	Instance(addr crypto.Address) (*host.Instance, error)
	NativeBalance(addr crypto.Address, denom string) (string, error)
}

type Config struct {
	Auth      AuthConfig
	RateLimit RateLimit
	Manifest  *bootstrap.Manifest
	Logger    *slog.Logger
}

type Server struct {
	host     Host
	manifest *bootstrap.Manifest
	auth     *Authenticator
	limiter  *RateLimiter
	logger   *slog.Logger
	router   chi.Router
}

func New(h Host, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		host:     h,
		manifest: cfg.Manifest,
		auth:     NewAuthenticator(cfg.Auth),
		limiter:  NewRateLimiter(cfg.RateLimit),
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.instrument)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(s.limiter.Middleware)
		v1.Get("/deployment", s.handleDeployment)
		v1.Get("/balances/{address}/{denom}", s.handleNativeBalance)
		v1.Get("/contracts/{address}", s.handleInstance)
		v1.Post("/contracts/{address}/query", s.handleQuery)
		v1.Get("/bonds/{address}/price", s.handleBondQuery(func(*http.Request) (bond.QueryMsg, error) {
			return bond.BondPriceQuery{}, nil
		}))
		v1.Get("/bonds/{address}/state", s.handleBondQuery(func(*http.Request) (bond.QueryMsg, error) {
			return bond.StateQuery{}, nil
		}))
		v1.Get("/bonds/{address}/debt", s.handleBondQuery(func(*http.Request) (bond.QueryMsg, error) {
			return bond.CurrentDebtQuery{}, nil
		}))
		v1.Get("/bonds/{address}/positions/{user}", s.handleBondQuery(func(r *http.Request) (bond.QueryMsg, error) {
			user, err := crypto.DecodeAddress(chi.URLParam(r, "user"))
			if err != nil {
				return nil, fmt.Errorf("user: %w", err)
			}
			return bond.BondInfoQuery{User: user}, nil
		}))

		v1.Group(func(authed chi.Router) {
			authed.Use(s.auth.Middleware)
			authed.Post("/contracts/{address}/execute", s.handleExecute)
			authed.Post("/codes/{codeID}/instantiate", s.handleInstantiate)
		})
	})
	return r
}

type ctxLoggerKey struct{}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		logger := s.logger.With(slog.String("request_id", id))
		ctx := context.WithValue(r.Context(), ctxLoggerKey{}, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		observability.API().Observe(routePattern(r), r.Method, rec.status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return ""
}

type executeRequest struct {
	Msg   json.RawMessage `json:"msg"`
	Funds []types.Coin    `json:"funds,omitempty"`
}

type instantiateRequest struct {
	Msg   json.RawMessage `json:"msg"`
	Funds []types.Coin    `json:"funds,omitempty"`
	Label string          `json:"label"`
}

// ResultResponse is returned by state changing routes.
type ResultResponse struct {
	Contract crypto.Address `json:"contract"`
	Data     []byte         `json:"data,omitempty"`
	Events   []types.Event  `json:"events"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleDeployment(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		writeError(w, r, http.StatusNotFound, errors.New("no deployment"))
		return
	}
	writeJSON(w, http.StatusOK, s.manifest)
}

func (s *Server) handleNativeBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	amount, err := s.host.NativeBalance(addr, chi.URLParam(r, "denom"))
	if err != nil {
		s.writeHostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"denom": chi.URLParam(r, "denom"), "amount": amount})
}

func (s *Server) handleInstance(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	inst, err := s.host.Instance(addr)
	if err != nil {
		s.writeHostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, r, http.StatusBadRequest, errEmptyMsg)
		return
	}
	s.query(w, r, addr, body)
}

func (s *Server) handleBondQuery(build func(*http.Request) (bond.QueryMsg, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, ok := addressParam(w, r, "address")
		if !ok {
			return
		}
		msg, err := build(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		payload, err := bond.EncodeQuery(msg)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		s.query(w, r, addr, payload)
	}
}

func (s *Server) query(w http.ResponseWriter, r *http.Request, addr crypto.Address, payload []byte) {
	out, err := s.host.Query(addr, payload)
	if err != nil {
		s.writeHostError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	var req executeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sender, _ := senderFrom(r.Context())
	res, err := s.host.Execute(sender, addr, req.Msg, req.Funds)
	if err != nil {
		s.writeHostError(w, r, err)
		return
	}
	loggerFrom(r.Context()).Info("execute committed",
		slog.String("sender", sender.String()),
		slog.String("contract", addr.String()),
		slog.Int("events", len(res.Events)))
	writeJSON(w, http.StatusOK, toResult(res))
}

func (s *Server) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	codeID, err := strconv.ParseUint(chi.URLParam(r, "codeID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("code id: %w", err))
		return
	}
	var req instantiateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sender, _ := senderFrom(r.Context())
	res, err := s.host.Instantiate(sender, codeID, req.Msg, req.Funds, req.Label)
	if err != nil {
		s.writeHostError(w, r, err)
		return
	}
	loggerFrom(r.Context()).Info("instantiate committed",
		slog.String("sender", sender.String()),
		slog.String("contract", res.Contract.String()))
	writeJSON(w, http.StatusCreated, toResult(res))
}

func toResult(res *host.Result) ResultResponse {
	events := res.Events
	if events == nil {
		events = []types.Event{}
	}
	return ResultResponse{Contract: res.Contract, Data: res.Data, Events: events}
}

func addressParam(w http.ResponseWriter, r *http.Request, name string) (crypto.Address, bool) {
	addr, err := crypto.DecodeAddress(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("%s: %w", name, err))
		return crypto.Address{}, false
	}
	return addr, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{ validate() error }) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	if err := sonnet.Unmarshal(body, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	if err := dst.validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (req *executeRequest) validate() error {
	if len(req.Msg) == 0 {
		return errEmptyMsg
	}
	return nil
}

func (req *instantiateRequest) validate() error {
	if len(req.Msg) == 0 {
		return errEmptyMsg
	}
	return nil
}

// writeHostError maps contract and host failures onto HTTP statuses.
func (s *Server) writeHostError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, host.ErrUnknownContract), errors.Is(err, host.ErrUnknownCode):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, bond.ErrOnlySubsidyController):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrModulePaused):
		status = http.StatusServiceUnavailable
	}
	loggerFrom(r.Context()).Warn("host call rejected",
		slog.String("route", routePattern(r)),
		slog.Any("error", err))
	writeError(w, r, status, err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	raw, err := sonnet.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
