// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	berrors "github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

// DefaultBodyLimit bounds the size of request bodies.
var DefaultBodyLimit, _ = quantity.WithUnit[quantity.ByteKind](64, unit.KiB)

// NewHTTPHandler routes the converter operations over HTTP/1 with json
// bodies. Metrics of gatherer are exposed on /metrics, a nil gatherer uses
// prometheus.DefaultGatherer. Request bodies larger than limit are rejected.
func NewHTTPHandler(ctx context.Context, c *Converter, gatherer prometheus.Gatherer, limit quantity.Byte) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		hlog.NewHandler(*zerolog.Ctx(ctx)),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Served http request")
		}),
	)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(LimitBody(limit))

		// The size must start with a digit, anything else is not a route.
		r.Get("/v1/bytes/{size:[0-9][^/]*}", sizeHandler(c, unit.Bytes))
		r.Get("/v1/bits/{size:[0-9][^/]*}", sizeHandler(c, unit.Bits))

		r.Post("/v1/parse", rpcHandler(c.Parse))
		r.Post("/v1/format", rpcHandler(c.Format))
		r.Post("/v1/select", rpcHandler(c.Select))
	})

	return r
}

// LimitBody rejects request bodies larger than limit with 413.
func LimitBody(limit quantity.Byte) func(http.Handler) http.Handler {
	n, err := limit.Int64()
	if err != nil || n <= 0 {
		n, _ = DefaultBodyLimit.Int64()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeError(w, r, &http.MaxBytesError{Limit: n})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func httpStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	if code, ok := berrors.CodeOf(err); ok {
		if code == berrors.Overflow || code == berrors.Underflow {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	}

	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed writing response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	if code, ok := berrors.CodeOf(err); ok {
		resp.Code = code.Error()
	}
	writeJSON(w, r, httpStatus(err), resp)
}

func decodeJSON[T any](r *http.Request) (*T, error) {
	v := new(T)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return v, nil
}

func rpcHandler[Req, Resp any](call func(context.Context, *Req) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeJSON[Req](r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp, err := call(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func sizeHandler(c *Converter, category unit.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		size, err := url.PathUnescape(chi.URLParam(r, "size"))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
			return
		}

		req := &ParseRequest{Input: size, Category: category}
		if v := r.URL.Query().Get("case_sensitive"); v != "" {
			if req.CaseSensitive, err = strconv.ParseBool(v); err != nil {
				writeError(w, r, fmt.Errorf("%w: case_sensitive %q", ErrInvalidRequest, v))
				return
			}
		}

		resp, err := c.Parse(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}
