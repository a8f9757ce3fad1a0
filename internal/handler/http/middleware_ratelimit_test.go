package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/service"
)

func TestWithRateLimit_ThrottlesAfterBurst(t *testing.T) {
	h := &Handler{
		logger:         logger.Nop(),
		services:       &service.Services{},
		rateLimitRPS:   1,
		rateLimitBurst: 2,
	}

	handler := h.withRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/test", nil))
		req.RemoteAddr = "203.0.113.9:4242"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestWithRateLimit_SeparateBucketsPerIP(t *testing.T) {
	h := &Handler{
		logger:         logger.Nop(),
		services:       &service.Services{},
		rateLimitRPS:   1,
		rateLimitBurst: 1,
	}

	handler := h.withRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"203.0.113.9:1000", "203.0.113.10:1000"} {
		req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/test", nil))
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, addr)
	}
}

func TestWithRateLimit_DisabledWithoutRate(t *testing.T) {
	h := &Handler{logger: logger.Nop(), services: &service.Services{}}

	handler := h.withRateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 50 {
		req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/test", nil))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
