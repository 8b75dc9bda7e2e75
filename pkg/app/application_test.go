package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slotly/pkg/config"
	"slotly/pkg/logger"
	"slotly/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(router *httprouter.Router)

func (f routes) RegisterRoutes(router *httprouter.Router) { f(router) }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		RequestTimeout:  time.Second,
		IdempotencyTTL:  time.Minute,
		MaxRequestSize:  1024,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		Log:             logger.Discard(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	health := routes(func(router *httprouter.Router) {
		router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})
	api := routes(func(router *httprouter.Router) {
		router.POST("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(middleware.RequestIDFromContext(r.Context())))
		})
	})

	a := NewApplication(testConfig())
	a.SetApp(health, api)
	t.Cleanup(a.idempotencyStore.Stop)
	return a
}

func TestApplication_Routing(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(middleware.RequestIDHeader))
}

func TestApplication_AppStackRejectsNonJSON(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`guest=g`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplication_OnShutdownClosesInOrder(t *testing.T) {
	a := newTestApp(t)
	var order []string
	a.OnShutdown(
		closerFunc(func() error { order = append(order, "publisher"); return errors.New("flush failed") }),
		closerFunc(func() error { order = append(order, "other"); return nil }),
	)

	require.NotPanics(t, a.gracefulShutdown)
	assert.Equal(t, []string{"publisher", "other"}, order)
}
