package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/api/realtime"
	"github.com/feral-file/ff-storefront/internal/api/rest"
	"github.com/feral-file/ff-storefront/internal/api/server"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	srv := server.New(server.Config{
		CORSOrigins: []string{"https://storefront.example"},
	}, rest.Deps{
		Clock: clock,
		JSON:  adapter.NewJSON(),
	}, realtime.Deps{
		Clock: clock,
		JSON:  adapter.NewJSON(),
	})
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/feeds", nil)
	req.Header.Set("Origin", "https://storefront.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://storefront.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/feeds", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
