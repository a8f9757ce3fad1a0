package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/config"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/mock"
	"github.com/tripwell/trippy-server/internal/service"
	"github.com/tripwell/trippy-server/models"
)

func newTourHandler(tourSvc service.TourService) *Handler {
	return &Handler{
		logger:   logger.Nop(),
		services: &service.Services{TourService: tourSvc},
	}
}

func TestAliasTopTours_PresetsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	var gotParams url.Values
	tourSvc.EXPECT().
		ListTours(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params url.Values) ([]models.Tour, error) {
			gotParams = params
			return nil, nil
		})

	h := newTourHandler(tourSvc)

	req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/api/v1/tours/top-5-cheap", nil))
	rr := httptest.NewRecorder()

	h.aliasTopTours(h.listTours)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "5", gotParams.Get("limit"))
	assert.Equal(t, "-ratings_average,price", gotParams.Get("sort"))
	assert.Equal(t, "name,price,ratings_average,summary,difficulty", gotParams.Get("fields"))
}

func TestToursWithin_RoutedParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		ToursWithin(gomock.Any(), 34.111745, -118.113491, 233.0, "mi").
		Return([]models.Tour{{TourID: 1, Name: "The Forest Hiker"}}, nil)

	h := &Handler{
		logger:   logger.Nop(),
		services: &service.Services{TourService: tourSvc},
	}
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/tours/tours-within/233/center/34.111745,-118.113491/unit/mi", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "The Forest Hiker")
	assert.Contains(t, rr.Body.String(), `"results":1`)
}

func TestToursWithin_MalformedLatLng(t *testing.T) {
	h := newTourHandler(nil)
	router := h.Init()

	tests := []string{
		"/api/v1/tours/tours-within/233/center/34.111745/unit/mi",
		"/api/v1/tours/tours-within/233/center/north,west/unit/mi",
	}

	for _, target := range tests {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		assert.Contains(t, rr.Body.String(), "format lat,lng", target)
	}
}

func TestGetTour_InvalidID(t *testing.T) {
	h := newTourHandler(nil)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/not-a-number", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid tour id")
}

func TestGetTour_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		GetTour(gomock.Any(), int64(999)).
		Return(models.Tour{}, apperr.NotFound("no tour found with that ID"))

	h := newTourHandler(tourSvc)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/999", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no tour found with that ID")
}

func TestGetTourBySlug_Routed(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		GetTourBySlug(gomock.Any(), "the-forest-hiker").
		Return(models.Tour{TourID: 1, Name: "The Forest Hiker", Slug: "the-forest-hiker"}, nil)

	h := newTourHandler(tourSvc)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tourFromSlug/the-forest-hiker", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "The Forest Hiker")
	assert.Contains(t, rr.Body.String(), `"slug":"the-forest-hiker"`)
}

func TestGetTourBySlug_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		GetTourBySlug(gomock.Any(), "no-such-tour").
		Return(models.Tour{}, apperr.NotFound("there is no tour with that name"))

	h := newTourHandler(tourSvc)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tourFromSlug/no-such-tour", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "there is no tour with that name")
}

func TestToggleLike_FirstCallCreates(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		ToggleLike(gomock.Any(), int64(3), int64(11)).
		Return(models.TourLike{TourLikeID: 5, TourID: 3, UserID: 11}, true, nil)

	h := newTourHandler(tourSvc)

	req := requestAs(http.MethodPost, "/api/v1/tours/3/toggle-like", nil, models.User{UserID: 11, Role: models.RoleUser})
	req = withChiParam(req, "id", "3")
	rr := httptest.NewRecorder()

	h.toggleLike(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"tour_id":3`)
	assert.Contains(t, rr.Body.String(), `"user_id":11`)
}

func TestToggleLike_SecondCallRemoves(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		ToggleLike(gomock.Any(), int64(3), int64(11)).
		Return(models.TourLike{}, false, nil)

	h := newTourHandler(tourSvc)

	req := requestAs(http.MethodPost, "/api/v1/tours/3/toggle-like", nil, models.User{UserID: 11, Role: models.RoleUser})
	req = withChiParam(req, "id", "3")
	rr := httptest.NewRecorder()

	h.toggleLike(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestLikedTours(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		LikedTourIDs(gomock.Any(), int64(11)).
		Return([]int64{3, 7}, nil)

	h := newTourHandler(tourSvc)

	req := requestAs(http.MethodPost, "/api/v1/tours/liked-tours", nil, models.User{UserID: 11, Role: models.RoleUser})
	rr := httptest.NewRecorder()

	h.likedTours(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"results":2`)
	assert.Contains(t, rr.Body.String(), `"tour_ids":[3,7]`)
}

func TestLikedTours_EmptyOmitsData(t *testing.T) {
	ctrl := gomock.NewController(t)
	tourSvc := mock.NewMockTourService(ctrl)

	tourSvc.EXPECT().
		LikedTourIDs(gomock.Any(), int64(11)).
		Return([]int64{}, nil)

	h := newTourHandler(tourSvc)

	req := requestAs(http.MethodPost, "/api/v1/tours/liked-tours", nil, models.User{UserID: 11, Role: models.RoleUser})
	rr := httptest.NewRecorder()

	h.likedTours(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"results":0`)
	assert.NotContains(t, rr.Body.String(), `"data"`)
}

func TestRouter_ToggleLikeRequiresAuth(t *testing.T) {
	h := NewHandler(&service.Services{}, config.StructuredConfig{}, logger.Nop())
	router := h.Init()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tours/3/toggle-like", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "you are not logged in")
}

func TestRouter_UnknownRouteNormalized(t *testing.T) {
	h := NewHandler(&service.Services{}, config.StructuredConfig{}, logger.Nop())
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "can't find /api/v1/nope on this server")
	assert.Contains(t, rr.Body.String(), `"status":"fail"`)
}

func TestRouter_ProtectedTourMutationRequiresAuth(t *testing.T) {
	h := NewHandler(&service.Services{}, config.StructuredConfig{}, logger.Nop())
	router := h.Init()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tours/", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "you are not logged in")
}
