package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/mock"
	"github.com/tripwell/trippy-server/internal/service"
	"github.com/tripwell/trippy-server/models"
)

// withChiParam injects a chi URL param for handlers called outside the
// router.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateBooking(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookingSvc := mock.NewMockBookingService(ctrl)

	booking := models.Booking{BookingID: 9, TourID: 3, UserID: 4, Price: 497}
	bookingSvc.EXPECT().
		CreateBooking(gomock.Any(), int64(4), int64(3)).
		Return(booking, nil)

	h := &Handler{logger: logger.Nop(), services: &service.Services{BookingService: bookingSvc}}

	body := bytes.NewBufferString(`{"tour_id":3}`)
	rr := httptest.NewRecorder()
	h.createBooking(rr, requestAs(http.MethodPost, "/api/v1/bookings", body, models.User{UserID: 4}))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"price":497`)
}

func TestGetBooking_OwnBooking(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookingSvc := mock.NewMockBookingService(ctrl)

	bookingSvc.EXPECT().
		GetBooking(gomock.Any(), int64(9)).
		Return(models.Booking{BookingID: 9, UserID: 4}, nil)

	h := &Handler{logger: logger.Nop(), services: &service.Services{BookingService: bookingSvc}}

	req := requestAs(http.MethodGet, "/api/v1/bookings/9", nil, models.User{UserID: 4, Role: models.RoleUser})
	req = withChiParam(req, "id", "9")
	rr := httptest.NewRecorder()
	h.getBooking(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetBooking_OtherUsersBookingForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookingSvc := mock.NewMockBookingService(ctrl)

	bookingSvc.EXPECT().
		GetBooking(gomock.Any(), int64(9)).
		Return(models.Booking{BookingID: 9, UserID: 77}, nil)

	h := &Handler{logger: logger.Nop(), services: &service.Services{BookingService: bookingSvc}}

	req := requestAs(http.MethodGet, "/api/v1/bookings/9", nil, models.User{UserID: 4, Role: models.RoleUser})
	req = withChiParam(req, "id", "9")
	rr := httptest.NewRecorder()
	h.getBooking(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "you do not have permission")
}

func TestGetBooking_AdminSeesAny(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookingSvc := mock.NewMockBookingService(ctrl)

	bookingSvc.EXPECT().
		GetBooking(gomock.Any(), int64(9)).
		Return(models.Booking{BookingID: 9, UserID: 77}, nil)

	h := &Handler{logger: logger.Nop(), services: &service.Services{BookingService: bookingSvc}}

	req := requestAs(http.MethodGet, "/api/v1/bookings/9", nil, models.User{UserID: 1, Role: models.RoleAdmin})
	req = withChiParam(req, "id", "9")
	rr := httptest.NewRecorder()
	h.getBooking(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMyBookings(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookingSvc := mock.NewMockBookingService(ctrl)

	bookingSvc.EXPECT().
		ListBookingsForUser(gomock.Any(), int64(4)).
		Return([]models.Booking{{BookingID: 1}, {BookingID: 2}, {BookingID: 3}}, nil)

	h := &Handler{logger: logger.Nop(), services: &service.Services{BookingService: bookingSvc}}

	rr := httptest.NewRecorder()
	h.myBookings(rr, requestAs(http.MethodGet, "/api/v1/users/my-bookings", nil, models.User{UserID: 4}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"results":3`)
}
