package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/handler"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/Astemirdum/table-booking/booking/internal/service"
	"github.com/Astemirdum/table-booking/pkg/auth"
	"github.com/Astemirdum/table-booking/pkg/validate"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/table-booking/booking/internal/handler/mocks"
)

func TestHandler_CreateReservation(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookingService)

	const okBody = `{"tableNumber":5,"clientName":"Ann","phoneNumber":"+100","date":"2024-06-01","slotTimeStart":"18:00","slotTimeEnd":"19:00"}`
	okReq := model.CreateReservationRequest{
		TableNumber:   5,
		ClientName:    "Ann",
		PhoneNumber:   "+100",
		Date:          "2024-06-01",
		SlotTimeStart: "18:00",
		SlotTimeEnd:   "19:00",
	}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateReservation(context.Background(), okReq).
					Return("f7cdc58f-2caf-4b15-9727-f89dcc629b27", nil)
			},
			body: okBody,
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"reservationId":"f7cdc58f-2caf-4b15-9727-f89dcc629b27"}`,
			},
		},
		{
			name:         "err. negative table number",
			mockBehavior: func(r *service_mocks.MockBookingService) {},
			body:         `{"tableNumber":-1,"clientName":"Ann","phoneNumber":"+100","date":"2024-06-01","slotTimeStart":"18:00","slotTimeEnd":"19:00"}`,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"tableNumber must be greater than 0"}`,
			},
		},
		{
			name:         "err. end before start",
			mockBehavior: func(r *service_mocks.MockBookingService) {},
			body:         `{"tableNumber":5,"clientName":"Ann","phoneNumber":"+100","date":"2024-06-01","slotTimeStart":"19:00","slotTimeEnd":"18:00"}`,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"slotTimeEnd must be later than SlotTimeStart"}`,
			},
		},
		{
			name: "err. conflict",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateReservation(context.Background(), okReq).
					Return("", &service.ConflictError{TableNumber: 5, Date: "2024-06-01", Existing: model.Slot{Start: 18 * 60, End: 19 * 60}})
			},
			body: okBody,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"conflicting reservation: table 5 on 2024-06-01 is already reserved for 18:00-19:00"}`,
			},
		},
		{
			name: "err. table not found",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateReservation(context.Background(), okReq).
					Return("", fmt.Errorf("%w: number 5", errs.ErrTableNotFound))
			},
			body: okBody,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"table not found: number 5"}`,
			},
		},
		{
			name: "err. timeout",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateReservation(context.Background(), okReq).
					Return("", fmt.Errorf("%w: scan reservations: %w", errs.ErrTimeout, context.DeadlineExceeded))
			},
			body: okBody,
			response: response{
				expectedCode: http.StatusGatewayTimeout,
				expectedBody: `{"message":"operation timed out: scan reservations: context deadline exceeded"}`,
			},
		},
		{
			name: "err. storage",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateReservation(context.Background(), okReq).
					Return("", fmt.Errorf("%w: save reservation: %w", errs.ErrStorage, errors.New("db internal")))
			},
			body: okBody,
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"storage error: save reservation: db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookingService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/reservations", h.CreateReservation)

			r := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetReservations(t *testing.T) {
	t.Parallel()
	type input struct {
		query string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok. everything",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetReservations(context.Background(), 0, 0).
					Return(model.ListReservations{
						Paging: model.Paging{TotalElements: 1},
						Reservations: []model.Reservation{
							{
								ID:            "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
								TableNumber:   5,
								ClientName:    "Ann",
								PhoneNumber:   "+100",
								Date:          "2024-06-01",
								SlotTimeStart: "18:00",
								SlotTimeEnd:   "19:00",
							},
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":0,"pageSize":0,"totalElements":1,"reservations":[{"id":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","tableNumber":5,"clientName":"Ann","phoneNumber":"+100","date":"2024-06-01","slotTimeStart":"18:00","slotTimeEnd":"19:00"}]}`,
			},
		},
		{
			name: "ok. paged",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetReservations(context.Background(), 2, 10).
					Return(model.ListReservations{
						Paging:       model.Paging{Page: 2, PageSize: 10, TotalElements: 3},
						Reservations: []model.Reservation{},
					}, nil)
			},
			input: input{query: "?page=2&size=10"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":2,"pageSize":10,"totalElements":3,"reservations":[]}`,
			},
		},
		{
			name:         "err. page",
			mockBehavior: func(r *service_mocks.MockBookingService) {},
			input:        input{query: "?page=two"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetReservations(context.Background(), 0, 0).
					Return(model.ListReservations{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookingService(c)
			h := handler.New(svc, nil, nil, zap.NewExample().Named("test"))

			e := echo.New()
			e.GET("/reservations", h.GetReservations)

			r := httptest.NewRequest(http.MethodGet, "/reservations"+tt.input.query, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Tables(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockBookingService)
	minOrder := 100

	var tests = []struct {
		name         string
		method       string
		target       string
		body         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok. create",
			method: http.MethodPost,
			target: "/tables",
			body:   `{"id":1,"number":5,"places":4,"isVip":true,"minOrder":100}`,
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateTable(context.Background(), model.CreateTableRequest{ID: 1, Number: 5, Places: 4, IsVip: true, MinOrder: &minOrder}).
					Return(1, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1}`,
		},
		{
			name:         "err. create without places",
			method:       http.MethodPost,
			target:       "/tables",
			body:         `{"id":1,"number":5}`,
			mockBehavior: func(r *service_mocks.MockBookingService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"places is required"}`,
		},
		{
			name:   "err. create duplicate",
			method: http.MethodPost,
			target: "/tables",
			body:   `{"id":1,"number":5,"places":4}`,
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					CreateTable(context.Background(), model.CreateTableRequest{ID: 1, Number: 5, Places: 4}).
					Return(0, fmt.Errorf("%w: id 1", errs.ErrTableExists))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"table already exists: id 1"}`,
		},
		{
			name:   "ok. list",
			method: http.MethodGet,
			target: "/tables",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetTables(context.Background()).
					Return(model.ListTables{Tables: []model.Table{{ID: 1, Number: 5, Places: 4}}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"tables":[{"id":1,"number":5,"places":4,"isVip":false}]}`,
		},
		{
			name:   "ok. get",
			method: http.MethodGet,
			target: "/tables/1",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetTable(context.Background(), 1).
					Return(model.Table{ID: 1, Number: 5, Places: 4, MinOrder: &minOrder}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"number":5,"places":4,"isVip":false,"minOrder":100}`,
		},
		{
			name:   "err. get unknown",
			method: http.MethodGet,
			target: "/tables/42",
			mockBehavior: func(r *service_mocks.MockBookingService) {
				r.EXPECT().
					GetTable(context.Background(), 42).
					Return(model.Table{}, fmt.Errorf("%w: id 42", errs.ErrTableNotFound))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"table not found: id 42"}`,
		},
		{
			name:         "err. get bad id",
			method:       http.MethodGet,
			target:       "/tables/abc",
			mockBehavior: func(r *service_mocks.MockBookingService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"tableId is invalid"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookingService(c)
			h := handler.New(svc, nil, nil, zap.NewExample().Named("test"))

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/tables", h.CreateTable)
			e.GET("/tables", h.GetTables)
			e.GET("/tables/:tableId", h.GetTable)

			r := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Auth(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		target       string
		body         string
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok. signup",
			target: "/signup",
			body:   `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","password":"correct-horse_42"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					SignUp(context.Background(), model.SignUpRequest{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "correct-horse_42"}).
					Return("ann@example.com", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"User ann@example.com was created"}`,
		},
		{
			name:         "err. signup weak password",
			target:       "/signup",
			body:         `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","password":"password"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"password must be at least 12 characters of [A-Za-z0-9$%^*-_] with one of $%^*-_"}`,
		},
		{
			name:   "err. signup duplicate",
			target: "/signup",
			body:   `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","password":"correct-horse_42"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					SignUp(context.Background(), gomock.Any()).
					Return("", fmt.Errorf("%w: ann@example.com", errs.ErrUserExists))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"user already exists: ann@example.com"}`,
		},
		{
			name:   "ok. signin",
			target: "/signin",
			body:   `{"email":"ann@example.com","password":"correct-horse_42"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					SignIn(context.Background(), model.SignInRequest{Email: "ann@example.com", Password: "correct-horse_42"}).
					Return(model.SignInResponse{AccessToken: "token", ExpiresIn: 3600}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"accessToken":"token","expiresIn":3600}`,
		},
		{
			name:   "err. signin",
			target: "/signin",
			body:   `{"email":"ann@example.com","password":"nope"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					SignIn(context.Background(), gomock.Any()).
					Return(model.SignInResponse{}, errs.ErrInvalidCredentials)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"Invalid email or password"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockAuthService(c)
			h := handler.New(nil, svc, nil, zap.NewExample().Named("test"))

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/signup", h.SignUp)
			e.POST("/signin", h.SignIn)

			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Router(t *testing.T) {
	t.Parallel()
	issuer := auth.NewIssuer(auth.Config{Secret: "test-secret", TTL: time.Hour})
	token, _, err := issuer.Issue("ann@example.com", "Ann Lee")
	require.NoError(t, err)

	var tests = []struct {
		name         string
		target       string
		header       string
		withTables   bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "ok. health",
			target:       "/manage/health",
			expectedCode: http.StatusOK,
			expectedBody: "OK",
		},
		{
			name:         "err. no token",
			target:       "/api/v1/tables",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "err. foreign token",
			target:       "/api/v1/tables",
			header:       "Bearer not-a-token",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"JwtAccessDenied"}`,
		},
		{
			name:         "err. unknown api route",
			target:       "/api/v1/nope",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"Not Found"}`,
		},
		{
			name:         "err. no token on reservations",
			target:       "/api/v1/reservations",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "ok. token",
			target:       "/api/v1/tables",
			header:       "Bearer " + token,
			withTables:   true,
			expectedCode: http.StatusOK,
			expectedBody: `{"tables":[]}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookingService(c)
			if tt.withTables {
				svc.EXPECT().GetTables(gomock.Any()).Return(model.ListTables{Tables: []model.Table{}}, nil)
			}
			h := handler.New(svc, service_mocks.NewMockAuthService(c), issuer, zap.NewExample().Named("test"),
				handler.WithRequestTimeout(time.Second))
			e := h.NewRouter()

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			if tt.header != "" {
				r.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
