package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	md "github.com/Astemirdum/table-booking/pkg/middleware"
	"github.com/Astemirdum/table-booking/pkg/validate"
	_ "github.com/Astemirdum/table-booking/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	bookingSvc     BookingService
	authSvc        AuthService
	tokens         md.TokenParser
	requestTimeout time.Duration
	log            *zap.Logger
}

type Option func(*Handler)

// WithRequestTimeout bounds every /api/v1 invocation.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.requestTimeout = d
	}
}

func New(bookingSvc BookingService, authSvc AuthService, tokens md.TokenParser, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		bookingSvc: bookingSvc,
		authSvc:    authSvc,
		tokens:     tokens,
		log:        log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	if h.requestTimeout > 0 {
		api.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: h.requestTimeout,
		}))
	}
	api.POST("/signup", h.SignUp)
	api.POST("/signin", h.SignIn)

	// per route: unknown /api/v1 paths stay 404
	jwt := md.JwtAuthentication(h.tokens)

	api.POST("/tables", h.CreateTable, jwt)
	api.GET("/tables", h.GetTables, jwt)
	api.GET("/tables/:tableId", h.GetTable, jwt)

	api.POST("/reservations", h.CreateReservation, jwt)
	api.GET("/reservations", h.GetReservations, jwt)

	return e
}

// Health godoc
// @Summary      liveness probe
// @Tags         manage
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /manage/health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps service errors onto the HTTP contract: caller-fixable
// problems are 400, deadlines 504, everything else 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrTableNotFound),
		errors.Is(err, errs.ErrSlotConflict),
		errors.Is(err, errs.ErrTableExists),
		errors.Is(err, errs.ErrUserExists),
		errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrUserNotConfirmed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// SignUp godoc
// @Summary      register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignUpRequest  true  "account"
// @Success      200      {object}  model.MessageResponse
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/v1/signup [post]
func (h *Handler) SignUp(c echo.Context) error {
	var req model.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, err := h.authSvc.SignUp(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "User " + email + " was created"})
}

// SignIn godoc
// @Summary      obtain an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignInRequest  true  "credentials"
// @Success      200      {object}  model.SignInResponse
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/v1/signin [post]
func (h *Handler) SignIn(c echo.Context) error {
	var req model.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.authSvc.SignIn(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateTable godoc
// @Summary      register a table
// @Tags         tables
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request  body      model.CreateTableRequest  true  "table"
// @Success      200      {object}  map[string]int
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/v1/tables [post]
func (h *Handler) CreateTable(c echo.Context) error {
	var req model.CreateTableRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.bookingSvc.CreateTable(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"id": id})
}

// GetTables godoc
// @Summary      list tables
// @Tags         tables
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  model.ListTables
// @Router       /api/v1/tables [get]
func (h *Handler) GetTables(c echo.Context) error {
	tables, err := h.bookingSvc.GetTables(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tables)
}

// GetTable godoc
// @Summary      get a table by id
// @Tags         tables
// @Produce      json
// @Security     Bearer
// @Param        tableId  path      int  true  "table id"
// @Success      200      {object}  model.Table
// @Failure      400      {object}  echo.HTTPError
// @Router       /api/v1/tables/{tableId} [get]
func (h *Handler) GetTable(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("tableId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tableId is invalid")
	}
	table, err := h.bookingSvc.GetTable(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, table)
}

// CreateReservation godoc
// @Summary      book a table slot
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request  body      model.CreateReservationRequest  true  "reservation"
// @Success      200      {object}  model.CreateReservationResponse
// @Failure      400      {object}  echo.HTTPError
// @Failure      504      {object}  echo.HTTPError
// @Router       /api/v1/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.bookingSvc.CreateReservation(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.CreateReservationResponse{ReservationID: id})
}

// GetReservations godoc
// @Summary      list reservations
// @Tags         reservations
// @Produce      json
// @Security     Bearer
// @Param        page  query     int  false  "1-based page"
// @Param        size  query     int  false  "page size"
// @Success      200   {object}  model.ListReservations
// @Router       /api/v1/reservations [get]
func (h *Handler) GetReservations(c echo.Context) error {
	var (
		err  error
		page int
		size int
	)
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}
	list, err := h.bookingSvc.GetReservations(c.Request().Context(), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}
