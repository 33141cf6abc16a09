package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookmarks/internal/config"
	"bookmarks/internal/db"
	"bookmarks/internal/service"
)

type (
	SignupReq struct {
		Email     string  `json:"email" validate:"required,email"`
		Password  string  `json:"password" validate:"required"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}

	SigninReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	TokenResp struct {
		AccessToken string `json:"access_token"`
	}

	UserResp struct {
		ID        uint64    `json:"id"`
		Email     string    `json:"email"`
		FirstName *string   `json:"firstName,omitempty"`
		LastName  *string   `json:"lastName,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	UserUpdateReq struct {
		Email     *string `json:"email" validate:"omitempty,email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}

	BookmarkCreateReq struct {
		Title       string  `json:"title" validate:"required"`
		Link        string  `json:"link" validate:"required"`
		Description *string `json:"description"`
	}

	BookmarkUpdateReq struct {
		Title       *string `json:"title"`
		Link        *string `json:"link"`
		Description *string `json:"description"`
	}

	BookmarkResp struct {
		ID          uint64    `json:"id"`
		Title       string    `json:"title"`
		Link        string    `json:"link"`
		Description *string   `json:"description,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	ErrorResp struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Error      string `json:"error"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		echo      *echo.Echo
		auth      *service.Auth
		users     *service.User
		bookmarks *service.Bookmark
		signer    service.TokenSigner
		logger    *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	auth *service.Auth,
	users *service.User,
	bookmarks *service.Bookmark,
	signer service.TokenSigner,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := newServer(auth, users, bookmarks, signer, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := instance.echo.Start(listen); err != nil && err != http.ErrServerClosed {
					instance.echo.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.echo.Shutdown(ctx)
		},
	})

	return instance
}

func newServer(
	auth *service.Auth,
	users *service.User,
	bookmarks *service.Bookmark,
	signer service.TokenSigner,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()
	e.HideBanner = true

	instance := HTTPServer{
		echo:      e,
		auth:      auth,
		users:     users,
		bookmarks: bookmarks,
		signer:    signer,
		logger:    logger,
	}

	e.POST("/auth/signup", instance.Signup)
	e.POST("/auth/signin", instance.Signin)

	userG := e.Group("/users", instance.Authenticate)
	userG.GET("/me", instance.Me)
	userG.PATCH("", instance.UserUpdate)

	bookmarkG := e.Group("/bookmarks", instance.Authenticate)
	bookmarkG.GET("", instance.BookmarkList)
	bookmarkG.GET("/:id", instance.BookmarkGet)
	bookmarkG.POST("", instance.BookmarkCreate)
	bookmarkG.PATCH("/:id", instance.BookmarkUpdate)
	bookmarkG.DELETE("/:id", instance.BookmarkDelete)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if len(reqBody) > 0 {
			logger.Debugw("request body",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"body", string(censorBody(reqBody)))
		}
	}))

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = instance.HandleError

	return &instance
}

func (s *HTTPServer) Signup(c echo.Context) error {
	req := SignupReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Signup(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResp(user))
}

func (s *HTTPServer) Signin(c echo.Context) error {
	req := SigninReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := s.auth.Signin(req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TokenResp{AccessToken: token})
}

func (s *HTTPServer) Me(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	user, err := s.users.Me(userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResp(user))
}

func (s *HTTPServer) UserUpdate(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	req := UserUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.users.Update(userID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResp(user))
}

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	bookmarks, err := s.bookmarks.List(userID)
	if err != nil {
		return err
	}

	resp := make([]BookmarkResp, len(bookmarks))
	for i := range bookmarks {
		resp[i] = bookmarkResp(&bookmarks[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) BookmarkGet(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	bookmark, err := s.bookmarks.Get(userID, id)
	if err != nil {
		return err
	}
	if bookmark == nil {
		return service.ErrNotFound
	}

	return c.JSON(http.StatusOK, bookmarkResp(bookmark))
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	bookmark, err := s.bookmarks.Create(userID, req.Title, req.Link, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookmarkResp(bookmark))
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := BookmarkUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	bookmark, err := s.bookmarks.Update(userID, id, req.Title, req.Link, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookmarkResp(bookmark))
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.bookmarks.Delete(userID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Authenticate verifies the bearer token statelessly and injects the caller's
// identity into the request context. No datastore access happens here.
func (s *HTTPServer) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "authorization header must be a bearer token")
		}

		claims, err := s.signer.Parse(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
		}

		c.Set("userID", userID)
		c.Set("email", claims.Email)
		return next(c)
	}
}

// HandleError translates domain errors into status codes in one place, so the
// services stay transport-agnostic.
func (s *HTTPServer) HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, service.ErrCredentialsIncorrect),
		errors.Is(err, service.ErrCredentialsTaken),
		errors.Is(err, service.ErrAccessDenied):
		s.writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		s.writeError(c, http.StatusNotFound, "Not Found")
	case errors.As(err, &httpErr):
		s.writeError(c, httpErr.Code, fmt.Sprintf("%v", httpErr.Message))
	default:
		s.logger.Errorw("unhandled error",
			"error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path)
		s.writeError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *HTTPServer) writeError(c echo.Context, code int, message string) {
	err := c.JSON(code, ErrorResp{
		StatusCode: code,
		Message:    message,
		Error:      http.StatusText(code),
	})
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

////////

func userResp(user *db.User) UserResp {
	return UserResp{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

func bookmarkResp(bookmark *db.Bookmark) BookmarkResp {
	return BookmarkResp{
		ID:          bookmark.ID,
		Title:       bookmark.Title,
		Link:        bookmark.Link,
		Description: bookmark.Description,
		CreatedAt:   bookmark.CreatedAt,
		UpdatedAt:   bookmark.UpdatedAt,
	}
}

// censorBody replaces the password field in a JSON body before it reaches the
// log output.
func censorBody(body []byte) []byte {
	parsed := map[string]interface{}{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return body
	}
	if _, ok := parsed["password"]; !ok {
		return body
	}
	parsed["password"] = "$censored"
	censored, err := json.Marshal(parsed)
	if err != nil {
		return body
	}
	return censored
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return err
	}
	return nil
}

func UserIDFromContext(c echo.Context) (uint64, error) {
	userID, ok := c.Get("userID").(uint64)
	if !ok {
		return 0, errors.New("no user id found in context")
	}
	return userID, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	value := c.Param(name)
	if value == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid path param '%s'", name))
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid path param '%s'", name))
	}
	return parsed, nil
}
