package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
	"github.com/schoolmate/backend/core/subject"
	"github.com/schoolmate/backend/core/user"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		StudentSvc *student.Service
		SubjectSvc *subject.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		app      *echo.Echo
		addr     string
		deps     *Deps
		auth     *Authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

// NewServer returns an API server listening on addr once started.
// shutdown receives the OS signals asking the server to stop; a nil channel is replaced by a new one.
func NewServer(addr string, shutdown chan os.Signal, deps *Deps) *Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
	}
	s := &Server{
		app:      echo.New(),
		addr:     addr,
		deps:     deps,
		auth:     NewAuthenticator(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Binder = strictJSONBinder{}
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	jwt := s.auth.Middleware()
	ctxUser := ctxUserMiddleware(s.deps.UserSvc)
	staff := staffMiddleware(s.deps.UserSvc, user.StaffRoles...)

	registerUserAPI(s.app, jwt, s.auth, s.deps.UserSvc, s.deps.Validate)
	registerStudentAPI(s.app.Group("/student", jwt, ctxUser, staff), s.deps.StudentSvc)
	registerSubjectAPI(s.app.Group("/subject", jwt, ctxUser, staff), s.deps.SubjectSvc)
}

// Start listens until the server is shut down. Listener errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
