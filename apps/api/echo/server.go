package echoapi

import (
	"context"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
)

type (
	Options struct {
		Address        string
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		GuardianSvc guardian.Service
		PlayerSvc   player.Service
		PaymentSvc  payment.Service
		EmailSvc    emailtmpl.Service

		// SignalShutdown is called when an unrecoverable error is caught.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := echojwt.WithConfig(echojwt.Config{
		SigningKey:    conf.SecretKey,
		ContextKey:    contextTokenKey,
		NewClaimsFunc: newClaimsFunc,
	})

	registerGuardianAPI(v1, jwt, conf, s.opts.GuardianSvc)
	registerPlayerAPI(v1, jwt, conf, s.opts.PlayerSvc, s.opts.GuardianSvc)
	registerPaymentAPI(v1, jwt, conf, s.opts.PaymentSvc, s.opts.GuardianSvc, s.opts.PlayerSvc)
	registerEmailTemplateAPI(v1, jwt, conf, s.opts.EmailSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Fastbreak Hoops Camp API!")
}
