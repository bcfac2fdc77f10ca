package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/enrollment"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		SignalShutdown func()

		UserSvc       user.Service
		StudentSvc    student.Service
		CurriculumSvc curriculum.Service
		FoodSvc       food.Service
		MenuSvc       menu.Service
		EnrollmentSvc enrollment.Service
		MedicalSvc    medical.Service
		RoomSvc       room.Service
		TuitionSvc    tuition.Service
		Files         core.FileStorage
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
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{conf.FrontendBaseURL},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(jwtConfig(conf))

	registerUserAPI(v1, jwt, s.opts)
	registerMetaAPI(v1, jwt)
	registerStudentAPI(v1, jwt, s.opts)
	registerCurriculumAPI(v1, jwt, s.opts)
	registerFoodAPI(v1, jwt, s.opts)
	registerMenuAPI(v1, jwt, s.opts)
	registerEnrollmentAPI(v1, jwt, s.opts)
	registerMedicalAPI(v1, jwt, s.opts)
	registerRoomAPI(v1, jwt, s.opts)
	registerTuitionAPI(v1, jwt, s.opts)
	registerFileAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.opts.Logger.Fatal("starting server", err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
