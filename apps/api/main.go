package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/schoolops/apps/api/echo"
	"github.com/trezcool/schoolops/apps/shared"
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
	emailsvc "github.com/trezcool/schoolops/services/email"
	logsvc "github.com/trezcool/schoolops/services/logger"
	nutrientsvc "github.com/trezcool/schoolops/services/nutrient"
	paymentsvc "github.com/trezcool/schoolops/services/payment"
	"github.com/trezcool/schoolops/storage/database"
	inmemdb "github.com/trezcool/schoolops/storage/database/inmem"
	sqlxrepos "github.com/trezcool/schoolops/storage/database/sqlx"
	filestore "github.com/trezcool/schoolops/storage/files"
)

// TODO:
// - CSRF !!!
// - APM/Tracing
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type repositories struct {
	user       user.Repository
	student    student.Repository
	curriculum curriculum.Repository
	food       food.Repository
	menu       menu.Repository
	enrollment enrollment.Repository
	medical    medical.Repository
	room       room.Repository
	tuition    tuition.Repository
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		return errors.Wrap(err, "setting up zap")
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	defer logger.Sync()
	dbLogger := logsvc.NewRollbarLogger(zl.Named("db"), conf)

	repos, closeDB, err := setUpRepositories(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			dbLogger.Error("closing database", err)
		}
	}()

	files, err := setUpFileStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(repos.user, mailSvc, conf)
	studSvc := student.NewService(repos.student)
	foodSvc := food.NewService(repos.food, nutrientsvc.NewClient(conf.Nutrients, logger))
	tuitionSvc := tuition.NewService(repos.tuition, studSvc, paymentsvc.NewClient(conf.Payment))

	// =========================================================================
	// Initialize App

	logger.Info("Application initializing", map[string]interface{}{"version": conf.Build, "env": conf.Env})
	defer logger.Info("Application stopped")

	validate, translator := shared.NewValidator()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Payment Poller

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tuition.NewPoller(tuitionSvc, conf.Payment.PollInterval, logger).Run(ctx)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		UserSvc:        usrSvc,
		StudentSvc:     studSvc,
		CurriculumSvc:  curriculum.NewService(repos.curriculum),
		FoodSvc:        foodSvc,
		MenuSvc:        menu.NewService(repos.menu, foodSvc),
		EnrollmentSvc:  enrollment.NewService(repos.enrollment, studSvc, mailSvc),
		MedicalSvc:     medical.NewService(repos.medical, studSvc),
		RoomSvc:        room.NewService(repos.room),
		TuitionSvc:     tuitionSvc,
		Files:          files,
	})
	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	cancel()

	// give outstanding requests a deadline for completion
	sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer scancel()

	if err = server.Stop(sctx); err != nil {
		return errors.Wrap(err, "could not stop server gracefully")
	}
	return nil
}

// setUpRepositories returns the repositories of the configured database engine & a func closing it.
func setUpRepositories(conf *core.Config) (repositories, func() error, error) {
	if conf.Database.Engine == "memory" {
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			user:       inmemdb.NewUserRepository(db),
			student:    inmemdb.NewStudentRepository(db),
			curriculum: inmemdb.NewCurriculumRepository(db),
			food:       inmemdb.NewFoodRepository(db),
			menu:       inmemdb.NewMenuRepository(db),
			enrollment: inmemdb.NewEnrollmentRepository(db),
			medical:    inmemdb.NewMedicalRepository(db),
			room:       inmemdb.NewRoomRepository(db),
			tuition:    inmemdb.NewTuitionRepository(db),
		}, func() error { return nil }, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return repositories{}, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return repositories{}, nil, err
	}
	return repositories{
		user:       sqlxrepos.NewUserRepository(db),
		student:    sqlxrepos.NewStudentRepository(db),
		curriculum: sqlxrepos.NewCurriculumRepository(db),
		food:       sqlxrepos.NewFoodRepository(db),
		menu:       sqlxrepos.NewMenuRepository(db),
		enrollment: sqlxrepos.NewEnrollmentRepository(db),
		medical:    sqlxrepos.NewMedicalRepository(db),
		room:       sqlxrepos.NewRoomRepository(db),
		tuition:    sqlxrepos.NewTuitionRepository(db),
	}, db.Close, nil
}

func setUpFileStorage(conf *core.Config) (core.FileStorage, error) {
	if conf.Storage.Driver == "s3" {
		s3, err := filestore.NewS3Storage(context.Background(), conf.Storage)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	local, err := filestore.NewLocalStorage(conf.Storage.LocalDir)
	if err != nil {
		return nil, err
	}
	return local, nil
}
