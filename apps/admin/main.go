package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/schoolops/apps"
	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	logsvc "github.com/trezcool/schoolops/services/logger"
	paymentsvc "github.com/trezcool/schoolops/services/payment"
	"github.com/trezcool/schoolops/storage/database"
	sqlxrepos "github.com/trezcool/schoolops/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	defer logger.Sync()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	studSvc := student.NewService(sqlxrepos.NewStudentRepository(db))

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		tuitionSvc: tuition.NewService(sqlxrepos.NewTuitionRepository(db), studSvc, paymentsvc.NewClient(conf.Payment)),
	}
	if err := cli.run(os.Args); err != nil {
		if _, ok := err.(*apps.ArgumentError); ok {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(2)
		}
		if err != errHelp {
			logger.Error("running command", err)
		}
		logger.Sync()
		_ = db.Close()
		os.Exit(1)
	}
}
