package main

import (
	"context"
	"log"
	"os"

	echoapi "github.com/elimuhub/elimu/apps/api/echo"
	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/catalog"
	"github.com/elimuhub/elimu/core/enroll"
	"github.com/elimuhub/elimu/core/user"
	emailsvc "github.com/elimuhub/elimu/services/email"
	logsvc "github.com/elimuhub/elimu/services/logger"
	mongorepos "github.com/elimuhub/elimu/storage/mongodb"
)

func main() {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up logger
	var logger core.Logger
	if core.Conf.Debug {
		logger = core.NewStdLogger(stdLogger)
	} else {
		logger = logsvc.NewRollbarLogger(stdLogger, core.Conf)
	}

	// set up DB
	ctx := context.Background()
	db, err := mongorepos.Open(ctx, core.Conf)
	errAndDie(logger, err)
	defer db.Close(ctx)
	errAndDie(logger, db.EnsureIndexes(ctx))

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(core.Conf)
	}
	usrSvc := user.NewService(mongorepos.NewUserRepository(db))
	catalogSvc := catalog.NewService(mongorepos.NewCatalogRepository(db))
	enrollSvc := enroll.NewService(mongorepos.NewEnrollmentRepository(db), usrSvc, mailSvc, logger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       core.Conf.Server.Address(),
			UserSvc:    usrSvc,
			CatalogSvc: catalogSvc,
			EnrollSvc:  enrollSvc,
			Logger:     logger,
		},
	)
	errAndDie(logger, app.Start())
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error())
	}
}
