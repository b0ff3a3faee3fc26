package main

import (
	"context"
	"log"
	"os"

	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/user"
	mongorepos "github.com/elimuhub/elimu/storage/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	ctx := context.Background()
	db, err := mongorepos.Open(ctx, core.Conf)
	errAndDie(err)
	defer db.Close(ctx)

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(mongorepos.NewUserRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
