package main

import (
	"log"
	"os"

	"github.com/shulesys/shule/core"
	logsvc "github.com/shulesys/shule/services/logger"
	"github.com/shulesys/shule/storage/database"
	sqlxrepos "github.com/shulesys/shule/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		conf:     conf,
		db:       db,
		usrRepo:  sqlxrepos.NewUserRepository(db),
		schlRepo: sqlxrepos.NewSchoolRepository(db),
		appLog:   logsvc.NewStdLogger(logger),
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
