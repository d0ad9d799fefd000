package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/user"
	logsvc "github.com/schoolmate/backend/services/logger"
	"github.com/schoolmate/backend/storage/database"
	dummydb "github.com/schoolmate/backend/storage/database/dummy"
	mongorepos "github.com/schoolmate/backend/storage/database/mongo"
	sqlxrepos "github.com/schoolmate/backend/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rollbarLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	rollbarLogger.Enable(!conf.Debug)
	logger = rollbarLogger

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// set up DB
	var (
		db      *sql.DB
		usrRepo user.Repository
	)
	switch conf.Database.Engine {
	case "postgres":
		sqlxDB, err := database.Open(conf)
		errAndDie(err)
		defer sqlxDB.Close()
		db = sqlxDB.DB
		usrRepo = sqlxrepos.NewUserRepository(sqlxDB)
	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, mdb, err := mongorepos.Open(ctx, conf)
		cancel()
		errAndDie(err)
		defer client.Disconnect(context.Background())
		usrRepo = mongorepos.NewUserRepository(mdb)
	case "memory":
		usrRepo = dummydb.NewUserRepository(dummydb.Open())
	default:
		errAndDie(fmt.Errorf("unknown database engine %q", conf.Database.Engine))
	}

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(usrRepo, validate),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
