package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/schoolmate/backend/apps/api/echo"
	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
	"github.com/schoolmate/backend/core/subject"
	"github.com/schoolmate/backend/core/user"
	emailsvc "github.com/schoolmate/backend/services/email"
	logsvc "github.com/schoolmate/backend/services/logger"
	"github.com/schoolmate/backend/storage/database"
	dummydb "github.com/schoolmate/backend/storage/database/dummy"
	mongorepos "github.com/schoolmate/backend/storage/database/mongo"
	sqlxrepos "github.com/schoolmate/backend/storage/database/sqlx"
)

const mongoConnectTimeout = 10 * time.Second

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// CloseFunc releases the storage connections.
	CloseFunc func() error

	// Storage holds the repositories of the configured database engine.
	Storage struct {
		dig.Out
		UserRepo    user.Repository
		StudentRepo student.Repository
		SubjectRepo subject.Repository
		Close       CloseFunc
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		StudentSvc *student.Service
		SubjectSvc *subject.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newStorage opens the database selected by conf.Database.Engine.
func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	var (
		st  Storage
		err error
	)
	switch conf.Database.Engine {
	case "postgres":
		st, err = openPostgres(conf)
	case "mongodb":
		st, err = openMongo(conf)
	case "memory":
		db := dummydb.Open()
		st = Storage{
			UserRepo:    dummydb.NewUserRepository(db),
			StudentRepo: dummydb.NewStudentRepository(db),
			SubjectRepo: dummydb.NewSubjectRepository(db),
			Close:       func() error { return nil },
		}
	default:
		err = errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("using %s storage", conf.Database.Engine))
	return st
}

func openPostgres(conf *core.Config) (Storage, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return Storage{}, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return Storage{}, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return Storage{}, err
	}
	return Storage{
		UserRepo:    sqlxrepos.NewUserRepository(db),
		StudentRepo: sqlxrepos.NewStudentRepository(db),
		SubjectRepo: sqlxrepos.NewSubjectRepository(db),
		Close:       db.Close,
	}, nil
}

func openMongo(conf *core.Config) (Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, db, err := mongorepos.Open(ctx, conf)
	if err != nil {
		return Storage{}, err
	}
	return Storage{
		UserRepo:    mongorepos.NewUserRepository(db),
		StudentRepo: mongorepos.NewStudentRepository(db),
		SubjectRepo: mongorepos.NewSubjectRepository(db),
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
			defer cancel()
			return client.Disconnect(ctx)
		},
	}, nil
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newStudentService(
	repo student.Repository,
	usrSvc *user.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
	conf *core.Config,
) *student.Service {
	return student.NewService(repo, usrSvc, mailSvc, validate, logger, conf)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf.Server.Address(), nil, &echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		UserSvc:    p.UserSvc,
		StudentSvc: p.StudentSvc,
		SubjectSvc: p.SubjectSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(newStudentService))
	must(c.Provide(subject.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
