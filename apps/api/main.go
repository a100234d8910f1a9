package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/fastbreakhq/fastbreak/apps/api/echo"
	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
	emailsvc "github.com/fastbreakhq/fastbreak/services/email"
	logsvc "github.com/fastbreakhq/fastbreak/services/logger"
	paymentsvc "github.com/fastbreakhq/fastbreak/services/payment"
	"github.com/fastbreakhq/fastbreak/storage/database"
	sqlxrepos "github.com/fastbreakhq/fastbreak/storage/database/sqlx"
)

func main() {
	conf := core.LoadConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	xdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	gdnSvc := guardian.NewService(sqlxrepos.NewGuardianRepository(xdb), mailSvc, conf, logger)
	plrSvc := player.NewService(sqlxrepos.NewPlayerRepository(xdb), logger)
	processor := paymentsvc.NewSquareProcessor(conf, logger)
	paySvc := payment.NewService(sqlxrepos.NewPaymentRepository(xdb), processor, plrSvc, gdnSvc, logger)
	tmplSvc := emailtmpl.NewService(sqlxrepos.NewEmailTemplateRepository(xdb), gdnSvc, plrSvc, mailSvc)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:     conf.Server.Addr,
		Conf:        conf,
		Logger:      logger,
		GuardianSvc: gdnSvc,
		PlayerSvc:   plrSvc,
		PaymentSvc:  paySvc,
		EmailSvc:    tmplSvc,
		SignalShutdown: func() {
			shutdown <- syscall.SIGTERM
		},
	})

	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
