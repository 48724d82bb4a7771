package main

import (
	"context"
	"log"
	"os"

	"github.com/owais185-web/LuminaLMSPush/core"
	emailsvc "github.com/owais185-web/LuminaLMSPush/services/email"
	identitysvc "github.com/owais185-web/LuminaLMSPush/services/identity"
	logsvc "github.com/owais185-web/LuminaLMSPush/services/logger"
	meetingsvc "github.com/owais185-web/LuminaLMSPush/services/meeting"
	mirrorsvc "github.com/owais185-web/LuminaLMSPush/services/mirror"
	paymentsvc "github.com/owais185-web/LuminaLMSPush/services/payment"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()
	logger, err := logsvc.New(conf)
	if err != nil {
		log.Println("admin: setting up logger:", err)
		return 1
	}

	// set up store & mirror
	backend, db, err := openBackend(conf)
	if err != nil {
		logger.Error("admin: opening store", err)
		return 1
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}
	outbox, closeOutbox, err := mirrorsvc.New(context.Background(), conf, logger)
	if err != nil {
		logger.Error("admin: setting up mirror", err)
		return 1
	}
	defer closeOutbox()

	a, err := newApp(conf, logger, backend, db, services{
		Outbox:   outbox,
		Email:    emailsvc.New(conf, logger),
		Gateway:  paymentsvc.NewSimulatedGateway(conf.Payment),
		Meetings: meetingsvc.NewSimulatedProvider(conf.Meeting),
		Identity: identitysvc.NewTokenParser(conf.Identity),
	})
	if err != nil {
		logger.Error("admin: setting up app", err)
		return 1
	}

	// start CLI
	cli := commandLine{app: a, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin: "+os.Args[1], err)
		}
		return 1
	}
	return 0
}
