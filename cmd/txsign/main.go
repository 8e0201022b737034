package main

import (
	"fmt"
	"os"

	"github.com/filefilego/txsign/config"
	txcli "github.com/filefilego/txsign/internal/cli"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{}
	app.Before = setupLogging
	app.CustomAppHelpTemplate = txcli.AppHelpTemplate
	app.Name = "txsign"
	app.Usage = "Offline keys and signed legacy transactions for Ethereum compatible networks"
	app.Copyright = "Copyright 2022 The FileFileGo Authors"
	app.Flags = config.AppFlags
	app.Commands = []*cli.Command{
		txcli.AccountCommand,
		txcli.TransactionCommand,
	}
	app.Suggest = true

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(ctx *cli.Context) error {
	conf := config.New(ctx)
	level, err := log.ParseLevel(conf.Global.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportCaller(conf.Global.LogPathLine)
	return nil
}
