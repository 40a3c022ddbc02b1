package main

import (
	"os"

	"contas/internal/cli"
	applog "contas/internal/log"
	"contas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCLI)

	openLedger := func() (*services.Ledger, func(), error) {
		cfg := cli.LoadAndValidateConfig(logger)
		store, closeStore := cli.OpenStore(logger, cfg)
		return services.NewLedger(store, nil, cfg.SummaryPaidBasis), closeStore, nil
	}

	if err := cli.NewRootCommand(openLedger).Execute(); err != nil {
		os.Exit(1)
	}
}
