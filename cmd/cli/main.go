package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/skykeeper/internal/client/cli"
	"github.com/dmitrijs2005/skykeeper/internal/client/config"
	"github.com/dmitrijs2005/skykeeper/internal/client/keysource"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	passphrase := keysource.First(
		keysource.Env(config.PassphraseEnv),
		keysource.Prompt(int(os.Stdin.Fd()), os.Stderr),
	)

	app, err := cli.NewApp(ctx, cfg, passphrase)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
