package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "shop-api",
		Usage: "storefront and back-office API",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			createAccountCommand,
			importProductsCommand,
			exportProductsCommand,
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
