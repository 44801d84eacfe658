package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/routes"
	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP server",
	Action: func(c *cli.Context) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		a.log.Info("✅ Starting application...")

		store, redisClient, err := a.cartStore(c.Context)
		if err != nil {
			a.close()
			return err
		}
		services, err := a.services(store)
		if err != nil {
			a.close()
			return err
		}

		if a.cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := routes.NewEngine(services)
		// Allow large spreadsheet uploads
		engine.MaxMultipartMemory = 32 << 20

		server := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			a.log.Infof("🚀 Server running on port %s...", a.cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Fatal("❌ Failed to start server")
			}
		}()

		wait := gfshutdown.GracefulShutdown(
			context.Background(),
			a.cfg.ShutdownTimeout,
			map[string]gfshutdown.Operation{
				"server": func(ctx context.Context) error {
					a.log.Info("Graceful shutdown initiated...")
					services.Hub.Close()
					err := server.Shutdown(ctx)
					// storage closes only after in-flight requests are drained
					if redisClient != nil {
						if cerr := redisClient.Close(); cerr != nil {
							a.log.WithError(cerr).Warn("close redis")
						}
					}
					a.close()
					return err
				},
			},
		)

		exitCode := <-wait
		a.log.Infof("Application exited with code: %d", exitCode)
		os.Exit(exitCode)
		return nil
	},
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "create or update the schema and seed the permission groups",
	Action: func(c *cli.Context) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		a.log.Info("✅ Migrations applied")
		return nil
	},
}

var createAccountCommand = &cli.Command{
	Name:  "create-account",
	Usage: "create a staff or superuser account",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ACCOUNT_PASSWORD"}},
		&cli.StringFlag{Name: "email"},
		&cli.StringSliceFlag{Name: "group", Usage: "permission group, repeatable"},
		&cli.BoolFlag{Name: "superuser"},
	},
	Action: func(c *cli.Context) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		account, err := a.authService().CreateAccount(c.Context, auth.AccountInput{
			Username:    c.String("username"),
			Password:    c.String("password"),
			Email:       c.String("email"),
			Groups:      c.StringSlice("group"),
			IsSuperuser: c.Bool("superuser"),
		})
		if err != nil {
			return err
		}
		a.log.WithField("account_id", account.ID).Infof("✅ Account %s created", account.Username)
		return nil
	},
}

var importProductsCommand = &cli.Command{
	Name:  "import-products",
	Usage: "create or update products from an .xlsx sheet",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
	},
	Action: func(c *cli.Context) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		file, err := xlsx.OpenFile(c.String("file"))
		if err != nil {
			return errors.Wrapf(err, "open %s", c.String("file"))
		}
		result, err := catalog.NewStore(a.db).ImportProducts(c.Context, file)
		if err != nil {
			return err
		}
		for _, rowErr := range result.Errors {
			a.log.Warn(rowErr)
		}
		a.log.Infof("✅ Imported products: %d created, %d updated, %d skipped",
			result.Created, result.Updated, result.Skipped)
		return nil
	},
}

var exportProductsCommand = &cli.Command{
	Name:  "export-products",
	Usage: "write every product to an .xlsx sheet",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "products.xlsx"},
	},
	Action: func(c *cli.Context) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		path := c.String("file")
		if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
			return errors.Errorf("export file %q must end in .xlsx", path)
		}
		file, err := catalog.NewStore(a.db).ExportProducts(c.Context)
		if err != nil {
			return err
		}
		if err := file.Save(path); err != nil {
			return errors.Wrapf(err, "save %s", path)
		}
		a.log.Infof("✅ Products exported to %s", path)
		return nil
	},
}
