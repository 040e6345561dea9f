package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/isnadmansour/IsnadTasks/internal/adapters/bot/telegram"
	"github.com/isnadmansour/IsnadTasks/internal/adapters/httpapi"
)

func newServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload API and the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := httpapi.NewServer(app.ingest, app.registry, app.promRegistry, app.cfg.logPath, app.logger)

			if app.cfg.groupID != 0 {
				token, err := app.secretStore.Get(ctx, app.cfg.tokenRef)
				if err != nil {
					return fmt.Errorf("resolve telegram token %q: %w", app.cfg.tokenRef, err)
				}

				bot, err := telegram.New(token, app.engine, app.cfg.groupID, app.logger)
				if err != nil {
					return fmt.Errorf("wire telegram bot: %w", err)
				}

				go func() {
					if err := bot.Run(ctx); err != nil {
						app.logger.Error("telegram bot stopped", "err", err)
					}
				}()
			} else {
				app.logger.Info("telegram bot disabled: telegram.group_id is not set")
			}

			app.logger.Info("http api listening", "addr", app.cfg.httpListen)

			err := server.Run(ctx, app.cfg.httpListen)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
}
