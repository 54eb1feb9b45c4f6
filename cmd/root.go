package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greenplate/ordering/internal/constants"
	"github.com/greenplate/ordering/internal/log"
	orderingCmd "github.com/greenplate/ordering/ordering/cmd"
)

func Start() {
	logger := log.InitLogger("/var/log/greenplate.log").
		With().
		Str(log.KeyAppName, constants.AppOrderingService).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "greenplate"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ordering",
		Short: "Run ordering service",
		Run: func(cmd *cobra.Command, args []string) {
			orderingCmd.RunOrderingService(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
