package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/logging"
	"github.com/jagriti-dev/casesearch/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "casesearch",
		Short: "HTTP API for searching District Consumer Court cases via the Jagriti portal.",
		Long: `casesearch resolves state and commission names into portal-internal
identifiers, emulates the Jagriti advanced-search form, and parses the
returned markup into structured case records.`,
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().Bool("dev", false, "enable development logging")
	_ = viper.BindPFlag("logging.development", cmd.PersistentFlags().Lookup("dev"))

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point. The bootstrap logger is production
// profile; once configuration is loaded the app rebuilds it with the
// configured profile.
func Execute() {
	logging.InitLogger(false)

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
