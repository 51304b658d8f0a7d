package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/intake/internal/buildinfo"
	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/logger"
)

// env is the state shared by every subcommand once flags are parsed.
type env struct {
	v   *viper.Viper
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	e := &env{v: viper.New(), cfg: config.Default(), log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:     "intake",
		Short:   "Bank CSV ingestion and normalization",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", config.FileName, "config file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	_ = e.v.BindPFlag("config", flags.Lookup("config"))
	_ = e.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = e.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	e.v.SetEnvPrefix("INTAKE")
	e.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	e.v.AutomaticEnv()

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newIngestCommand(e))
	rootCmd.AddCommand(newDedupeCommand(e))
	rootCmd.AddCommand(newFormatsCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

// setup loads the config file, overlays flags and environment, and attaches
// the logger to the command context.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(e.v.GetString("config"))
	if err != nil {
		return err
	}
	if s := e.v.GetString("logging.level"); s != "" {
		cfg.Logging.Level = s
	}
	if s := e.v.GetString("logging.format"); s != "" {
		cfg.Logging.Format = s
	}
	if s := e.v.GetString("server.addr"); s != "" {
		cfg.Server.Addr = s
	}
	e.cfg = cfg

	e.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, e.log))
	return nil
}
