package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/config"
	"github.com/fentz26/planner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Planner - shared task board",
	Long:  `Planner is a small multi-user task board: a server that stores tasks, comments and users, plus a CLI and terminal board to work with them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string

	cfg    *config.Config
	logger *log.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", config.DefaultAPIAddr, "API server address")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Client config file (default ~/.planner/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, unlockCmd, whoamiCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
}

// loadSettings reads the client config. An explicit --api wins over the file.
func loadSettings(cmd *cobra.Command) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromHome()
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api") || cfg.APIAddr == "" {
		cfg.APIAddr = apiAddr
	}

	logger, err = logging.New(cfg.LogLevel, os.Stderr)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
