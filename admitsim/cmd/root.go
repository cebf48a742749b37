// Package cmd provides the command-line interface of admitsim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// envFile is read before any command runs. Values in it fill in the
// environment without overriding variables that are already set.
var envFile = ".env"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "admitsim",
	Short: "admitsim simulates process admission and scheduling.",
	Long: `admitsim simulates how an operating system admits a batch of ` +
		`processes into a fixed amount of memory and runs them to ` +
		`completion. Runs are recorded into SQLite databases that can be ` +
		`summarized with the report command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnvFile(envFile)
	},
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("loading %s: %w", path, err)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", envFile,
		"file of environment variables to load if it exists")
	rootCmd.SetErr(os.Stderr)
}
