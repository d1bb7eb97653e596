// Package cli provides the command-line interface for gypgo
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gypgo/gypgo/pkg/logger"
)

var (
	workDir   string
	verbosity string
	verbose   bool
	version   string

	log logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gypgo",
	Short: "Native addon build driver",
	Long: `gypgo prepares and drives native builds for loadable runtime addons.

It resolves a toolchain, synthesizes generator input from binding.gyp,
invokes the GYP project-file generator, and then runs the platform
build tool (make or MSBuild) against the generated files.`,

	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("gypgo v%s\n", version)
			return
		}
		cmd.Help()
	},
}

// Execute runs the CLI
func Execute(v string) error {
	version = v

	// Initialize the root command explicitly (avoiding init())
	initializeRootCommand()

	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		return err
	}
	return nil
}

// initializeRootCommand sets up the root command and its flags.
func initializeRootCommand() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "C", ".", "module root directory")
	rootCmd.PersistentFlags().StringVar(&verbosity, "loglevel", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose generator and build output")

	rootCmd.Flags().Bool("version", false, "Print version information and quit")

	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newRebuildCmd())
	rootCmd.AddCommand(newCleanCmd())
}

func initConfig() {
	// Optional rc file in the module root
	viper.AddConfigPath(workDir)
	viper.SetConfigName(".gypgorc")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("GYPGO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbosity == "debug" {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	level := verbosity
	if verbose {
		level = "debug"
	}
	log = logger.CreateLogger(level)
	log.Debug("session started", logger.WithField("run_id", uuid.NewString()))
}

// Helper functions

func printSuccess(message string) {
	fmt.Printf("%s %s\n", color.GreenString("gyp ok"), message)
}

func printError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("gyp ERR!"), message)
}

func printInfo(message string) {
	fmt.Printf("%s %s\n", color.CyanString("gyp info"), message)
}

func resolveWorkDir() (string, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", workDir, err)
	}
	return abs, nil
}
