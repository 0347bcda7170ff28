package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sigmmma/Halomaps/internal/dates"
)

// Version is stamped by the build; the default marks a source build.
var Version = "dev"

var (
	cfgFile  string
	dbPath   string
	timezone string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "halomaps-mirror",
	Short: "Import and inspect the Halomaps forum mirror",
	Long: `Tools for the Halomaps forum archive:
- Import the static HTML mirror dump into a SQLite database
- Dry-run the import as JSON for verification without a database
- Cross-check imported row counts against the forum's own stats`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.halomaps-mirror.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "halomaps.db", "path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", dates.DefaultZone, "timezone the mirror was rendered in")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Bind flags to viper
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env in the working directory is the lowest-priority config source.
	godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".halomaps-mirror" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".halomaps-mirror")
	}

	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("database", "halomaps.db")
	viper.SetDefault("timezone", dates.DefaultZone)
	viper.SetDefault("verbose", false)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
