package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sigmmma/Halomaps/internal/dates"
	"github.com/Sigmmma/Halomaps/internal/loader"
	"github.com/Sigmmma/Halomaps/internal/store"
)

var (
	printJSON  bool
	reportPath string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [flags] <directory|file>...",
	Short: "Import mirror HTML files into the database",
	Long: `Import one or more Halomaps mirror dump files, or whole directories of
them, into the SQLite database.

Prefer directories over individual files: the mirror contains about
52,000 files, which is too many to glob from a shell.

Examples:
  # Import the full mirror directory
  halomaps-mirror import --database halomaps.db ./mirror

  # Inspect what a single file extracts to, without a database
  halomaps-mirror import --json "./mirror/index.cfm?page=home"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(&printJSON, "json", "j", false, "print rows as JSON instead of inserting into the database")
	importCmd.Flags().StringVar(&reportPath, "report", "", "write a JSON run report to this file")

	viper.BindPFlag("json", importCmd.Flags().Lookup("json"))
}

func runImport(cmd *cobra.Command, args []string) error {
	loc, err := dates.Location(viper.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	var sink loader.Sink
	if viper.GetBool("json") {
		sink = loader.NewPrinter(os.Stdout)
	} else {
		db, err := store.Open(viper.GetString("database"))
		if err != nil {
			return err
		}
		defer db.Close()
		sink = db
	}

	ld := loader.New(sink, loader.Options{
		Timezone: loc,
		Verbose:  viper.GetBool("verbose"),
	})

	for _, path := range args {
		if err := ld.Load(path); err != nil {
			return err
		}
	}

	run := ld.Report()
	run.Summarize(os.Stdout)
	if reportPath != "" {
		if err := run.Save(reportPath); err != nil {
			return err
		}
		fmt.Printf("Run report written to %s\n", reportPath)
	}

	return nil
}
