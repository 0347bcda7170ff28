package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sigmmma/Halomaps/internal/store"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Cross-check imported rows against the forum's own stats",
	Long: `Print the number of imported rows per table next to the counters the
forum rendered on its own home page.

The home page stats were maintained by the original server, not derived
from the rows we import, so a large gap between the two points at mirror
files that were missing, skipped, or failed to parse.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	path := viper.GetString("database")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no database at %s (run import first)", path)
	}

	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Counts()
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	stats, err := db.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("=== %s ===\n", path)
	fmt.Println("Imported rows:")
	for _, table := range []string{"categories", "forums", "users", "topics", "posts"} {
		fmt.Printf("  %-12s %d\n", table, counts[table])
	}

	if len(stats) == 0 {
		fmt.Println("\nNo scraped stats found. Was the home page imported?")
		return nil
	}

	fmt.Println("\nForum home page counters:")
	scraped := make(map[string]int64, len(stats))
	for _, stat := range stats {
		scraped[stat.Name] = stat.Value
		if stat.Name == "most_users_at" {
			fmt.Printf("  %-16s %s\n", stat.Name, time.Unix(stat.Value, 0).Format("2006-01-02 15:04"))
			continue
		}
		fmt.Printf("  %-16s %d\n", stat.Name, stat.Value)
	}

	fmt.Println("\nCompleteness:")
	for _, table := range []string{"users", "topics", "posts"} {
		expected, ok := scraped[table]
		if !ok {
			continue
		}
		fmt.Printf("  %-8s %d of %d (%+d)\n",
			table, counts[table], expected, counts[table]-expected)
	}

	return nil
}
