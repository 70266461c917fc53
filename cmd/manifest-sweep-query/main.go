package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"manifest-sweep/internal/database"
	"manifest-sweep/internal/exitcodes"
)

func main() {
	dbPath := flag.String("db", "/var/lib/manifest-sweep/removals.db", "Path to removal history database")
	recent := flag.Int("recent", 0, "Show N most recent removals")
	stats := flag.Bool("stats", false, "Show removal statistics")
	action := flag.String("action", "", "Filter by action (REMOVE, DRY_RUN, SKIP_MISSING, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest removals")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := database.NewRemovalDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  manifest-sweep-query --recent 10          # Show 10 most recent removals")
		fmt.Println("  manifest-sweep-query --stats              # Show removal statistics")
		fmt.Println("  manifest-sweep-query --action ERROR       # Show failed removals")
		fmt.Println("  manifest-sweep-query --path '/opt/app/%'  # Show removals under /opt/app")
		fmt.Println("  manifest-sweep-query --largest 10         # Show 10 largest removals")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.RemovalDB, days int, jsonOutput bool) {
	stats, err := db.GetRemovalStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Removal Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Removed:    %d\n", stats.TotalRemoved)
	fmt.Printf("Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Space Freed:      %s\n\n", formatBytes(stats.TotalBytesFreed))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.RemovalDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentRemovals(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent removals: %v", err)
	}
	output(records, jsonOutput)
}

func showByAction(db *database.RemovalDB, action string, jsonOutput bool) {
	records, err := db.GetRemovalsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Records with action: %s\n\n", action)
	}
	output(records, jsonOutput)
}

func showByPath(db *database.RemovalDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetRemovalsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Records matching path: %s\n\n", pathPattern)
	}
	output(records, jsonOutput)
}

func showLargest(db *database.RemovalDB, limit int, jsonOutput bool) {
	records, err := db.GetLargestRemovals(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest removals: %v", err)
	}
	output(records, jsonOutput)
}

func output(records []database.RemovalRecord, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}
	printRecords(records)
}

func printRecords(records []database.RemovalRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACTION\tSIZE\tPATH\tERROR")
	for _, r := range records {
		errMsg := r.ErrorMessage
		if len(errMsg) > 40 {
			errMsg = errMsg[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			formatBytes(r.Size),
			r.Path,
			errMsg,
		)
	}
	w.Flush()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
