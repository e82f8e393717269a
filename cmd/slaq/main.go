package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/probeworks/slaq/internal/sli"
	"github.com/probeworks/slaq/internal/storage"
	"github.com/probeworks/slaq/internal/storage/sqlite"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateDir := validateCmd.String("dir", "", "directory containing signal YAML files")

	recordsCmd := flag.NewFlagSet("records", flag.ExitOnError)
	recordsDB := recordsCmd.String("db", "slaq.db", "path to the indicator database")
	recordsName := recordsCmd.String("name", "", "filter by signal name")
	recordsBad := recordsCmd.Bool("bad", false, "show only records below their SLO target")
	recordsLimit := recordsCmd.Int("limit", 20, "maximum records to show")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validateDir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			validateCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runValidate(*validateDir))
	case "records":
		recordsCmd.Parse(os.Args[2:])
		os.Exit(runRecords(*recordsDB, *recordsName, *recordsBad, *recordsLimit))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: slaq <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate --dir <path>    Validate signal YAML files in a directory")
	fmt.Println("  records [--db <path>] [--name <signal>] [--bad] [--limit <n>]")
	fmt.Println("                           Show persisted indicator records")
	fmt.Println()
}

func runValidate(dirPath string) int {
	schemaPath := findSchemaFile()
	if schemaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: could not find schemas/signal_v1.json")
		return 1
	}

	validator, err := sli.NewValidator(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}

	errors := validator.ValidateDirectory(dirPath)

	if len(errors) == 0 {
		fmt.Println("✓ All signal files are valid")
		return 0
	}

	// Group errors by file
	errorsByFile := make(map[string][]sli.ValidationError)
	for _, err := range errors {
		errorsByFile[err.File] = append(errorsByFile[err.File], err)
	}

	var files []string
	for file := range errorsByFile {
		files = append(files, file)
	}
	sort.Strings(files)

	fmt.Fprintf(os.Stderr, "✗ Validation failed with %d error(s):\n\n", len(errors))
	for _, file := range files {
		for _, err := range errorsByFile[file] {
			if err.Path != "" {
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(err.File), err.Message)
			}
		}
	}

	return 1
}

func runRecords(dbPath, name string, onlyBad bool, limit int) int {
	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := store.Records(ctx, storage.RecordFilter{
		Name:    name,
		OnlyBad: onlyBad,
		Limit:   limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to query records: %v\n", err)
		return 1
	}

	if len(records) == 0 {
		fmt.Println("No records found")
		return 0
	}

	fmt.Printf("%-20s  %-40s  %8s  %8s  %-5s  %-8s  %s\n",
		"TIMESTAMP", "NAME", "SLI", "SLO", "BAD", "QUALITY", "PERIOD")
	for _, rec := range records {
		fmt.Printf("%-20s  %-40s  %8.3f  %8.3f  %-5t  %-8s  %s\n",
			rec.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			rec.Name,
			rec.SLIValue,
			rec.SLOTarget,
			rec.IsBad,
			rec.DataQuality,
			rec.Period)
	}

	return 0
}

// findSchemaFile looks for the schema file in common locations
func findSchemaFile() string {
	candidates := []string{
		"schemas/signal_v1.json",
		"../schemas/signal_v1.json",
		"../../schemas/signal_v1.json",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
