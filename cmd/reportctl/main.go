package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"reporthub/internal/config"
	"reporthub/internal/database"
	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/service"
	"reporthub/internal/webpush"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	xlsxCmd := flag.NewFlagSet("xlsx", flag.ExitOnError)
	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)

	exportConfig := exportCmd.String("config", "", "Path to a YAML config file")
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importConfig := importCmd.String("config", "", "Path to a YAML config file")
	importInput := importCmd.String("input", "", "Input file path (required)")
	importReplace := importCmd.Bool("replace", false, "Delete existing reports before import (WARNING: destructive)")

	xlsxConfig := xlsxCmd.String("config", "", "Path to a YAML config file")
	xlsxOutput := xlsxCmd.String("output", "", "Output file path (default: informes_arrayanes_YYYY-MM-DD.xlsx)")
	xlsxMonth := xlsxCmd.String("month", "", "Only export reports for this month")
	xlsxYear := xlsxCmd.Int("year", 0, "Year of -month")

	clearConfig := clearCmd.String("config", "", "Path to a YAML config file")
	clearYes := clearCmd.Bool("yes", false, "Skip the confirmation prompt")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		db := openDatabase(*exportConfig)
		defer db.Close()
		handleExport(ctx, service.NewBackupService(db), *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openDatabase(*importConfig)
		defer db.Close()
		handleImport(ctx, service.NewBackupService(db), *importInput, *importReplace)

	case "xlsx":
		xlsxCmd.Parse(os.Args[2:])
		filter := models.ReportFilter{}
		if *xlsxMonth != "" {
			p, err := models.NewPeriod(*xlsxMonth, *xlsxYear)
			if err != nil {
				log.Fatalf("Invalid period: %v", err)
			}
			filter.Period = &p
		}
		db := openDatabase(*xlsxConfig)
		defer db.Close()
		handleXLSX(ctx, service.NewExportService(repository.NewReportRepository(db)), *xlsxOutput, filter)

	case "clear":
		clearCmd.Parse(os.Args[2:])
		db := openDatabase(*clearConfig)
		defer db.Close()
		handleClear(ctx, db, *clearYes)

	case "genvapid":
		public, private, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("Failed to generate keys: %v", err)
		}
		fmt.Printf("REPORTHUB_VAPID_PUBLIC_KEY=%s\n", public)
		fmt.Printf("REPORTHUB_VAPID_PRIVATE_KEY=%s\n", private)

	default:
		printUsage()
		os.Exit(1)
	}
}

func openDatabase(configFile string) *database.DB {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(); err != nil {
		db.Close()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func ensureDir(path string) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}
	ensureDir(outputPath)

	log.Printf("Exporting database to: %s", outputPath)
	if err := backupService.ExportFile(ctx, outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, replace bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if replace && !confirm("WARNING: This will delete all existing reports. Type 'yes' to confirm: ") {
		log.Println("Import cancelled")
		return
	}

	log.Printf("Importing database from: %s", inputPath)
	if err := backupService.ImportFile(ctx, inputPath, service.ImportOptions{ReplaceReports: replace}); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

func handleXLSX(ctx context.Context, exportService *service.ExportService, outputPath string, filter models.ReportFilter) {
	if outputPath == "" {
		outputPath = exportService.Filename("")
	}
	ensureDir(outputPath)

	file, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	n, err := exportService.Export(ctx, file, filter)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Exported %d reports to %s", n, outputPath)
}

func handleClear(ctx context.Context, db *database.DB, skipConfirm bool) {
	if !skipConfirm && !confirm("WARNING: This will delete every service report. Type 'yes' to confirm: ") {
		log.Println("Clear cancelled")
		return
	}

	n, err := repository.NewReportRepository(db).DeleteAll(ctx)
	if err != nil {
		log.Fatalf("Failed to clear reports: %v", err)
	}
	log.Printf("Deleted %d reports", n)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	var confirmation string
	fmt.Scanln(&confirmation)
	return confirmation == "yes"
}

func printUsage() {
	fmt.Println("Service report administration tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reportctl export [options]    Export database to JSON file")
	fmt.Println("  reportctl import [options]    Import database from JSON file")
	fmt.Println("  reportctl xlsx [options]      Export reports to an Excel workbook")
	fmt.Println("  reportctl clear [options]     Delete every service report")
	fmt.Println("  reportctl genvapid            Print a new VAPID key pair")
	fmt.Println()
	fmt.Println("Common Options:")
	fmt.Println("  -config <file>    YAML config file (environment variables still apply)")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -replace          Delete existing reports before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Xlsx Options:")
	fmt.Println("  -output <file>    Output file path")
	fmt.Println("  -month <name>     Month name or number, with -year")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  reportctl export -output mybackup.json")
	fmt.Println("  reportctl import -input backup.json -replace")
	fmt.Println("  reportctl xlsx -month Marzo -year 2025")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  REPORTHUB_DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  REPORTHUB_DB_PATH          SQLite database path (default: ./reporthub.db)")
	fmt.Println("  REPORTHUB_DATABASE_URL     PostgreSQL or MySQL connection URL")
}
