// Package main provides the docctl CLI, a thin administrative client that
// talks straight to the database and storage backend using the same services
// as the API server.
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
	"docvault/internal/storage"
)

var (
	// jsonOutput is set by the --json flag.
	jsonOutput bool

	db      *sql.DB
	docSvc  service.DocumentService
	metaSvc service.MetadataService
	catSvc  service.CategoryService
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docctl",
	Short: "docctl administers the document vault",
	Long: `docctl is an administrative client for the document vault. It connects
directly to the configured database and storage backend, using the same
environment variables as the API server (.env auto-loaded if present).`,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(categoryCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("docctl v1.0.0")
	},
}

// initServices connects to the database and storage backend and wires the
// domain services.
func initServices(cmd *cobra.Command, args []string) error {
	// Skip init for version command
	if cmd.Name() == "version" {
		return nil
	}

	cfg := config.Load()

	var err error
	db, err = database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	objStore, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	fieldRepo := postgres.NewMetadataFieldPostgres(db)
	typeRepo := postgres.NewDocumentTypePostgres(db)

	metaSvc = service.NewMetadataService(fieldRepo, typeRepo)
	docSvc = service.NewDocumentService(objStore, postgres.NewDocumentPostgres(db), metaSvc)
	catSvc = service.NewCategoryService(postgres.NewCategoryPostgres(db))

	return nil
}

func closeServices() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
