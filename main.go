package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultBaseURL  = "https://faster-crm.preview.emergentagent.com"
	defaultMongoURL = "mongodb://localhost:27017/"
	defaultDBName   = "grabovoi_crm"
)

func main() {
	// Local overrides for base URL and database endpoints live in .env, the
	// same convention the backend uses. Absence of the file is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "crm-contract-tests",
		Short:         "Contract tests and database maintenance for the CRM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newPlanCommand())
	root.AddCommand(newSeedCommand())
	root.AddCommand(newMigrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
