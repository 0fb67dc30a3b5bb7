package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/grabovoi-crm/api-contract-tests/crmtests"
	"github.com/grabovoi-crm/api-contract-tests/framework"
	"github.com/grabovoi-crm/api-contract-tests/harness"
	"github.com/grabovoi-crm/api-contract-tests/store"
)

func newRunCommand() *cobra.Command {
	var baseURL string
	var timeout time.Duration
	var delay time.Duration
	var filters framework.RegexFilters
	var debug bool
	var debugAll bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the CRM contract-test suite against a backend",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Running contract tests against %s\n\n", baseURL)
			framework.PrintFilterDescription(os.Stdout, filters)

			client := harness.NewAPIClient(baseURL, timeout, os.Stdout)
			testLogger := &ConsoleTestLogger{
				DebugOutputOnFailure: debug || debugAll,
				DebugOutputOnSuccess: debugAll,
			}

			results := crmtests.RunTestSuite(crmtests.SuiteConfig{
				Client:        client,
				Filter:        filters.AsFilter,
				TestLogger:    testLogger,
				ScenarioDelay: delay,
			})

			fmt.Println()
			framework.PrintResults(os.Stdout, results)
			if !results.Acceptable() {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", envOr("CRM_BASE_URL", defaultBaseURL), "base URL of the CRM backend")
	cmd.Flags().DurationVar(&timeout, "timeout", harness.DefaultTimeout, "per-request timeout")
	cmd.Flags().DurationVar(&delay, "delay", crmtests.DefaultScenarioDelay, "courtesy delay between scenarios")
	cmd.Flags().Var(&filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	cmd.Flags().Var(&filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging for failed scenarios")
	cmd.Flags().BoolVar(&debugAll, "debug-all", false, "enable debug logging for all scenarios")
	return cmd
}

func newPlanCommand() *cobra.Command {
	var baseURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Run a declarative YAML scenario plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := harness.LoadPlan(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Running plan %q against %s\n\n", plan.Name, baseURL)
			client := harness.NewAPIClient(baseURL, timeout, os.Stdout)
			passed, run := client.RunPlan(plan)

			fmt.Printf("\nSteps run: %d, passed: %d, failed: %d\n", run, passed, run-passed)
			if run > 0 && float64(passed)/float64(run) < 0.8 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", envOr("CRM_BASE_URL", defaultBaseURL), "base URL of the CRM backend")
	cmd.Flags().DurationVar(&timeout, "timeout", harness.DefaultTimeout, "per-request timeout")
	return cmd
}

func newSeedCommand() *cobra.Command {
	var mongoURL string
	var dbName string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the CRM database with sample data (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			client, err := store.Connect(ctx, mongoURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()

			fmt.Printf("Seeding %s/%s\n", store.RedactURI(mongoURL), dbName)
			result, err := store.Seed(ctx, client.Database(dbName), os.Stdout)
			if err != nil {
				return err
			}
			fmt.Printf("Done: %d created, %d already present\n",
				len(result.Created), len(result.Skipped))
			fmt.Printf("Login credentials: %s / %s\n", store.AdminEmail, store.AdminPassword)
			return nil
		},
	}

	cmd.Flags().StringVar(&mongoURL, "mongo-url", envOr("MONGO_URL", defaultMongoURL), "MongoDB connection string")
	cmd.Flags().StringVar(&dbName, "db", envOr("DB_NAME", defaultDBName), "database name")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall operation timeout")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	var cfg store.MigrationConfig
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all CRM collections between two MongoDB endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DestURI == "" || cfg.DestDB == "" {
				return fmt.Errorf("--dest-url and --dest-db are required")
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			cfg.Output = os.Stdout
			report, err := store.Migrate(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Printf("Migrated %d documents across %d collections\n",
				report.TotalDocuments, report.SuccessfulCollections)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.SourceURI, "source-url", envOr("MONGO_URL", defaultMongoURL), "source MongoDB connection string")
	cmd.Flags().StringVar(&cfg.SourceDB, "source-db", envOr("DB_NAME", "crm_db"), "source database name")
	cmd.Flags().StringVar(&cfg.DestURI, "dest-url", os.Getenv("DEST_MONGO_URL"), "destination MongoDB connection string")
	cmd.Flags().StringVar(&cfg.DestDB, "dest-db", os.Getenv("DEST_DB_NAME"), "destination database name")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch-size", store.DefaultBatchSize, "insert batch size")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", store.DefaultReportPath, "path of the JSON migration report")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall operation timeout")
	return cmd
}
