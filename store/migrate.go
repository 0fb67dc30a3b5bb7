package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections is the fixed set of CRM collections a full migration copies,
// in migration order.
var Collections = []string{
	"contacts",
	"products",
	"courses",
	"orders",
	"users",
	"clients",
	"students",
	"tags",
	"rules",
	"wc_sync_settings",
	"deleted_courses",
	"password_resets",
	"email_verifications",
}

const DefaultBatchSize = 100
const DefaultReportPath = "migration_report.json"

type MigrationConfig struct {
	SourceURI  string
	SourceDB   string
	DestURI    string
	DestDB     string
	BatchSize  int
	ReportPath string
	Output     io.Writer
}

// MigrationReport is the machine-readable summary written after a run.
type MigrationReport struct {
	MigrationDate         string         `json:"migration_date"`
	Source                string         `json:"source"`
	Destination           string         `json:"destination"`
	TotalDocuments        int            `json:"total_documents"`
	SuccessfulCollections int            `json:"successful_collections"`
	Details               map[string]int `json:"details"`
}

// Migrate copies every CRM collection from the source endpoint to the
// destination in fixed-size batches. A per-collection failure records a zero
// count and the run continues; only a connection failure to either endpoint
// is fatal.
func Migrate(ctx context.Context, cfg MigrationConfig) (MigrationReport, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = DefaultReportPath
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	report := MigrationReport{
		MigrationDate: time.Now().UTC().Format(time.RFC3339),
		Source:        endpointLabel(cfg.SourceURI, cfg.SourceDB),
		Destination:   endpointLabel(cfg.DestURI, cfg.DestDB),
		Details:       map[string]int{},
	}

	fmt.Fprintf(cfg.Output, "migrating %s -> %s\n", report.Source, report.Destination)

	sourceClient, err := Connect(ctx, cfg.SourceURI)
	if err != nil {
		return report, fmt.Errorf("source database: %w", err)
	}
	defer func() { _ = sourceClient.Disconnect(ctx) }()

	destClient, err := Connect(ctx, cfg.DestURI)
	if err != nil {
		return report, fmt.Errorf("destination database: %w", err)
	}
	defer func() { _ = destClient.Disconnect(ctx) }()

	sourceDB := sourceClient.Database(cfg.SourceDB)
	destDB := destClient.Database(cfg.DestDB)

	copyCollections(ctx, &report, Collections, cfg.BatchSize, cfg.Output,
		func(name string) sourceCollection { return sourceDB.Collection(name) },
		func(name string) destCollection { return destDB.Collection(name) })

	if err := writeReport(cfg.ReportPath, report); err != nil {
		return report, fmt.Errorf("writing migration report: %w", err)
	}
	fmt.Fprintf(cfg.Output, "migration report saved to %s\n", cfg.ReportPath)
	return report, nil
}

// sourceCollection and destCollection are the subsets of mongo.Collection
// the migration reads from and writes to.
type sourceCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

type destCollection interface {
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// copyCollections migrates every named collection in order, accumulating the
// report. A per-collection failure records a zero count and the loop
// continues with the next collection.
func copyCollections(
	ctx context.Context,
	report *MigrationReport,
	names []string,
	batchSize int,
	output io.Writer,
	source func(name string) sourceCollection,
	dest func(name string) destCollection,
) {
	for _, name := range names {
		count, err := migrateCollection(ctx, source(name), dest(name), name, batchSize, output)
		if err != nil {
			fmt.Fprintf(output, "  %s: migration failed: %s\n", name, err)
			count = 0
		}
		report.Details[name] = count
		report.TotalDocuments += count
		if count > 0 {
			report.SuccessfulCollections++
		}
	}
}

func migrateCollection(
	ctx context.Context,
	source sourceCollection,
	dest destCollection,
	name string,
	batchSize int,
	output io.Writer,
) (int, error) {
	total, err := source.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(output, "  %s: empty, skipping\n", name)
		return 0, nil
	}
	fmt.Fprintf(output, "  %s: %d documents\n", name, total)

	cursor, err := source.Find(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("reading source: %w", err)
	}
	var docs []interface{}
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			cursor.Close(ctx)
			return 0, fmt.Errorf("decoding document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		cursor.Close(ctx)
		return 0, fmt.Errorf("iterating source: %w", err)
	}
	cursor.Close(ctx)

	// Full sync semantics: the destination collection is replaced wholesale,
	// not merged.
	if _, err := dest.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, fmt.Errorf("clearing destination: %w", err)
	}

	migrated := 0
	for _, batch := range SplitBatches(docs, batchSize) {
		if _, err := dest.InsertMany(ctx, batch); err != nil {
			return 0, fmt.Errorf("inserting batch after %d documents: %w", migrated, err)
		}
		migrated += len(batch)
		fmt.Fprintf(output, "  %s: %d/%d migrated\n", name, migrated, total)
	}
	return migrated, nil
}

// SplitBatches partitions docs into consecutive slices of at most size
// elements. 250 documents at size 100 yields batches of 100, 100 and 50.
func SplitBatches(docs []interface{}, size int) [][]interface{} {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]interface{}
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}

func endpointLabel(uri, db string) string {
	return strings.TrimRight(RedactURI(uri), "/") + "/" + db
}

func writeReport(path string, report MigrationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
