package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Seed fixtures. Natural keys (user email, tag name, product SKU, course
// title) make the whole operation idempotent: a document whose key already
// exists is skipped, so running seed twice never creates duplicates.

const (
	AdminEmail    = "admin@grabovoi.com"
	AdminPassword = "admin123"
)

type SeedResult struct {
	Created []string
	Skipped []string
}

func adminUser(now time.Time, passwordHash string) bson.M {
	return bson.M{
		"name":       "Amministratore",
		"email":      AdminEmail,
		"password":   passwordHash,
		"role":       "admin",
		"created_at": now,
		"updated_at": now,
	}
}

func sampleTags(now time.Time) []bson.M {
	return []bson.M{
		{"name": "Lead Caldo", "category": "status", "color": "#EF4444", "created_at": now},
		{"name": "Cliente VIP", "category": "status", "color": "#10B981", "created_at": now},
		{"name": "Sito Web", "category": "source", "color": "#3B82F6", "created_at": now},
		{"name": "Social Media", "category": "source", "color": "#8B5CF6", "created_at": now},
		{"name": "Numerologia", "category": "interest", "color": "#F59E0B", "created_at": now},
	}
}

func sampleProducts(now time.Time) []bson.M {
	return []bson.M{
		{
			"name":        "Corso Base Grabovoi",
			"description": "Introduzione ai metodi di Grigori Grabovoi",
			"price":       97.0,
			"category":    "Corsi",
			"sku":         "CORSO-BASE-001",
			"is_active":   true,
			"created_at":  now,
			"updated_at":  now,
		},
		{
			"name":        "Libro Sequenze Numeriche",
			"description": "Collezione completa delle sequenze numeriche",
			"price":       29.99,
			"category":    "Libri",
			"sku":         "LIBRO-SEQ-001",
			"is_active":   true,
			"created_at":  now,
			"updated_at":  now,
		},
	}
}

func sampleCourses(now time.Time) []bson.M {
	return []bson.M{
		{
			"title":        "Numerologia Applicata",
			"description":  "Corso completo di numerologia con metodi pratici",
			"instructor":   "Dr. Maria Rossi",
			"duration":     "8 settimane",
			"price":        147.0,
			"category":     "Numerologia",
			"is_active":    true,
			"max_students": 20,
			"created_at":   now,
			"updated_at":   now,
		},
		{
			"title":        "Pilotaggio della Realtà",
			"description":  "Tecniche avanzate per il controllo della realtà",
			"instructor":   "Prof. Luigi Bianchi",
			"duration":     "12 settimane",
			"price":        297.0,
			"category":     "Avanzato",
			"is_active":    true,
			"max_students": 15,
			"created_at":   now,
			"updated_at":   now,
		},
	}
}

// seedCollection is the subset of mongo.Collection operations seeding needs.
type seedCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// Seed populates the database with the sample data set, inserting only
// documents whose natural key is not present yet.
func Seed(ctx context.Context, db *mongo.Database, output io.Writer) (SeedResult, error) {
	return seedInto(ctx, func(name string) seedCollection { return db.Collection(name) }, output)
}

func seedInto(ctx context.Context, collections func(name string) seedCollection, output io.Writer) (SeedResult, error) {
	var result SeedResult
	now := time.Now().UTC()

	hash, err := HashPassword(AdminPassword)
	if err != nil {
		return result, fmt.Errorf("hashing admin password: %w", err)
	}

	type entry struct {
		collection string
		key        string
		doc        bson.M
	}
	var entries []entry
	entries = append(entries, entry{"users", "email", adminUser(now, hash)})
	for _, tag := range sampleTags(now) {
		entries = append(entries, entry{"tags", "name", tag})
	}
	for _, product := range sampleProducts(now) {
		entries = append(entries, entry{"products", "sku", product})
	}
	for _, course := range sampleCourses(now) {
		entries = append(entries, entry{"courses", "title", course})
	}

	for _, e := range entries {
		label := fmt.Sprintf("%s %v", e.collection, e.doc[e.key])
		created, err := ensureDocument(ctx, collections(e.collection), e.key, e.doc)
		if err != nil {
			return result, fmt.Errorf("seeding %s: %w", label, err)
		}
		if created {
			result.Created = append(result.Created, label)
			fmt.Fprintf(output, "created %s\n", label)
		} else {
			result.Skipped = append(result.Skipped, label)
			fmt.Fprintf(output, "exists  %s\n", label)
		}
	}
	return result, nil
}

// ensureDocument inserts doc unless a document with the same natural key
// already exists. Returns whether an insert happened.
func ensureDocument(ctx context.Context, coll seedCollection, key string, doc bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{key: doc[key]})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
