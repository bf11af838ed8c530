package main

import (
	"context"
	"flag"
	"log"

	"legacybook/internal/config"
	"legacybook/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before creating the schema (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	log.Printf("Setting up schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Reverse dependency order
	for _, table := range []string{
		tables.Decisions,
		tables.BookVersions,
		tables.Answers,
		tables.Conversations,
		tables.Users,
	} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}

func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	// Create users table. The id is the JWT subject, not a UUID.
	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT 'User',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	// Create conversations table
	createConversations := `
		CREATE TABLE IF NOT EXISTS ` + tables.Conversations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id TEXT NOT NULL REFERENCES ` + tables.Users + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			current_section TEXT NOT NULL,
			question_index INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			generation_count INTEGER NOT NULL DEFAULT 0,
			verification_count INTEGER NOT NULL DEFAULT 0,
			regeneration_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createConversations); err != nil {
		return err
	}

	// Create answers table
	createAnswers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Answers + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			conversation_id UUID NOT NULL REFERENCES ` + tables.Conversations + `(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			response TEXT NOT NULL,
			importance_score INTEGER,
			tags TEXT[],
			follow_up TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createAnswers); err != nil {
		return err
	}

	createAnswersIndex := `
		CREATE INDEX IF NOT EXISTS idx_` + tables.Answers + `_conversation
		ON ` + tables.Answers + ` (conversation_id, created_at)
	`
	if _, err := pool.Exec(ctx, createAnswersIndex); err != nil {
		return err
	}

	// Create book versions table
	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.BookVersions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			conversation_id UUID NOT NULL REFERENCES ` + tables.Conversations + `(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			content TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, version_number)
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	// At most one FINAL version per conversation
	createFinalIndex := `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tables.BookVersions + `_final
		ON ` + tables.BookVersions + ` (conversation_id)
		WHERE status = 'FINAL'
	`
	if _, err := pool.Exec(ctx, createFinalIndex); err != nil {
		return err
	}

	// Create decisions table
	createDecisions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Decisions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			conversation_id UUID NOT NULL REFERENCES ` + tables.Conversations + `(id) ON DELETE CASCADE,
			issue_id TEXT NOT NULL,
			decision TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, issue_id)
		)
	`
	if _, err := pool.Exec(ctx, createDecisions); err != nil {
		return err
	}

	return nil
}
