package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/model"
	"truckmonitor/internal/repository/sqlite"
)

const batchSize = 500

// Indexes an existing text log store into the SQLite database.
func main() {
	cfg := config.Load()
	storePath := flag.String("store", cfg.LogStorePath, "Log store to read")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	flag.Parse()

	fmt.Printf("Migrating records from %s to database %s\n", *storePath, *dbPath)

	lines, err := logsink.ReadLines(*storePath)
	if err != nil {
		log.Fatalf("Failed to read log store: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewRecordRepository(db)

	var batch []model.LogRecord
	inserted, skipped := 0, 0
	for i, line := range lines {
		record, err := logsink.ParseLine(line, time.Local)
		if err != nil {
			log.Printf("⚠️  Skipping line %d: %v", i+1, err)
			skipped++
			continue
		}
		record.RunID = "migrated"
		batch = append(batch, record)

		if len(batch) == batchSize {
			if err := repo.InsertBatch(batch); err != nil {
				log.Fatalf("Failed to insert records: %v", err)
			}
			inserted += len(batch)
			batch = batch[:0]
		}
	}

	if err := repo.InsertBatch(batch); err != nil {
		log.Fatalf("Failed to insert records: %v", err)
	}
	inserted += len(batch)

	fmt.Printf("✅ Migrated %d records (%d skipped)\n", inserted, skipped)
}
