// Package main dumps a StackIt data store without modifying it. Both
// backends are supported; -dump takes a key prefix for badger and a table
// name for sqlite.
//
// Usage:
//
//	DB_PATH=~/stackit/db go run ./cmd/dbinspect
//	DB_PATH=~/stackit/db go run ./cmd/dbinspect -dump question:
//	DB_PATH=~/stackit/stackit.db go run ./cmd/dbinspect -store sqlite -dump answers
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/domain"
	"github.com/stackit/stackit-server/internal/store"
)

var (
	backend = flag.String("store", envOr("STORE_BACKEND", config.BackendBadger), "Store backend: badger or sqlite")
	dump    = flag.String("dump", "", "Print every record under this key prefix (badger) or in this table (sqlite)")
	limit   = flag.Int("limit", 5, "Questions listed in the summary")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	switch *backend {
	case config.BackendBadger:
		inspectBadger(envOr("DB_PATH", os.ExpandEnv("$HOME/stackit/db")))
	case config.BackendSQLite:
		inspectSQLite(envOr("DB_PATH", os.ExpandEnv("$HOME/stackit/stackit.db")))
	default:
		log.Fatalf("Unknown store backend %q (must be %s or %s)", *backend, config.BackendBadger, config.BackendSQLite)
	}
}

func inspectBadger(dbPath string) {
	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if *dump != "" {
		if err := dumpPrefix(db, *dump); err != nil {
			log.Fatalf("Error dumping %s: %v", *dump, err)
		}
		return
	}

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	for _, prefix := range store.Prefixes {
		records, indexKeys, err := countPrefix(db, prefix)
		if err != nil {
			log.Fatalf("Error counting %s: %v", prefix, err)
		}
		fmt.Printf("%-10s %6d records %6d index keys\n", strings.TrimSuffix(prefix, ":"), records, indexKeys)
	}
	fmt.Println()

	if err := printQuestions(db, *limit); err != nil {
		log.Fatalf("Error iterating questions: %v", err)
	}
}

func isIndexKey(key, prefix string) bool {
	rest := strings.TrimPrefix(key, prefix)
	return strings.HasPrefix(rest, "idx:") || strings.HasPrefix(rest, "lidx:")
}

func countPrefix(db *badger.DB, prefix string) (records, indexKeys int, err error) {
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if isIndexKey(string(it.Item().Key()), prefix) {
				indexKeys++
			} else {
				records++
			}
		}
		return nil
	})
	return records, indexKeys, err
}

func printQuestions(db *badger.DB, limit int) error {
	const prefix = "question:"
	shown := 0

	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && shown < limit; it.Next() {
			key := string(it.Item().Key())
			if isIndexKey(key, prefix) {
				continue
			}

			err := it.Item().Value(func(val []byte) error {
				var q domain.Question
				if err := json.Unmarshal(val, &q); err != nil {
					return err
				}
				shown++

				fmt.Printf("Question: %s\n", q.Title)
				fmt.Printf("  ID: %s\n", q.ID)
				fmt.Printf("  Tags: %s\n", strings.Join(q.Tags, ", "))
				fmt.Printf("  Votes: %d  Answers: %d\n", q.Votes, q.AnswerCount())
				if q.AcceptedAnswerID != "" {
					fmt.Printf("  Accepted: %s\n", q.AcceptedAnswerID)
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})
}

func dumpPrefix(db *badger.DB, prefix string) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			err := it.Item().Value(func(val []byte) error {
				var out bytes.Buffer
				if err := json.Indent(&out, val, "", "  "); err != nil {
					// Index entries hold bare ids
					fmt.Printf("%s = %s\n", key, val)
					return nil
				}
				fmt.Printf("%s =\n%s\n", key, out.String())
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
