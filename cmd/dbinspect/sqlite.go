package main

import (
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// sqliteTables are the tables -dump accepts, in summary order.
var sqliteTables = []string{"users", "questions", "question_tags", "answers", "notifications", "schema_version"}

type questionSummary struct {
	ID               string `db:"id"`
	Title            string `db:"title"`
	Votes            int    `db:"votes"`
	AcceptedAnswerID string `db:"accepted_answer_id"`
	Tags             string `db:"tags"`
	Answers          int    `db:"answers"`
}

func inspectSQLite(dbPath string) {
	db, err := sqlx.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if *dump != "" {
		if err := dumpTable(db, *dump); err != nil {
			log.Fatalf("Error dumping %s: %v", *dump, err)
		}
		return
	}

	fmt.Println("=== Database Inspection (sqlite) ===")
	fmt.Println()

	for _, table := range sqliteTables {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			log.Fatalf("Error counting %s: %v", table, err)
		}
		fmt.Printf("%-14s %6d rows\n", table, n)
	}
	fmt.Println()

	var questions []questionSummary
	err = db.Select(&questions, `
		SELECT q.id, q.title, q.votes, q.accepted_answer_id,
			COALESCE((SELECT group_concat(tag, ', ') FROM
				(SELECT tag FROM question_tags WHERE question_id = q.id ORDER BY position)), '') AS tags,
			(SELECT COUNT(*) FROM answers WHERE question_id = q.id) AS answers
		FROM questions q
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT ?`, *limit)
	if err != nil {
		log.Fatalf("Error listing questions: %v", err)
	}
	for _, q := range questions {
		fmt.Printf("Question: %s\n", q.Title)
		fmt.Printf("  ID: %s\n", q.ID)
		fmt.Printf("  Tags: %s\n", q.Tags)
		fmt.Printf("  Votes: %d  Answers: %d\n", q.Votes, q.Answers)
		if q.AcceptedAnswerID != "" {
			fmt.Printf("  Accepted: %s\n", q.AcceptedAnswerID)
		}
		fmt.Println()
	}
}

func dumpTable(db *sqlx.DB, table string) error {
	if !slices.Contains(sqliteTables, table) {
		return fmt.Errorf("unknown table (one of: %s)", strings.Join(sqliteTables, ", "))
	}

	rows, err := db.Queryx("SELECT * FROM " + table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return err
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out, err := json.MarshalIndent(row, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return rows.Err()
}
