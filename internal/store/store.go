// Package store keeps the outcome of batch extractions in a sqlite
// database, one run per batch and one result per input file.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema, ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway, a single connection also keeps
	// in-memory databases from being split across connections
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Run struct {
	Id        string
	Portal    string
	Page      string
	StartedAt time.Time
}

type Result struct {
	RunId  string
	Source string
	Ok     bool
	// Record is the extracted record as json, empty when extraction failed.
	Record string
	Issues []string
}

// BeginRun records the start of a batch over a single page type.
func (s *Store) BeginRun(ctx context.Context, portal, page string) (Run, error) {
	run := Run{
		Id:        uuid.NewString(),
		Portal:    portal,
		Page:      page,
		StartedAt: s.now().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(
		ctx,
		"insert into run(id, portal, page, started_at) values (?, ?, ?, ?)",
		run.Id, run.Portal, run.Page, run.StartedAt.Unix(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// AddResult stores the outcome for one input, adding the same source to a
// run twice replaces the earlier result.
func (s *Store) AddResult(ctx context.Context, result Result) error {
	issues := result.Issues
	if issues == nil {
		issues = []string{}
	}
	encodedIssues, err := json.Marshal(issues)
	if err != nil {
		return err
	}

	var record sql.NullString
	if result.Record != "" {
		record = sql.NullString{String: result.Record, Valid: true}
	}

	_, err = s.db.ExecContext(
		ctx,
		`insert into result(run_id, source, ok, record, issues) values (?, ?, ?, ?, ?)
		on conflict(run_id, source) do update set ok = excluded.ok, record = excluded.record, issues = excluded.issues`,
		result.RunId, result.Source, result.Ok, record, string(encodedIssues),
	)
	if err != nil {
		return fmt.Errorf("add result %s: %w", result.Source, err)
	}
	return nil
}

// Results returns the results of a run ordered by source.
func (s *Store) Results(ctx context.Context, runId string) ([]Result, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select run_id, source, ok, record, issues from result where run_id = ? order by source",
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r      Result
			record sql.NullString
			issues string
		)
		err := rows.Scan(&r.RunId, &r.Source, &r.Ok, &record, &issues)
		if err != nil {
			return nil, err
		}
		r.Record = record.String
		err = json.Unmarshal([]byte(issues), &r.Issues)
		if err != nil {
			return nil, fmt.Errorf("decode issues of %s: %w", r.Source, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs returns every run, the most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select id, portal, page, started_at from run order by started_at desc, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			r         Run
			startedAt int64
		)
		err := rows.Scan(&r.Id, &r.Portal, &r.Page, &startedAt)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(startedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
