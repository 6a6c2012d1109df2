package trace

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"yesnt/internal/runtime"
)

const schema = `CREATE TABLE IF NOT EXISTS line_events (
	run_id VARCHAR(64) NOT NULL,
	seq BIGINT NOT NULL,
	task_id BIGINT NOT NULL,
	line_number INTEGER NOT NULL,
	original_text TEXT NOT NULL,
	rewritten_text TEXT NOT NULL,
	recorded_at BIGINT NOT NULL,
	PRIMARY KEY (run_id, seq)
)`

// Event is a recorded line event.
type Event struct {
	Seq        int64
	TaskID     int64
	LineNumber int
	Original   string
	Rewritten  string
	RecordedAt time.Time
}

// Recorder stores line events of one run in a SQL database. Supported
// drivers are sqlite3, mysql and postgres.
type Recorder struct {
	db     *sql.DB
	driver string
	runID  string
	seq    atomic.Int64
}

func Open(driver, dsn string) (*Recorder, error) {
	switch driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported trace driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s trace store: %w", driver, err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating trace table: %w", err)
	}

	r := &Recorder{db: db, driver: driver, runID: newRunID()}
	slog.Info("trace recorder open", slog.String("driver", driver), slog.String("run", r.runID))
	return r, nil
}

func newRunID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().Unix(), hex.EncodeToString(b))
}

func (r *Recorder) RunID() string { return r.runID }

// bind rewrites '?' placeholders into the driver's form.
func (r *Recorder) bind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *Recorder) Record(ctx context.Context, ev runtime.LineEvent) error {
	_, err := r.db.ExecContext(ctx, r.bind(`INSERT INTO line_events
		(run_id, seq, task_id, line_number, original_text, rewritten_text, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.runID, r.seq.Add(1), ev.TaskID, ev.LineNumber, ev.Original, ev.Current, time.Now().UnixMilli())
	return err
}

// Observe adapts the recorder to a line event subscriber. Failures are
// logged and do not affect the run.
func (r *Recorder) Observe(ev runtime.LineEvent) {
	if err := r.Record(context.Background(), ev); err != nil {
		slog.Warn("error recording line event", slog.Any("error", err))
	}
}

// Events lists the events of runID in the order they were recorded.
func (r *Recorder) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(`SELECT seq, task_id, line_number, original_text, rewritten_text, recorded_at
		FROM line_events WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var at int64
		if err := rows.Scan(&ev.Seq, &ev.TaskID, &ev.LineNumber, &ev.Original, &ev.Rewritten, &at); err != nil {
			return nil, err
		}
		ev.RecordedAt = time.UnixMilli(at)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
