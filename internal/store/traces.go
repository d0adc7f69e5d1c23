package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/roach88/statecore/internal/chart"
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/trace"
)

// ErrTraceNotFound is returned when no trace has the requested ID.
var ErrTraceNotFound = errors.New("trace not found")

// Summary describes a stored trace without its steps.
type Summary struct {
	ID          string `json:"id"`
	ChartName   string `json:"chart_name"`
	ChartHash   string `json:"chart_hash"`
	StoryHash   string `json:"story_hash"`
	Seq         int64  `json:"seq"`
	CoreVersion string `json:"core_version"`
	IRVersion   string `json:"ir_version"`
}

// Record is a stored trace with its macro steps.
type Record struct {
	Summary
	Steps []trace.MacroStep
}

// Story reconstructs the story of the record.
func (r *Record) Story() trace.Story {
	return trace.FromTrace(r.Steps)
}

// WriteTrace stores steps as a new trace of c and returns its ID.
//
// The trace gets the next logical seq. Everything is written in one
// transaction.
func (s *Store) WriteTrace(ctx context.Context, c *chart.Chart, steps []trace.MacroStep) (id string, err error) {
	ctx, span := s.tracer.Start(ctx, "store.WriteTrace", oteltrace.WithAttributes(
		attribute.String("chart.name", c.Name()),
		attribute.Int("trace.macro_steps", len(steps)),
	))
	defer func() { endSpan(span, err) }()

	id = s.ids.Generate()
	span.SetAttributes(attribute.String("trace.id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM traces`).Scan(&seq); err != nil {
		return "", fmt.Errorf("write trace: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO traces (id, chart_name, chart_hash, story_hash, seq, core_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, c.Name(), c.Hash(), trace.FromTrace(steps).Hash(), seq, ir.CoreVersion, ir.SchemaVersion)
	if err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}

	for i, macro := range steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO macro_steps (trace_id, idx, time_ns) VALUES (?, ?, ?)
		`, id, i, macro.Time.Nanoseconds()); err != nil {
			return "", fmt.Errorf("write macro step %d: %w", i, err)
		}
		for j, micro := range macro.Steps {
			stepJSON, err := marshalMicroStep(micro)
			if err != nil {
				return "", fmt.Errorf("write micro step %d.%d: %w", i, j, err)
			}
			var eventName sql.NullString
			if micro.Event != nil {
				eventName = sql.NullString{String: micro.Event.Name, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO micro_steps (trace_id, macro_idx, idx, event_name, step)
				VALUES (?, ?, ?, ?, ?)
			`, id, i, j, eventName, stepJSON); err != nil {
				return "", fmt.Errorf("write micro step %d.%d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write trace: commit: %w", err)
	}

	s.logger.Debug("trace written", "id", id, "chart", c.Name(), "seq", seq, "macro_steps", len(steps))
	return id, nil
}

// ReadTrace loads a trace by ID. Returns ErrTraceNotFound if absent.
func (s *Store) ReadTrace(ctx context.Context, id string) (rec *Record, err error) {
	ctx, span := s.tracer.Start(ctx, "store.ReadTrace", oteltrace.WithAttributes(
		attribute.String("trace.id", id),
	))
	defer func() { endSpan(span, err) }()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, chart_name, chart_hash, story_hash, seq, core_version, ir_version
		FROM traces WHERE id = ?
	`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTraceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	steps, err := s.readMacroSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Record{Summary: summary, Steps: steps}, nil
}

func (s *Store) readMacroSteps(ctx context.Context, id string) ([]trace.MacroStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.idx, m.time_ns, u.idx, u.step
		FROM macro_steps m
		LEFT JOIN micro_steps u ON u.trace_id = m.trace_id AND u.macro_idx = m.idx
		WHERE m.trace_id = ?
		ORDER BY m.idx ASC, u.idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query macro steps: %w", err)
	}
	defer rows.Close()

	steps := []trace.MacroStep{}
	for rows.Next() {
		var (
			macroIdx int
			timeNS   int64
			microIdx sql.NullInt64
			stepJSON sql.NullString
		)
		if err := rows.Scan(&macroIdx, &timeNS, &microIdx, &stepJSON); err != nil {
			return nil, fmt.Errorf("scan macro step: %w", err)
		}
		if macroIdx == len(steps) {
			steps = append(steps, trace.MacroStep{Time: time.Duration(timeNS)})
		}
		if !stepJSON.Valid {
			continue
		}
		micro, err := unmarshalMicroStep(stepJSON.String)
		if err != nil {
			return nil, fmt.Errorf("macro step %d: %w", macroIdx, err)
		}
		steps[macroIdx].Steps = append(steps[macroIdx].Steps, micro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate macro steps: %w", err)
	}
	return steps, nil
}

// ListTraces returns trace summaries ordered by seq. An empty chartName
// lists every trace.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListTraces(ctx context.Context, chartName string) (out []Summary, err error) {
	ctx, span := s.tracer.Start(ctx, "store.ListTraces", oteltrace.WithAttributes(
		attribute.String("chart.name", chartName),
	))
	defer func() { endSpan(span, err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chart_name, chart_hash, story_hash, seq, core_version, ir_version
		FROM traces
		WHERE ? = '' OR chart_name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, chartName, chartName)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	return collectSummaries(rows)
}

// TracesWithEvent returns the traces that consumed an event named name,
// ordered by seq.
func (s *Store) TracesWithEvent(ctx context.Context, name string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.chart_name, t.chart_hash, t.story_hash, t.seq, t.core_version, t.ir_version
		FROM traces t
		WHERE EXISTS (
			SELECT 1 FROM micro_steps u WHERE u.trace_id = t.id AND u.event_name = ?
		)
		ORDER BY t.seq ASC, t.id COLLATE BINARY ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query traces by event: %w", err)
	}
	return collectSummaries(rows)
}

// DeleteTrace removes a trace and its steps. Returns ErrTraceNotFound if
// absent.
func (s *Store) DeleteTrace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM traces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trace: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrTraceNotFound, id)
	}
	s.logger.Debug("trace deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (Summary, error) {
	var sum Summary
	err := row.Scan(&sum.ID, &sum.ChartName, &sum.ChartHash, &sum.StoryHash, &sum.Seq, &sum.CoreVersion, &sum.IRVersion)
	return sum, err
}

func collectSummaries(rows *sql.Rows) ([]Summary, error) {
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}
	return out, nil
}

// marshalMicroStep converts a micro step to canonical JSON TEXT.
func marshalMicroStep(m trace.MicroStep) (string, error) {
	data, err := ir.MarshalCanonical(m.Value())
	if err != nil {
		return "", fmt.Errorf("marshal micro step: %w", err)
	}
	return string(data), nil
}

func unmarshalMicroStep(s string) (trace.MicroStep, error) {
	v, err := ir.Unmarshal([]byte(s))
	if err != nil {
		return trace.MicroStep{}, fmt.Errorf("unmarshal micro step: %w", err)
	}
	return trace.MicroStepFromValue(v)
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
