// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

var tracer = otel.Tracer("github.com/Balaji1472/Automated-Email-Assistant/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists batch results in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Get retrieves a batch by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Batch, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT id, total, urgent_count, negative_count, created_at, completed_at, duration_s
		FROM batches WHERE id = $1`
	b, err := s.scanBatchRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}

	if err := s.loadRecords(ctx, b); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	return b, true, nil
}

// Latest retrieves the most recently created batch.
func (s *Store) Latest(ctx context.Context) (*triage.Batch, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Latest", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT id, total, urgent_count, negative_count, created_at, completed_at, duration_s
		FROM batches ORDER BY created_at DESC LIMIT 1`
	b, err := s.scanBatchRow(s.pool.QueryRow(ctx, query))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}

	if err := s.loadRecords(ctx, b); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	return b, true, nil
}

// Put stores a batch and its records in one transaction, replacing any
// previous rows with the same batch ID.
func (s *Store) Put(ctx context.Context, b *triage.Batch) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO batches (id, total, urgent_count, negative_count, created_at, completed_at, duration_s)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				total = EXCLUDED.total,
				urgent_count = EXCLUDED.urgent_count,
				negative_count = EXCLUDED.negative_count,
				completed_at = EXCLUDED.completed_at,
				duration_s = EXCLUDED.duration_s`,
			b.ID, b.Total, b.UrgentCount, b.NegativeCount, b.CreatedAt, b.CompletedAt, b.Duration)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM batch_records WHERE batch_id = $1`, b.ID); err != nil {
			return fmt.Errorf("clear batch records: %w", err)
		}

		for i, r := range b.Records {
			info, err := json.Marshal(r.ExtractedInfo)
			if err != nil {
				return fmt.Errorf("marshal extracted info: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO batch_records (batch_id, seq, message_id, sender, subject, date, body,
					sentiment, priority, summary, extracted_info, draft_response)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				b.ID, i, r.Message.ID, r.Sender, r.Subject, r.Date, r.Body,
				string(r.Sentiment), string(r.Priority), r.Summary, info, r.DraftResponse)
			if err != nil {
				return fmt.Errorf("insert record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Store) scanBatchRow(row pgx.Row) (*triage.Batch, error) {
	var b triage.Batch
	err := row.Scan(&b.ID, &b.Total, &b.UrgentCount, &b.NegativeCount, &b.CreatedAt, &b.CompletedAt, &b.Duration)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	return &b, nil
}

func (s *Store) loadRecords(ctx context.Context, b *triage.Batch) error {
	rows, err := s.pool.Query(ctx, `
		SELECT message_id, sender, subject, date, body, sentiment, priority, summary, extracted_info, draft_response
		FROM batch_records WHERE batch_id = $1 ORDER BY seq`, b.ID)
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r triage.Record
		var sentiment, priority string
		var info []byte
		if err := rows.Scan(&r.Message.ID, &r.Sender, &r.Subject, &r.Date, &r.Body,
			&sentiment, &priority, &r.Summary, &info, &r.DraftResponse); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		r.Sentiment = triage.Sentiment(sentiment)
		r.Priority = triage.Priority(priority)
		if err := json.Unmarshal(info, &r.ExtractedInfo); err != nil {
			return fmt.Errorf("unmarshal extracted info: %w", err)
		}
		b.Records = append(b.Records, r)
	}
	return rows.Err()
}
