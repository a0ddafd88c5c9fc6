// Package pgstore provides a PostgreSQL implementation of mirror.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/gridwatch/internal/incident"
)

var tracer = otel.Tracer("github.com/linnemanlabs/gridwatch/internal/mirror/pgstore")

//go:embed schema.sql
var schema string

// Store mirrors published incidents in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const incidentColumns = `id, type, status, lat, lng, severity, confidence, summary,
	sources, actions, created_at`

// Upsert inserts or merges incidents by id in one transaction. Safe to
// call repeatedly with the same ids and fields.
func (s *Store) Upsert(ctx context.Context, incidents []incident.Public) error {
	if len(incidents) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "pgstore.Upsert", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
		attribute.Int("gridwatch.incidents", len(incidents)),
	))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	for i := range incidents {
		if err := upsertOne(ctx, tx, &incidents[i]); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query returns mirrored incidents ordered by created_at descending.
// since filters strictly: only rows created after it are returned.
func (s *Store) Query(ctx context.Context, limit int, since *time.Time) ([]incident.Public, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Query", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + incidentColumns + ` FROM incidents`
	args := []any{}
	if since != nil {
		query += ` WHERE created_at > $1`
		args = append(args, *since)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var out []incident.Public
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, *inc)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return out, nil
}

func upsertOne(ctx context.Context, tx pgx.Tx, inc *incident.Public) error {
	sourcesJSON, err := json.Marshal(inc.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources %s: %w", inc.ID, err)
	}
	actionsJSON, err := json.Marshal(inc.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions %s: %w", inc.ID, err)
	}

	query := `INSERT INTO incidents (
		id, type, status, lat, lng, severity, confidence, summary, sources, actions, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (id) DO UPDATE SET
		type       = EXCLUDED.type,
		status     = EXCLUDED.status,
		lat        = EXCLUDED.lat,
		lng        = EXCLUDED.lng,
		severity   = EXCLUDED.severity,
		confidence = EXCLUDED.confidence,
		summary    = EXCLUDED.summary,
		sources    = EXCLUDED.sources,
		actions    = EXCLUDED.actions,
		created_at = EXCLUDED.created_at`

	_, err = tx.Exec(ctx, query,
		inc.ID, inc.Type, string(inc.Status), inc.Lat, inc.Lng,
		inc.Severity, inc.Confidence, inc.Summary, sourcesJSON, actionsJSON, inc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert incident %s: %w", inc.ID, err)
	}
	return nil
}

// scanIncident scans a single row into an incident.Public.
func scanIncident(row pgx.Row) (*incident.Public, error) {
	var (
		inc         incident.Public
		status      string
		sourcesJSON []byte
		actionsJSON []byte
	)

	err := row.Scan(
		&inc.ID, &inc.Type, &status, &inc.Lat, &inc.Lng,
		&inc.Severity, &inc.Confidence, &inc.Summary,
		&sourcesJSON, &actionsJSON, &inc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	inc.Status = incident.Status(status)
	inc.Time = inc.CreatedAt

	if err := json.Unmarshal(sourcesJSON, &inc.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources %s: %w", inc.ID, err)
	}
	if err := json.Unmarshal(actionsJSON, &inc.Actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions %s: %w", inc.ID, err)
	}
	return &inc, nil
}
