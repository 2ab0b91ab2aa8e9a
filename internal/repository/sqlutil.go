package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
)

// querier is a built statement from the ent SQL builder.
type querier interface {
	Query() (string, []any)
}

func execStmt(ctx context.Context, c Conn, q querier) (int64, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := c.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// queryRows runs q and calls scan once per row.
func queryRows(ctx context.Context, c Conn, q querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := c.Query(ctx, query, args, rows); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%w: scan: %w", common.ErrDatabase, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return nil
}

// queryOne is queryRows for a single expected row; no row is ErrNotFound.
func queryOne(ctx context.Context, c Conn, q querier, scan func(*entsql.Rows) error) error {
	found := false
	err := queryRows(ctx, c, q, func(r *entsql.Rows) error {
		if found {
			return nil
		}
		found = true
		return scan(r)
	})
	if err != nil {
		return err
	}
	if !found {
		return common.ErrNotFound
	}
	return nil
}

func nullString(ns stdsql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt stdsql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt64(ni stdsql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func nullFloat32(nf stdsql.NullFloat64) *float32 {
	if !nf.Valid {
		return nil
	}
	v := float32(nf.Float64)
	return &v
}

func nullUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// uuidArg converts an optional id into a driver argument.
func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// strArg converts an optional string into a driver argument.
func strArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
