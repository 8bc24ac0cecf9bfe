package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/nlq"
)

// Scalar is the single value an aggregate query produced. Determined is
// false when the cell could not be read as a number and Value fell back to 0;
// a NULL aggregate (SUM over no rows) is a determined 0.
type Scalar struct {
	Value      float64
	Determined bool
}

// Execute validates query, runs it on a pooled connection and coerces the
// first cell of the first row to a number. Coercion never fails.
func (s *Store) Execute(ctx context.Context, query string) (Scalar, error) {
	if err := Check(query); err != nil {
		return Scalar{}, err
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Scalar{}, apperrors.Wrap(apperrors.ErrExecution, err, "query failed").WithSnippet(query)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Scalar{}, apperrors.Wrap(apperrors.ErrExecution, err, "failed to read result columns")
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Scalar{}, apperrors.Wrap(apperrors.ErrExecution, err, "query failed").WithSnippet(query)
		}
		s.logger.Warn("aggregate query returned no rows", zap.String("sql", query))
		return Scalar{}, nil
	}

	if len(cols) == 0 {
		return Scalar{}, nil
	}
	if len(cols) > 1 {
		s.logger.Warn("query returned more than one column, using the first", zap.Int("columns", len(cols)))
	}

	cells := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Scalar{}, apperrors.Wrap(apperrors.ErrExecution, err, "failed to scan result")
	}

	return coerce(cells[0], s.logger), nil
}

func coerce(v any, logger *zap.Logger) Scalar {
	if v == nil {
		return Scalar{Determined: true}
	}
	if f, ok := nlq.ToFloat(v); ok {
		return Scalar{Value: f, Determined: true}
	}
	logger.Warn("result is not numeric, answering 0", zap.Any("value", v))
	return Scalar{}
}

// QueryRowInt runs a fixed internal query returning one integer, such as a
// row count. Unlike Execute it is not checked against the keyword denylist.
func (s *Store) QueryRowInt(ctx context.Context, query string, args ...any) (int64, error) {
	var n sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrExecution, err, "query failed").WithSnippet(query)
	}
	return n.Int64, nil
}
