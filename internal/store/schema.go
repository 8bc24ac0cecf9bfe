package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// mysqlDuplicateKeyName is ER_DUP_KEYNAME.
const mysqlDuplicateKeyName = 1061

// schemaStatements returns the DDL for the videos and video_snapshots tables.
func schemaStatements(d Dialect) []string {
	idType, tsType := "TEXT", "TIMESTAMP"
	switch d {
	case MySQL:
		idType, tsType = "VARCHAR(64)", "DATETIME(6)"
	case Postgres:
		tsType = "TIMESTAMPTZ"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS videos (
	id %[1]s PRIMARY KEY,
	creator_id %[1]s NOT NULL,
	video_created_at %[2]s NULL,
	views_count BIGINT NOT NULL DEFAULT 0,
	likes_count BIGINT NOT NULL DEFAULT 0,
	comments_count BIGINT NOT NULL DEFAULT 0,
	reports_count BIGINT NOT NULL DEFAULT 0,
	created_at %[2]s NULL,
	updated_at %[2]s NULL
)`, idType, tsType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS video_snapshots (
	id %[1]s PRIMARY KEY,
	video_id %[1]s NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
	views_count BIGINT NOT NULL DEFAULT 0,
	likes_count BIGINT NOT NULL DEFAULT 0,
	comments_count BIGINT NOT NULL DEFAULT 0,
	reports_count BIGINT NOT NULL DEFAULT 0,
	delta_views_count BIGINT NOT NULL DEFAULT 0,
	delta_likes_count BIGINT NOT NULL DEFAULT 0,
	delta_comments_count BIGINT NOT NULL DEFAULT 0,
	delta_reports_count BIGINT NOT NULL DEFAULT 0,
	created_at %[2]s NOT NULL,
	updated_at %[2]s NULL
)`, idType, tsType),
	}

	indexes := []struct{ name, table, column string }{
		{"idx_videos_creator_id", "videos", "creator_id"},
		{"idx_videos_video_created_at", "videos", "video_created_at"},
		{"idx_video_snapshots_video_id", "video_snapshots", "video_id"},
		{"idx_video_snapshots_created_at", "video_snapshots", "created_at"},
	}
	for _, idx := range indexes {
		if d == MySQL {
			// MySQL has no CREATE INDEX IF NOT EXISTS; Migrate ignores duplicates.
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.name, idx.table, idx.column))
			continue
		}
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, idx.table, idx.column))
	}
	return stmts
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if s.dialect == MySQL && isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	s.logger.Info("schema ready", zap.String("driver", string(s.dialect)))
	return nil
}

func isDuplicateIndex(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateKeyName
}
