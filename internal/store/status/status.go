package status

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTableNotAllowed = errors.New("table not allowed")
	ErrInvalidColumn   = errors.New("invalid column")
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Kolommen die nooit via een regel aangepast mogen worden.
var immutableColumns = map[string]struct{}{
	"id":         {},
	"project_id": {},
	"created_at": {},
}

// UpdateColumnParams describes a single-column mutation on one allow-listed table.
type UpdateColumnParams struct {
	ProjectID   uuid.UUID
	Table       domain.MutableTable
	Column      string
	Value       any
	WhereColumn string
	WhereValue  any
}

// StatusStorer defines the restricted mutation used by the update_status action.
type StatusStorer interface {
	UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error)
}

// StatusStore performs tenant scoped column updates.
type StatusStore struct {
	db      database.Querier
	builder sq.StatementBuilderType
}

// NewStatusStore creates a new StatusStore.
func NewStatusStore(db database.Querier) StatusStorer {
	return &StatusStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpdateColumn sets arg.Column to arg.Value on the rows of arg.Table where
// arg.WhereColumn equals arg.WhereValue, always limited to arg.ProjectID.
func (s *StatusStore) UpdateColumn(ctx context.Context, arg UpdateColumnParams) (int64, error) {
	query, args, err := s.buildUpdate(arg)
	if err != nil {
		return 0, err
	}

	cmdTag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db exec error: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

func (s *StatusStore) buildUpdate(arg UpdateColumnParams) (string, []any, error) {
	if _, ok := domain.ParseMutableTable(string(arg.Table)); !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrTableNotAllowed, arg.Table)
	}
	if !identifierPattern.MatchString(arg.Column) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidColumn, arg.Column)
	}
	if _, ok := immutableColumns[arg.Column]; ok {
		return "", nil, fmt.Errorf("%w: %s is read-only", ErrInvalidColumn, arg.Column)
	}
	if !identifierPattern.MatchString(arg.WhereColumn) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidColumn, arg.WhereColumn)
	}

	update := s.builder.
		Update(pgx.Identifier{string(arg.Table)}.Sanitize()).
		Set(pgx.Identifier{arg.Column}.Sanitize(), arg.Value)
	if arg.Column != "updated_at" {
		update = update.Set("updated_at", sq.Expr("now()"))
	}

	query, args, err := update.
		Where(pgx.Identifier{arg.WhereColumn}.Sanitize()+" = ?", arg.WhereValue).
		Where("project_id = ?", arg.ProjectID).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("could not build update: %w", err)
	}
	return query, args, nil
}
