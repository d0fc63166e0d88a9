package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmmunozr/semdata/internal/graph"
)

const statementColumns = `subject_kind, subject, predicate, object_kind, object, object_datatype, object_lang, context`

var indexColumns = map[rune]string{
	's': "subject",
	'p': "predicate",
	'o': "object",
	'c': "context",
}

// StatementRepository persists statements in the statements table.
type StatementRepository struct {
	db *sql.DB
}

// NewStatementRepository creates a new StatementRepository with the given database connection
func NewStatementRepository(db *sql.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// Add inserts statements in one transaction. Statements already present are skipped.
// It returns the number of rows actually inserted.
func (r *StatementRepository) Add(ctx context.Context, statements ...graph.Statement) (int, error) {
	if len(statements) == 0 {
		return 0, nil
	}

	for _, s := range statements {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("invalid statement %s: %w", s, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "statements", len(statements))
	if err != nil {
		return 0, fmt.Errorf("failed to generate sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO statements (sequence, `+statementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, s := range statements {
		result, err := stmt.ExecContext(ctx,
			sequence+int64(i),
			s.Subject.Kind,
			s.Subject.Value,
			s.Predicate.Value,
			s.Object.Kind,
			s.Object.Value,
			s.Object.Datatype,
			s.Object.Lang,
			s.Context,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert statement: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get affected rows: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit statements: %w", err)
	}

	return inserted, nil
}

// Match returns the statements satisfying p in insertion order.
func (r *StatementRepository) Match(ctx context.Context, p graph.Pattern) ([]graph.Statement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	where, args := patternClause(p)
	query := `SELECT ` + statementColumns + ` FROM statements` + where + ` ORDER BY sequence ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	var statements []graph.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statements: %w", err)
	}

	return statements, nil
}

// Remove deletes the statements satisfying p and returns how many were removed.
func (r *StatementRepository) Remove(ctx context.Context, p graph.Pattern) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	where, args := patternClause(p)

	result, err := r.db.ExecContext(ctx, `DELETE FROM statements`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete statements: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// Count returns the number of stored statements.
func (r *StatementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM statements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	return count, nil
}

// Contexts returns the distinct named graphs, sorted.
func (r *StatementRepository) Contexts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT context FROM statements WHERE context != '' ORDER BY context`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contexts: %w", err)
	}
	defer rows.Close()

	var contexts []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan context: %w", err)
		}
		contexts = append(contexts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contexts: %w", err)
	}

	return contexts, nil
}

// Clear removes every statement.
func (r *StatementRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM statements`); err != nil {
		return fmt.Errorf("failed to clear statements: %w", err)
	}
	return nil
}

// SetNamespace records a prefix declaration, replacing an existing one.
func (r *StatementRepository) SetNamespace(ctx context.Context, prefix, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO namespaces (prefix, name) VALUES (?, ?)
		ON CONFLICT(prefix) DO UPDATE SET name = excluded.name
	`, prefix, name)
	if err != nil {
		return fmt.Errorf("failed to set namespace %q: %w", prefix, err)
	}
	return nil
}

// Namespaces returns the recorded prefix declarations.
func (r *StatementRepository) Namespaces(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT prefix, name FROM namespaces`)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespaces: %w", err)
	}
	defer rows.Close()

	namespaces := make(map[string]string)
	for rows.Next() {
		var prefix, name string
		if err := rows.Scan(&prefix, &name); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		namespaces[prefix] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating namespaces: %w", err)
	}

	return namespaces, nil
}

// EnsureIndexes creates one index per specification such as "spoc" or "posc".
// Letters name the subject, predicate, object and context columns in index order.
func (r *StatementRepository) EnsureIndexes(ctx context.Context, specs []string) error {
	for _, spec := range specs {
		cols, err := indexDefinition(spec)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_statements_%s ON statements(%s)`, spec, cols)
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index %s: %w", spec, err)
		}
	}
	return nil
}

func indexDefinition(spec string) (string, error) {
	if len(spec) != 4 {
		return "", fmt.Errorf("invalid index specification %q", spec)
	}

	seen := make(map[rune]bool, 4)
	cols := make([]string, 0, 4)
	for _, r := range spec {
		col, ok := indexColumns[r]
		if !ok || seen[r] {
			return "", fmt.Errorf("invalid index specification %q", spec)
		}
		seen[r] = true
		cols = append(cols, col)
	}

	return strings.Join(cols, ", "), nil
}

func patternClause(p graph.Pattern) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if p.Subject != nil {
		conds = append(conds, "subject_kind = ?", "subject = ?")
		args = append(args, p.Subject.Kind, p.Subject.Value)
	}
	if p.Predicate != nil {
		conds = append(conds, "predicate = ?")
		args = append(args, p.Predicate.Value)
	}
	if p.Object != nil {
		conds = append(conds, "object_kind = ?", "object = ?", "object_datatype = ?", "object_lang = ?")
		args = append(args, p.Object.Kind, p.Object.Value, p.Object.Datatype, p.Object.Lang)
	}
	if p.Context != "" {
		conds = append(conds, "context = ?")
		args = append(args, p.Context)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanStatement(rows *sql.Rows) (graph.Statement, error) {
	var (
		s           graph.Statement
		subjectKind graph.TermKind
		objectKind  graph.TermKind
	)

	err := rows.Scan(
		&subjectKind,
		&s.Subject.Value,
		&s.Predicate.Value,
		&objectKind,
		&s.Object.Value,
		&s.Object.Datatype,
		&s.Object.Lang,
		&s.Context,
	)
	if err != nil {
		return graph.Statement{}, fmt.Errorf("failed to scan statement: %w", err)
	}

	s.Subject.Kind = subjectKind
	s.Predicate.Kind = graph.KindIRI
	s.Object.Kind = objectKind

	return s, nil
}
