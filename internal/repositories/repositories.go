package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically reserves n sequence numbers for the given table and returns the first one.
//
// The reservation happens inside tx so the counter and the rows that use it commit together.
// Sequence numbers order statements by insertion; they are never exposed in CLI output.
func NextSequence(tx *sql.Tx, table string, n int) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("sequence reservation must be positive, got %d", n)
	}

	sequenceTable := table + "_sequence"

	_, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + ? WHERE id = 1", sequenceTable), n)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var last int64
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return last - int64(n) + 1, nil
}
