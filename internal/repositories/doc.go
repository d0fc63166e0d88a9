// Package repositories implements SQLite persistence for graph statements.
//
// A [StatementRepository] stores one row per statement, with each term split into kind, value, datatype and language
// columns so literals round-trip exactly. Rows carry a sequence number that fixes insertion order; [NextSequence]
// reserves blocks of numbers from the per-table counter in the statements_sequence table.
//
// Secondary indexes follow the four-letter index specifications of the repository configuration ("spoc", "posc"),
// see [StatementRepository.EnsureIndexes].
package repositories
