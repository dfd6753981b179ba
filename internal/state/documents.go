package state

import (
	"context"
	"fmt"
)

// Documents returns the stored fingerprints of version keyed by path.
func (s *Store) Documents(ctx context.Context, version string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path, fingerprint FROM documents WHERE version = ?", version)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]string)
	for rows.Next() {
		var path, fp string
		if err := rows.Scan(&path, &fp); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs[path] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return docs, nil
}

// ChangedDocuments counts the documents of version that were added, removed
// or whose fingerprint differs from fingerprints.
func (s *Store) ChangedDocuments(ctx context.Context, version string, fingerprints map[string]string) (int, error) {
	stored, err := s.Documents(ctx, version)
	if err != nil {
		return 0, err
	}
	changed := 0
	for path, fp := range fingerprints {
		if old, ok := stored[path]; !ok || old != fp {
			changed++
		}
	}
	for path := range stored {
		if _, ok := fingerprints[path]; !ok {
			changed++
		}
	}
	return changed, nil
}

// ReplaceDocuments replaces the stored fingerprints of version.
func (s *Store) ReplaceDocuments(ctx context.Context, version string, fingerprints map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE version = ?", version); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO documents (version, path, fingerprint) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for path, fp := range fingerprints {
		if _, err := stmt.ExecContext(ctx, version, path, fp); err != nil {
			return fmt.Errorf("insert document %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit documents: %w", err)
	}
	return nil
}
