package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when no saved query matches.
var ErrNotFound = errors.New("query not found")

// hashDomain prefixes the content hash. The version suffix leaves room for
// a different hashing scheme later.
const hashDomain = "kustoq/query/v1"

// Entry is one saved version of a named query.
type Entry struct {
	ID          string
	Seq         int64
	Name        string
	Version     int64
	Description string
	KQL         string
	ContentHash string
	CreatedAt   time.Time
}

// NormalizeName trims and NFC-normalizes a query name.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ContentHash computes the domain-separated SHA-256 of a query text.
// Format: SHA256(domain + 0x00 + kql)
func ContentHash(kql string) string {
	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(kql))
	return hex.EncodeToString(h.Sum(nil))
}

// Save stores kql under name. When the latest version of name already has
// identical text, that entry is returned and nothing is written.
func (c *Catalog) Save(ctx context.Context, name, description, kql string) (Entry, error) {
	name = NormalizeName(name)
	if name == "" {
		return Entry{}, fmt.Errorf("save query: name is empty")
	}
	if strings.TrimSpace(kql) == "" {
		return Entry{}, fmt.Errorf("save query %q: text is empty", name)
	}
	hash := ContentHash(kql)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("save query %q: begin: %w", name, err)
	}
	defer tx.Rollback()

	latest, err := scanEntry(tx.QueryRowContext(ctx, selectEntry+`
		WHERE name = ?
		ORDER BY version DESC
		LIMIT 1
	`, name))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return Entry{}, fmt.Errorf("save query %q: %w", name, err)
	case latest.ContentHash == hash:
		return latest, nil
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM queries`).Scan(&seq); err != nil {
		return Entry{}, fmt.Errorf("save query %q: next seq: %w", name, err)
	}

	e := Entry{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Seq:         seq,
		Name:        name,
		Version:     latest.Version + 1,
		Description: description,
		KQL:         kql,
		ContentHash: hash,
		CreatedAt:   c.now().UTC().Truncate(time.Second),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO queries
		(id, seq, name, version, description, kql, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Seq,
		e.Name,
		e.Version,
		e.Description,
		e.KQL,
		e.ContentHash,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("save query %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("save query %q: commit: %w", name, err)
	}
	return e, nil
}

// Latest returns the newest version of name.
func (c *Catalog) Latest(ctx context.Context, name string) (Entry, error) {
	name = NormalizeName(name)
	e, err := scanEntry(c.db.QueryRowContext(ctx, selectEntry+`
		WHERE name = ?
		ORDER BY version DESC
		LIMIT 1
	`, name))
	if err != nil {
		return Entry{}, fmt.Errorf("latest %q: %w", name, err)
	}
	return e, nil
}

// Version returns a specific version of name.
func (c *Catalog) Version(ctx context.Context, name string, version int64) (Entry, error) {
	name = NormalizeName(name)
	e, err := scanEntry(c.db.QueryRowContext(ctx, selectEntry+`
		WHERE name = ? AND version = ?
	`, name, version))
	if err != nil {
		return Entry{}, fmt.Errorf("%q version %d: %w", name, version, err)
	}
	return e, nil
}

// List returns the latest version of every saved name, ordered by name.
//
// Returns an empty slice (not nil) when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	return c.queryEntries(ctx, "list queries", selectEntry+`
		WHERE version = (SELECT MAX(version) FROM queries q2 WHERE q2.name = queries.name)
		ORDER BY name COLLATE BINARY ASC
	`)
}

// History returns every version of name, oldest first.
//
// Returns an empty slice (not nil) when name was never saved.
func (c *Catalog) History(ctx context.Context, name string) ([]Entry, error) {
	name = NormalizeName(name)
	return c.queryEntries(ctx, fmt.Sprintf("history %q", name), selectEntry+`
		WHERE name = ?
		ORDER BY version ASC
	`, name)
}

const selectEntry = `
	SELECT id, seq, name, version, description, kql, content_hash, created_at
	FROM queries
`

func (c *Catalog) queryEntries(ctx context.Context, op, query string, args ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		created string
	)
	err := row.Scan(&e.ID, &e.Seq, &e.Name, &e.Version, &e.Description, &e.KQL, &e.ContentHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan query: %w", err)
	}
	e.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return Entry{}, fmt.Errorf("scan query: created_at: %w", err)
	}
	return e, nil
}
