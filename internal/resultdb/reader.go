package resultdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/MeKo-Tech/reversejp/internal/types"
)

// ErrNotFound is returned when a lookup ID is not stored.
var ErrNotFound = errors.New("lookup not found")

// Reader reads lookup records from a result database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a result database for reading.
func OpenReader(path string) (*Reader, error) {
	// Open in read-only mode with immutable flag
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='lookups'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain lookups table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadLookup reads one lookup and its matches in result order.
func (r *Reader) ReadLookup(id int) (Record, error) {
	rec := Record{ID: id}
	err := r.db.QueryRow(
		"SELECT name, lon, lat, dx, dy, matched FROM lookups WHERE id=?", id,
	).Scan(&rec.Name, &rec.Lon, &rec.Lat, &rec.DX, &rec.DY, &rec.Matched)

	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query lookup: %w", err)
	}

	rows, err := r.db.Query(
		"SELECT code, name, en_name FROM matches WHERE lookup_id=? ORDER BY seq", id)
	if err != nil {
		return Record{}, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	rec.Properties = []types.Properties{}
	for rows.Next() {
		var p types.Properties
		if err := rows.Scan(&p.Code, &p.Name, &p.EnName); err != nil {
			return Record{}, fmt.Errorf("failed to scan match row: %w", err)
		}
		rec.Properties = append(rec.Properties, p)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("error iterating matches: %w", err)
	}

	return rec, nil
}

// Counts returns the number of stored lookups and how many of them matched.
func (r *Reader) Counts() (total, matched int, err error) {
	err = r.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(matched), 0) FROM lookups").Scan(&total, &matched)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return total, matched, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	meta := Metadata{
		Name:        metaMap["name"],
		Description: metaMap["description"],
		Source:      metaMap["source"],
		Input:       metaMap["input"],
		Version:     metaMap["version"],
	}
	if v, ok := metaMap["polygons"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Polygons = i
		}
	}

	return meta, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
