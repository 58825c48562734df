package placesdb

import (
	"context"
	"strings"
)

const createPlace = `
INSERT INTO places (name, ascii_name, country, lat, lon, population)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (name, country) DO UPDATE SET
    ascii_name = excluded.ascii_name,
    lat = excluded.lat,
    lon = excluded.lon,
    population = excluded.population
`

func (q *Queries) CreatePlace(ctx context.Context, arg CreatePlaceParams) error {
	_, err := q.db.ExecContext(ctx, createPlace,
		arg.Name,
		arg.AsciiName,
		arg.Country,
		arg.Lat,
		arg.Lon,
		arg.Population,
	)
	return err
}

const getPlaceByName = `
SELECT id, name, ascii_name, country, lat, lon, population
FROM places
WHERE name = ? COLLATE NOCASE OR ascii_name = ? COLLATE NOCASE
ORDER BY population DESC, id
LIMIT 1
`

// GetPlaceByName returns the most populous place whose name or ASCII name
// matches, ignoring case.
func (q *Queries) GetPlaceByName(ctx context.Context, name string) (Place, error) {
	row := q.db.QueryRowContext(ctx, getPlaceByName, name, name)
	var i Place
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.AsciiName,
		&i.Country,
		&i.Lat,
		&i.Lon,
		&i.Population,
	)
	return i, err
}

const searchPlaces = `
SELECT id, name, ascii_name, country, lat, lon, population
FROM places
WHERE name LIKE ? ESCAPE '\' OR ascii_name LIKE ? ESCAPE '\'
ORDER BY population DESC, name
LIMIT ?
`

func (q *Queries) SearchPlaces(ctx context.Context, arg SearchPlacesParams) ([]Place, error) {
	pattern := escapeLike(arg.Prefix) + "%"
	rows, err := q.db.QueryContext(ctx, searchPlaces, pattern, pattern, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck

	var items []Place
	for rows.Next() {
		var i Place
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.AsciiName,
			&i.Country,
			&i.Lat,
			&i.Lon,
			&i.Population,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPlaces = `SELECT COUNT(*) FROM places`

func (q *Queries) CountPlaces(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlaces)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const clearPlaces = `DELETE FROM places`

func (q *Queries) ClearPlaces(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearPlaces)
	return err
}

const getImportMetadata = `
SELECT file_hash, file_source, import_time, row_count
FROM import_metadata
WHERE id = 1
`

func (q *Queries) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	row := q.db.QueryRowContext(ctx, getImportMetadata)
	var i ImportMetadata
	err := row.Scan(
		&i.FileHash,
		&i.FileSource,
		&i.ImportTime,
		&i.RowCount,
	)
	return i, err
}

const upsertImportMetadata = `
INSERT INTO import_metadata (id, file_hash, file_source, import_time, row_count)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    file_hash = excluded.file_hash,
    file_source = excluded.file_source,
    import_time = excluded.import_time,
    row_count = excluded.row_count
`

func (q *Queries) UpsertImportMetadata(ctx context.Context, arg ImportMetadata) error {
	_, err := q.db.ExecContext(ctx, upsertImportMetadata,
		arg.FileHash,
		arg.FileSource,
		arg.ImportTime,
		arg.RowCount,
	)
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
