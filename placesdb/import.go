package placesdb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/utils"
)

//go:embed data/cities.csv
var seedCSV []byte

// SeedSource names the embedded city list in import metadata.
const SeedSource = "embedded:cities.csv"

// ImportResult describes one import run.
type ImportResult struct {
	Source   string
	Rows     int
	Skipped  bool
	Duration time.Duration
}

// ImportSeed loads the embedded list of major cities.
func (c *Client) ImportSeed(ctx context.Context) (ImportResult, error) {
	return c.ImportCSV(ctx, bytes.NewReader(seedCSV), SeedSource)
}

// ImportCSV upserts places from CSV data with a header row. The name, country,
// lat and lon columns are required; ascii_name and population are optional.
// Importing the same bytes twice in a row is a no-op.
func (c *Client) ImportCSV(ctx context.Context, r io.Reader, source string) (ImportResult, error) {
	start := time.Now()
	result := ImportResult{Source: source}

	data, err := io.ReadAll(r)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", source, err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	previous, err := c.Queries.GetImportMetadata(ctx)
	switch {
	case err == nil && previous.FileHash == hash:
		result.Skipped = true
		result.Rows = int(previous.RowCount)
		result.Duration = time.Since(start)
		logging.LogOperation(c.logger, "places_import_skipped",
			slog.String("source", source),
			slog.String("reason", "unchanged"))
		return result, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return result, fmt.Errorf("read import metadata: %w", err)
	}

	params, err := parsePlacesCSV(bytes.NewReader(data))
	if err != nil {
		return result, fmt.Errorf("parse %s: %w", source, err)
	}

	if err := c.bulkInsertPlaces(ctx, params, ImportMetadata{
		FileHash:   hash,
		FileSource: source,
		ImportTime: time.Now().Unix(),
		RowCount:   int64(len(params)),
	}); err != nil {
		return result, fmt.Errorf("store %s: %w", source, err)
	}

	result.Rows = len(params)
	result.Duration = time.Since(start)
	logging.LogOperation(c.logger, "places_imported",
		slog.String("source", source),
		slog.Int("places_count", result.Rows),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (c *Client) bulkInsertPlaces(ctx context.Context, places []CreatePlaceParams, metadata ImportMetadata) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "import_places")

	qtx := c.Queries.WithTx(tx)
	for _, params := range places {
		if err := qtx.CreatePlace(ctx, params); err != nil {
			return fmt.Errorf("insert %s/%s: %w", params.Name, params.Country, err)
		}
	}
	if err := qtx.UpsertImportMetadata(ctx, metadata); err != nil {
		return err
	}
	return tx.Commit()
}

var requiredColumns = []string{"name", "country", "lat", "lon"}

func parsePlacesCSV(r io.Reader) ([]CreatePlaceParams, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var places []CreatePlaceParams
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		p := CreatePlaceParams{
			Name:      field(record, "name"),
			AsciiName: field(record, "ascii_name"),
			Country:   strings.ToUpper(field(record, "country")),
		}
		if p.Name == "" {
			return nil, fmt.Errorf("line %d: name is required", line)
		}
		if p.AsciiName == "" {
			p.AsciiName = p.Name
		}

		if p.Lat, err = strconv.ParseFloat(field(record, "lat"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid lat: %w", line, err)
		}
		if p.Lon, err = strconv.ParseFloat(field(record, "lon"), 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid lon: %w", line, err)
		}
		if fieldErrors := utils.ValidateCoordinateParams(p.Lat, p.Lon); len(fieldErrors) > 0 {
			return nil, fmt.Errorf("line %d: %s", line, firstFieldError(fieldErrors))
		}

		if pop := field(record, "population"); pop != "" {
			if p.Population, err = strconv.ParseInt(pop, 10, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid population: %w", line, err)
			}
		}

		places = append(places, p)
	}

	if len(places) == 0 {
		return nil, errors.New("no places found")
	}
	return places, nil
}

func firstFieldError(fieldErrors map[string][]string) string {
	for _, key := range []string{"lat", "lon"} {
		if msgs := fieldErrors[key]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "invalid coordinates"
}
