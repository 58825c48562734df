package placesdb

// Place is a named location in the gazetteer
type Place struct {
	ID         int64   // id
	Name       string  // name
	AsciiName  string  // ascii_name
	Country    string  // country (ISO 3166-1 alpha-2)
	Lat        float64 // lat
	Lon        float64 // lon
	Population int64   // population
}

// ImportMetadata records the last dataset loaded into the places table
type ImportMetadata struct {
	FileHash   string // file_hash (sha256, hex)
	FileSource string // file_source
	ImportTime int64  // import_time (unix seconds)
	RowCount   int64  // row_count
}

type CreatePlaceParams struct {
	Name       string
	AsciiName  string
	Country    string
	Lat        float64
	Lon        float64
	Population int64
}

type SearchPlacesParams struct {
	Prefix string
	Limit  int64
}
