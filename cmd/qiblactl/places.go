package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mihrab.noorapp.org/internal/appconf"
	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
	"mihrab.noorapp.org/placesdb"
)

var searchLimit int

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Manage the places database",
}

var placesImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import places from a CSV file, or the built-in city list when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlacesImport,
}

var placesSearchCmd = &cobra.Command{
	Use:   "search <prefix>",
	Short: "List places whose name starts with prefix, with their qibla bearing",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlacesSearch,
}

// openPlaces opens the database at dbPath and loads the built-in city list
// into it when it has no places yet.
func openPlaces(ctx context.Context) (*placesdb.Client, error) {
	client, err := placesdb.NewClient(placesdb.NewConfig(dbPath, appconf.Development, verbose))
	if err != nil {
		return nil, fmt.Errorf("open places database: %w", err)
	}
	client = client.WithLogger(logger)

	counts, err := client.TableCounts()
	if err != nil {
		logging.SafeCloseWithLogging(client, logger, "places database")
		return nil, err
	}
	if counts["places"] == 0 {
		if _, err := client.ImportSeed(ctx); err != nil {
			logging.SafeCloseWithLogging(client, logger, "places database")
			return nil, fmt.Errorf("import places: %w", err)
		}
	}
	return client, nil
}

func runPlacesImport(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	client, err := placesdb.NewClient(placesdb.NewConfig(dbPath, appconf.Development, verbose))
	if err != nil {
		return fmt.Errorf("open places database: %w", err)
	}
	client = client.WithLogger(logger)
	defer logging.HandleDeferredError(&err, client.Close, logger, "close places database")

	var result placesdb.ImportResult
	if len(args) == 0 {
		result, err = client.ImportSeed(ctx)
	} else {
		var f *os.File
		f, err = os.Open(args[0])
		if err != nil {
			return err
		}
		defer logging.SafeCloseWithLogging(f, logger, "places csv")
		result, err = client.ImportCSV(ctx, f, args[0])
	}
	if err != nil {
		return err
	}

	if result.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged, %d places\n", result.Source, result.Rows)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d places from %s in %s\n", result.Rows, result.Source, result.Duration.Round(time.Millisecond))
	return nil
}

func runPlacesSearch(cmd *cobra.Command, args []string) error {
	prefix, err := utils.ValidateAndSanitizeQuery(args[0])
	if err != nil {
		return err
	}
	if err := utils.ValidateLimit(searchLimit); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	client, err := openPlaces(ctx)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(client, logger, "places database")

	places, err := client.SearchPlaces(ctx, prefix, searchLimit)
	if err != nil {
		return err
	}
	if len(places) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no places match %q\n", prefix)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOUNTRY\tLAT\tLON\tQIBLA")
	for _, p := range places {
		b := qibla.ComputeBearing(qibla.GeoCoordinate{Latitude: p.Lat, Longitude: p.Lon})
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.2f° %s\n",
			p.Name, p.Country, p.Lat, p.Lon, b.QiblaDirection, utils.BearingToCompass(b.QiblaDirection))
	}
	return tw.Flush()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
