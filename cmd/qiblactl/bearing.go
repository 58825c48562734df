package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mihrab.noorapp.org/internal/geolocation"
	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

var bearingPlace string

var bearingCmd = &cobra.Command{
	Use:   "bearing [lat lon]",
	Short: "Print the qibla bearing for a position or a named place",
	Example: `  qiblactl bearing 30.033 31.233
  qiblactl bearing --place London`,
	Args: func(cmd *cobra.Command, args []string) error {
		if bearingPlace != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runBearing,
}

func runBearing(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	var locator qibla.LocationProvider
	label := ""
	if bearingPlace != "" {
		if err := utils.ValidatePlaceName(bearingPlace); err != nil {
			return err
		}
		client, err := openPlaces(ctx)
		if err != nil {
			return err
		}
		defer logging.SafeCloseWithLogging(client, logger, "places database")
		locator = geolocation.NewPlace(client, bearingPlace)
		label = bearingPlace
	} else {
		coord, err := parseCoordinate(args[0], args[1])
		if err != nil {
			return err
		}
		static, err := geolocation.NewStatic(coord)
		if err != nil {
			return err
		}
		locator = static
	}

	engine := qibla.NewEngine(qibla.Options{Locator: locator, Logger: logger, LocationTimeout: timeout})
	result, err := engine.Locate(ctx)
	if err != nil {
		if report := qibla.NewErrorReport(err); report != nil {
			return fmt.Errorf("%s: %w", report.Message, err)
		}
		return err
	}

	snap := engine.Snapshot()
	if label == "" {
		label = fmt.Sprintf("%.4f, %.4f", snap.Observer.Latitude, snap.Observer.Longitude)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %.2f° %s\n", label, result.QiblaDirection, utils.BearingToCompass(result.QiblaDirection))
	return nil
}

func parseCoordinate(latArg, lonArg string) (qibla.GeoCoordinate, error) {
	lat, latErr := strconv.ParseFloat(latArg, 64)
	lon, lonErr := strconv.ParseFloat(lonArg, 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		return qibla.GeoCoordinate{}, fmt.Errorf("invalid coordinate: %w", err)
	}
	coord := qibla.GeoCoordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return qibla.GeoCoordinate{}, err
	}
	return coord, nil
}
