package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mihrab.noorapp.org/internal/orientation"
	"mihrab.noorapp.org/internal/qibla"
	"mihrab.noorapp.org/internal/utils"
)

var (
	headingWebkit          float64
	headingAlpha           float64
	headingAbsolute        bool
	headingScreen          int
	headingCorrectRelative bool
	headingCorrectAbsolute bool
	headingQibla           float64
)

var headingCmd = &cobra.Command{
	Use:   "heading",
	Short: "Normalise a raw orientation reading into a compass heading",
	Example: `  qiblactl heading --compass 45
  qiblactl heading --alpha 30 --screen 90 --qibla 136`,
	Args: cobra.NoArgs,
	RunE: runHeading,
}

func addHeadingFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&headingWebkit, "compass", 0, "iOS webkitCompassHeading in degrees")
	cmd.Flags().Float64Var(&headingAlpha, "alpha", 0, "Orientation alpha in degrees")
	cmd.Flags().BoolVar(&headingAbsolute, "absolute", false, "Alpha is relative to true north")
	cmd.Flags().IntVar(&headingScreen, "screen", 0, "Screen orientation angle (0, 90, -90, 180)")
	cmd.Flags().BoolVar(&headingCorrectRelative, "correct-relative", true, "Apply screen correction to relative alpha")
	cmd.Flags().BoolVar(&headingCorrectAbsolute, "correct-absolute", false, "Apply screen correction to absolute alpha")
	cmd.Flags().Float64Var(&headingQibla, "qibla", 0, "Qibla bearing to compute the arrow rotation against")
}

func runHeading(cmd *cobra.Command, args []string) error {
	raw := orientation.RawEvent{
		Absolute:          headingAbsolute,
		ScreenOrientation: headingScreen,
	}
	if cmd.Flags().Changed("compass") {
		raw.WebkitCompassHeading = &headingWebkit
	}
	if cmd.Flags().Changed("alpha") {
		raw.Alpha = &headingAlpha
	}
	if raw.WebkitCompassHeading == nil && raw.Alpha == nil {
		return errors.New("one of --compass or --alpha is required")
	}
	for _, v := range []*float64{raw.WebkitCompassHeading, raw.Alpha} {
		if v == nil {
			continue
		}
		if err := utils.ValidateAngle(*v); err != nil {
			return err
		}
	}
	if err := utils.ValidateScreenOrientation(headingScreen); err != nil {
		return err
	}

	sample := qibla.NormalizeHeading(raw.Resolve(), qibla.NormalizeOptions{
		CorrectRelative: headingCorrectRelative,
		CorrectAbsolute: headingCorrectAbsolute,
	})
	value, ok := sample.Heading()
	if !ok {
		return errors.New("reading carries no usable heading")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "heading: %.2f° %s (%s, absolute=%t)\n",
		value, utils.BearingToCompass(value), sample.SourceModel, sample.IsAbsolute)

	var current *qibla.BearingResult
	if cmd.Flags().Changed("qibla") {
		current = &qibla.BearingResult{QiblaDirection: qibla.Normalize360(headingQibla)}
	}
	display := qibla.UpdateDisplay(qibla.DisplayState{}, current, sample)
	fmt.Fprintf(out, "compass rotation: %.2f°\n", display.CompassRotation)
	if display.ArrowRotation != nil {
		fmt.Fprintf(out, "arrow rotation: %.2f°\n", *display.ArrowRotation)
	}
	return nil
}
