package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// landmarkFile is the input accepted by "mudra classify": either a single
// hand or a full estimator frame.
type landmarkFile struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Handedness string             `json:"handedness"`
	Points     []detector.Point3D `json:"points"`
	Hands      []detector.Hand    `json:"hands"`
	Timestamp  int64              `json:"timestamp"`
}

func (f landmarkFile) frame() detector.Frame {
	frame := detector.Frame{Width: f.Width, Height: f.Height, Timestamp: f.Timestamp, Hands: f.Hands}
	if len(f.Points) > 0 {
		frame.Hands = append([]detector.Hand{{Points: f.Points, Handedness: f.Handedness}}, frame.Hands...)
	}
	return frame
}

func newClassifyCommand(v *viper.Viper) *cobra.Command {
	var (
		fingers   string
		distances []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify a landmark file, stdin, or a raw feature vector",
		Long: `Classify reads a JSON landmark set from a file or stdin, either
{"width":640,"height":480,"points":[{"x":..,"y":..},...]} or an estimator frame
{"width":..,"height":..,"hands":[{"points":[...]}]}, and prints the label and
description of every hand.

With --fingers the landmark input is skipped and the rule table is applied to
the given finger state and --distance values directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClassifierConfig(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if fingers != "" {
				f, err := gesture.ParseFingerState(fingers)
				if err != nil {
					return err
				}
				d, err := parseDistances(distances)
				if err != nil {
					return err
				}
				label := gesture.Classify(f, d)
				hr := app.HandResult{
					Label:       label,
					Description: gesture.DefaultCatalog().Description(label),
					Fingers:     f,
					Distances:   d,
				}
				return printResults(out, []app.HandResult{hr}, asJSON)
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			var lf landmarkFile
			if err := json.NewDecoder(in).Decode(&lf); err != nil {
				return fmt.Errorf("parse landmarks: %w", err)
			}

			a := app.New(app.Config{Thumb: cfg})
			result := a.Process(lf.frame())
			if len(result.Hands) == 0 {
				return fmt.Errorf("no hands in input")
			}
			return printResults(out, result.Hands, asJSON)
		},
	}

	cmd.Flags().StringVar(&fingers, "fingers", "", `finger state, e.g. "1,0,0,0,0"`)
	cmd.Flags().StringArrayVar(&distances, "distance", nil, "distance as key=value, e.g. thumb_index=12 (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

// loadClassifierConfig reads only the classifier settings so that classify
// works without a writable store path.
func loadClassifierConfig(v *viper.Viper) (gesture.ThumbConvention, error) {
	return gesture.ParseThumbConvention(v.GetString("classifier.thumb"))
}

func parseDistances(values []string) (gesture.Distances, error) {
	var d gesture.Distances
	for _, kv := range values {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return d, fmt.Errorf("distance %q: want key=value", kv)
		}
		key, err := gesture.ParseDistanceKey(strings.TrimSpace(name))
		if err != nil {
			return d, err
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return d, fmt.Errorf("distance %q: %w", kv, err)
		}
		d[key] = val
	}
	return d, nil
}

func printResults(w io.Writer, hands []app.HandResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hands)
	}
	for _, h := range hands {
		if !h.Valid() {
			fmt.Fprintf(w, "error: %s\n", h.Error)
			continue
		}
		fmt.Fprintf(w, "%s [%s]: %s\n", h.Label, h.Fingers, h.Description)
	}
	return nil
}
