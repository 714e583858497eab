package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast-aggregation/internal/config"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

func forecastCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		country  string
		lat, lon float64
		days     int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "forecast [city]",
		Short: "Print the grouped forecast for a city or coordinates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := weather.Location{Country: country}
			if len(args) == 1 {
				loc.City = args[0]
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
					return errors.New("--lat and --lon must be given together")
				}
				loc.Lat, loc.Lon = &lat, &lon
			}
			if loc.City == "" && !loc.HasCoordinates() {
				return errors.New("a city or --lat/--lon is required")
			}
			if days < 0 || days > weather.MaxForecastDays {
				return fmt.Errorf("--days must be between 1 and %d, or 0 for all days", weather.MaxForecastDays)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.HTTPTimeout)
			defer cancel()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if loc.City != "" {
				if _, err := a.history.Add(ctx, loc.City); err != nil {
					return err
				}
			}

			report, err := a.service.GetForecast(ctx, loc, days)
			if err != nil {
				return err
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return renderReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&country, "country", "c", "", "Country code (e.g. FR, US)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to show (1-6, 0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func reverseCmd(cfg *config.AppConfig) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Resolve coordinates to a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
			defer cancel()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := a.service.ReverseGeocode(ctx, lat, lon)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s\n", loc.City, loc.Country)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

// renderReport prints one card per day, the hourly strip of the first day and
// its highlights.
func renderReport(w io.Writer, r weather.Report) error {
	name := r.Location.City
	if r.Location.Country != "" {
		name += ", " + r.Location.Country
	}
	if name == "" {
		name = r.Location.Key()
	}
	fmt.Fprintf(w, "%s (%s, %s)\n\n", name, r.Provider, r.TimeZone)

	if len(r.Forecast.Days) == 0 {
		fmt.Fprintln(w, "No forecast data.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range r.Forecast.Days {
		desc := ""
		if len(d.Samples) > 0 {
			desc = d.Samples[0].ConditionDescription
		}
		fmt.Fprintf(tw, "%s\t%d°C / %d°C\t%s\n", d.Label, d.Summary.MaxTemperature, d.Summary.MinTemperature, desc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	today := r.Forecast.Days[0]
	strip := make([]string, 0, len(today.Samples))
	for _, s := range today.Samples {
		strip = append(strip, fmt.Sprintf("%s %d°C", s.TimeLabel, s.TemperatureC))
	}
	fmt.Fprintf(w, "\n%s: %s\n\n", today.Label, strings.Join(strip, " | "))

	sum := today.Summary
	fmt.Fprintf(w, "Humidity    %d%%\n", sum.AvgHumidity)
	fmt.Fprintf(w, "Wind        %.1f m/s (max %.1f)\n", sum.AvgWindSpeed, sum.MaxWindSpeed)
	fmt.Fprintf(w, "Pressure    %d hPa\n", sum.AvgPressure)
	for _, dl := range r.Daylight {
		if dl.Date == today.Date {
			fmt.Fprintf(w, "Sunrise     %s\n", dl.Sunrise.Format(time.Kitchen))
			fmt.Fprintf(w, "Sunset      %s\n", dl.Sunset.Format(time.Kitchen))
		}
	}
	return nil
}
