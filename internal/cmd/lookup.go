package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MeKo-Tech/reversejp/internal/datasource"
	"github.com/MeKo-Tech/reversejp/internal/geojson"
	"github.com/MeKo-Tech/reversejp/internal/server"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve one coordinate to the regions containing it",
	Long: `Resolve a longitude/latitude pair (decimal degrees, WGS84) to every region
and hazard zone containing it. When the exact point matches nothing, nearby
points within 0.005 degrees are probed.`,
	Example: `  reversejp lookup --lon 139.7671 --lat 35.6812
  reversejp lookup --lon 135.5023 --lat 34.6937 --format json --map
  reversejp lookup --samples`,
	RunE: runLookup,
}

// sampleCities are the demo points shown by --samples.
var sampleCities = []datasource.City{
	{Name: "Aomori", Lon: 140.7473, Lat: 40.8244},
	{Name: "Tokyo Station", Lon: 139.7673068, Lat: 35.6809591},
	{Name: "Kyoto", Lon: 135.7681, Lat: 35.0116},
	{Name: "Fukuoka", Lon: 130.4219, Lat: 33.6063},
	{Name: "Taito", Lon: 139.7864, Lat: 35.6972},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Float64("lon", 0, "Longitude in decimal degrees")
	lookupCmd.Flags().Float64("lat", 0, "Latitude in decimal degrees")
	lookupCmd.Flags().StringP("format", "f", "text", "Output format (text, json, geojson)")
	lookupCmd.Flags().Bool("map", false, "Key the result by region code (last match wins on duplicate codes)")
	lookupCmd.Flags().Bool("samples", false, "Resolve a built-in list of sample cities instead of --lon/--lat")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"lookup.format", "format"},
		{"lookup.map", "map"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, lookupCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runLookup(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	format, err := parseFormat(viper.GetString("lookup.format"))
	if err != nil {
		return err
	}
	asMap := viper.GetBool("lookup.map")

	samples, _ := cmd.Flags().GetBool("samples")
	var points []datasource.City
	if samples {
		points = sampleCities
	} else {
		if !cmd.Flags().Changed("lon") || !cmd.Flags().Changed("lat") {
			return fmt.Errorf("--lon and --lat are required (or use --samples)")
		}
		lon, _ := cmd.Flags().GetFloat64("lon")
		lat, _ := cmd.Flags().GetFloat64("lat")
		points = []datasource.City{{Lon: lon, Lat: lat}}
	}

	eng, err := loadEngine()
	if err != nil {
		return fmt.Errorf("failed to load region index: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, p := range points {
		props, probe := eng.FindWithProbe(p.Lon, p.Lat)
		if p.Name != "" && format == "text" {
			fmt.Fprintf(out, "== %s\n", p.Name)
		}
		if err := writeLookup(out, format, asMap, p.Lon, p.Lat, props, probe); err != nil {
			return err
		}
	}

	return nil
}

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "text", "json", "geojson":
		return f, nil
	case "":
		return "text", nil
	default:
		return "", fmt.Errorf("unsupported format %q (want text, json or geojson)", s)
	}
}

// writeLookup renders one lookup result. JSON output uses the same shapes as
// the HTTP API.
func writeLookup(w io.Writer, format string, asMap bool, lon, lat float64, props []types.Properties, probe reversejp.Probe) error {
	switch format {
	case "json":
		var v any
		if asMap {
			v = server.MapResponse{Properties: reversejp.AsMap(props)}
		} else {
			v = server.LookupResponse{
				Lon:        lon,
				Lat:        lat,
				Approx:     probe.Matched && !probe.Exact(),
				Offset:     [2]float64{probe.DX, probe.DY},
				Properties: props,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "geojson":
		data, err := geojson.ToGeoJSONBytes(orb.Point{lon, lat}, props)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(props) == 0 {
		_, err := fmt.Fprintf(w, "%.6f,%.6f: no region found\n", lon, lat)
		return err
	}

	fmt.Fprintf(w, "%.6f,%.6f: %d match(es)", lon, lat, len(props))
	if !probe.Exact() {
		fmt.Fprintf(w, " at offset %+.3f,%+.3f", probe.DX, probe.DY)
	}
	fmt.Fprintln(w)

	if asMap {
		m := reversejp.AsMap(props)
		codes := make([]string, 0, len(m))
		for code := range m {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %s\n", m[code])
		}
		return nil
	}

	for _, p := range props {
		fmt.Fprintf(w, "  %s\n", p)
	}
	if dups := reversejp.CodeCollisions(props); len(dups) > 0 {
		fmt.Fprintf(w, "  (repeated codes: %s)\n", strings.Join(dups, ", "))
	}
	return nil
}
