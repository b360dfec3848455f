package cmd

import (
	"context"
	"os"

	"github.com/adsb-tools/flighttracer/internal"
	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// traceCmd represents the trace command
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Fetch traces for a set of aircraft and export flight legs",
	Long: `Fetch the position traces of the configured aircraft over a date
	range (or the most recent trace), reconstruct flight legs and write the
	result through the configured sinker.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Initialize config
		initConfig()
		applyTraceFlags(cmd)

		errExec := internal.Execute(ctx, log, *conf)
		if errExec != nil {
			if reason, ok := app.IsEmptyResult(errExec); ok {
				log.WithContext(ctx).WithFields(logrus.Fields{
					"reason": reason,
				}).Warn("No trace data collected")
				return
			}
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errExec,
			}).Error("Error in Execute processing")
			os.Exit(1)
		}
	},
}

func init() {
	traceCmd.Flags().String("icao", "", "comma separated ICAO hex identifiers")
	traceCmd.Flags().String("meta-url", "", "JSON resource of aircraft objects with an icao field")
	traceCmd.Flags().String("start", "", "range start date (YYYY-MM-DD)")
	traceCmd.Flags().String("end", "", "range end date (YYYY-MM-DD)")
	traceCmd.Flags().Bool("recent", false, "fetch the most recent trace instead of a date range")
	traceCmd.Flags().Int("threshold", 3600, "inter-ping gap in seconds starting a new leg")
	traceCmd.Flags().Bool("filter-ground", false, "drop on-ground points after segmentation")
	traceCmd.Flags().String("timezone", "", "IANA timezone for the display-only local time column")
	traceCmd.Flags().String("sinkerType", "", "set the sinker type (STDOUT|FILE|DB)")
	traceCmd.Flags().String("output", "", "output directory for the file sinker")
}

// applyTraceFlags overrides config values with explicitly set flags.
func applyTraceFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("icao") {
		conf.Flighttracer.Aircraft, _ = flags.GetString("icao")
	}
	if flags.Changed("meta-url") {
		conf.Flighttracer.Metaurl, _ = flags.GetString("meta-url")
	}
	if flags.Changed("start") {
		conf.Flighttracer.Start, _ = flags.GetString("start")
	}
	if flags.Changed("end") {
		conf.Flighttracer.End, _ = flags.GetString("end")
	}
	if flags.Changed("recent") {
		conf.Flighttracer.Recent, _ = flags.GetBool("recent")
	}
	if flags.Changed("threshold") {
		conf.Flighttracer.Gapthreshold, _ = flags.GetInt("threshold")
	}
	if flags.Changed("filter-ground") {
		conf.Flighttracer.Filterground, _ = flags.GetBool("filter-ground")
	}
	if flags.Changed("timezone") {
		conf.Flighttracer.Timezone, _ = flags.GetString("timezone")
	}
	if flags.Changed("sinkerType") {
		conf.Flighttracer.Sinkertype, _ = flags.GetString("sinkerType")
	}
	if flags.Changed("output") {
		conf.Flighttracer.File.Outputdir, _ = flags.GetString("output")
	}
}
