package cmd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/adsb-tools/flighttracer/internal"
	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/geometry"
	"github.com/adsb-tools/flighttracer/internal/app/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveListenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a REST API around the trace pipeline",
	Long: `The HTTP Rest API service starts with config parameters. /api/v1/trace
	runs the pipeline for the requested aircraft and returns the flight legs as
	GeoJSON; /api/v1/search queries traces previously stored by the DB sinker.`,
	Run: func(cmd *cobra.Command, args []string) {

		// Initialize config
		initConfig()

		r := mux.NewRouter()

		api := r.PathPrefix("/api/v1").Subrouter()
		api.HandleFunc("/trace", traceHandler).Methods(http.MethodGet)
		api.HandleFunc("/search", searchHandler).Methods(http.MethodGet)

		log.WithFields(logrus.Fields{
			"listen": serveListenAddr,
		}).Info("Starting HTTP service")

		//Start http server here
		log.Fatal(http.ListenAndServe(serveListenAddr, r))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", ":8080", "listen address")
}

type apiError struct {
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Message: message})
}

// traceHandler runs the pipeline for the query parameters and returns the
// reconstructed legs as a GeoJSON FeatureCollection.
func traceHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	// Per-request copy so query parameters never leak into the shared config.
	reqConf := *conf
	q := r.URL.Query()
	if icao := q.Get("icao"); icao != "" {
		reqConf.Flighttracer.Aircraft = icao
	}
	if start := q.Get("start"); start != "" {
		reqConf.Flighttracer.Start = start
	}
	if end := q.Get("end"); end != "" {
		reqConf.Flighttracer.End = end
	}
	if recent := q.Get("recent"); recent != "" {
		reqConf.Flighttracer.Recent, _ = strconv.ParseBool(recent)
	}
	if filter := q.Get("filterGround"); filter != "" {
		reqConf.Flighttracer.Filterground, _ = strconv.ParseBool(filter)
	}

	_, flightLegs, err := internal.Run(ctx, log, reqConf)
	if err != nil {
		if reason, ok := app.IsEmptyResult(err); ok {
			writeJSONError(w, http.StatusNotFound, "no trace data collected: "+reason)
			return
		}
		if app.IsConfiguration(err) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Error in trace processing")
		writeJSONError(w, http.StatusInternalServerError, "trace processing failed")
		return
	}

	data, errMarshal := geometry.LegCollection(flightLegs).MarshalJSON()
	if errMarshal != nil {
		writeJSONError(w, http.StatusInternalServerError, "unable to render legs")
		return
	}
	_, _ = w.Write(data)
}

// searchHandler queries flight points previously persisted by the DB sinker.
func searchHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	q := r.URL.Query()
	bbox := q.Get("bbox")
	if bbox == "" {
		writeJSONError(w, http.StatusBadRequest, "missing bbox parameter ('lat,lon^lat,lon')")
		return
	}

	altThreshold := 100000
	if alt := q.Get("alt"); alt != "" {
		parsed, errAlt := strconv.Atoi(alt)
		if errAlt != nil {
			writeJSONError(w, http.StatusBadRequest, "unable to parse alt parameter")
			return
		}
		altThreshold = parsed
	}

	from, errFrom := time.Parse(time.RFC3339, q.Get("from"))
	to, errTo := time.Parse(time.RFC3339, q.Get("to"))
	if errFrom != nil || errTo != nil {
		writeJSONError(w, http.StatusBadRequest, "from/to must be RFC3339 timestamps")
		return
	}

	searchSvc := service.New(log)
	points, errSearch := searchSvc.Search(ctx, conf.Flighttracer.Postgres, bbox, altThreshold, from, to)
	if errSearch != nil {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": errSearch,
		}).Error("Error in search processing")
		writeJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}

	_ = json.NewEncoder(w).Encode(struct {
		NbPoints int               `json:"nbPoints"`
		Data     []app.FlightPoint `json:"data"`
	}{NbPoints: len(points), Data: points})
}
