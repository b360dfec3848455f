package sinkers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/geometry"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// csvHeader fixes the exported column order.
var csvHeader = []string{
	"icao", "call_sign", "leg_id", "flight_leg", "flight_date",
	"point_time", "local_time", "altitude", "ground_speed", "heading",
	"lat", "lon", "nnumber", "model", "desc", "operator",
}

// FileSinker writes one processed run as a CSV of points plus GeoJSON
// collections for points and legs, date-stamped under the output directory.
type FileSinker struct {
	Log       *logrus.Logger
	outputDir string
}

func New(log *logrus.Logger) app.Sinker {
	return &FileSinker{Log: log}
}

func (s *FileSinker) Init(ctx context.Context, params interface{}) error {
	conf, ok := params.(Configuration)
	if !ok {
		return errors.New("file sinker needs a file configuration")
	}
	if conf.Outputdir == "" {
		conf.Outputdir = "data"
	}

	if _, err := os.Stat(conf.Outputdir); os.IsNotExist(err) {
		if err := os.MkdirAll(conf.Outputdir, os.ModePerm); err != nil {
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Unable to create output folder")
			return err
		}
	}
	s.outputDir = conf.Outputdir

	return nil
}

func (s *FileSinker) Sink(ctx context.Context, t time.Time, points []app.FlightPoint, legs []app.FlightLeg) error {
	if s.outputDir == "" {
		return errors.New("file sinker not initialized")
	}

	stamp := t.Format("20060102")
	csvName := filepath.Join(s.outputDir, fmt.Sprintf("flight_traces_%s.csv", stamp))
	pointsName := filepath.Join(s.outputDir, fmt.Sprintf("flight_traces_%s.geojson", stamp))
	legsName := filepath.Join(s.outputDir, fmt.Sprintf("flight_traces_lines_%s.geojson", stamp))

	if err := s.writeCSV(csvName, points); err != nil {
		return err
	}
	if err := s.writeGeoJSON(pointsName, geometry.PointCollection(points)); err != nil {
		return err
	}
	if err := s.writeGeoJSON(legsName, geometry.LegCollection(legs)); err != nil {
		return err
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"points": len(points),
		"legs":   len(legs),
		"csv":    csvName,
	}).Info("Wrote trace exports")

	return nil
}

func (s *FileSinker) writeCSV(name string, points []app.FlightPoint) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range points {
		altitude := strconv.FormatFloat(p.Altitude, 'f', -1, 64)
		if p.OnGround {
			altitude = app.GroundAltitude
		}
		record := []string{
			p.ICAO,
			p.CallSign,
			strconv.Itoa(p.LegID),
			p.FlightLeg,
			p.FlightDate,
			p.Time.UTC().Format(time.RFC3339),
			p.LocalTime,
			altitude,
			strconv.FormatFloat(p.GroundSpeed, 'f', -1, 64),
			strconv.FormatFloat(p.Heading, 'f', -1, 64),
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lon, 'f', -1, 64),
			p.TailNumber,
			p.Model,
			p.Desc,
			p.Operator,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}

func (s *FileSinker) writeGeoJSON(name string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}
