package internal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/adsb-tools/flighttracer/config"
	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/fetcher"
	"github.com/adsb-tools/flighttracer/internal/app/geometry"
	"github.com/adsb-tools/flighttracer/internal/app/legs"
	"github.com/adsb-tools/flighttracer/internal/app/query"
	pgSinker "github.com/adsb-tools/flighttracer/internal/app/sinkers/db"
	fileSinker "github.com/adsb-tools/flighttracer/internal/app/sinkers/file"
	stdoutSinker "github.com/adsb-tools/flighttracer/internal/app/sinkers/stdout"
	"github.com/sirupsen/logrus"
)

//Execute - run the trace pipeline once and sink the result
func Execute(ctx context.Context, log *logrus.Logger, conf config.Configuration) error {

	log.WithContext(ctx).WithFields(logrus.Fields{
		"aircraft":           conf.Flighttracer.Aircraft,
		"metaurl":            conf.Flighttracer.Metaurl,
		"start":              conf.Flighttracer.Start,
		"end":                conf.Flighttracer.End,
		"recent":             conf.Flighttracer.Recent,
		"gapThreshold (sec)": conf.Flighttracer.Gapthreshold,
		"filterGround":       conf.Flighttracer.Filterground,
		"sinkerType":         conf.Flighttracer.Sinkertype,
	}).Info("START with Configuration params: ")

	points, flightLegs, err := Run(ctx, log, conf)
	if err != nil {
		return err
	}

	var sinker app.Sinker
	var params interface{}

	switch conf.Flighttracer.Sinkertype {
	case "FILE":
		log.WithContext(ctx).Info("Initiate File Sinker")
		sinker = fileSinker.New(log)
		params = conf.Flighttracer.File
	case "STDOUT":
		log.WithContext(ctx).Info("Initiate stdOut Sinker")
		sinker = stdoutSinker.New(log)
	case "DB":
		log.WithContext(ctx).Info("Initiate DB Sinker")
		sinker = pgSinker.New(log)
		params = conf.Flighttracer.Postgres
	default:
		return errors.New("Wrong sinker specified")
	}

	if errInit := sinker.Init(ctx, params); errInit != nil {
		log.WithContext(ctx).Error(errInit)
		return errInit
	}

	if errSink := sinker.Sink(ctx, time.Now().UTC(), points, flightLegs); errSink != nil {
		log.WithContext(ctx).Error(errSink)
		return errSink
	}

	return nil
}

//Run - execute the pipeline without sinking: query building, fetch,
//aggregation, leg segmentation and geometry derivation
func Run(ctx context.Context, log *logrus.Logger, conf config.Configuration) ([]app.FlightPoint, []app.FlightLeg, error) {

	builder, errBuilder := newBuilder(ctx, conf)
	if errBuilder != nil {
		return nil, nil, errBuilder
	}

	reqs, errReqs := buildRequests(builder, conf)
	if errReqs != nil {
		return nil, nil, errReqs
	}

	opts, errOpts := segmentOptions(conf)
	if errOpts != nil {
		return nil, nil, errOpts
	}

	f := fetcher.New(log)
	fetched, errFetch := f.FetchAll(ctx, reqs)
	if errFetch != nil {
		return nil, nil, errFetch
	}
	for _, miss := range fetched.Misses {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"icao": miss.ICAO,
			"url":  miss.URL,
		}).Info("No data for pair")
	}
	if len(fetched.Points) == 0 {
		return nil, nil, &app.EmptyResultError{Reason: app.ReasonNoData}
	}

	segmented, errSegment := legs.Segment(fetched.Points, opts)
	if errSegment != nil {
		return nil, nil, errSegment
	}
	if segmented.DroppedRows > 0 {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"rows": segmented.DroppedRows,
		}).Warn("Dropped rows with non-numeric offsets")
	}
	if len(segmented.Points) == 0 {
		return nil, nil, &app.EmptyResultError{Reason: segmented.EmptyReason()}
	}

	flightLegs, errLegs := geometry.BuildLegs(segmented.Points)
	if errLegs != nil {
		return nil, nil, errLegs
	}

	log.WithContext(ctx).WithFields(logrus.Fields{
		"points": len(segmented.Points),
		"legs":   len(flightLegs),
	}).Info("Pipeline done")

	return segmented.Points, flightLegs, nil
}

func newBuilder(ctx context.Context, conf config.Configuration) (*query.Builder, error) {
	if conf.Flighttracer.Metaurl != "" {
		return query.NewFromMetaURL(ctx, nil, conf.Flighttracer.Metaurl)
	}
	return query.New(splitIDs(conf.Flighttracer.Aircraft))
}

func buildRequests(builder *query.Builder, conf config.Configuration) ([]query.Request, error) {
	if conf.Flighttracer.Recent {
		return builder.Recent(), nil
	}

	start, errStart := time.Parse("2006-01-02", conf.Flighttracer.Start)
	if errStart != nil {
		return nil, &app.ConfigurationError{Reason: "unable to parse start date '" + conf.Flighttracer.Start + "'"}
	}
	end, errEnd := time.Parse("2006-01-02", conf.Flighttracer.End)
	if errEnd != nil {
		return nil, &app.ConfigurationError{Reason: "unable to parse end date '" + conf.Flighttracer.End + "'"}
	}
	if end.Before(start) {
		return nil, &app.ConfigurationError{Reason: "end date is before start date"}
	}

	return builder.Range(start, end), nil
}

func segmentOptions(conf config.Configuration) (legs.Options, error) {
	opts := legs.Options{
		Threshold:    time.Duration(conf.Flighttracer.Gapthreshold) * time.Second,
		FilterGround: conf.Flighttracer.Filterground,
		Operators:    conf.Flighttracer.Operators,
	}
	if conf.Flighttracer.Timezone != "" {
		loc, errLoc := time.LoadLocation(conf.Flighttracer.Timezone)
		if errLoc != nil {
			return legs.Options{}, &app.ConfigurationError{Reason: "unknown timezone '" + conf.Flighttracer.Timezone + "'"}
		}
		opts.Location = loc
	}
	return opts, nil
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
