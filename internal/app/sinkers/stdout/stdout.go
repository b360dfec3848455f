package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/sirupsen/logrus"
)

// StdOutSinker logs the processed run instead of persisting it.
type StdOutSinker struct {
	Log *logrus.Logger
}

func New(log *logrus.Logger) app.Sinker {
	return &StdOutSinker{Log: log}
}

func (s *StdOutSinker) Init(ctx context.Context, params interface{}) error {
	//Nothing to do here
	return nil
}

func (s *StdOutSinker) Sink(ctx context.Context, t time.Time, points []app.FlightPoint, legs []app.FlightLeg) error {
	if len(points) == 0 {
		s.Log.WithContext(ctx).Info("No processed points")
		return nil
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"points": len(points),
		"legs":   len(legs),
	}).Info("========Processed trace=============")

	var buffer bytes.Buffer
	marshal, err := json.Marshal(legs)
	if err != nil {
		return err
	}
	buffer.Write(marshal)
	s.Log.WithContext(ctx).Debug("Flight legs " + buffer.String())

	return nil
}
