package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/adsb-tools/flighttracer/internal/app/sinkers/db"
	"github.com/adsb-tools/flighttracer/internal/app/tools"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

const (
	schemaname = "flighttracer"
	tablename  = "trace_point"
)

// Service searches flight points previously persisted by the db sinker.
type Service struct {
	Log *logrus.Logger
	db  *sql.DB
}

func New(log *logrus.Logger) app.Service {
	return &Service{Log: log}
}

func (s *Service) Search(ctx context.Context, params interface{}, area string, altThresholdFeet int, fromTimeStamp, toTimeStamp time.Time) ([]app.FlightPoint, error) {
	s.Log.WithContext(ctx).Info("Search service called")

	bbox, errBbox := tools.GetBbox(area)
	if errBbox != nil {
		return nil, errBbox
	}

	if s.db == nil {
		if err := s.init(ctx, params); err != nil {
			return nil, err
		}
	}

	selectSQLstmt := "SELECT icao, call_sign, leg_id, flight_leg, flight_date, point_time, local_time, altitude, on_ground, ground_speed, heading, nnumber, model, description, operator, ST_X(geom), ST_Y(geom) FROM " +
		schemaname + "." + tablename +
		" WHERE ST_WITHIN(geom, ST_GEOMFROMTEXT($1, 4326)) AND altitude <= $2 AND point_time BETWEEN $3 AND $4 ORDER BY icao, point_time"

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": selectSQLstmt,
	}).Debug("Select statement")

	rows, errQuery := s.db.QueryContext(ctx, selectSQLstmt,
		tools.BboxToWKT(bbox),
		altThresholdFeet,
		fromTimeStamp,
		toTimeStamp,
	)
	if errQuery != nil {
		return nil, errQuery
	}
	defer rows.Close()

	result := make([]app.FlightPoint, 0)

	for rows.Next() {
		var (
			p         app.FlightPoint
			pointTime time.Time
			lon, lat  float64
		)
		if errScan := rows.Scan(&p.ICAO, &p.CallSign, &p.LegID, &p.FlightLeg, &p.FlightDate,
			&pointTime, &p.LocalTime, &p.Altitude, &p.OnGround, &p.GroundSpeed, &p.Heading,
			&p.TailNumber, &p.Model, &p.Desc, &p.Operator, &lon, &lat); errScan != nil {
			return nil, errScan
		}
		p.Time = pointTime
		p.Lat = lat
		p.Lon = lon
		p.Geometry = orb.Point{lon, lat}
		result = append(result, p)
	}

	if errRow := rows.Err(); errRow != nil {
		return nil, errRow
	}

	return result, nil
}

func (s *Service) init(ctx context.Context, params interface{}) error {
	parameters, ok := params.(db.Configuration)
	if !ok {
		return fmt.Errorf("search service needs a db configuration")
	}

	// Init the connection to the database
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable",
		parameters.Host, parameters.Port, parameters.User, parameters.Password, parameters.Dbname)

	database, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return err
	}

	if err := database.Ping(); err != nil {
		return err
	}

	s.Log.WithContext(ctx).Info("Successfully connected : " + parameters.Host)

	s.db = database

	return nil
}
