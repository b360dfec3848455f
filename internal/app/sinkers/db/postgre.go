package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/adsb-tools/flighttracer/internal/app"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/sirupsen/logrus"
)

const (
	schemaname  = "flighttracer"
	pointsTable = "trace_point"
	legsTable   = "flight_leg"
)

// PostGreSinker persists processed runs into PostGIS, one row per point and
// one row per reconstructed leg, geometries in WGS84 (SRID 4326).
type PostGreSinker struct {
	Log *logrus.Logger
	db  *sql.DB
}

func New(log *logrus.Logger) app.Sinker {
	return &PostGreSinker{Log: log}
}

func (s *PostGreSinker) Init(ctx context.Context, params interface{}) error {
	parameters := params.(Configuration)

	// Init the connection to the database
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=disable",
		parameters.Host, parameters.Port, parameters.User, parameters.Password, parameters.Dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	s.Log.WithContext(ctx).Info("Successfully connected : " + parameters.Host)

	s.db = db

	createSchemaSQL := "CREATE SCHEMA IF NOT EXISTS " + schemaname
	if _, err := s.db.Exec(createSchemaSQL); err != nil {
		return err
	}

	createPointsSQL := "CREATE TABLE IF NOT EXISTS " + schemaname + "." + pointsTable +
		" (icao varchar(10) NOT NULL, call_sign varchar(20), leg_id integer, flight_leg varchar(40)," +
		" flight_date varchar(10), point_time timestamp, local_time varchar(8)," +
		" altitude decimal, on_ground boolean, ground_speed decimal, heading decimal," +
		" nnumber varchar(20), model varchar(20), description varchar(120), operator varchar(60)," +
		" geom geometry(Point,4326))"
	if _, err := s.db.Exec(createPointsSQL); err != nil {
		return err
	}

	createLegsSQL := "CREATE TABLE IF NOT EXISTS " + schemaname + "." + legsTable +
		" (flight_leg varchar(40) NOT NULL, icao varchar(10), call_sign varchar(20), leg_id integer," +
		" flight_date varchar(10), operator varchar(60), start_time timestamp, end_time timestamp," +
		" points integer, geom geometry(Geometry,4326))"
	if _, err := s.db.Exec(createLegsSQL); err != nil {
		return err
	}

	return nil
}

func (s *PostGreSinker) Sink(ctx context.Context, t time.Time, points []app.FlightPoint, legs []app.FlightLeg) error {
	if s.db == nil {
		return fmt.Errorf("db sinker not initialized")
	}

	insertPointSQL := "INSERT INTO " + schemaname + "." + pointsTable +
		" VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, ST_GeomFromText($16, 4326))"

	nbRow := int64(0)
	for _, p := range points {
		result, err := s.db.Exec(insertPointSQL,
			p.ICAO,
			p.CallSign,
			p.LegID,
			p.FlightLeg,
			p.FlightDate,
			p.Time,
			p.LocalTime,
			p.Altitude,
			p.OnGround,
			p.GroundSpeed,
			p.Heading,
			p.TailNumber,
			p.Model,
			p.Desc,
			p.Operator,
			wkt.MarshalString(p.Geometry),
		)
		if err != nil {
			return err
		}
		nb, _ := result.RowsAffected()
		nbRow = nbRow + nb
	}

	insertLegSQL := "INSERT INTO " + schemaname + "." + legsTable +
		" VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, ST_GeomFromText($10, 4326))"

	for _, leg := range legs {
		result, err := s.db.Exec(insertLegSQL,
			leg.FlightLeg,
			leg.ICAO,
			leg.CallSign,
			leg.LegID,
			leg.FlightDate,
			leg.Operator,
			leg.StartTime,
			leg.EndTime,
			leg.Points,
			wkt.MarshalString(leg.Geometry),
		)
		if err != nil {
			return err
		}
		nb, _ := result.RowsAffected()
		nbRow = nbRow + nb
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{"Rows Affected": nbRow}).Info("Insert in DB ...")

	return nil
}
