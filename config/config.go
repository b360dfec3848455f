package config

import (
	"github.com/adsb-tools/flighttracer/internal/app/sinkers/db"
	file "github.com/adsb-tools/flighttracer/internal/app/sinkers/file"
)

// Configuration contains pipeline and sinker settings
type Configuration struct {
	Log struct {
		Level string `toml:"level" default:"info" comment:"Log level: trace, debug, info, warn, error, fatal"`
	} `toml:"Log" comment:"###############################\n Logs Settings \n##############################"`

	Flighttracer struct {
		Aircraft     string             `toml:"aircraft" default:"" comment:"comma separated ICAO hex identifiers to trace"`
		Metaurl      string             `toml:"metaurl" default:"" comment:"JSON resource of aircraft objects carrying an icao field (alternative to aircraft)"`
		Start        string             `toml:"start" default:"" comment:"range start date YYYY-MM-DD"`
		End          string             `toml:"end" default:"" comment:"range end date YYYY-MM-DD"`
		Recent       bool               `toml:"recent" default:"false" comment:"fetch the most recent trace instead of a date range"`
		Gapthreshold int                `toml:"gapthreshold" default:"3600" comment:"inter-ping gap in seconds starting a new flight leg"`
		Filterground bool               `toml:"filterground" default:"false" comment:"drop on-ground points after leg segmentation"`
		Timezone     string             `toml:"timezone" default:"" comment:"optional IANA timezone for the display-only local time column"`
		Operators    map[string]string  `toml:"operators" comment:"optional call sign to operator mapping"`
		Sinkertype   string             `toml:"sinkertype" default:"FILE" comment:"the sinker Type use (STDOUT|FILE|DB)"`
		File         file.Configuration `toml:"file" comment:"###############################\n file sinker configuration \n##############################"`
		Postgres     db.Configuration   `toml:"db" comment:"###############################\n db sinker configuration \n##############################"`
	} `toml:"Flighttracer" comment:"###############################\n Flighttracer Settings \n##############################"`
}
