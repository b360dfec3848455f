package db

// Configuration contains db sinker settings
type Configuration struct {
	Host     string `toml:"host" default:"localhost"`
	Port     int    `toml:"port" default:"5432"`
	User     string `toml:"user" default:"postgres"`
	Password string `toml:"password" default:""`
	Dbname   string `toml:"dbname" default:"postgres"`
}
