package sinkers

// Configuration contains file sinker settings
type Configuration struct {
	Outputdir string `toml:"outputdir" default:"data" comment:"directory receiving the exported csv/geojson files"`
}
