package main

import "github.com/adsb-tools/flighttracer/cmd"

func main() {
	cmd.Execute()
}
