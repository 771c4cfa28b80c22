// Command tilegps converts a GPX trace or a rectangular area of interest
// into the tile-indexed binary map a watch-class device can decode.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/watchmapper/tilegps/internal/buildinfo"
)

type rootCmd struct {
	Version versionCmd `command:"version" description:"Show version information"`
	Route   routeCmd   `command:"route" description:"Build a map around a GPX trace"`
	Area    areaCmd    `command:"area" description:"Build a map covering a rectangular area"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

type versionCmd struct{}

// Execute prints the version information.
func (c *versionCmd) Execute(_ []string) error {
	buildinfo.Print()
	return nil
}
