// cmd/main.go

package main

import (
	"os"

	"FlipIO/pkg/utils"
	"FlipIO/pkg/version"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("flipio")

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	app := &cli.App{
		Name:                 "flipio",
		Usage:                "stream files through double-buffered chunked I/O",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Commands: []*cli.Command{
			copyFlags(),
			benchFlags(),
			warmFlags(),
			infoFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		logger.Fatalf("%s", err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
	}
}

func setLoggerLevel(c *cli.Context) {
	if c.Bool("trace") {
		utils.SetLogLevel(logrus.TraceLevel)
	} else if c.Bool("verbose") {
		utils.SetLogLevel(logrus.DebugLevel)
	} else if c.Bool("quiet") {
		utils.SetLogLevel(logrus.WarnLevel)
	} else {
		utils.SetLogLevel(logrus.InfoLevel)
	}
}

// parseBytes reads a size flag like "4MiB" or "128K"; 0 is only accepted
// when the caller says so.
func parseBytes(c *cli.Context, name string, zeroOK bool) int64 {
	s := c.String(name)
	if s == "" {
		return 0
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		logger.Fatalf("invalid %s %q: %s", name, s, err)
	}
	if v == 0 && !zeroOK {
		logger.Fatalf("%s must not be zero", name)
	}
	return int64(v)
}
