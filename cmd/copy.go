// cmd/copy.go

package main

import (
	"fmt"

	"FlipIO/pkg/chunk"
	"FlipIO/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func copyFlags() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "copy a file through the chunked reader and writer",
		ArgsUsage: "SRC DST",
		Action:    docopy,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "buffer-size",
				Value: "1MiB",
				Usage: "capacity of each of the two buffers",
			},
			&cli.StringFlag{
				Name:  "bwlimit",
				Usage: "limit disk bandwidth in bytes per second (e.g. 50MiB)",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "overwrite DST if it exists",
			},
			&cli.BoolFlag{
				Name:  "no-reserve",
				Usage: "don't reserve DST to the source size up front",
			},
		},
	}
}

// how many bytes each foreground call moves; small enough to keep the
// progress bar lively, big enough to stay off the hot path
const copyBlock = 128 << 10

func docopy(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() != 2 {
		return fmt.Errorf("SRC and DST are required")
	}
	src, dst := ctx.Args().Get(0), ctx.Args().Get(1)
	if utils.Exists(dst) && !ctx.Bool("force") {
		return fmt.Errorf("%s exists, use --force to overwrite it", dst)
	}
	bufSize := parseBytes(ctx, "buffer-size", false)
	limit := parseBytes(ctx, "bwlimit", true)
	conf := &chunk.Config{ChunkSize: int(bufSize), UpLimit: limit, DownLimit: limit}

	reader := chunk.NewReader(conf)
	if err := reader.Open(src); err != nil {
		logger.Fatalf("%s", err)
	}
	defer reader.Close()

	reserve := reader.Size()
	if ctx.Bool("no-reserve") {
		reserve = 0
	}
	writer := chunk.NewWriter(conf)
	if err := writer.Open(dst, reserve, chunk.Truncate, int(bufSize)); err != nil {
		logger.Fatalf("%s", err)
	}

	progress, bar := utils.NewDynProgressBar("copying: ", ctx.Bool("quiet"))
	bar.SetTotal(reader.Size(), false)

	start := utils.Clock()
	block := utils.Alloc(copyBlock)
	defer utils.Free(block)
	for reader.HasMore() {
		n := copyBlock
		if left := reader.Remaining(); left < int64(n) {
			n = int(left)
		}
		if err := reader.ReadBytes(block[:n]); err != nil {
			logger.Fatalf("read %s: %s", src, err)
		}
		if err := writer.WriteBytes(block[:n]); err != nil {
			logger.Fatalf("write %s: %s", dst, err)
		}
		bar.IncrBy(n)
	}
	copied := writer.Stored()
	if err := writer.Close(); err != nil {
		logger.Fatalf("flush %s: %s", dst, err)
	}
	bar.SetTotal(bar.Current(), true)
	progress.Wait()

	used := utils.Clock() - start
	logger.Infof("Copied %s in %.2f s (%s/s)", humanize.IBytes(uint64(copied)), used.Seconds(),
		humanize.IBytes(uint64(float64(copied)/used.Seconds())))
	return reader.Close()
}
