// cmd/info.go

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"FlipIO/pkg/chunk"
	"FlipIO/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show how files map onto chunks",
		ArgsUsage: "PATH ...",
		Action:    info,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "chunk-size",
				Value: "1MiB",
				Usage: "chunk size to lay the files out with",
			},
		},
	}
}

func info(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		logger.Infof("PATH is needed")
		return nil
	}
	conf := &chunk.Config{ChunkSize: int(parseBytes(ctx, "chunk-size", false))}
	for i := 0; i < ctx.Args().Len(); i++ {
		path := ctx.Args().Get(i)
		d, err := filepath.Abs(path)
		if err != nil {
			logger.Fatalf("abs of %s: %s", path, err)
		}
		fi, err := os.Stat(d)
		if err != nil {
			logger.Errorf("stat %s: %s", path, err)
			continue
		}
		if !fi.Mode().IsRegular() {
			logger.Warnf("%s is not a regular file", path)
			continue
		}
		inode, err := utils.GetFileInode(d)
		if err != nil {
			logger.Errorf("lookup inode for %s: %s", path, err)
			continue
		}

		l := conf.Layout(fi.Size())
		fmt.Println(path, ":")
		fmt.Printf("  inode: %d\n", inode)
		fmt.Printf("   size: %d (%s)\n", fi.Size(), humanize.IBytes(uint64(fi.Size())))
		fmt.Printf(" chunks: %d x %s\n", l.Chunks, humanize.IBytes(uint64(l.ChunkSize)))
		fmt.Printf("   last: %s\n", humanize.IBytes(uint64(l.Last)))
		fmt.Printf("  atime: %s\n", utils.FileAtime(fi).Format("2006-01-02 15:04:05"))
	}

	return nil
}
