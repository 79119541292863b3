// cmd/warm.go

package main

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"FlipIO/pkg/chunk"
	"FlipIO/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/google/gops/agent"
	"github.com/juicedata/godaemon"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func warmFlags() *cli.Command {
	var defaultLogDir = "/var/log"
	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Fatalf("%v", err)
			return nil
		}
		defaultLogDir = path.Join(homeDir, ".flipio")
	}
	return &cli.Command{
		Name:      "warm",
		Usage:     "read files through the chunk pipeline to pull them into the page cache",
		ArgsUsage: "PATH ...",
		Action:    warm,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "threads",
				Aliases: []string{"p"},
				Value:   4,
				Usage:   "number of concurrent workers",
			},
			&cli.StringFlag{
				Name:  "buffer-size",
				Value: "1MiB",
				Usage: "capacity of each of the two buffers",
			},
			&cli.BoolFlag{
				Name:    "d",
				Aliases: []string{"background"},
				Usage:   "run in background",
			},
			&cli.StringFlag{
				Name:  "log",
				Value: path.Join(defaultLogDir, "flipio.log"),
				Usage: "path of log file when running in background",
			},
		},
	}
}

func makeDaemon(c *cli.Context) error {
	var attrs godaemon.DaemonAttr

	// the current dir will be changed to root in daemon,
	// so every target path has to be absolute.
	if godaemon.Stage() == 0 {
		targets := c.Args().Slice()
		for i, a := range os.Args {
			for _, t := range targets {
				if a == t {
					at, err := filepath.Abs(t)
					if err == nil {
						os.Args[i] = at
					} else {
						logger.Warnf("abs of %s: %s", t, err)
					}
				}
			}
		}
		var err error
		logfile := c.String("log")
		attrs.Stdout, err = os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Errorf("open log file %s: %s", logfile, err)
		}
	}
	_, _, err := godaemon.MakeDaemon(&attrs)
	return err
}

type _target struct {
	path string
	size int64
}

const warmBlock = 128 << 10

func warm(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		logger.Infof("nothing to warm up")
		return nil
	}
	if ctx.Bool("d") {
		if err := makeDaemon(ctx); err != nil {
			logger.Fatalf("make daemon: %s", err)
		}
		utils.SetOutFile(ctx.String("log"))
		if err := agent.Listen(agent.Options{}); err != nil {
			logger.Warnf("gops agent: %s", err)
		}
	}

	bufSize := int(parseBytes(ctx, "buffer-size", false))
	concurrent := int(ctx.Uint("threads"))
	if concurrent <= 0 {
		concurrent = 1
	}
	logger.Infof("start to warm up %d paths with %d workers", len(paths), concurrent)
	start := utils.Clock()
	todo := make(chan _target, 10240)
	var files, total, failed int64
	wg := sync.WaitGroup{}
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			conf := &chunk.Config{ChunkSize: bufSize}
			reader := chunk.NewReader(conf)
			block := utils.Alloc(warmBlock)
			for {
				t := <-todo
				if t.path == "" {
					break
				}
				logger.Debugf("warming up %s (%s)", t.path, humanize.IBytes(uint64(t.size)))
				n, err := warmFile(reader, t.path, block)
				atomic.AddInt64(&total, n)
				if err != nil {
					logger.Errorf("%s could be corrupted: %s", t.path, err)
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&files, 1)
			}
			_ = reader.Close()
			utils.Free(block)
			wg.Done()
		}()
	}

	for _, p := range paths {
		logger.Debugf("Warming up path %s", p)
		err := filepath.Walk(p, func(fp string, info os.FileInfo, err error) error {
			if err != nil {
				logger.Warnf("skip %s: %s", fp, err)
				return nil
			}
			if info.Mode().IsRegular() {
				todo <- _target{fp, info.Size()}
			}
			return nil
		})
		if err != nil {
			logger.Warnf("Failed to resolve path %s: %s", p, err)
		}
	}
	close(todo)
	wg.Wait()
	logger.Infof("Warmed up %d files (%s) in %s", files, humanize.IBytes(uint64(total)), utils.Clock()-start)
	if failed > 0 {
		return errors.Errorf("%d files could not be read", failed)
	}
	return nil
}

// warmFile streams one file to the end through a reused reader; opening
// the next file settles whatever the previous one left in flight.
func warmFile(r *chunk.Reader, p string, block []byte) (int64, error) {
	if err := r.Open(p); err != nil {
		return 0, err
	}
	var n int64
	for r.HasMore() {
		b := block
		if left := r.Remaining(); left < int64(len(b)) {
			b = b[:left]
		}
		if err := r.ReadBytes(b); err != nil {
			return n, err
		}
		n += int64(len(b))
	}
	return n, r.Close()
}
