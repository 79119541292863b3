// cmd/bench.go

package main

import (
	"bytes"
	crand "crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"FlipIO/pkg/chunk"
	"FlipIO/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func benchFlags() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     "measure chunked write and read throughput",
		ArgsUsage: "[DIR]",
		Action:    bench,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "size",
				Value: "1GiB",
				Usage: "bytes of payload to stream",
			},
			&cli.StringFlag{
				Name:  "buffer-size",
				Value: "4MiB",
				Usage: "capacity of each of the two buffers",
			},
			&cli.StringFlag{
				Name:  "block-size",
				Value: "128KiB",
				Usage: "bytes per foreground call",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "keep the artifact instead of deleting it",
			},
		},
	}
}

// The artifact starts with a fixed header: magic, format version, the
// stream id and the payload length, which is only known at the end and
// patched in through the slow path.
const benchMagic = 0x464c4950 // "FLIP"
const benchFormat = 1
const benchHeaderSize = 4 + 4 + 16 + 8

func benchHeader(id uuid.UUID, payload uint64) []byte {
	wb := utils.NewBuffer(benchHeaderSize)
	wb.Put32(benchMagic)
	wb.Put32(benchFormat)
	wb.Put(id[:])
	wb.Put64(payload)
	return wb.Bytes()
}

func bench(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	dir := "."
	if ctx.Args().Len() > 0 {
		dir = ctx.Args().Get(0)
	}
	payload := parseBytes(ctx, "size", false)
	bufSize := parseBytes(ctx, "buffer-size", false)
	blockSize := parseBytes(ctx, "block-size", false)

	id := uuid.New()
	path := filepath.Join(dir, fmt.Sprintf("flipio-bench-%s.dat", id))
	if !ctx.Bool("keep") {
		defer os.Remove(path)
	}

	conf := &chunk.Config{ChunkSize: int(bufSize)}
	writer := chunk.NewWriter(conf)
	if err := writer.Open(path, benchHeaderSize+payload, chunk.Truncate, int(bufSize)); err != nil {
		logger.Fatalf("%s", err)
	}
	if err := writer.OverwriteBytes(0, benchHeader(id, 0)); err != nil {
		logger.Fatalf("write header: %s", err)
	}

	block := utils.Alloc(int(blockSize))
	defer utils.Free(block)
	if _, err := crand.Read(block); err != nil {
		logger.Fatalf("random payload: %s", err)
	}

	start := utils.Clock()
	var written int64
	for written < payload {
		n := int64(len(block))
		if payload-written < n {
			n = payload - written
		}
		if err := writer.WriteBytes(block[:n]); err != nil {
			logger.Fatalf("write: %s", err)
		}
		written += n
	}
	if err := writer.OverwriteBytes(0, benchHeader(id, uint64(written))); err != nil {
		logger.Fatalf("patch header: %s", err)
	}
	if err := writer.Close(); err != nil {
		logger.Fatalf("flush: %s", err)
	}
	wUsed := utils.Clock() - start

	reader := chunk.NewReader(conf)
	start = utils.Clock()
	if err := reader.Open(path); err != nil {
		logger.Fatalf("%s", err)
	}
	head := make([]byte, benchHeaderSize)
	if err := reader.ReadBytes(head); err != nil {
		logger.Fatalf("read header: %s", err)
	}
	rb := utils.ReadBuffer(head)
	if rb.Get32() != benchMagic {
		logger.Fatalf("artifact %s is corrupted: bad magic", path)
	}
	_ = rb.Get32() // format version
	if got := rb.Get(16); !bytes.Equal(got, id[:]) {
		logger.Fatalf("artifact %s is corrupted: stream id mismatch", path)
	}
	if got := rb.Get64(); got != uint64(written) {
		logger.Fatalf("artifact %s is corrupted: header says %d of %d bytes", path, got, written)
	}
	var read int64
	for reader.HasMore() {
		n := int64(len(block))
		if left := reader.Remaining(); left < n {
			n = left
		}
		if err := reader.ReadBytes(block[:n]); err != nil {
			logger.Fatalf("read: %s", err)
		}
		read += n
	}
	if err := reader.Close(); err != nil {
		logger.Fatalf("close: %s", err)
	}
	rUsed := utils.Clock() - start

	user, system := utils.CPUUsage()
	fmt.Printf("Written %s in %.2f s (%s/s), read it back in %.2f s (%s/s)\n",
		humanize.IBytes(uint64(written)), wUsed.Seconds(),
		humanize.IBytes(uint64(float64(written)/wUsed.Seconds())),
		rUsed.Seconds(),
		humanize.IBytes(uint64(float64(read)/rUsed.Seconds())))
	logger.Debugf("CPU usage: %.2f s user, %.2f s system", user, system)
	return nil
}
