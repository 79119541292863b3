// pkg/chunk/bwlimit.go

package chunk

import (
	"github.com/juju/ratelimit"
)

// bwlimit throttles the positional reads and writes of a File with token
// buckets. Loads and flushes of a stream all go through the same File, so
// the limits hold for the stream as a whole no matter how the background
// work is scheduled.
type bwlimit struct {
	File
	upLimit   *ratelimit.Bucket
	downLimit *ratelimit.Bucket
}

// newLimited wraps f with up/down limits in bytes per second; zero leaves
// a direction unlimited.
func newLimited(f File, up, down int64) File {
	if up <= 0 && down <= 0 {
		return f
	}
	bw := &bwlimit{f, nil, nil}
	if up > 0 {
		// leave some headroom for filesystem metadata traffic
		bw.upLimit = ratelimit.NewBucketWithRate(float64(up)*0.85, up)
	}
	if down > 0 {
		bw.downLimit = ratelimit.NewBucketWithRate(float64(down)*0.85, down)
	}
	return bw
}

func (p *bwlimit) ReadAt(buf []byte, off int64) (int, error) {
	n, err := p.File.ReadAt(buf, off)
	if p.downLimit != nil {
		p.downLimit.Wait(int64(n))
	}
	return n, err
}

func (p *bwlimit) WriteAt(buf []byte, off int64) (int, error) {
	if p.upLimit != nil {
		p.upLimit.Wait(int64(len(buf)))
	}
	return p.File.WriteAt(buf, off)
}

// Preallocate forwards to the wrapped file; reservation is not metered.
func (p *bwlimit) Preallocate(size int64) error {
	return preallocate(p.File, size)
}
