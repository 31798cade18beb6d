package cautious

import (
	"sync"

	"github.com/YoshitsuguKoike/cautious/internal/domain/model/lock"
)

// Guard is a held lock. Release it exactly once, typically with defer:
//
//	g, err := c.AcquireLock(ctx, path)
//	if err != nil {
//		return err
//	}
//	defer g.Release()
type Guard struct {
	c     *Coordinator
	id    lock.LockID
	owner string
	op    string

	once sync.Once
	err  error
}

// Path returns the locked target path
func (g *Guard) Path() string {
	return g.id.String()
}

// MarkerPath returns the path of the marker file this guard created
func (g *Guard) MarkerPath() string {
	return g.id.MarkerPath()
}

// Owner returns the token written into the marker
func (g *Guard) Owner() string {
	return g.owner
}

// Release removes the marker if it still belongs to this guard.
// Only the first call does any work; later calls return the first result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.c.release(g.op, g.id, g.owner)
	})
	return g.err
}
