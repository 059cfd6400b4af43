package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	gen     *snowflake.Node
	genOnce sync.Once
)

// Init sets up the process-wide generator. The server and the worker each
// pass a distinct node ID so documents created by either process never share
// an identifier. Calling Init again is a no-op.
func Init(nodeID int64) error {
	var err error
	genOnce.Do(func() {
		gen, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a unique, roughly time-ordered int64. Init must have been
// called first.
func New() int64 {
	return gen.Generate().Int64()
}
