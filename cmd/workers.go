package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/go-viewshed/runtime"
	"github.com/urfave/cli"
)

// Workers reports the shape of the pool a compute run would use, the
// generalization of the teacher's ListDevices from "enumerate opencl
// platforms and devices" to "report the worker pool a run would allocate".
// There is no distributed scheduler to introspect here (spec §1 keeps the
// substrate out of scope), and the command runs no computation: it builds a
// fresh pool from its flags and prints the pool size and one stats entry
// per worker, whose tile counts and times are therefore always zero.
func Workers(ctx *cli.Context) error {
	setupLogging(ctx)

	pool := runtime.NewPool(ctx.Int("workers"), ctx.Int("max-retries"))

	var storage []byte
	buf := bytes.NewBuffer(storage)
	buf.WriteString(fmt.Sprintf("\npool provides %d worker(s), max %d retr(y/ies) per tile:\n\n", pool.WorkerCount(), pool.MaxRetries))
	for _, stat := range pool.Stats() {
		buf.WriteString(fmt.Sprintf("  [Worker %02d]\n    Tiles processed %d\n    Total time      %s\n\n", stat.ID, stat.TilesProcessed, stat.TotalTime))
	}

	logger.Notice(buf.String())
	return nil
}
