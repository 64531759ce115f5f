// Package pool runs a per-package action over a package list with bounded
// parallelism. Helper tools act on each binary package independently, so the
// only coordination needed is an even split of the list and first-failure
// cancellation.
package pool

import (
	"context"
	"os"
	"runtime"
	"strconv"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Action is the per-package unit of work.
type Action func(ctx context.Context, pkg domain.Package) error

// Parallelism picks the worker count: DEB_BUILD_OPTIONS parallel=N when set,
// otherwise the CPU count.
func Parallelism() int {
	for _, opt := range domain.BuildOptions(os.Getenv("DEB_BUILD_OPTIONS")) {
		if n, ok := parallelOption(opt); ok {
			return n
		}
	}
	return runtime.NumCPU()
}

func parallelOption(opt string) (int, bool) {
	const prefix = "parallel="
	if len(opt) <= len(prefix) || opt[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.Atoi(opt[len(prefix):])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Run applies action to every package, at most parallelism at a time. The
// first failure cancels the remaining work; the returned error carries the
// name of the package that failed.
func Run(ctx context.Context, packages []domain.Package, parallelism int, action Action) error {
	if parallelism < 1 {
		parallelism = 1
	}
	if len(packages) <= 1 || parallelism == 1 {
		for _, pkg := range packages {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, pkg); err != nil {
				return zerr.With(err, "package", pkg.Name)
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, pkg := range packages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, pkg); err != nil {
				return zerr.With(err, "package", pkg.Name)
			}
			return nil
		})
	}

	return g.Wait()
}
