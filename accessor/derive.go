package accessor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/schema"
)

// DeriveAll compiles and derives facts for every declaration of s. Work is
// spread over a bounded number of goroutines; the result is in declaration
// order.
func DeriveAll(ctx context.Context, c *codec.Compiler, s *schema.Schema) ([]*Facts, error) {
	types := s.Types()
	facts := make([]*Facts, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ct, err := c.Compile(t)
			if err != nil {
				return err
			}
			f, err := Derive(ct)
			if err != nil {
				return err
			}
			facts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facts, nil
}
