package parser

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MergeAll parses each input FASTA path into its own Parser concurrently —
// one goroutine per slice, matching §5's "parallel workers, one per parser
// slice, each owning its own PfParser state; workers never touch each
// other's state." Workers are joined before the single-threaded reduction
// merges them in input order via Merge, which is order-sensitive, not
// commutative. A worker that returns an error is a fatal error for the
// whole operation; no retry is attempted. Grounded on merge_pfp.cpp's
// multi-file driver.
func MergeAll(paths []string, params Params) (*Parser, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("parser: MergeAll requires at least one input")
	}

	parsers := make([]*Parser, len(paths))
	g, _ := errgroup.WithContext(context.Background())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			p, err := ParseFromFastaFile(path, params)
			if err != nil {
				return fmt.Errorf("parser: worker for %s: %w", path, err)
			}
			parsers[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := parsers[0]
	for i := 1; i < len(parsers); i++ {
		if err := acc.Merge(parsers[i]); err != nil {
			return nil, fmt.Errorf("parser: merging %s into accumulator: %w", paths[i], err)
		}
	}
	if err := acc.Finalize(); err != nil {
		return nil, err
	}
	return acc, nil
}
