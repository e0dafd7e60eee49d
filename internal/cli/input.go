package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/client"
)

// source names where a command reads its flow from: a file ("-" is stdin)
// or, with owner set, the service at the configured remote.
type source struct {
	owner string
}

func (s *source) read(ctx context.Context, in io.Reader, args []string) (*flow.Graph, error) {
	if s.owner != "" {
		if len(args) > 0 {
			return nil, errors.New("give either a file or --owner, not both")
		}
		cfg := configFromContext(ctx)
		loggerFromContext(ctx).Debug("fetching flow", "remote", cfg.Remote, "owner", s.owner)
		return client.New(cfg.Remote).Load(ctx, s.owner)
	}

	if len(args) != 1 {
		return nil, errors.New("expected a flow file or --owner")
	}
	if args[0] == "-" {
		return flow.Decode(in)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := flow.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return g, nil
}
