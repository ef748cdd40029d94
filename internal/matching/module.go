package matching

import (
	"context"

	"go.uber.org/fx"
)

// Module provides a started matching Service to the fx graph.
var Module = fx.Module("matching",
	fx.Provide(NewEngine),
	fx.Provide(NewService),
	fx.Invoke(func(lc fx.Lifecycle, s *Service) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Start(ctx)
			},
		})
	}),
)
