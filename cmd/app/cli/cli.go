package cli

import (
	"context"

	"go.uber.org/fx"

	"catrank.dev/backend/internal/app"
	"catrank.dev/backend/internal/app/appcontext"
)

func Start(module fx.Option) {
	app.New(appcontext.Declare(appcontext.EnvCLI), module).Start(context.Background())
}

// DepsFn returns a func that assembles a CLI app graph and populates T from it.
func DepsFn[T any]() func() T {
	return func() T {
		var deps T
		Start(fx.Populate(&deps))
		return deps
	}
}
