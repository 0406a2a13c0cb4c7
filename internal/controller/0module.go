package controller

import (
	"go.uber.org/fx"

	controllermeta "catrank.dev/backend/internal/controller/meta"
	controllerv1 "catrank.dev/backend/internal/controller/v1"
)

type opt int

const (
	OptIncludeSwagger opt = iota
)

func Module(o ...opt) fx.Option {
	opts := []fx.Option{
		// Controllers (v1)
		controllerv1.Module(),

		// Controllers (meta)
		controllermeta.Module(),
	}
	for _, opt := range o {
		switch opt {
		case OptIncludeSwagger:
			opts = append(opts, fx.Invoke(controllermeta.RegisterSwagger))
		}
	}

	return fx.Module("controller",
		// options
		opts...,
	)
}
