package appcontext

const (
	EnvServer Env = iota
	EnvWorker
	EnvCLI
)

type Env int

func (e Env) String() string {
	switch e {
	case EnvServer:
		return "server"
	case EnvWorker:
		return "worker"
	case EnvCLI:
		return "cli"
	default:
		return "unknown"
	}
}

// Ctx tells fx-provided components which entrypoint assembled them.
type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}

// Serving reports whether the HTTP server and background workers should run.
func (c Ctx) Serving() bool {
	return c.Env != EnvCLI
}
