package v1

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/model/types"
	"catrank.dev/backend/internal/pkg/fiberstore"
	"catrank.dev/backend/internal/pkg/middlewares"
	"catrank.dev/backend/internal/server/svr"
	"catrank.dev/backend/internal/service"
	"catrank.dev/backend/internal/util"
	"catrank.dev/backend/internal/util/rekuest"
)

type Snapshot struct {
	fx.In

	Redis           *redis.Client
	RedSync         *redsync.Redsync
	SnapshotService *service.Snapshot
}

func RegisterSnapshot(v1 *svr.V1, c Snapshot) {
	group := v1.Group("/snapshots")
	group.Post("/", middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:  constant.SnapshotIdempotencyLifetime,
		KeyHeader: constant.IdempotencyKeyHeader,
		KeepResponseHeaders: []string{
			fiber.HeaderContentType,
			fiber.HeaderContentLength,
		},
		Storage: fiberstore.NewRedis(c.Redis, constant.SnapshotIdempotencyRedisKey),
		RedSync: c.RedSync,
	}), c.SubmitSnapshot)
	group.Get("/tasks/:taskId", c.GetTaskStatus)
}

// @Summary      Submit a Snapshot
// @Description  Queues one ranking snapshot for ingestion. The response carries a task id whose status can be polled for 24 hours. Resubmitting the same snapshot, or the same `Idempotency-Key`, does not store it twice.
// @Tags         Snapshot
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                        false  "Alphanumeric key of at most 128 characters"
// @Param        snapshot         body      types.SnapshotIngestRequest   true   "Snapshot"
// @Success      202              {object}  types.SnapshotIngestResponse  "Snapshot has been queued"
// @Failure      400              {object}  apperr.Error                  "Invalid request"
// @Failure      500              {object}  apperr.Error                  "An unexpected error occurred"
// @Router       /api/v1/snapshots [POST]
func (c *Snapshot) SubmitSnapshot(ctx *fiber.Ctx) error {
	var request types.SnapshotIngestRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	taskID, err := c.SnapshotService.Submit(ctx.UserContext(), &request, util.IdempotencyKeyFromLocals(ctx))
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(types.SnapshotIngestResponse{TaskID: taskID})
}

// @Summary      Get Snapshot Task Status
// @Tags         Snapshot
// @Produce      json
// @Param        taskId  path      string  true  "Task ID"
// @Success      200     {object}  object  "Status document: taskId, status (pending, done or failed), and snapshotId once stored"
// @Failure      404     {object}  apperr.Error  "Unknown or expired task"
// @Router       /api/v1/snapshots/tasks/{taskId} [GET]
func (c *Snapshot) GetTaskStatus(ctx *fiber.Ctx) error {
	taskID := ctx.Params("taskId")
	if err := rekuest.ValidVar(ctx, taskID, "required,alphanum,max=32"); err != nil {
		return err
	}

	status, err := c.SnapshotService.TaskStatus(ctx.UserContext(), taskID)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(status)
}
