package worker

import (
	"context"
	"errors"

	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// WorkerServer wraps the asynq server that processes notification tasks.
type WorkerServer struct {
	server  *asynq.Server
	handler *EmailDeliveryHandler
	log     *logrus.Entry
}

func NewWorkerServer(redisOpt asynq.RedisConnOpt, concurrency int, handler *EmailDeliveryHandler, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				config.EmailQueue: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
			Logger: logEntry,
		},
	)

	return &WorkerServer{server: server, handler: handler, log: logEntry}
}

// Mux routes task types to handlers.
func (ws *WorkerServer) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailDelivery, ws.handler.ProcessTask)
	return mux
}

// Start begins processing in the background and returns. Signal handling
// belongs to the caller, which stops the server with Shutdown.
func (ws *WorkerServer) Start() error {
	ws.log.Info("Worker server starting...")
	if err := ws.server.Start(ws.Mux()); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
