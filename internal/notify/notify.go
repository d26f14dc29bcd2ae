// Package notify enqueues best-effort email notifications. Callers never see
// an error: failures are logged and the primary operation stands.
package notify

import (
	"context"
	"sync"
	"time"

	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Notifier is the email collaborator of the auth and mentorship services.
type Notifier interface {
	WelcomeUser(ctx context.Context, user *models.User)
	MentorRequestCreated(ctx context.Context, req *models.MentorRequest, student, alumni *models.User)
	RequestStatusChanged(ctx context.Context, req *models.MentorRequest, student, alumni *models.User)
}

// Enqueuer is the part of *asynq.Client the notifier uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

const enqueueTimeout = 5 * time.Second

// QueueNotifier turns notifications into asynq email tasks. Enqueueing runs
// on its own goroutine so callers never wait on Redis.
type QueueNotifier struct {
	client Enqueuer
	log    *logrus.Entry
	wg     sync.WaitGroup
}

func NewQueueNotifier(client Enqueuer, log *logrus.Logger) *QueueNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QueueNotifier{client: client, log: log.WithField("component", "notifier")}
}

func (n *QueueNotifier) WelcomeUser(ctx context.Context, user *models.User) {
	if user == nil {
		return
	}
	n.enqueue(ctx, tasks.EmailPayload{
		To:       user.Email,
		Template: tasks.TemplateWelcome,
		Data: map[string]string{
			"Name": user.FullName,
			"Role": string(user.Role),
		},
	})
}

func (n *QueueNotifier) MentorRequestCreated(ctx context.Context, req *models.MentorRequest, student, alumni *models.User) {
	if req == nil || student == nil || alumni == nil {
		return
	}
	n.enqueue(ctx, tasks.EmailPayload{
		To:       alumni.Email,
		Template: tasks.TemplateMentorRequest,
		Data: map[string]string{
			"AlumniName":  alumni.FullName,
			"StudentName": student.FullName,
			"Message":     req.Message,
		},
	})
}

func (n *QueueNotifier) RequestStatusChanged(ctx context.Context, req *models.MentorRequest, student, alumni *models.User) {
	if req == nil || student == nil || alumni == nil {
		return
	}
	n.enqueue(ctx, tasks.EmailPayload{
		To:       student.Email,
		Template: tasks.TemplateRequestStatus,
		Data: map[string]string{
			"StudentName": student.FullName,
			"AlumniName":  alumni.FullName,
			"Status":      string(req.Status),
		},
	})
}

func (n *QueueNotifier) enqueue(ctx context.Context, p tasks.EmailPayload) {
	logCtx := n.log.WithFields(logrus.Fields{"template": p.Template, "to": p.To})

	task, err := tasks.NewEmailTask(p)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to build email task")
		return
	}

	// The request context ends with the HTTP response; the enqueue must not.
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
		defer cancel()

		info, err := n.client.EnqueueContext(ctx, task)
		if err != nil {
			logCtx.WithError(err).Error("Failed to enqueue email task")
			return
		}
		logCtx.WithField("task_id", info.ID).Debug("Email task enqueued")
	}()
}

// Wait blocks until every pending enqueue has finished.
func (n *QueueNotifier) Wait() {
	n.wg.Wait()
}

// Nop drops every notification.
type Nop struct{}

func (Nop) WelcomeUser(context.Context, *models.User)                                               {}
func (Nop) MentorRequestCreated(context.Context, *models.MentorRequest, *models.User, *models.User) {}
func (Nop) RequestStatusChanged(context.Context, *models.MentorRequest, *models.User, *models.User) {}
