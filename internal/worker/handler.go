package worker

import (
	"context"
	"fmt"

	"mentorlink/backend/internal/localization"
	"mentorlink/backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// EmailDeliveryHandler renders an email task with the catalog and sends it.
type EmailDeliveryHandler struct {
	localizer *localization.Localizer
	mailer    Mailer
	log       *logrus.Entry
}

func NewEmailDeliveryHandler(l *localization.Localizer, m Mailer, logger *logrus.Logger) *EmailDeliveryHandler {
	return &EmailDeliveryHandler{
		localizer: l,
		mailer:    m,
		log:       logger.WithField("component", "email_handler"),
	}
}

// ProcessTask implements asynq.Handler. Malformed payloads and unknown
// templates are not retried.
func (h *EmailDeliveryHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	logCtx := h.log.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
		"max_retry": maxRetry,
	})

	p, err := tasks.ParseEmailPayload(t)
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	lang := p.Lang
	if lang == "" {
		lang = localization.DefaultLang
	}
	subject, err := h.localizer.Render(lang, p.Template+".subject", p.Data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	subject = singleLine(subject)
	body, err := h.localizer.Render(lang, p.Template+".body", p.Data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := h.mailer.Send(ctx, p.To, subject, body); err != nil {
		logCtx.WithError(err).Warn("Email delivery failed")
		return err
	}

	logCtx.WithField("template", p.Template).Info("Email delivered")
	return nil
}
