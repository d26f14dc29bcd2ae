package tasks

import (
	"encoding/json"
	"fmt"

	"mentorlink/backend/internal/config"

	"github.com/hibiken/asynq"
)

const (
	TypeEmailDelivery = "email:deliver"
)

// Email templates known to the catalog.
const (
	TemplateWelcome       = "welcome"
	TemplateMentorRequest = "mentor_request"
	TemplateRequestStatus = "request_status"
)

// EmailPayload is what the worker needs to render and send one email.
type EmailPayload struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Lang     string            `json:"lang,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// NewEmailTask builds an email delivery task on the notifications queue.
func NewEmailTask(p EmailPayload) (*asynq.Task, error) {
	if p.To == "" || p.Template == "" {
		return nil, fmt.Errorf("tasks: email payload needs a recipient and a template")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, payload,
		asynq.Queue(config.EmailQueue),
		asynq.MaxRetry(config.EmailMaxRetry),
		asynq.Timeout(config.EmailTaskTimeout),
	), nil
}

func ParseEmailPayload(t *asynq.Task) (EmailPayload, error) {
	var p EmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("tasks: decode %s payload: %w", t.Type(), err)
	}
	return p, nil
}
