package notification

import (
	"context"
	"strings"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/utils"
)

// AnalyticsPublisher forwards workflow events to PostHog, attributed to the acting user.
type AnalyticsPublisher struct {
	client *utils.PosthogClientWrapper
}

// NewAnalyticsPublisher wraps client. An uninitialized client makes Publish a no-op.
func NewAnalyticsPublisher(client *utils.PosthogClientWrapper) *AnalyticsPublisher {
	return &AnalyticsPublisher{client: client}
}

var _ portssvc.EventPublisher = (*AnalyticsPublisher)(nil)

func (p *AnalyticsPublisher) Publish(_ context.Context, events ...domain.WorkflowEvent) {
	if p.client == nil || !p.client.IsInitialized() {
		return
	}
	for _, evt := range events {
		props := map[string]any{
			"workflow":     string(evt.Type),
			"instance_id":  evt.InstanceID,
			"human_number": evt.HumanNumber,
			"status":       string(evt.Status),
		}
		if evt.Step != nil {
			props["step"] = string(*evt.Step)
		}
		p.client.Enqueue(evt.ActorID, "workflow_"+strings.ToLower(string(evt.Kind)), props)
	}
}

// MultiPublisher fans events out to several publishers in order.
type MultiPublisher []portssvc.EventPublisher

var _ portssvc.EventPublisher = MultiPublisher(nil)

func (m MultiPublisher) Publish(ctx context.Context, events ...domain.WorkflowEvent) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, events...)
		}
	}
}
