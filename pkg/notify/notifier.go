// Package notify delivers rated proposals to the installation's chat.
package notify

import (
	"context"

	"github.com/ekaya-inc/proposal-relay/pkg/models"
)

// Notifier announces a saved feedback entry.
type Notifier interface {
	Notify(ctx context.Context, installation models.InstallationConfig, fb models.Feedback) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, models.InstallationConfig, models.Feedback) error {
	return nil
}
