package services

import (
	"errors"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/logging"
)

// Messages returned to the webhook sender. Trello integrations match on them.
const (
	MsgWebhookIDNotFound = "Webhook id not found!"
	MsgTokenNotFound     = "Token not found in remote db!"
)

// classify wraps err with kind unless it is already classified. The message
// is sanitized because it ends up in the response envelope.
func classify(kind apperrors.Kind, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := apperrors.Wrap(kind, err)
	wrapped.Message = logging.SanitizeError(err)
	return wrapped
}

// describe returns the err_description for a failed event.
func describe(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return logging.SanitizeError(err)
}
