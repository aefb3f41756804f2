package models

import "github.com/ekaya-inc/proposal-relay/pkg/jsonutil"

// InstallationConfig holds the credentials stored for one Trello webhook
// installation. It is issued outside the relay and only read here.
type InstallationConfig struct {
	TrelloAPIKey   string `json:"trello_api_key"`
	TrelloAPIToken string `json:"trello_api_token"`

	// Optional notification credentials.
	BotToken string `json:"bot_token,omitempty"`
	ChatID   string `json:"chat_id,omitempty"`
}

// HasNotificationTarget reports whether both bot credentials are set.
func (c InstallationConfig) HasNotificationTarget() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// Claims returns the token claims for the installation.
func (c InstallationConfig) Claims() map[string]any {
	claims := map[string]any{
		"trello_api_key":   c.TrelloAPIKey,
		"trello_api_token": c.TrelloAPIToken,
	}
	if c.BotToken != "" {
		claims["bot_token"] = c.BotToken
	}
	if c.ChatID != "" {
		claims["chat_id"] = c.ChatID
	}
	return claims
}

// InstallationConfigFromClaims reads an installation from decoded claims.
// Numeric chat ids are accepted and rendered as strings.
func InstallationConfigFromClaims(claims map[string]any) InstallationConfig {
	return InstallationConfig{
		TrelloAPIKey:   jsonutil.StringOf(claims["trello_api_key"]),
		TrelloAPIToken: jsonutil.StringOf(claims["trello_api_token"]),
		BotToken:       jsonutil.StringOf(claims["bot_token"]),
		ChatID:         jsonutil.StringOf(claims["chat_id"]),
	}
}
