package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
)

var issueFlags struct {
	webhookID   string
	trelloKey   string
	trelloToken string
	botToken    string
	chatID      string
}

var installationCmd = &cobra.Command{
	Use:   "installation",
	Short: "Manage installation tokens",
}

var installationIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign an installation config and store it under a webhook id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		codec, err := crypto.NewTokenCodec(cfg.SecretKey)
		if err != nil {
			return err
		}

		token, err := codec.EncodeInstallation(models.InstallationConfig{
			TrelloAPIKey:   issueFlags.trelloKey,
			TrelloAPIToken: issueFlags.trelloToken,
			BotToken:       issueFlags.botToken,
			ChatID:         issueFlags.chatID,
		})
		if err != nil {
			return err
		}

		stores, err := repositories.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer stores.Close()

		if err := stores.Installations.PutToken(cmd.Context(), issueFlags.webhookID, token); err != nil {
			return fmt.Errorf("failed to store installation: %w", err)
		}

		logger.Info("Installation stored",
			zap.String("webhook_id", issueFlags.webhookID),
			zap.Bool("notifications", issueFlags.botToken != "" && issueFlags.chatID != ""))
		return nil
	},
}

func init() {
	f := installationIssueCmd.Flags()
	f.StringVar(&issueFlags.webhookID, "webhook-id", "", "Trello webhook id (required)")
	f.StringVar(&issueFlags.trelloKey, "trello-key", "", "Trello API key (required)")
	f.StringVar(&issueFlags.trelloToken, "trello-token", "", "Trello API token (required)")
	f.StringVar(&issueFlags.botToken, "bot-token", "", "Telegram bot token for notifications")
	f.StringVar(&issueFlags.chatID, "chat-id", "", "Telegram chat id for notifications")
	for _, name := range []string{"webhook-id", "trello-key", "trello-token"} {
		_ = installationIssueCmd.MarkFlagRequired(name)
	}

	installationCmd.AddCommand(installationIssueCmd)
}
