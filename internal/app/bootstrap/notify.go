package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/leadcapture-api/internal/config"
	"github.com/wolfman30/leadcapture-api/internal/leads"
	"github.com/wolfman30/leadcapture-api/internal/notify"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// BuildEmailSender picks the email provider. With EMAIL_PROVIDER=auto,
// SendGrid wins when an API key is set, then SES when AWS config is
// available, then the stub.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	sendgrid := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	ses := func() notify.EmailSender {
		if awsCfg == nil || cfg.SendGridFromEmail == "" {
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = sendgrid()
	case "ses":
		sender = ses()
	case "stub":
	default:
		if sender = sendgrid(); sender == nil {
			sender = ses()
		}
	}
	if sender == nil {
		logger.Info("email provider not configured; using stub sender", "provider", cfg.EmailProvider)
		return notify.NewStubEmailSender(logger)
	}
	return sender
}

// BuildLeadNotifier returns nil when no sales inbox is configured so the
// service skips notifications entirely.
func BuildLeadNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) leads.Notifier {
	if cfg == nil {
		return nil
	}
	alerter := notify.NewLeadAlerter(sender, cfg.SalesNotifyEmail, logger)
	if alerter == nil {
		return nil
	}
	return alerter
}
