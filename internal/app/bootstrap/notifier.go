package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/internal/notify"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// BuildNotifier assembles the lead notification channels: the form relay and,
// when EMAIL_PROVIDER selects one, an email channel. It returns the notifier
// and the names of the enabled channels. A nil client means http.DefaultClient;
// the relay sets no timeout of its own.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, client notify.HTTPDoer, logger *logging.Logger) (notify.Notifier, []string) {
	if logger == nil {
		logger = logging.Default()
	}

	var channels notify.Multi
	var names []string
	if relay := notify.NewFormRelay(cfg.FormRelayURL, client, logger); relay != nil {
		channels = append(channels, relay)
		names = append(names, "form_relay")
	}

	if sender, name := buildEmailSender(cfg, awsCfg, logger); sender != nil {
		to := strings.TrimSpace(cfg.NotifyEmailTo)
		if to == "" {
			logger.Warn("email provider configured without NOTIFY_EMAIL_TO, email channel disabled", "provider", name)
		} else {
			channels = append(channels, notify.NewEmailNotifier(sender, to))
			names = append(names, "email_"+name)
		}
	}

	switch len(channels) {
	case 0:
		logger.Warn("no lead notification channel configured")
		return nil, nil
	case 1:
		return channels[0], names
	default:
		return channels, names
	}
}

func buildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty")
			return nil, ""
		}
		return sender, "sendgrid"
	case "ses":
		if awsCfg == nil {
			logger.Warn("EMAIL_PROVIDER=ses but AWS config unavailable")
			return nil, ""
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger), "ses"
	case "stub", "log":
		return notify.NewStubEmailSender(logger), "stub"
	default:
		return nil, ""
	}
}
