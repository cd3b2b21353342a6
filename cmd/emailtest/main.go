package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/inspection-idm/pkg/config"
	"github.com/tendant/inspection-idm/pkg/notification"
)

// emailtest renders one of the service notices and sends it through the
// configured SMTP server.
func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	to := flag.String("to", "", "recipient address (required)")
	notice := flag.String("notice", "verification", "verification, reset or credentials")
	dryRun := flag.Bool("dry-run", false, "log the message instead of sending it")
	flag.Parse()

	if *to == "" {
		fmt.Println("Error: -to is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var deliverer notification.Deliverer = notification.LogDeliverer{}
	if !*dryRun {
		deliverer, err = notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			TLS:      cfg.Email.TLS,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
		})
		if err != nil {
			slog.Error("Failed to create mail client", "error", err)
			os.Exit(1)
		}
	}

	mailer, err := notification.NewMailer(deliverer, cfg.Email.From, cfg.Email.LoginURL)
	if err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	link := cfg.Verification.FrontendURL + "/email-test"
	switch *notice {
	case "verification":
		err = mailer.SendVerificationMessage(ctx, *to, link)
	case "reset":
		err = mailer.SendPasswordReset(ctx, *to, link, "1 hour")
	case "credentials":
		err = mailer.SendCredentials(ctx, *to, "example-password")
	default:
		err = fmt.Errorf("unknown notice %q", *notice)
	}
	if err != nil {
		slog.Error("Failed to send email", "to", *to, "notice", *notice, "error", err)
		os.Exit(1)
	}

	fmt.Println("Email sent successfully!")
}
