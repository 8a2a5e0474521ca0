package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/config"
	"github.com/garyjia/hrone-autopunch/internal/container"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"github.com/garyjia/hrone-autopunch/internal/notification"
)

// Isolated test for alert delivery.
// Sends every alert kind to a webhook (and the Lark mirror when configured)
// without touching HROne or the database.

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	webhook := flag.String("webhook", "", "Webhook URL (default alert.default_webhook)")
	username := flag.String("username", "test.user", "Username shown in the alerts")
	kind := flag.String("kind", "all", "Alert to send: failure, skipped, in, out or all")
	flag.Parse()

	fmt.Println("=== Alert Notification Test ===")
	fmt.Println("This tool sends sample alerts through the configured channels")
	fmt.Println()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	notifier := container.ProvideNotifier(&cfg.Alert, &cfg.Lark, logger)
	account := &entity.Account{Username: *username, WebhookURL: *webhook}

	target := notifier.Target(account)
	if target == "" && !cfg.Lark.Enabled() {
		log.Fatalf("No alert channel configured: pass -webhook, set ALERT_WEBHOOK or configure lark")
	}
	fmt.Printf("Webhook: %s\n", mask(target))
	fmt.Printf("Lark mirror: %v\n", cfg.Lark.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	punchTime := time.Now().Format("2006-01-02T15:04")
	steps := []struct {
		name string
		send func() error
	}{
		{"failure", func() error {
			return notifier.Failure(ctx, account, "This is a test failure alert")
		}},
		{"skipped", func() error {
			return notifier.Skipped(ctx, account, "This is a test skip notice")
		}},
		{"in", func() error {
			return notifier.Punched(ctx, account, decision.DirectionIn, punchTime)
		}},
		{"out", func() error {
			return notifier.Punched(ctx, account, decision.DirectionOut, punchTime)
		}},
	}

	sent := 0
	for i, step := range steps {
		if *kind != "all" && *kind != step.name {
			continue
		}
		fmt.Printf("\n[Step %d] Sending %s alert...\n", i+1, step.name)
		if err := step.send(); err != nil {
			log.Fatalf("Failed to send %s alert: %v", step.name, err)
		}
		fmt.Printf("✓ %s alert sent\n", step.name)
		sent++
	}

	if sent == 0 {
		log.Fatalf("Unknown -kind %q", *kind)
	}

	fmt.Println("\n=== Test Complete ===")
	fmt.Printf("Colours: failure=%06x skipped=%06x in=%06x out=%06x\n",
		notification.ColorFailure, notification.ColorSkip, notification.ColorCheckIn, notification.ColorCheckOut)
}

func mask(url string) string {
	if url == "" {
		return "(none)"
	}
	if len(url) <= 24 {
		return url
	}
	return url[:16] + "..." + url[len(url)-4:]
}
