// Command portal-watch restores the saved client session, polls the
// unread notification count and prints the badge whenever it changes.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/config"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/logger"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/ltaportal/procurement/pkg/localstore"
	"github.com/ltaportal/procurement/pkg/portal"
	"github.com/ltaportal/procurement/pkg/querycache"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var _ portal.Store = (*localstore.Store)(nil)

type watchConfig struct {
	BaseURL      string
	Token        string
	StatePath    string
	Language     string
	PollInterval time.Duration
	Log          config.LogConfig
}

func loadConfig() watchConfig {
	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetDefault("URL", "http://localhost:8080")
	v.SetDefault("STATE", "portal-state.db")
	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	return watchConfig{
		BaseURL:      v.GetString("URL"),
		Token:        v.GetString("TOKEN"),
		StatePath:    v.GetString("STATE"),
		Language:     v.GetString("LANG"),
		PollInterval: v.GetDuration("POLL_INTERVAL"),
		Log: config.LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	zapLogger, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger, os.Stdout); err != nil {
		zapLogger.Fatal("portal-watch failed", zap.Error(err))
	}
}

// run watches until ctx is done, then saves the session.
func run(ctx context.Context, cfg watchConfig, logger *zap.Logger, out io.Writer) error {
	store, err := localstore.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := querycache.New(querycache.WithLogger(logger))
	session, err := portal.RestoreSession(ctx, store, cache, logger)
	if err != nil {
		return err
	}
	if cfg.Language != "" {
		if err := session.SetLanguage(ctx, portal.ParseLanguage(cfg.Language)); err != nil {
			return err
		}
	}

	client := apiclient.New(cfg.BaseURL)
	client.Token = cfg.Token
	client.Language = string(session.Language())

	toasts := portal.NewToasts(portal.LogToaster{Logger: logger}, session.Locale)
	notifications := portal.NewNotifications(client, cache, toasts)
	visibility := portal.NewVisibility(true)
	badge := newBadgePrinter(out, session.Locale)

	poller := portal.NewUnreadPoller(notifications, visibility, logger,
		portal.WithPollInterval(cfg.PollInterval),
		portal.WithOnUpdate(badge.update))

	stopGC := cache.StartGC(ctx, time.Minute)
	stopToggle := watchVisibility(ctx, visibility, logger)
	handle := poller.Start(ctx)
	logger.Info("watching unread notifications",
		zap.String("url", cfg.BaseURL),
		zap.Duration("interval", cfg.PollInterval),
		zap.String("language", string(session.Language())))

	<-ctx.Done()
	handle.Stop()
	stopToggle()
	stopGC()

	if err := session.Persist(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	logger.Info("session saved", zap.String("path", cfg.StatePath))
	return nil
}

type badgePrinter struct {
	mu     sync.Mutex
	out    io.Writer
	locale *portal.Locale
	last   string
	shown  bool
}

func newBadgePrinter(out io.Writer, locale *portal.Locale) *badgePrinter {
	return &badgePrinter{out: out, locale: locale}
}

func (b *badgePrinter) update(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := portal.FormatBadge(count)
	if b.shown && text == b.last {
		return
	}
	b.last, b.shown = text, true
	if text == "" {
		fmt.Fprintln(b.out, noUnread[b.locale.Language()])
		return
	}
	fmt.Fprintf(b.out, "%s [%s]\n", unreadLabel[b.locale.Language()], text)
}

var (
	noUnread = map[portal.Language]string{
		portal.English: "No unread notifications",
		portal.Arabic:  "لا توجد إشعارات غير مقروءة",
	}
	unreadLabel = map[portal.Language]string{
		portal.English: "Unread notifications",
		portal.Arabic:  "إشعارات غير مقروءة",
	}
)
