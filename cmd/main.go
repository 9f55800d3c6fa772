package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"ai-inspector/config"
	telegram "ai-inspector/internal/api"
	"ai-inspector/internal/api/rest"
	"ai-inspector/internal/container"
	"ai-inspector/internal/infrastructure/alert"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [image ...]\n\n"+
			"Without arguments runs the Telegram bot and the REST API.\n"+
			"With image paths inspects them and prints the results.\n", os.Args[0])
	}
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("Failed to parse LOG_LEVEL: %v", err)
	}
	logger.SetLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if flag.NArg() > 0 {
		code := inspectFiles(ctx, cfg, flag.Args(), logger)
		cancel()
		os.Exit(code)
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Fatalf("Service error: %v", err)
	}
}

// inspectFiles проверяет файлы из командной строки и печатает результаты.
func inspectFiles(ctx context.Context, cfg *config.Config, paths []string, logger *logrus.Logger) int {
	c := container.New(ctx, cfg, nil, logger)
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("close container")
		}
	}()

	if status := c.Inspector.Status(); !status.IsReady() {
		fmt.Fprintf(os.Stderr, "AI inspection is disabled: %s\n", status.Reason)
		return 2
	}

	code := 0
	for _, path := range paths {
		res, err := c.Inspector.Inspect(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			code = 1
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%.2f%%\t%s\n",
			path, res.Label, res.DisplayName, res.CategoryCode, res.ConfidencePercent(), res.Backend)
	}
	return code
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if cfg.TelegramToken == "" && cfg.HTTPAddr == "" {
		return errors.New("nothing to run: set TELEGRAM_TOKEN and/or HTTP_ADDR")
	}

	var botAPI *tgbotapi.BotAPI
	var sender alert.Sender
	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		logger.Infof("Authorized on account %s", api.Self.UserName)
		botAPI, sender = api, api
	}

	c := container.New(ctx, cfg, sender, logger)
	defer func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("close container")
		}
	}()

	errCh := make(chan error, 2)

	if botAPI != nil {
		bot := telegram.NewBot(botAPI, c.Operators, c.Inspector, logger)
		go func() {
			logger.Info("Bot is running...")
			errCh <- bot.Run(ctx)
		}()
	}

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = rest.NewServer(cfg.HTTPAddr, rest.NewHandler(c.Inspector, cfg.InspectBaseDir, logger))
		go func() {
			logger.Infof("REST API listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.WithError(serr).Warn("http server shutdown")
		}
	}
	logger.Info("Stopped")
	return err
}
