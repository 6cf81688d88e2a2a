package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iamwavecut/tool"
	"github.com/mattn/go-isatty"
	"github.com/mr-linch/go-tg"
	"github.com/mr-linch/go-tg/tgb"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/telegram-motivation-bot/internal/config"
	"github.com/iamwavecut/telegram-motivation-bot/internal/delivery"
	"github.com/iamwavecut/telegram-motivation-bot/internal/handlers"
	"github.com/iamwavecut/telegram-motivation-bot/internal/infra"
	"github.com/iamwavecut/telegram-motivation-bot/internal/jobqueue"
	"github.com/iamwavecut/telegram-motivation-bot/internal/netx"
	"github.com/iamwavecut/telegram-motivation-bot/internal/onboarding"
	"github.com/iamwavecut/telegram-motivation-bot/internal/phrase"
	"github.com/iamwavecut/telegram-motivation-bot/internal/scheduler"
	"github.com/iamwavecut/telegram-motivation-bot/internal/store"
	"github.com/iamwavecut/telegram-motivation-bot/resources/consts"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Get()
	log.SetFormatter(&config.LogFormatter{NoColors: !isatty.IsTerminal(os.Stderr.Fd())})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- run(ctx, cfg)
	}()

	select {
	case err := <-errs:
		if err != nil {
			log.WithError(err).Errorln("bot stopped")
			cancel()
			os.Exit(1)
		}
	case <-infra.WatchExecutable(ctx):
		log.Errorln("executable file was modified")
		cancel()
		os.Exit(0)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	flow, err := setupFlow(cfg.SetupMode)
	if err != nil {
		return err
	}
	st := store.NewFileStore(cfg.ConfigFile)

	rec, ok := loadRecord(st)
	if !ok {
		return runSetup(ctx, cfg, st, flow)
	}
	return runWorking(ctx, cfg, st, rec)
}

// loadRecord treats an unreadable configuration the same as a missing one.
func loadRecord(st store.Store) (*store.Record, bool) {
	rec, err := st.Load()
	if err != nil {
		if !errors.Is(err, store.ErrNotConfigured) {
			log.WithError(err).Warn("configuration is unreadable, treating it as absent")
		}
		return nil, false
	}
	return rec, true
}

func setupFlow(mode string) (onboarding.Flow, error) {
	switch mode {
	case config.SetupModeDialog:
		return onboarding.DialogFlow(), nil
	case config.SetupModeStart:
		return onboarding.StartFlow(), nil
	default:
		return onboarding.Flow{}, fmt.Errorf("unknown SETUP_MODE %q", mode)
	}
}

// runSetup serves onboarding only. Nothing is scheduled until the process is
// restarted with a saved configuration.
func runSetup(ctx context.Context, cfg config.Config, st store.Store, flow onboarding.Flow) error {
	token := cfg.TelegramAPIToken
	if cfg.SetupMode == config.SetupModeDialog {
		token = tool.NonZero(token, cfg.PlaceholderToken)
	}
	if token == "" {
		return errors.New("BOT_TOKEN is required in start setup mode")
	}
	client, err := newClient(token, cfg.ProxyURL)
	if err != nil {
		return err
	}

	dialog := onboarding.New(flow, st)
	router := tgb.NewRouter().
		Message(
			handlers.Start(dialog),
			tgb.Command("start"),
			tgb.ChatType(tg.ChatTypePrivate),
		).
		Message(
			handlers.Cancel(dialog),
			tgb.Command("cancel"),
			tgb.ChatType(tg.ChatTypePrivate),
		).
		Message(
			handlers.Reply(dialog),
			tgb.ChatType(tg.ChatTypePrivate),
		)

	log.WithField("config_file", cfg.ConfigFile).Warn("configuration not found, running in setup mode, send /start to begin")
	return poll(ctx, router, client)
}

func runWorking(ctx context.Context, cfg config.Config, st store.Store, rec *store.Record) error {
	token := tool.NonZero(rec.TelegramToken, cfg.TelegramAPIToken)
	if token == "" {
		return errors.New("telegram token is missing in both configuration and BOT_TOKEN")
	}
	proxyURL := tool.NonZero(rec.Proxy(), cfg.ProxyURL)
	client, err := newClient(token, proxyURL)
	if err != nil {
		return err
	}

	me, err := client.GetMe().Do(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	log.WithField("bot", me.Username.PeerID()).Info("configuration found, running in working mode")

	factory, err := phrase.NewFactory(cfg.PhraseProvider, cfg.Model())
	if err != nil {
		return err
	}
	job := delivery.NewJob(st, phrase.NewGenerator(factory), delivery.NewTelegramSender(client), cfg.APIKey())

	queue := jobqueue.New(consts.IntJobQueueSize)
	go queue.Run(ctx)

	sched := scheduler.New(queue, job.Run)
	clock := tool.NonZero(rec.ScheduleTime, cfg.ScheduleTime)
	if err := sched.Start(clock); err != nil {
		log.WithError(err).Warnf("using default schedule time %s", consts.DefaultScheduleTime)
		if err := sched.Start(consts.DefaultScheduleTime); err != nil {
			return err
		}
	}
	defer sched.Stop()
	log.WithField("next", sched.Next().Format("2006-01-02 15:04")).Info("next delivery")

	router := tgb.NewRouter()
	if cfg.SetupMode == config.SetupModeStart {
		router.Message(
			handlers.Start(onboarding.New(onboarding.StartFlow(), st)),
			tgb.Command("start"),
			tgb.ChatType(tg.ChatTypePrivate),
		)
	}
	return poll(ctx, router, client)
}

func newClient(token, proxyURL string) (*tg.Client, error) {
	httpClient, err := netx.NewHTTPClient(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("telegram http client: %w", err)
	}
	if proxyURL != "" {
		log.Info("telegram traffic goes through the configured proxy")
	}
	return tg.New(token, tg.WithClientDoer(httpClient)), nil
}

func poll(ctx context.Context, router *tgb.Router, client *tg.Client) error {
	return tgb.NewPoller(
		router,
		client,
		tgb.WithPollerRetryAfter(consts.DurationPollerRetryAfter),
	).Run(ctx)
}
