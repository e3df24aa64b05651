package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbhz/voca/app/api"
	"github.com/rbhz/voca/app/bot"
	"github.com/rbhz/voca/app/clients/naver"
	"github.com/rbhz/voca/app/db"
	"github.com/rbhz/voca/app/resolver"
	"github.com/rbhz/voca/app/source"
	"github.com/rbhz/voca/app/voca"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"
)

type Opts struct {
	BoltDB    string        `long:"boltdb" env:"BOLTDB" default:"./dict.data" description:"Path to BoltDB"`
	RedisURL  string        `long:"redis" env:"REDIS_URL" description:"Redis database URL"`
	NaverURL  string        `long:"naver-url" env:"NAVER_URL" default:"https://en.dict.naver.com/api3/enko/search" description:"Naver dictionary search URL"`
	Timeout   time.Duration `long:"timeout" env:"NAVER_TIMEOUT" default:"10s" description:"Naver request timeout"`
	RPS       float64       `long:"rps" env:"NAVER_RPS" default:"0" description:"Naver requests per second, 0 is unlimited"`
	Debug     bool          `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	PrettyLog bool          `long:"pretty-log" env:"PRETTY_LOG" description:"Human readable logs"`

	Resolve ResolveCommand `command:"resolve" description:"Resolve words from CSV file"`
	Serve   ServeCommand   `command:"serve" description:"Run API server"`
	Bot     BotCommand     `command:"bot" description:"Run Telegram bot"`
}

// app holds state shared by commands
type app struct {
	ctx  context.Context
	opts *Opts
}

type ResolveCommand struct {
	CSV        string `long:"csv" required:"true" description:"CSV file with spelling and meanings columns"`
	SkipFailed bool   `long:"skip-failed" description:"Skip words that failed to resolve instead of stopping"`
	Format     string `long:"format" choice:"json" choice:"yaml" default:"json" description:"Output format"`
	Progress   bool   `long:"progress" description:"Show progress bar"`
	NoStore    bool   `long:"no-store" description:"Do not save resolved words to storage"`

	app *app
}

func (c *ResolveCommand) Execute(args []string) error {
	rows, closeRows, err := source.Open(c.CSV)
	if err != nil {
		return errors.Wrap(err, "failed to open csv")
	}
	defer func() {
		if err := closeRows(); err != nil {
			log.Error().Err(err).Msg("failed to close csv")
		}
	}()

	var options []resolver.Option
	if c.SkipFailed {
		options = append(options, resolver.WithPolicy(resolver.PolicySkip))
	}
	if c.Progress {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("resolving"),
			progressbar.OptionShowCount(),
		)
		defer func() { _ = bar.Finish() }()
		options = append(options, resolver.WithProgress(bar))
	}
	r, err := c.app.resolver(options...)
	if err != nil {
		return err
	}

	dict := voca.NewDictionary()
	stats, err := r.Run(c.app.ctx, rows, dict)
	if err != nil {
		return errors.Wrap(err, "failed to resolve words")
	}
	if stats.Failed > 0 {
		log.Warn().Int("failed", stats.Failed).Msg("some words were skipped")
	}

	if !c.NoStore {
		storage, closeStorage, err := c.app.storage()
		if err != nil {
			return err
		}
		defer closeStorage()
		if err := db.SaveDictionary(storage, dict); err != nil {
			return errors.Wrap(err, "failed to save dictionary")
		}
	}
	return writeDictionary(os.Stdout, dict, c.Format)
}

type ServeCommand struct {
	Port      int     `long:"port" env:"PORT" default:"8080" description:"Port to listen on"`
	JWTSecret string  `long:"jwt-secret" env:"JWT_SECRET" required:"true" description:"JWT secret"`
	TgToken   string  `long:"tg-token" env:"BOT_TOKEN" required:"true" description:"Telegram bot token for login validation"`
	Admins    []int64 `long:"admin" env:"ADMINS" env-delim:"," description:"Telegram user IDs allowed to edit words"`

	app *app
}

func (c *ServeCommand) Execute(args []string) error {
	storage, closeStorage, err := c.app.storage()
	if err != nil {
		return err
	}
	defer closeStorage()

	srv := api.NewServer(storage, c.TgToken, c.JWTSecret, c.Admins)
	log.Info().Int("port", c.Port).Msg("starting API server")
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(c.Port) }()
	select {
	case <-c.app.ctx.Done():
		return nil
	case err := <-errCh:
		return errors.Wrap(err, "failed to run API server")
	}
}

type BotCommand struct {
	BotToken string `long:"bot-token" env:"BOT_TOKEN" required:"true" description:"Telegram bot token"`

	app *app
}

func (c *BotCommand) Execute(args []string) error {
	storage, closeStorage, err := c.app.storage()
	if err != nil {
		return err
	}
	defer closeStorage()

	r, err := c.app.resolver()
	if err != nil {
		return err
	}
	b, err := bot.NewTelegramBot(c.BotToken, storage, r, []bot.Handler{
		bot.StartHandler{},
		bot.WordHandler{},
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize telegram bot")
	}
	b.Start(c.app.ctx)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts Opts
	a := &app{ctx: ctx, opts: &opts}
	opts.Resolve.app = a
	opts.Serve.app = a
	opts.Bot.app = a

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLog(opts.Debug, opts.PrettyLog)
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			fmt.Fprintln(os.Stderr, flagsErr.Message)
			if flagsErr.Type == flags.ErrHelp {
				return
			}
		} else {
			log.Error().Err(err).Msg("command failed")
		}
		stop()
		os.Exit(1)
	}
}

func setupLog(debug, pretty bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
}

func (a *app) resolver(options ...resolver.Option) (*resolver.Resolver, error) {
	client, err := naver.NewClient(naver.Options{
		BaseURL:           a.opts.NaverURL,
		Timeout:           a.opts.Timeout,
		RequestsPerSecond: a.opts.RPS,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create naver client")
	}
	return resolver.NewResolver(client, options...), nil
}

func (a *app) storage() (db.Storage, func(), error) {
	if a.opts.RedisURL != "" {
		redisStorage, err := db.NewRedisStorage(a.opts.RedisURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create redis client")
		}
		return redisStorage, func() {}, nil
	}
	boltDB, err := bolt.Open(a.opts.BoltDB, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create boltDB database")
	}
	boltStorage, err := db.NewBoltStorage(boltDB)
	if err != nil {
		_ = boltDB.Close()
		return nil, nil, errors.Wrap(err, "failed to create bolt storage")
	}
	return boltStorage, func() {
		if err := boltDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close boltDB database")
		}
	}, nil
}

// writeDictionary prints dictionary entries in insertion order
func writeDictionary(w io.Writer, dict *voca.Dictionary, format string) error {
	entries := dict.Entries()
	switch format {
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		_, err = w.Write(data)
		return errors.Wrap(err, "failed to write output")
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(entries), "failed to write output")
	}
}
