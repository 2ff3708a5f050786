package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/config"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/form"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/mealapi"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/notify"
	"github.com/Lixing-Zhang/meal-tracker/client/pkg/logger"
)

const usage = `usage: mealctl [-config file] <command> [arguments]

commands:
  list      load meals and print the ones matching the filters
  browse    load and filter meals interactively
  save      create or update a meal from a draft file
  export    write a stored meal as a draft file
  delete    delete a meal
  fake-api  serve an in-memory meals API for local use
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mealctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("mealctl", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "", "config file (default ./mealctl.yml)")
	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	// Load configuration from file and environment
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log, stdin, stdout)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

// app holds what every command needs
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	client   *mealapi.Client
	notifier notify.Notifier
	in       io.Reader
	out      io.Writer
}

func newApp(cfg *config.Config, log *slog.Logger, in io.Reader, out io.Writer) (*app, error) {
	client, err := mealapi.NewClient(cfg.API.BaseURL,
		mealapi.WithTimeout(cfg.API.RequestTimeout()),
		mealapi.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		notifier: notify.Multi(notify.NewWriterNotifier(out), notify.NewLogNotifier(log)),
		in:       in,
		out:      out,
	}, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.list(ctx, args)
	case "browse":
		return a.browse(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "fake-api":
		return a.fakeAPI(ctx, args)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *app) submitter() (*form.Submitter, error) {
	policy, err := form.ParseRatingPolicy(a.cfg.Form.RatingPolicy)
	if err != nil {
		return nil, err
	}

	cfg := form.SubmitterConfig{
		Options:       form.Options{RatingPolicy: policy},
		RedirectDelay: a.cfg.Form.RedirectDelay(),
		ListingPath:   a.cfg.Form.ListingPath,
	}
	return form.NewSubmitter(a.client, a.notifier, form.NavigatorFunc(a.navigate), cfg, a.log), nil
}

// navigate ends a save or delete by pointing the user back at the listing
func (a *app) navigate(ctx context.Context, path string) error {
	_, err := fmt.Fprintf(a.out, "Back to %s: run `mealctl list` to see all meals\n", path)
	return err
}
