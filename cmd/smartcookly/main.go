package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ahmedmed7t/smartcookly/internal/config"
	"github.com/ahmedmed7t/smartcookly/internal/conversation"
	"github.com/ahmedmed7t/smartcookly/internal/display"
	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/engine"
	"github.com/ahmedmed7t/smartcookly/internal/gpt"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
	"github.com/ahmedmed7t/smartcookly/internal/recipe"
	"github.com/ahmedmed7t/smartcookly/internal/sound"
	"github.com/ahmedmed7t/smartcookly/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Direct logs to a file by default so the prompt stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libraries that use the standard log package write to
	// the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel(), logOut)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	catalog := recipe.NewCatalog(log.With("recipes"))

	// Steps come from the chat service when configured, otherwise from the
	// built-in catalog.
	var provider domain.StepProvider = catalog
	var classifier domain.CommandParser
	if cfg.AIEnabled() {
		client := gpt.NewClient(cfg.APIKey, log.With("gpt"),
			gpt.WithModel(cfg.Model),
			gpt.WithHTTPTimeout(cfg.Timeout),
			gpt.WithBaseURL(cfg.BaseURL),
		)
		provider = gpt.NewStepGenerator(client, log.With("gpt"))
		classifier = gpt.NewClassifier(client, log.With("gpt"))
		log.Info("AI steps enabled (model=%s)", client.Model())
	} else if !cfg.NoAI {
		log.Info("AI steps disabled: set OPENAI_API_KEY to enable")
	}

	favorites, closeFavorites := openFavorites(cfg, log)
	defer closeFavorites()

	cache := storage.NewMemoryStepCache(log.With("cache"))
	resolver := engine.NewResolver(cache, provider, log.With("resolver"))
	parser := conversation.NewFallbackParser(conversation.NewKeywordParser(log), classifier, log)

	// Pick what to cook before the UI takes over the terminal.
	start, err := startupChoice(ctx, cfg, catalog, favorites)
	if errors.Is(err, display.ErrPickerCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	var (
		out   printer
		lines <-chan string
		ui    *display.UI
	)
	if cfg.Plain {
		out = &plainOutput{w: os.Stdout}
		lines = readLines(ctx, os.Stdin)
	}

	// The notifier prints through whichever surface is active; resolve it
	// lazily because the UI is created after the controller.
	var notifyOut conversation.PrintFunc = func(format string, a ...interface{}) {
		out.Printf(format, a...)
	}
	notifier := conversation.MultiNotifier{conversation.NewCLINotifier(log, notifyOut)}
	if !cfg.NoSound {
		if player, err := sound.NewPlayer(log.With("sound")); err != nil {
			log.Warn("audio unavailable, timer chime disabled: %v", err)
		} else {
			notifier = append(notifier, sound.NewChimeNotifier(player, log.With("sound")))
		}
	}

	ctrl := engine.NewController(resolver, log.With("session"),
		engine.WithNotifier(notifier),
		engine.WithFavorites(favorites),
		engine.WithTickInterval(cfg.Tick),
	)
	defer ctrl.Close()
	log.Info("session %s started", ctrl.ID())

	if !cfg.Plain {
		ui = display.NewUI(ctrl)
		out = ui
		lines = ui.InputChan()
	}

	if cfg.Prefetch {
		go func() {
			if err := resolver.Warm(ctx, catalog.Refs()...); err != nil {
				log.Warn("prefetch: %v", err)
			}
		}()
	}

	app := &cliApp{
		ctrl:      ctrl,
		parser:    parser,
		catalog:   catalog,
		favorites: favorites,
		out:       out,
		log:       log,
	}

	fmt.Println(display.RenderBanner("Type 'help' for commands, 'quit' to exit."))

	if cfg.Plain {
		start(app)
		app.run(ctx, lines)
		return nil
	}

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		start(app)
		app.run(ctx, lines)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// openFavorites opens the SQLite store, falling back to memory when the
// path is empty or the database can't be opened.
func openFavorites(cfg *config.Config, log *logger.Logger) (domain.FavoritesStore, func()) {
	if cfg.DB == "" {
		return storage.NewMemoryFavorites(log.With("favorites")), func() {}
	}
	db, err := storage.NewSQLiteFavorites(cfg.DB, log.With("favorites"))
	if err != nil {
		log.Warn("favorites database unavailable, keeping favorites in memory: %v", err)
		return storage.NewMemoryFavorites(log.With("favorites")), func() {}
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Warn("closing favorites database: %v", err)
		}
	}
}

// startupChoice decides what opens first: the --recipe flag, or the
// picker. The returned func runs once the output surface is live.
func startupChoice(ctx context.Context, cfg *config.Config, catalog *recipe.Catalog, favorites domain.FavoritesStore) (func(*cliApp), error) {
	if cfg.Recipe != "" {
		name, ingredients := cfg.Recipe, cfg.Ingredients()
		return func(a *cliApp) { a.open(ctx, name, ingredients) }, nil
	}

	summaries, err := catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	favs, err := favorites.List(ctx)
	if err != nil {
		favs = nil
	}

	choice, err := display.PickRecipe(summaries, favs, cfg.Plain)
	if err != nil {
		return nil, err
	}

	switch {
	case choice.Favorite != "":
		return func(a *cliApp) {
			st, err := a.ctrl.OpenFavorite(ctx, choice.Favorite)
			if err != nil {
				a.log.Error("opening favorite: %v", err)
				a.out.PrintUrgent("Couldn't open that favorite.")
				return
			}
			a.show(st)
		}, nil
	case choice.Custom != nil:
		ref := *choice.Custom
		return func(a *cliApp) { a.open(ctx, ref.Name, ref.Ingredients) }, nil
	default:
		r, err := catalog.Get(ctx, choice.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("loading recipe %s: %w", choice.RecipeID, err)
		}
		return func(a *cliApp) { a.open(ctx, r.Name, r.Ingredients) }, nil
	}
}

// readLines forwards stdin lines until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for {
			fmt.Print("cook> ")
			if !scanner.Scan() {
				return
			}
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
