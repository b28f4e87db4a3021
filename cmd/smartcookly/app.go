package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/ahmedmed7t/smartcookly/internal/display"
	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/engine"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
	"github.com/ahmedmed7t/smartcookly/internal/recipe"
	"github.com/ahmedmed7t/smartcookly/internal/timer"
)

// printer is the output surface of the app. *display.UI implements it;
// plainOutput is the line-mode fallback.
type printer interface {
	PrintChat(text string)
	PrintStep(text string)
	PrintInstruction(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	Printf(format string, a ...interface{})
}

var _ printer = (*display.UI)(nil)

var (
	// cookPattern matches "cook <recipe>" with an optional "with a, b" list.
	cookPattern   = regexp.MustCompile(`(?i)^(?:cook|make|open)\s+(.+?)(?:\s+with\s+(.+))?$`)
	searchPattern = regexp.MustCompile(`(?i)^(?:search|find)\s+(.+)$`)
	forgetPattern = regexp.MustCompile(`(?i)^(?:forget|unfav|unfavorite)\s+(.+)$`)
)

type cliApp struct {
	ctrl      *engine.Controller
	parser    domain.CommandParser
	catalog   *recipe.Catalog
	favorites domain.FavoritesStore
	out       printer
	log       *logger.Logger
}

// run reads input lines until ctx is done, the channel closes or the user
// quits.
func (a *cliApp) run(ctx context.Context, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := a.handle(ctx, line); quit {
				return
			}
		}
	}
}

// handle processes one input line. Returns true when the user quits.
func (a *cliApp) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if a.handleAppCommand(ctx, line) {
		return false
	}

	cmd, err := a.parser.Parse(ctx, line)
	if err != nil {
		a.log.Error("parsing input: %v", err)
		a.out.PrintUrgent("Sorry, something went wrong reading that.")
		return false
	}
	a.log.Debug("command: %s (raw=%q)", cmd.Type, cmd.Raw)

	switch cmd.Type {
	case domain.CmdQuit:
		a.out.PrintChat("Bye! Happy cooking.")
		return true
	case domain.CmdHelp:
		a.showHelp()
	case domain.CmdStatus:
		a.show(a.ctrl.State())
	case domain.CmdRetry:
		if _, ok := a.ctrl.State().(domain.Failed); !ok {
			a.out.PrintHint("Nothing to retry.")
			return false
		}
		a.show(a.ctrl.Retry(ctx))
	case domain.CmdFavorite:
		a.saveFavorite(ctx)
	case domain.CmdNext, domain.CmdPrevious, domain.CmdFinish:
		a.navigate(cmd.Type)
	case domain.CmdStartTimer, domain.CmdPauseTimer, domain.CmdResumeTimer, domain.CmdResetTimer:
		a.timerCommand(cmd.Type)
	default:
		a.out.PrintHint("Sorry, I didn't get that. Type 'help' to see what I understand.")
	}
	return false
}

// handleAppCommand handles commands that pick what to cook. They live
// outside the session so they work in every state.
func (a *cliApp) handleAppCommand(ctx context.Context, line string) bool {
	switch strings.ToLower(line) {
	case "recipes", "menu", "list":
		a.showRecipes(ctx)
		return true
	case "favorites", "favourites", "favs":
		a.showFavorites(ctx)
		return true
	case "clear cache", "reset cache":
		a.ctrl.ClearCache()
		a.out.PrintChat("Cleared remembered steps. Recipes will be fetched fresh next time.")
		return true
	}

	if m := searchPattern.FindStringSubmatch(line); m != nil {
		a.search(ctx, strings.TrimSpace(m[1]))
		return true
	}
	if m := forgetPattern.FindStringSubmatch(line); m != nil {
		a.forget(ctx, strings.TrimSpace(m[1]))
		return true
	}
	if m := cookPattern.FindStringSubmatch(line); m != nil {
		a.open(ctx, strings.TrimSpace(m[1]), display.SplitIngredients(m[2]))
		return true
	}
	return false
}

// open resolves name against favorites, then the catalog, then treats it
// as a free-form recipe.
func (a *cliApp) open(ctx context.Context, name string, ingredients []string) {
	if len(ingredients) == 0 {
		if fav := a.findFavorite(ctx, name); fav != nil {
			st, err := a.ctrl.OpenFavorite(ctx, fav.Signature)
			if err == nil {
				a.out.PrintChat(fmt.Sprintf("Opening your favorite %s.", fav.RecipeName))
				a.show(st)
				return
			}
			a.log.Warn("opening favorite %s: %v", fav.Signature, err)
		}
		if r, err := a.catalog.FindByName(ctx, name); err == nil {
			name, ingredients = r.Name, r.Ingredients
		}
	}

	a.out.PrintChat(fmt.Sprintf("Getting the steps for %s...", name))
	a.show(a.ctrl.Open(ctx, name, ingredients))
}

func (a *cliApp) findFavorite(ctx context.Context, name string) *domain.Favorite {
	if a.favorites == nil {
		return nil
	}
	favs, err := a.favorites.List(ctx)
	if err != nil {
		a.log.Warn("listing favorites: %v", err)
		return nil
	}
	for _, f := range favs {
		if strings.EqualFold(f.RecipeName, name) {
			return f
		}
	}
	return nil
}

func (a *cliApp) navigate(cmd domain.CommandType) {
	r, ok := a.ctrl.State().(domain.Ready)
	if !ok {
		a.notCooking()
		return
	}

	var st domain.SessionState
	switch cmd {
	case domain.CmdPrevious:
		if r.IsFirst() {
			a.out.PrintHint("Already on the first step.")
			return
		}
		st = a.ctrl.Previous()
	case domain.CmdFinish:
		if !r.IsLast() {
			a.out.PrintHint(fmt.Sprintf("Finish is for the last step. You're on step %d of %d.", r.Index+1, len(r.Steps)))
			return
		}
		st = a.ctrl.Finish()
	default:
		st = a.ctrl.Next()
	}
	a.show(st)
}

func (a *cliApp) timerCommand(cmd domain.CommandType) {
	r, ok := a.ctrl.State().(domain.Ready)
	if !ok {
		a.notCooking()
		return
	}
	step, _ := r.CurrentStep()

	switch cmd {
	case domain.CmdStartTimer:
		if !step.HasTimer() {
			a.out.PrintHint("This step has no timer.")
			return
		}
		a.ctrl.StartTimer()
		a.out.PrintChat(fmt.Sprintf("Timer started: %s.", timer.FormatRemaining(step.TimeMinutes*60)))
	case domain.CmdPauseTimer:
		if !r.Timer.Running {
			a.out.PrintHint("No timer is running.")
			return
		}
		st := a.ctrl.PauseTimer()
		a.printTimer(st, "Timer paused")
	case domain.CmdResumeTimer:
		if r.Timer.Running || r.Timer.RemainingSeconds == 0 {
			a.out.PrintHint("No paused timer to resume.")
			return
		}
		st := a.ctrl.ResumeTimer()
		a.printTimer(st, "Timer resumed")
	case domain.CmdResetTimer:
		a.ctrl.ResetTimer()
		a.out.PrintHint("Timer cleared.")
	}
}

func (a *cliApp) printTimer(st domain.SessionState, label string) {
	if r, ok := st.(domain.Ready); ok {
		a.out.PrintChat(fmt.Sprintf("%s, %s left.", label, timer.FormatRemaining(r.Timer.RemainingSeconds)))
	}
}

func (a *cliApp) saveFavorite(ctx context.Context) {
	err := a.ctrl.SaveFavorite(ctx)
	switch {
	case err == nil:
		a.out.PrintChat("Saved to your favorites. Type 'favorites' to see them.")
	case errors.Is(err, domain.ErrNoSteps):
		a.out.PrintHint("Open a recipe first, then save it.")
	case errors.Is(err, engine.ErrNoFavorites):
		a.out.PrintHint("Favorites are not available in this session.")
	default:
		a.log.Error("saving favorite: %v", err)
		a.out.PrintUrgent("Couldn't save this recipe.")
	}
}

// show prints a state the way the user should see it after a command.
func (a *cliApp) show(st domain.SessionState) {
	switch s := st.(type) {
	case domain.Idle:
		a.out.PrintHint("Nothing cooking yet. Type 'recipes' to browse or 'cook <recipe>' to start.")
	case domain.Loading:
		a.out.PrintHint(fmt.Sprintf("Still preparing the steps for %s.", s.RecipeName))
	case domain.Failed:
		a.out.PrintUrgent(s.Message)
		a.out.PrintHint("Type 'retry' to try again.")
	case domain.Empty:
		a.out.PrintChat(fmt.Sprintf("I couldn't come up with any steps for %s.", s.RecipeName))
		a.out.PrintHint("Try another recipe with 'cook <recipe>'.")
	case domain.Complete:
		a.out.PrintChat(fmt.Sprintf("All %d steps done. Enjoy your %s!", s.StepCount, s.RecipeName))
		a.out.PrintHint("Type 'fav' to save it, or 'cook <recipe>' for another.")
	case domain.Ready:
		a.showStep(s)
	}
}

func (a *cliApp) showStep(r domain.Ready) {
	step, ok := r.CurrentStep()
	if !ok {
		return
	}
	header := fmt.Sprintf("Step %d/%d", r.Index+1, len(r.Steps))
	if step.HasTimer() {
		header += fmt.Sprintf(" (~%dm)", step.TimeMinutes)
	}
	a.out.PrintStep(header)
	a.out.PrintInstruction(step.Description)
	if len(step.IngredientsUsed) > 0 {
		a.out.PrintHint("Uses: " + strings.Join(step.IngredientsUsed, ", "))
	}

	switch {
	case r.Timer.Running:
		a.out.PrintHint(fmt.Sprintf("Timer running, %s left.", timer.FormatClock(r.Timer.RemainingSeconds)))
	case r.Timer.Finished:
		a.out.PrintHint("Timer done.")
	case step.HasTimer():
		a.out.PrintHint("Type 'timer' to start the countdown.")
	}
	if r.IsLast() {
		a.out.PrintHint("Last step. Type 'finish' when you're done.")
	}
}

func (a *cliApp) notCooking() {
	switch s := a.ctrl.State().(type) {
	case domain.Loading:
		a.out.PrintHint(fmt.Sprintf("Hang on, still preparing %s.", s.RecipeName))
	case domain.Complete:
		a.out.PrintHint("That recipe is done. Type 'cook <recipe>' for another.")
	default:
		a.out.PrintHint("No recipe is open. Type 'cook <recipe>' to start.")
	}
}

func (a *cliApp) showRecipes(ctx context.Context) {
	list, err := a.catalog.List(ctx)
	if err != nil {
		a.log.Error("listing recipes: %v", err)
		return
	}
	a.out.PrintChat("Here's what I know by heart:")
	for _, r := range list {
		a.out.PrintInstruction(r.Name)
		if r.Description != "" {
			a.out.PrintHint(r.Description)
		}
	}
	a.out.PrintHint("Type 'cook <recipe>', or 'cook <anything> with a, b' for your own.")
}

func (a *cliApp) search(ctx context.Context, query string) {
	found, err := a.catalog.Search(ctx, query)
	if err != nil {
		a.log.Error("searching recipes: %v", err)
		return
	}
	if len(found) == 0 {
		a.out.PrintHint(fmt.Sprintf("No built-in recipe matches %q. You can still 'cook %s'.", query, query))
		return
	}
	for _, r := range found {
		a.out.PrintInstruction(r.Name)
		if len(r.Tags) > 0 {
			a.out.PrintHint(strings.Join(r.Tags, ", "))
		}
	}
}

func (a *cliApp) forget(ctx context.Context, name string) {
	fav := a.findFavorite(ctx, name)
	if fav == nil {
		a.out.PrintHint(fmt.Sprintf("%s is not in your favorites.", name))
		return
	}
	if err := a.favorites.Delete(ctx, fav.Signature); err != nil {
		a.log.Error("deleting favorite %s: %v", fav.Signature, err)
		a.out.PrintUrgent("Couldn't remove that favorite.")
		return
	}
	a.out.PrintChat(fmt.Sprintf("Removed %s from your favorites.", fav.RecipeName))
}

func (a *cliApp) showFavorites(ctx context.Context) {
	if a.favorites == nil {
		a.out.PrintHint("Favorites are not available in this session.")
		return
	}
	favs, err := a.favorites.List(ctx)
	if err != nil {
		a.log.Error("listing favorites: %v", err)
		a.out.PrintUrgent("Couldn't load your favorites.")
		return
	}
	if len(favs) == 0 {
		a.out.PrintHint("No favorites yet. Type 'fav' while cooking to save one.")
		return
	}
	a.out.PrintChat("Your favorites:")
	for _, f := range favs {
		a.out.PrintInstruction(fmt.Sprintf("%s (%d steps)", f.RecipeName, len(f.Steps)))
	}
}

func (a *cliApp) showHelp() {
	a.out.PrintChat("Here's what I understand:")
	for _, line := range []string{
		"recipes              list the built-in recipes",
		"cook <recipe>        open a recipe, e.g. 'cook pasta with garlic, oil'",
		"search <words>       find built-in recipes by name or tag",
		"favorites            list saved recipes",
		"forget <recipe>      remove a favorite",
		"clear cache          forget remembered steps and fetch them again",
		"next / back          move between steps",
		"finish               finish on the last step",
		"timer / pause / resume / reset  control the step timer",
		"retry                reload after an error",
		"status               show where you are",
		"fav                  save the current recipe",
		"quit                 exit",
	} {
		a.out.PrintHint(line)
	}
}

// plainOutput prints to a writer without a full-screen UI.
type plainOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *plainOutput) line(prefix, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, prefix+text)
}

func (p *plainOutput) PrintChat(text string)        { p.line("  ", text) }
func (p *plainOutput) PrintStep(text string)        { p.line("\n  ", text) }
func (p *plainOutput) PrintInstruction(text string) { p.line("    ", text) }
func (p *plainOutput) PrintHint(text string)        { p.line("  · ", text) }
func (p *plainOutput) PrintUrgent(text string)      { p.line("  ! ", text) }

func (p *plainOutput) Printf(format string, a ...interface{}) {
	p.line("", fmt.Sprintf(format, a...))
}
