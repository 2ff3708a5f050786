package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/finder"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/form"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) newLoader() *finder.Loader {
	return finder.NewLoader(a.client, a.cfg.Finder.PageSize, a.notifier, a.log)
}

// loadPages loads up to limit pages, or every page when limit is 0
func loadPages(ctx context.Context, loader *finder.Loader, limit int) error {
	for n := 0; limit == 0 || n < limit; n++ {
		_, err := loader.LoadNextPage(ctx)
		if errors.Is(err, finder.ErrNoMoreMeals) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printCards(cards []finder.Card) {
	for _, card := range cards {
		fmt.Fprint(a.out, card.Summary())
	}
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	text := fs.String("text", "", "match name or description")
	cuisine := fs.String("cuisine", "", "cuisine type, or any")
	mode := fs.String("mode", "", "cooking mode, or any")
	ease := fs.String("ease", "", "cooking ease, or any")
	pages := fs.Int("pages", 0, "pages to load (0 loads all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader := a.newLoader()
	if err := loadPages(ctx, loader, *pages); err != nil {
		return err
	}

	cards := loader.ApplyFilter(finder.Criteria{
		Text:        *text,
		CuisineType: *cuisine,
		CookingMode: *mode,
		CookingEase: *ease,
	})
	a.printCards(cards)
	fmt.Fprintf(a.out, "%d of %d meals\n", len(cards), len(loader.Meals()))
	return nil
}

const browseHelp = `commands:
  next                 load the next page
  filter key=value...  keys: text, cuisine, mode, ease
  clear                drop every filter
  show                 print the active filter and view
  quit
`

func (a *app) browse(ctx context.Context, args []string) error {
	if err := a.flagSet("browse").Parse(args); err != nil {
		return err
	}

	loader := a.newLoader()
	scanner := bufio.NewScanner(a.in)
	fmt.Fprint(a.out, browseHelp)

	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "next":
			n, err := loader.LoadNextPage(ctx)
			switch {
			case errors.Is(err, finder.ErrNoMoreMeals):
				fmt.Fprintln(a.out, "No more meals to load.")
			case err != nil:
				// Already reported; the user may retry
				continue
			default:
				fmt.Fprintf(a.out, "Loaded %d meals.\n", n)
				a.printCards(loader.View())
			}
		case "filter":
			criteria, err := parseCriteria(loader.Criteria(), fields[1:])
			if err != nil {
				fmt.Fprintln(a.out, err)
				continue
			}
			a.printCards(loader.ApplyFilter(criteria))
		case "clear":
			a.printCards(loader.ClearFilter())
		case "show":
			a.printFilter(loader.Criteria())
			a.printCards(loader.View())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprint(a.out, browseHelp)
		}
	}
}

func (a *app) printFilter(c finder.Criteria) {
	if c.IsEmpty() {
		fmt.Fprintln(a.out, "No filter active.")
		return
	}
	fmt.Fprintf(a.out, "Filter: text=%q cuisine=%s mode=%s ease=%s\n",
		c.Text, orAny(c.CuisineType), orAny(c.CookingMode), orAny(c.CookingEase))
}

func orAny(value string) string {
	if value == "" {
		return finder.Any
	}
	return value
}

// parseCriteria updates current from key=value tokens
// Tokens without "=" extend the previous value, so "text=green curry" works.
func parseCriteria(current finder.Criteria, tokens []string) (finder.Criteria, error) {
	var target *string
	for _, token := range tokens {
		key, value, found := strings.Cut(token, "=")
		if !found {
			if target == nil {
				return current, fmt.Errorf("expected key=value, got %q", token)
			}
			*target += " " + token
			continue
		}

		switch key {
		case "text":
			target = &current.Text
		case "cuisine":
			target = &current.CuisineType
		case "mode":
			target = &current.CookingMode
		case "ease":
			target = &current.CookingEase
		default:
			return current, fmt.Errorf("unknown filter: %s", key)
		}
		*target = value
	}
	return current, nil
}

func (a *app) save(ctx context.Context, args []string) error {
	fs := a.flagSet("save")
	imageFile := fs.String("image", "", "image to upload after saving (overrides image_file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: mealctl save [-image file] <draft.yaml>")
	}
	draftPath := fs.Arg(0)

	d, err := readDraft(draftPath)
	if err != nil {
		return err
	}
	f := d.Form()

	imagePath := *imageFile
	if imagePath == "" && d.ImageFile != "" {
		imagePath = d.ImageFile
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(filepath.Dir(draftPath), imagePath)
		}
	}
	if imagePath != "" {
		image, err := os.Open(imagePath)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer image.Close()
		f.SelectImage(filepath.Base(imagePath), image)
	}

	submitter, err := a.submitter()
	if err != nil {
		return err
	}

	a.log.Info("saving meal", "draft", d.Title())
	saved, err := submitter.Submit(ctx, f)
	if saved != nil {
		fmt.Fprintf(a.out, "Saved #%d %s\n", saved.ID, saved.Name)
	}
	return err
}

func readDraft(path string) (*form.Draft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft: %w", err)
	}
	defer file.Close()

	return form.LoadDraft(file)
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	output := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := mealIDArg(fs)
	if err != nil {
		return err
	}

	meal, err := a.findMeal(ctx, id)
	if err != nil {
		return err
	}

	var w io.Writer = a.out
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer file.Close()
		w = file
	}

	return form.DraftFromMeal(*meal).Write(w)
}

// findMeal pages through the listing until the meal turns up
func (a *app) findMeal(ctx context.Context, id int64) (*models.Meal, error) {
	loader := a.newLoader()
	for {
		_, err := loader.LoadNextPage(ctx)
		if errors.Is(err, finder.ErrNoMoreMeals) {
			return nil, fmt.Errorf("meal %d not found", id)
		}
		if err != nil {
			return nil, err
		}

		meals := loader.Meals()
		for i := range meals {
			if meals[i].ID == id {
				return &meals[i], nil
			}
		}
	}
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := mealIDArg(fs)
	if err != nil {
		return err
	}

	var confirmer form.Confirmer = newPromptConfirmer(a.in, a.out)
	if *yes {
		confirmer = form.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
	}

	submitter, err := a.submitter()
	if err != nil {
		return err
	}

	err = submitter.Delete(ctx, id, confirmer)
	if errors.Is(err, form.ErrCancelled) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	return err
}

func mealIDArg(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("usage: mealctl %s <meal id>", fs.Name())
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid meal id: %q", fs.Arg(0))
	}
	return id, nil
}

// promptConfirmer asks on the terminal and accepts y or yes
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
