package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pongoview/internal/prompt"
	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/framework"
	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/profiler"
	"github.com/goliatone/go-pongoview/pkg/view"
)

type options struct {
	dir      string
	config   string
	template string
	layout   string
	vars     string
	ask      string
	settings string
	locales  string
	locale   string
	plugins  string
	theme    string
	markdown bool
	debug    bool
	profile  bool
	serve    bool
	addr     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var prof *profiler.Profiler
	if opts.profile {
		prof = profiler.New()
	}
	factory, err := newFactory(opts, logger, prof)
	if err != nil {
		return err
	}

	if opts.serve {
		return serve(ctx, factory, opts.addr, logger)
	}
	if err := render(ctx, factory, opts, stdout); err != nil {
		return err
	}
	if prof != nil {
		return prof.Dump(stderr)
	}
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	flags := flag.NewFlagSet("pongoview-cli", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.dir, "dir", ".", "application directory holding the templates root")
	flags.StringVar(&opts.config, "config", "", "YAML configuration file")
	flags.StringVar(&opts.template, "template", "", "template to render, e.g. Posts/index")
	flags.StringVar(&opts.layout, "layout", "", "layout to wrap the template in")
	flags.StringVar(&opts.vars, "vars", "", "YAML file with template variables")
	flags.StringVar(&opts.ask, "ask", "", "comma separated variables to prompt for")
	flags.StringVar(&opts.settings, "settings", "", "YAML application settings exposed to config()")
	flags.StringVar(&opts.locales, "locales", "", "directory of <locale>/<domain>.yaml catalogs")
	flags.StringVar(&opts.locale, "locale", "", "active locale; defaults to $LANG matched against the catalogs")
	flags.StringVar(&opts.plugins, "plugins", "", "comma separated plugins loaded from plugins/<name>/templates")
	flags.StringVar(&opts.theme, "theme", "", "theme searched under themes/<name>/templates")
	flags.BoolVar(&opts.markdown, "markdown", false, "enable the gomarkdown engine")
	flags.BoolVar(&opts.debug, "debug", false, "debug mode: no template cache, verbose logs")
	flags.BoolVar(&opts.profile, "profile", false, "print a render profile to stderr (implies -debug)")
	flags.BoolVar(&opts.serve, "serve", false, "serve template previews over HTTP")
	flags.StringVar(&opts.addr, "addr", ":8080", "listen address for -serve")
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	// the profiler is only attached in debug mode
	if opts.profile {
		opts.debug = true
	}
	return opts, nil
}

func newFactory(opts options, logger *slog.Logger, prof *profiler.Profiler) (*view.Factory, error) {
	cfg := config.Defaults()
	if opts.config != "" {
		loaded, err := config.LoadFile(opts.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.debug {
		cfg.Environment.Debug = true
	}
	if opts.markdown {
		cfg.Markdown.EngineName = config.EngineGoMarkdown
	}

	fsys := os.DirFS(opts.dir)
	factoryOpts := []view.FactoryOption{
		view.WithFS(fsys),
		view.WithConfig(cfg),
		view.WithFactoryLogger(logger),
		view.WithProfiler(prof),
	}

	if opts.settings != "" {
		settings, err := framework.LoadSettings(os.DirFS(filepath.Dir(opts.settings)), filepath.Base(opts.settings))
		if err != nil {
			return nil, err
		}
		factoryOpts = append(factoryOpts, view.WithSettings(settings))
	}

	if opts.locales != "" {
		catalog := framework.NewCatalog(opts.locale)
		if err := catalog.LoadFS(os.DirFS(opts.locales), "."); err != nil {
			return nil, err
		}
		if opts.locale == "" {
			catalog.SetLocale(catalog.Match(localeFromEnv()))
		}
		factoryOpts = append(factoryOpts, view.WithTranslator(catalog), view.WithLocale(catalog.Locale()))
	} else if opts.locale != "" {
		factoryOpts = append(factoryOpts, view.WithLocale(opts.locale))
	}

	if opts.plugins != "" {
		plugins := framework.NewPlugins()
		for _, name := range splitList(opts.plugins) {
			if err := plugins.Load(name, ""); err != nil {
				return nil, err
			}
		}
		factoryOpts = append(factoryOpts, view.WithPlugins(plugins))
	}

	if opts.theme != "" {
		factoryOpts = append(factoryOpts, view.WithTheme(nil, opts.theme, ""))
	}

	return view.NewFactory(factoryOpts...), nil
}

func render(ctx context.Context, factory *view.Factory, opts options, stdout io.Writer) error {
	vars := map[string]any{}
	if opts.vars != "" {
		loaded, err := loadVars(opts.vars)
		if err != nil {
			return err
		}
		vars = loaded
	}

	template := opts.template
	if opts.ask != "" {
		driver := prompt.NewSurveyDriver()
		if template == "" {
			names, err := listTemplates(os.DirFS(opts.dir), factory.Config())
			if err != nil {
				return err
			}
			if template, err = prompt.ChooseTemplate(ctx, driver, names); err != nil {
				return err
			}
		}
		asked, err := prompt.AskVars(ctx, driver, splitList(opts.ask), vars)
		if err != nil {
			return err
		}
		vars = asked
	}
	if template == "" {
		return errors.New("pongoview-cli: -template is required")
	}

	v, err := factory.NewView(view.WithVars(vars))
	if err != nil {
		return err
	}
	out, err := v.Render(ctx, template, opts.layout)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, out)
	return err
}

func serve(ctx context.Context, factory *view.Factory, addr string, logger *slog.Logger) error {
	if _, err := factory.Environment(ctx); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(factory, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving template previews", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func loadVars(file string) (map[string]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("pongoview-cli: read vars: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("pongoview-cli: parse vars: %w", err)
	}
	return out, nil
}

// listTemplates returns the logical names of renderable templates under the
// configured root, skipping layouts, elements and cells.
func listTemplates(fsys fs.FS, cfg config.Config) ([]string, error) {
	root := cfg.Root
	if root == "" {
		root = paths.DefaultRoot
	}
	exts := config.NormalizeExtensions(cfg.Extensions)

	seen := map[string]struct{}{}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if d.IsDir() {
			switch rel {
			case paths.LayoutDir, paths.ElementDir, paths.CellDir, paths.PluginOverrideDir:
				return fs.SkipDir
			}
			return nil
		}
		name := paths.TrimExtension(rel, exts...)
		if name != rel {
			seen[name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pongoview-cli: list templates: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		if value := os.Getenv(key); value != "" {
			value, _, _ = strings.Cut(value, ".")
			return strings.ReplaceAll(value, "_", "-")
		}
	}
	return ""
}
