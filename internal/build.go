package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/converter"
	"github.com/starford/quire/internal/layout"
	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/storage"
)

// builder performs full conversion runs with a fixed configuration.
type builder struct {
	cfg      *Config
	logger   *slog.Logger
	renderer render.Renderer
	manifest *manifest.DB // nil when disabled
}

func newBuilder(cfg *Config, logger *slog.Logger) (*builder, error) {
	b := &builder{
		cfg:    cfg,
		logger: logger,
		renderer: render.NewGoldmark(render.Options{
			Extended:  cfg.Render.Extended,
			HardWraps: cfg.Render.HardWraps,
			Safe:      cfg.Render.Safe,
		}),
	}
	if cfg.Manifest.Enabled {
		db, err := manifest.Open(cfg.Manifest.Path)
		if err != nil {
			return nil, fmt.Errorf("init manifest: %w", err)
		}
		b.manifest = db
	}
	return b, nil
}

func (b *builder) Close() error {
	if b.manifest != nil {
		return b.manifest.Close()
	}
	return nil
}

// loadTemplate returns nil when templating is disabled.
func (b *builder) loadTemplate() (*layout.Template, error) {
	if !b.cfg.Template.Enabled {
		return nil, nil
	}
	tpl, err := layout.Load(b.cfg.Template.Path, b.cfg.Template.Placeholder)
	if err != nil {
		return nil, err
	}
	switch n := tpl.Occurrences(); {
	case n == 0:
		b.logger.Warn("template has no placeholder; pages will contain only the template",
			slog.String("template", b.cfg.Template.Path),
			slog.String("placeholder", tpl.Placeholder()))
	case n > 1:
		b.logger.Warn("template placeholder appears more than once; content is inserted at each",
			slog.String("template", b.cfg.Template.Path),
			slog.Int("occurrences", n))
	}
	return tpl, nil
}

// Run converts the whole manuscript directory once.
func (b *builder) Run(ctx context.Context) (*converter.Result, error) {
	started := time.Now()

	src, err := storage.NewFS(b.cfg.Manuscript.Path)
	if err != nil {
		return nil, fmt.Errorf("open manuscript dir: %w", err)
	}
	dst, err := storage.NewFS(b.cfg.Book.Path)
	if err != nil {
		return nil, fmt.Errorf("open book dir: %w", err)
	}
	tpl, err := b.loadTemplate()
	if err != nil {
		return nil, err
	}

	opts := []converter.Option{converter.WithLogger(b.logger)}

	var buildID int64
	if b.manifest != nil {
		buildID, err = b.manifest.BeginBuild(models.Build{
			StartedAt: started,
			SourceDir: src.Root(),
			BookDir:   dst.Root(),
			Templated: tpl != nil,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, converter.WithPageFunc(func(p models.Page) error {
			return b.manifest.RecordPage(buildID, p)
		}))
	}

	res, err := converter.New(src, dst, b.renderer, tpl, opts...).Run(ctx)
	if err != nil {
		return res, err
	}

	if b.manifest != nil {
		if err := b.manifest.FinishBuild(buildID, time.Now(), len(res.Pages)); err != nil {
			return res, err
		}
		if b.cfg.Manifest.Keep > 0 {
			if _, err := b.manifest.Prune(b.cfg.Manifest.Keep); err != nil {
				b.logger.Warn("manifest prune failed", slog.String("error", err.Error()))
			}
		}
	}

	b.logger.Info("Build finished",
		slog.Int("pages", len(res.Pages)),
		slog.Int("skipped_dirs", len(res.Skipped)),
		slog.Bool("templated", tpl != nil),
		slog.String("book_dir", dst.Root()),
		slog.Duration("took", time.Since(started)))
	return res, nil
}

func outputNames(res *converter.Result) []string {
	if res == nil {
		return nil
	}
	out := make([]string, 0, len(res.Pages))
	for _, p := range res.Pages {
		out = append(out, p.Output)
	}
	return out
}
