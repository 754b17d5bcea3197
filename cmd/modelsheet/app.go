package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	modelsheet "github.com/goliatone/go-modelsheet"
	"github.com/goliatone/go-modelsheet/internal/config"
	"github.com/goliatone/go-modelsheet/internal/logging"
	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/renderers/tui"
	"github.com/goliatone/go-modelsheet/pkg/renderers/vanilla"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	dev        bool
	models     []string

	cfg    config.Config
	logger *zap.Logger

	// driver replaces the survey prompts in tests.
	driver tui.PromptDriver
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func (a *app) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelsheet",
		Short: "Property sheets for namespaced metamodels",
		Long: `modelsheet renders property sheets for concepts, enums and their
properties, and edits concept properties from the browser or the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.dev, "dev", false, "development logging")
	flags.StringSliceVarP(&a.models, "models", "m", nil, "model files or directories (overrides the config)")

	cmd.AddCommand(
		a.serveCmd(),
		a.renderCmd(),
		a.editCmd(),
		a.exportCmd(),
		a.validateCmd(),
	)
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(a.logLevel) != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.dev {
		cfg.Log.Development = true
	}
	if len(a.models) > 0 {
		cfg.Models = a.models
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) modelPaths() ([]string, error) {
	if len(a.cfg.Models) == 0 {
		return nil, errors.New("no model files: pass --models or set models in the config")
	}
	return a.cfg.Models, nil
}

func (a *app) openStore() (*store.Memory, error) {
	paths, err := a.modelPaths()
	if err != nil {
		return nil, err
	}
	st, err := modelsheet.OpenStore(paths...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("models loaded", zap.Strings("paths", paths), zap.Int("models", len(st.Models())))
	return st, nil
}

// orchestrator builds the HTML pipeline from the configuration: custom
// templates, theme manifests and field presets.
func (a *app) orchestrator(reader store.Reader) (*orchestrator.Orchestrator, error) {
	var rendererOpts []vanilla.Option
	if dir := strings.TrimSpace(a.cfg.Server.Templates); dir != "" {
		rendererOpts = append(rendererOpts, vanilla.WithTemplatesDir(dir))
	}
	renderer, err := vanilla.New(rendererOpts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(renderer); err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithReader(reader),
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(a.logger),
	}
	if manifests := a.cfg.ThemeManifests(); len(manifests) > 0 {
		themes, err := modelsheet.WithThemes(a.cfg.Theme.Name, a.cfg.Theme.Variant, manifests...)
		if err != nil {
			return nil, fmt.Errorf("themes: %w", err)
		}
		opts = append(opts, themes)
	}
	if path := strings.TrimSpace(a.cfg.Presets); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("presets: %w", err)
		}
		presets, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithTransformer(presets))
	}
	return orchestrator.New(opts...), nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("output written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
