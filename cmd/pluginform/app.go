package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pluginform/internal/config"
	"github.com/goliatone/go-pluginform/internal/logging"
	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/notify"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

//go:embed demo.yaml
var demoConfig []byte

const offlineIdentifier = "offline"

// app carries the persistent flags shared by every command.
type app struct {
	configPath string
	server     string
	token      string
	org        string
	project    string
	plugin     string
	timeout    time.Duration
	notifyMode string
	verbose    bool
	offline    bool
	fixture    string

	logs       *logging.Manager
	indicators *notify.Indicators
	root       *cobra.Command
}

func newApp() *app {
	a := &app{}

	root := &cobra.Command{
		Use:   "pluginform",
		Short: "Show and edit project plugin settings",
		Long: `pluginform loads the settings schema of a project plugin from the server,
renders it as HTML or text, and edits it interactively or from arguments.

Settings are read from ~/.config/pluginform/config.yaml (see --config) and can
be overridden by flags and the PLUGINFORM_SERVER / PLUGINFORM_TOKEN variables.
Use --offline to try the commands against a bundled demo plugin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default ~/.config/pluginform/config.yaml)")
	flags.StringVar(&a.server, "server", "", "API base URL")
	flags.StringVar(&a.token, "token", "", "API bearer token")
	flags.StringVar(&a.org, "org", "", "Organization slug")
	flags.StringVar(&a.project, "project", "", "Project slug")
	flags.StringVar(&a.plugin, "plugin", "", "Plugin identifier")
	flags.DurationVar(&a.timeout, "timeout", config.DefaultTimeout, "Request timeout")
	flags.StringVar(&a.notifyMode, "notify", config.NotifyLog, "Notification sink: log, desktop or none")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.offline, "offline", false, "Use an in-memory plugin instead of the server")
	flags.StringVar(&a.fixture, "fixture", "", "Config document served by --offline (default: bundled demo)")

	root.AddCommand(newShowCommand(a), newEditCommand(a), newSetCommand(a))
	a.root = root
	return a
}

// execute runs the command tree and releases the log file on every exit
// path, including command errors.
func (a *app) execute(ctx context.Context) error {
	err := a.root.ExecuteContext(ctx)
	if a.logs != nil {
		if closeErr := a.logs.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// loadConfig merges file, environment and flags, in that order.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, required := a.configPath, true
	if path == "" {
		required = false
		if def, err := config.DefaultPath(); err == nil {
			path = def
		}
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("server", &cfg.Server, a.server)
	override("token", &cfg.Token, a.token)
	override("org", &cfg.Organization, a.org)
	override("project", &cfg.Project, a.project)
	override("plugin", &cfg.Plugin, a.plugin)
	override("notify", &cfg.Notify, a.notifyMode)
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}

	if a.offline {
		for _, id := range []*string{&cfg.Organization, &cfg.Project, &cfg.Plugin} {
			if strings.TrimSpace(*id) == "" {
				*id = offlineIdentifier
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if !a.offline {
		if err := cfg.RequireServer(); err != nil {
			return cfg, err
		}
	}

	a.logs = logging.NewManager(cmd.ErrOrStderr())
	if err := a.logs.Configure(cfg.Log, a.verbose); err != nil {
		return cfg, err
	}
	if file := a.logs.File(); file != "" {
		a.logger().Debug("writing logs", "file", file)
	}
	return cfg, nil
}

// session loads the config and returns an initialized controller. The
// caller must Dispose it.
func (a *app) session(ctx context.Context, cmd *cobra.Command) (*form.Controller, config.Config, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}

	t, err := a.transport(cfg)
	if err != nil {
		return nil, cfg, err
	}

	ctrl, err := form.New(t, cfg.Endpoint(),
		form.WithLogger(a.logs.Logger("form")),
		form.WithNotifier(a.notifier(cfg)),
	)
	if err != nil {
		return nil, cfg, err
	}
	if err := ctrl.Initialize(ctx); err != nil {
		_ = ctrl.Dispose()
		return nil, cfg, err
	}
	return ctrl, cfg, nil
}

func (a *app) transport(cfg config.Config) (transport.Transport, error) {
	logger := a.logs.Logger("transport")
	if !a.offline {
		return transport.NewHTTPClient(cfg.Server,
			transport.WithToken(cfg.Token),
			transport.WithTimeout(cfg.Timeout),
			transport.WithLogger(logger),
		)
	}

	fields, err := a.offlineFields()
	if err != nil {
		return nil, err
	}
	mem := transport.NewMemory()
	mem.Put(cfg.Endpoint(), fields)
	mem.SetValidator(requireSecrets(fields))
	logger.Debug("serving offline plugin", "endpoint", cfg.Endpoint().String(), "fields", len(fields))
	return mem, nil
}

func (a *app) offlineFields() ([]model.ConfigField, error) {
	data := demoConfig
	if a.fixture != "" {
		raw, err := os.ReadFile(a.fixture)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
		data = raw
	}
	return transport.DecodeConfig(data)
}

// notifier always feeds the indicator store behind the terminal status
// lines. The notify mode only picks the extra sink.
func (a *app) notifier(cfg config.Config) notify.Sink {
	a.indicators = notify.NewIndicators()
	logSink := notify.NewLogSink(a.logs.Logger("notify"))
	switch cfg.Notify {
	case config.NotifyNone:
		return a.indicators
	case config.NotifyDesktop:
		return notify.Multi(a.indicators, logSink, notify.NewDesktopSink("pluginform",
			notify.WithDesktopLogger(a.logs.Logger("desktop")),
		))
	default:
		return notify.Multi(a.indicators, logSink)
	}
}

// printIndicators writes the messages still active after an operation, one
// "kind: text" line each.
func (a *app) printIndicators(out io.Writer) {
	if a.indicators == nil {
		return
	}
	for _, indicator := range a.indicators.Active() {
		fmt.Fprintf(out, "%s: %s\n", indicator.Message.Kind, indicator.Message.Text)
	}
}

// requireSecrets mimics the server rejecting a save that leaves a required
// secret empty.
func requireSecrets(fields []model.ConfigField) func(model.Values) map[string][]string {
	return func(values model.Values) map[string][]string {
		errs := make(map[string][]string)
		for _, field := range fields {
			if field.Type != model.FieldTypeSecret || !field.IsRequired() {
				continue
			}
			if value, _ := values[field.Name].(string); strings.TrimSpace(value) == "" {
				errs[field.Name] = []string{"This field is required."}
			}
		}
		return errs
	}
}

func (a *app) logger() *slog.Logger {
	if a.logs == nil {
		return slog.Default()
	}
	return a.logs.Logger("cli")
}
