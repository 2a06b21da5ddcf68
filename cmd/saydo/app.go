package main

import (
	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/config"
	"github.com/joss/saydo/internal/daemon"
	"github.com/joss/saydo/internal/dispatch"
	"github.com/joss/saydo/internal/driver"
	"github.com/joss/saydo/internal/exec"
	"github.com/joss/saydo/internal/health"
	"github.com/joss/saydo/internal/history"
	"github.com/joss/saydo/internal/intent"
	"github.com/joss/saydo/internal/logging"
	"github.com/joss/saydo/internal/metrics"
	"github.com/joss/saydo/internal/whitelist"
)

// app is the wired pipeline shared by every command.
type app struct {
	env        *config.SaydoEnv
	file       *config.File
	router     *intent.Router
	drivers    *driver.Registry
	store      *whitelist.Store
	resolver   *whitelist.Resolver
	history    *history.Store
	dispatcher *dispatch.Dispatcher
}

// newApp loads configuration and builds the dispatcher. History is opened
// only when withHistory is set; failing to open it is not fatal.
func newApp(withHistory bool) (*app, error) {
	log := logging.New("cli")
	env := config.Env()

	file, err := config.LoadFile(env.ConfigPath)
	if err != nil {
		return nil, err
	}

	store, err := whitelist.Open(env.TrackedChatsPath)
	if err != nil {
		// An empty whitelist still rejects every chat while enforcing.
		log.Warn("whitelist_unavailable", map[string]interface{}{"path": env.TrackedChatsPath}, err)
		store = whitelist.NewStore(whitelist.Build(nil))
	}

	a := &app{
		env:      env,
		file:     file,
		router:   intent.DefaultRouter(),
		drivers:  driver.FromConfig(file),
		store:    store,
		resolver: whitelist.NewResolver(store, !env.DisableWhitelist),
	}
	a.dispatcher = dispatch.New(a.router, a.resolver, a.drivers)
	a.dispatcher.Metrics = metrics.Global()

	if withHistory {
		if err := a.openHistory(); err != nil {
			log.Warn("history_unavailable", map[string]interface{}{"path": config.GetPaths().HistoryDB}, err)
		}
	}

	log.Debug("wired", map[string]interface{}{
		"drivers":   a.drivers.String(),
		"whitelist": env.TrackedChatsPath,
		"enforce":   !env.DisableWhitelist,
	})
	return a, nil
}

func (a *app) openHistory() error {
	h, err := history.Open(config.GetPaths().HistoryDB)
	if err != nil {
		return err
	}
	a.history = h
	a.dispatcher.History = h
	return nil
}

func (a *app) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

// daemonClient is the client used for health checks: the default driver's
// daemon URL.
func (a *app) daemonClient() *daemon.Client {
	url := a.env.HammerURL
	timeout := a.env.Timeout
	if dc, ok := a.file.Drivers[a.file.DefaultDriver]; ok {
		if dc.HammerURL != "" {
			url = dc.HammerURL
		}
		timeout = dc.TimeoutOr(timeout)
	}
	return daemon.New(url, timeout)
}

// checker runs the daemon, tesseract, chrome and whitelist checks.
func (a *app) checker() *health.Checker {
	r := exec.Default
	return &health.Checker{
		Checks: []health.Check{
			health.DaemonCheck(a.daemonClient()),
			health.TesseractCheck(r),
			health.ChromeCheck(r),
			health.WhitelistCheck(a.env.TrackedChatsPath),
		},
		Observer: metrics.Global(),
	}
}

// runText executes one command and exits 0 on success, 1 otherwise.
func runText(cmd *cobra.Command, text string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	rep := a.dispatcher.Run(cmd.Context(), text, text)
	if jsonOut {
		if err := printJSON(cmd, rep); err != nil {
			return err
		}
	} else {
		renderer(cmd).Report(rep)
	}
	if !rep.Result.OK {
		return exitCode(1)
	}
	return nil
}
