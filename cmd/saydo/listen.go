package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/config"
	"github.com/joss/saydo/internal/exec"
	"github.com/joss/saydo/internal/health"
	"github.com/joss/saydo/internal/listen"
	"github.com/joss/saydo/internal/logging"
	"github.com/joss/saydo/internal/metrics"
	"github.com/joss/saydo/internal/render"
	"github.com/joss/saydo/internal/runtime"
	"github.com/joss/saydo/internal/tui"
	"github.com/joss/saydo/internal/whitelist"
)

type listenOptions struct {
	tui         bool
	transcriber string
	metricsPort int
	maxErrors   int
}

func envTranscriber() string {
	return config.Env().Transcriber
}

func listenCmd() *cobra.Command {
	var opts listenOptions

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen for wake-word commands until interrupted",
		Long: `Capture one utterance at a time and run the command spoken after a wake
word (saydo, сейдо, агент, ...). Capture and execution alternate strictly.

Without --transcriber, utterances are read one per line from stdin, so any
dictation tool can be piped in. With --transcriber, the shell command is run
once per capture and its stdout is the transcription.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("transcriber") {
				opts.transcriber = envTranscriber()
			}
			return runListen(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Show the interactive listen view")
	cmd.Flags().StringVar(&opts.transcriber, "transcriber", "", "Speech-to-text command run per capture (default: $SAYDO_TRANSCRIBER, else stdin lines)")
	cmd.Flags().IntVar(&opts.metricsPort, "metrics-port", 0, "Serve /metrics and /health/detail on 127.0.0.1:PORT")
	cmd.Flags().IntVar(&opts.maxErrors, "max-errors", listen.DefaultMaxErrors, "Stop after this many transcriber failures in a row")

	return cmd
}

func runListen(cmd *cobra.Command, opts listenOptions) error {
	if opts.tui && opts.transcriber == "" {
		return errors.New("--tui needs --transcriber (stdin is used for keys)")
	}

	log := logging.New("cli")
	sm := runtime.NewShutdownManager(runtime.DefaultShutdownTimeout)
	if !opts.tui {
		stop := sm.ListenForSignals()
		defer stop()
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	sm.Register("history", func(context.Context) error { return a.Close() })

	m := metrics.Global()
	ctx := sm.Context()

	if w, err := whitelist.NewWatcher(a.env.TrackedChatsPath, a.store); err != nil {
		log.Warn("watcher_unavailable", nil, err)
	} else {
		w.OnReload = func(_ *whitelist.Index, err error) { m.RecordReload(err == nil) }
		if err := w.Start(ctx); err != nil {
			log.Warn("watcher_unavailable", map[string]interface{}{"path": a.env.TrackedChatsPath}, err)
		}
		sm.RegisterSimple("whitelist watcher", w.Stop)
	}

	checker := a.checker()
	if opts.metricsPort > 0 {
		srv := metrics.NewServer(opts.metricsPort)
		srv.Handle("/health/detail", health.Handler(checker))
		if err := srv.Start(); err != nil {
			sm.Shutdown()
			return fmt.Errorf("metrics server: %w", err)
		}
		log.Info("metrics_listening", map[string]interface{}{"addr": srv.Addr()})
		sm.Register("metrics server", srv.Stop)
	}

	var tr listen.Transcriber
	if opts.transcriber != "" {
		tr = listen.NewCommandTranscriber(exec.Default, opts.transcriber)
	} else {
		tr = listen.NewLineTranscriber(os.Stdin)
	}

	loop := listen.NewLoop(tr, a.dispatcher)
	loop.MaxErrors = opts.maxErrors
	if a.history != nil {
		loop.History = a.history
	}

	if opts.tui {
		err = tui.Run(ctx, loop, tui.Options{Health: checker.Run})
	} else {
		r := renderer(cmd)
		loop.OnEvent = printEvent(r, opts.transcriber == "")
		if opts.transcriber == "" && render.IsTerminal(os.Stdin) {
			r.Println("Type commands after a wake word, one per line (Ctrl+D to stop).")
		}
		err = loop.Run(ctx)
	}

	if serr := sm.Shutdown(); serr != nil {
		log.Warn("shutdown_incomplete", nil, serr)
	}
	return err
}

// printEvent writes loop events for the plain listen mode.
func printEvent(r *render.Renderer, fromStdin bool) func(listen.Event) {
	return func(e listen.Event) {
		switch e.Kind {
		case listen.EventListening:
			if !fromStdin {
				r.Println("🎤 listening...")
			}
		case listen.EventHeard:
			if !fromStdin {
				r.Println("🗣  heard: %s", e.Text)
			}
		case listen.EventNoWake:
			r.Println("   no wake word, ignored")
		case listen.EventEmpty:
			r.Println("   wake word %q without a command", e.Wake.Keyword)
		case listen.EventExecuted:
			if e.Report != nil {
				r.Report(e.Report)
			}
		case listen.EventError:
			r.Println("✗ %v", e.Err)
		}
	}
}
