package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

const usage = `Usage: qubitviz [flags] [command]

Commands:
  (none)                 interactive single-qubit simulator
  run <circuit>          replay a circuit (.json, .yaml, .qasm) and print the final state
  qasm <circuit>         print a circuit as OpenQASM 2.0
  convert <in> <out>     rewrite a circuit in the format of <out>'s extension
  watch <circuit>        like run, again every time the file changes
  sessions               list saved sessions
  sessions show <id>     print a saved session
  sessions rm <id>       delete a saved session

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "qubitviz:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("qubitviz", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprint(stdout, usage)
		fs.PrintDefaults()
	}
	fv := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := ResolveConfig(fs, fv)
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return runTUI(cfg)
	}

	logger, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "run":
		if len(rest) != 1 {
			return fmt.Errorf("run: expected one circuit file")
		}
		return runCircuitFile(cfg, logger, rest[0], stdout)
	case "qasm":
		if len(rest) != 1 {
			return fmt.Errorf("qasm: expected one circuit file")
		}
		c, err := LoadCircuitFile(rest[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, c.ToQASM())
		return err
	case "convert":
		if len(rest) != 2 {
			return fmt.Errorf("convert: expected input and output files")
		}
		c, err := LoadCircuitFile(rest[0])
		if err != nil {
			return err
		}
		if err := SaveCircuitFile(rest[1], c); err != nil {
			return err
		}
		logger.Info("circuit converted", "from", rest[0], "to", rest[1], "gates", len(c.Gates))
		return nil
	case "watch":
		if len(rest) != 1 {
			return fmt.Errorf("watch: expected one circuit file")
		}
		return watchCircuitFile(cfg, logger, rest[0], stdout)
	case "sessions":
		return runSessions(cfg, logger, rest, stdout)
	}
	fs.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

// initialStateWith returns the initial snapshot widened to n qubits, with no history.
func initialStateWith(n int) QuantumState {
	s := InitialState()
	for len(s.Qubits) < n {
		s.Qubits = append(s.Qubits, ZeroQubit())
	}
	return s
}

func newConfiguredEngine(cfg *Config, logger *log.Logger) *Engine {
	return NewEngine(
		WithSeed(cfg.Seed),
		WithLogger(logger),
		WithUndoDepth(cfg.UndoDepth),
		WithState(initialStateWith(cfg.Qubits)),
	)
}

func runTUI(cfg *Config) error {
	logger, closer, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := OpenSessionStore(cfg.SessionDB)
	if err != nil {
		logger.Warn("session store unavailable", "path", cfg.SessionDB, "err", err)
		store = nil
	} else {
		defer store.Close()
	}

	logger.Info("starting", "qubits", cfg.Qubits, "seed", cfg.Seed)
	engine := newConfiguredEngine(cfg, logger)
	p := tea.NewProgram(newModel(engine, store, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runCircuitFile(cfg *Config, logger *log.Logger, path string, w io.Writer) error {
	c, err := LoadCircuitFile(path)
	if err != nil {
		return err
	}
	state, outcomes, err := c.Run(newConfiguredEngine(cfg, logger))
	if err != nil {
		return err
	}
	writeReport(w, c, state, outcomes)
	return nil
}

func watchCircuitFile(cfg *Config, logger *log.Logger, path string, w io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching", "path", path)
	return WatchCircuit(ctx, path, logger, func(c *Circuit, err error) {
		if err != nil {
			logger.Error("load circuit", "err", err)
			return
		}
		state, outcomes, err := c.Run(newConfiguredEngine(cfg, logger))
		if err != nil {
			logger.Error("run circuit", "err", err)
			return
		}
		fmt.Fprintf(w, "%s\n", dimStyle.Render("── "+time.Now().Format(time.TimeOnly)+" ──"))
		writeReport(w, c, state, outcomes)
	})
}

// writeStateReport prints every qubit, then the history.
func writeStateReport(w io.Writer, state QuantumState) {
	fmt.Fprintln(w, titleStyle.Render("State"))
	for i, q := range state.Qubits {
		p0, p1 := q.Probabilities()
		b := q.Bloch()
		fmt.Fprintf(w, "  q[%d]  α=%-14s β=%-14s P(0)=%.3f P(1)=%.3f  Bloch (%.2f, %.2f, %.2f)",
			i, formatComplex(q.Alpha), formatComplex(q.Beta), p0, p1,
			cleanFloat(b.X), cleanFloat(b.Y), cleanFloat(b.Z))
		if q.Error != ErrorNone {
			fmt.Fprintf(w, "  [%s]", q.Error)
		}
		fmt.Fprintln(w)
	}
	if len(state.CustomGates) > 0 {
		fmt.Fprintf(w, "  custom gates: %s\n", strings.Join(state.sortedGateNames(), ", "))
	}

	fmt.Fprintln(w, titleStyle.Render("History"))
	for i, entry := range state.History {
		fmt.Fprintf(w, "  %3d. %s\n", i+1, entry)
	}
	fmt.Fprintf(w, "  %s\n", Explain(state.LastAction()))
}

// writeReport prints the result of replaying a circuit.
func writeReport(w io.Writer, c *Circuit, state QuantumState, outcomes []Outcome) {
	fmt.Fprintf(w, "%s %d qubits, %d steps, %d gates\n", titleStyle.Render("Circuit"), c.NumQubits, c.Steps, len(c.Gates))
	writeStateReport(w, state)

	gates := c.ordered()
	var skipped []string
	for i, o := range outcomes {
		if o != OutcomeOK && i < len(gates) {
			skipped = append(skipped, fmt.Sprintf("step %d %s on q[%d]: %s", gates[i].Time, gates[i].Type, gates[i].Qubit, o))
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Skipped"))
		for _, s := range skipped {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	if tips := c.Suggestions(); len(tips) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Suggestions"))
		for _, tip := range tips {
			fmt.Fprintf(w, "  • %s\n", tip)
		}
	}
	fmt.Fprintln(w, titleStyle.Render("QASM"))
	fmt.Fprint(w, c.ToQASM())
}

func runSessions(cfg *Config, logger *log.Logger, args []string, w io.Writer) error {
	store, err := OpenSessionStore(cfg.SessionDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		sessions, err := store.List()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(w, "no saved sessions")
			return nil
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers("ID", "NAME", "QUBITS", "UPDATED")
		for _, s := range sessions {
			t.Row(s.ID, s.Name, fmt.Sprint(s.NumQubits), s.UpdatedAt.Format(time.DateTime))
		}
		fmt.Fprintln(w, t.Render())
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("sessions: expected \"show <id>\" or \"rm <id>\"")
	}
	switch args[0] {
	case "show":
		sess, err := store.Load(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s (%s)\n", titleStyle.Render("Session"), sess.ID, sess.Name)
		writeStateReport(w, sess.State)
		return nil
	case "rm":
		if err := store.Delete(args[1]); err != nil {
			return err
		}
		logger.Info("session deleted", "id", args[1])
		return nil
	}
	return fmt.Errorf("sessions: unknown subcommand %q", args[0])
}
