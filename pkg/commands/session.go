package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/commands/options"
	"tableflip.dev/barely/pkg/printers"
	"tableflip.dev/barely/pkg/store"
)

// Session is one process worth of state: the opened store, the app.Service
// holding context and undo history, and the terminal streams.
type Session struct {
	Output *options.OutputOptions
	Log    *options.LogOptions
	Input  *options.InteractiveOptions

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Persistence replaces the configured store when set.
	Persistence store.Persistence

	svc    *app.Service
	lines  lineReader
	closer io.Closer
}

func newSession() *Session {
	return &Session{
		Output: &options.OutputOptions{},
		Log:    &options.LogOptions{},
		Input:  &options.InteractiveOptions{},
	}
}

func (s *Session) in() io.Reader {
	if s.In == nil {
		return os.Stdin
	}
	return s.In
}

func (s *Session) errOut() io.Writer {
	if s.ErrOut == nil {
		return os.Stderr
	}
	return s.ErrOut
}

// bind points the session streams at the command's, so tests can capture
// output with cmd.SetOut.
func (s *Session) bind(cmd *cobra.Command) {
	if s.Out == nil {
		s.Out = cmd.OutOrStdout()
	}
	if s.ErrOut == nil {
		s.ErrOut = cmd.ErrOrStderr()
	}
	if s.In == nil {
		s.In = cmd.InOrStdin()
	}
	s.Output.Out = s.Out
}

// Service opens the store on first use.
func (s *Session) Service() (*app.Service, error) {
	if s.svc != nil {
		return s.svc, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	p := s.Persistence
	if p == nil {
		if p, err = store.Load(cfg); err != nil {
			return nil, err
		}
		s.closer = p
	}
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	if s.Log.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(s.errOut(), &slog.HandlerOptions{Level: level}))
	logger.Debug("store opened", "backend", cfg.Backend(), "path", cfg.BasePath())

	s.svc = &app.Service{
		Persistence: p,
		Logger:      logger,
		PickerLimit: cfg.PickerLimit,
		UndoLimit:   cfg.UndoLimit,
	}
	return s.svc, nil
}

func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *Session) printer(ctx context.Context) *printers.PrettyPrint {
	pp := &printers.PrettyPrint{Out: s.Out, Projects: map[int64]string{}}
	if s.svc == nil {
		return pp
	}
	if projects, err := s.svc.Projects(ctx); err == nil {
		for _, p := range projects {
			pp.Projects[p.ID] = p.Name
		}
	}
	return pp
}

// reader returns the line source: promptui when stdin is a terminal, plain
// line scanning otherwise so scripts can pipe commands and answers.
func (s *Session) reader() lineReader {
	if s.lines != nil {
		return s.lines
	}
	if f, ok := s.in().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		s.lines = &promptReader{}
	} else {
		s.lines = &scanReader{scanner: bufio.NewScanner(s.in()), out: s.Out}
	}
	return s.lines
}

// ask presents a picker prompt and reads the answer.
func (s *Session) ask(ctx context.Context) app.Asker {
	if s.Input.NoInput || s.Output.Structured() {
		return nil
	}
	return func(p *app.Prompt) (string, error) {
		s.printer(ctx).Candidates(p)
		line, err := s.reader().ReadLine("select (e.g. 1,3): ")
		if errors.Is(err, io.EOF) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", nil
		}
		return line, err
	}
}

// selectTasks resolves task ids from args or, with none, by asking.
func (s *Session) selectTasks(ctx context.Context, svc *app.Service, args []string) ([]int64, error) {
	ids := &options.IDOptions{}
	if err := ids.Parse(args); err != nil {
		return nil, err
	}
	return svc.Select(ctx, app.TargetTask, ids.IDs, s.ask(ctx))
}

// finish turns an empty selection into a notice. It is a normal outcome,
// not a failure.
func (s *Session) finish(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrCancelled):
		return s.outcome(ctx, "cancelled")
	case errors.Is(err, app.ErrNothingToSelect):
		return s.outcome(ctx, "nothing to select")
	case errors.Is(err, app.ErrNoHistory):
		return s.outcome(ctx, "nothing to undo")
	}
	return s.Output.HandleError(err)
}

type outcome struct {
	Result string `json:"result" yaml:"result"`
}

func (s *Session) outcome(ctx context.Context, result string) error {
	return s.Output.Write(outcome{Result: result}, func() {
		s.printer(ctx).Notice("%s", result)
	})
}

type lineReader interface {
	ReadLine(prompt string) (string, error)
}

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

type promptReader struct{}

func (promptReader) ReadLine(label string) (string, error) {
	p := promptui.Prompt{
		Label: promptStyle.Render(label),
		Templates: &promptui.PromptTemplates{
			Prompt:  "{{ . }}",
			Valid:   "{{ . }}",
			Invalid: "{{ . }}",
			Success: "{{ . }}",
		},
	}
	return p.Run()
}

type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		_, _ = fmt.Fprint(r.out, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := r.scanner.Text()
	if r.out != nil {
		_, _ = fmt.Fprintln(r.out)
	}
	return line, nil
}
