package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/slok/taskmgr/internal/log"
	"github.com/slok/taskmgr/internal/model"
	"github.com/slok/taskmgr/internal/task"
	"github.com/slok/taskmgr/internal/utils/env"
)

// LogSink receives the output of the commands.
type LogSink interface {
	AddTaskLog(t *task.Task, message string, level task.LogLevel)
}

// RunnerConfig is the configuration for the command runner.
type RunnerConfig struct {
	LogSink LogSink
	// Output optionally receives a copy of the raw process output.
	Output io.Writer
	// WaitDelay is how long to wait for the output after a stopped process exits.
	WaitDelay time.Duration
	Logger    log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.LogSink == nil {
		return fmt.Errorf("log sink is required")
	}
	if c.WaitDelay == 0 {
		c.WaitDelay = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "command.Runner"})
	return nil
}

// Runner creates tasks that run commands as processes in the project directory.
type Runner struct {
	sink      LogSink
	output    io.Writer
	waitDelay time.Duration
	logger    log.Logger
}

// NewRunner creates a new command runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var output io.Writer
	if cfg.Output != nil {
		output = &syncWriter{w: cfg.Output}
	}

	return &Runner{
		sink:      cfg.LogSink,
		output:    output,
		waitDelay: cfg.WaitDelay,
		logger:    cfg.Logger,
	}, nil
}

// Task returns a stoppable task that runs the command. Stdout lines are logged
// with the default level and stderr lines as warnings.
func (r *Runner) Task(project *model.Project, cmd Command) (*task.Task, error) {
	if project == nil {
		return nil, fmt.Errorf("project is required: %w", model.ErrNotValid)
	}
	if cmd.Command == "" {
		return nil, fmt.Errorf("command is required: %w", model.ErrNotValid)
	}

	p := &process{}
	t := &task.Task{
		Project:   project,
		Title:     cmd.Description(),
		Stoppable: true,
		Stop:      p.stop,
	}
	t.Execute = func(ctx context.Context) error {
		return r.run(ctx, p, t, cmd)
	}

	return t, nil
}

func (r *Runner) run(ctx context.Context, p *process, t *task.Task, cmd Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !p.start(cancel) {
		return fmt.Errorf("command stopped before starting")
	}

	stdout := r.newLineWriter(t, task.LogLevelDefault)
	stderr := r.newLineWriter(t, task.LogLevelWarn)

	c := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	c.Dir = t.Project.Path
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = r.waitDelay
	if len(cmd.Env) > 0 {
		c.Env = env.Environ(os.Environ(), cmd.Env)
	}
	if r.output != nil {
		c.Stdout = io.MultiWriter(stdout, r.output)
		c.Stderr = io.MultiWriter(stderr, r.output)
	}

	r.logger.Debugf("Running %q in %s", cmd.Description(), c.Dir)
	err := c.Run()
	stdout.Flush()
	stderr.Flush()
	if err != nil {
		return fmt.Errorf("could not run %q: %w", cmd.Description(), err)
	}

	return nil
}

func (r *Runner) newLineWriter(t *task.Task, level task.LogLevel) *lineWriter {
	return &lineWriter{
		emit: func(line string) { r.sink.AddTaskLog(t, line, level) },
	}
}

// process tracks the cancellation of a single command execution.
type process struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func (p *process) start(cancel context.CancelFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.cancel = cancel
	return true
}

func (p *process) stop(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// lineWriter splits the written bytes in lines.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(line string)
}

func (w *lineWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(b)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(line)
	}

	return len(b), nil
}

// Flush emits the pending data without line ending.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}
	w.emit(w.buf.String())
	w.buf.Reset()
}

// syncWriter serializes the writes of stdout and stderr copies.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}
