package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Prompt is written before each command is read
const Prompt = "crm> "

// ErrQuit is returned by a command that ends the session
var ErrQuit = errors.New("quit")

// CommandRecorder receives the latency and outcome of every executed command
type CommandRecorder interface {
	RecordCommand(ctx context.Context, command string, d time.Duration, err error)
}

type command struct {
	usage       string
	description string
	run         func(ctx context.Context, args string) error
}

// Console is a line-oriented command interface over the customer service.
// Each input line is one command; its output goes to the writer.
type Console struct {
	service  *partnerapp.CustomerService
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
	recorder CommandRecorder
	prompt   bool
	commands map[string]command
}

// Option configures a Console
type Option func(*Console)

// WithLogger sets the session logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Console) {
		c.logger = l
	}
}

// WithCommandRecorder reports command latency, e.g. to metrics
func WithCommandRecorder(r CommandRecorder) Option {
	return func(c *Console) {
		c.recorder = r
	}
}

// WithPrompt enables or disables the input prompt
func WithPrompt(enabled bool) Option {
	return func(c *Console) {
		c.prompt = enabled
	}
}

// NewConsole creates a console reading commands from in and writing to out
func NewConsole(service *partnerapp.CustomerService, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		service: service,
		in:      in,
		out:     out,
		logger:  zap.NewNop(),
		prompt:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = c.registerCommands()
	return c
}

// Run reads and executes commands until quit, end of input or ctx is done.
// Command failures are reported to the writer and do not end the session.
func (c *Console) Run(ctx context.Context) error {
	ctx, sessionLogger := logger.WithSessionID(ctx, c.logger, uuid.NewString())
	sessionLogger.Info("console session started")
	defer sessionLogger.Info("console session ended")

	c.printf("CRM console. Type help for the list of commands.\n")

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.prompt {
			c.printf("%s", Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		if err := c.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			c.printf("%s\n", formatError(err))
		}
	}
}

// Execute runs a single command line.
// Blank lines and lines starting with # are ignored.
func (c *Console) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	cmd, ok := c.commands[name]
	if !ok {
		return shared.NewDomainError("UNKNOWN_COMMAND", fmt.Sprintf("Unknown command %q. Type help for the list of commands", name))
	}

	ctx, span := telemetry.StartCommandSpan(ctx, name)
	defer span.End()
	ctx, _ = logger.WithOperation(ctx, logger.FromContext(ctx), name)

	start := time.Now()
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.CommandLabels(name, nil), func(ctx context.Context) {
		err = cmd.run(ctx, args)
	})

	failed := err != nil && !errors.Is(err, ErrQuit)
	if c.recorder != nil {
		var recorded error
		if failed {
			recorded = err
		}
		c.recorder.RecordCommand(ctx, name, time.Since(start), recorded)
	}
	if failed {
		telemetry.RecordError(span, err)
		logger.L(ctx).Debug("command failed", zap.Error(err))
		return err
	}
	telemetry.SetOK(span)
	return err
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) help(ctx context.Context, args string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	c.printf("Commands:\n")
	for _, name := range names {
		cmd := c.commands[name]
		c.printf("  %-48s %s\n", cmd.usage, cmd.description)
	}
	return nil
}

// formatError renders an error with its domain code when it has one
func formatError(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return fmt.Sprintf("Error [%s]: %s", domainErr.Code, err.Error())
	}
	return "Error: " + err.Error()
}

// usageError reports a malformed command line
func usageError(usage string) error {
	return shared.NewDomainError(shared.ErrInvalidInput.Code, "Usage: "+usage)
}
