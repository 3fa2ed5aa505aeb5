// Package regenerate rebuilds derived outputs by running an external
// command next to each artifact, such as re-running a chart script or
// compiling a slide deck.
package regenerate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/logger"
)

// Verify interface compliance.
var _ driven.RegenerationGateway = (*Gateway)(nil)

// DefaultGracePeriod is the wait between SIGINT and SIGKILL when a build
// outlives its timeout.
const DefaultGracePeriod = 2 * time.Second

// tailLines caps the number of log lines carried in a failure message.
const tailLines = 5

// Config holds the configuration for a gateway.
type Config struct {
	// Root is the corpus root that artifact keys are relative to.
	Root string

	// Command is a text/template run through sh -c in the artifact's
	// directory. Fields: .Key .Name .Stem .Dir .Folder.
	Command string

	// Output optionally names the expected output, relative to the
	// artifact's directory. Same template fields as Command.
	Output string

	Timeout     time.Duration
	GracePeriod time.Duration

	// WarningPatterns turn a clean build into a warning when any appears in its log.
	WarningPatterns []string

	// MaxConcurrent caps simultaneous builds.
	MaxConcurrent int

	// LaunchesPerSecond throttles build starts. Zero disables throttling.
	LaunchesPerSecond float64

	// AuxExtensions lists by-products (".aux", ".log") moved into AuxDir
	// after each build. AuxDir is relative to the artifact's directory.
	AuxExtensions []string
	AuxDir        string

	// Env is the process environment. Nil inherits the current one.
	Env []string
}

// FromSettings builds a gateway config from application settings.
func FromSettings(root string, s domain.RegenerateSettings) Config {
	return Config{
		Root:              root,
		Command:           s.Command,
		Output:            s.Output,
		Timeout:           s.Timeout,
		WarningPatterns:   s.WarningPatterns,
		MaxConcurrent:     s.MaxConcurrent,
		LaunchesPerSecond: s.LaunchesPerSecond,
		AuxExtensions:     s.AuxExtensions,
		AuxDir:            s.AuxDir,
	}
}

// Gateway runs external builds under a timeout, a concurrency cap and an
// optional launch rate.
type Gateway struct {
	cfg     Config
	command *template.Template
	output  *template.Template
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// templateData is exposed to the command and output templates.
type templateData struct {
	Key    string
	Name   string
	Stem   string
	Dir    string
	Folder string
}

// New validates cfg and creates a gateway.
func New(cfg Config) (*Gateway, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("%w: regeneration command is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultRegenTimeout
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = domain.DefaultRegenConcurrency
	}
	if cfg.AuxDir == "" {
		cfg.AuxDir = "temp"
	}

	command, err := parseTemplate("command", cfg.Command)
	if err != nil {
		return nil, err
	}
	var output *template.Template
	if cfg.Output != "" {
		if output, err = parseTemplate("output", cfg.Output); err != nil {
			return nil, err
		}
	}

	g := &Gateway{
		cfg:     cfg,
		command: command,
		output:  output,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
	if cfg.LaunchesPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.LaunchesPerSecond), 1)
	}
	return g, nil
}

// Regenerate rebuilds the derived output of key. It never returns an
// error; every problem is a failure result.
func (g *Gateway) Regenerate(ctx context.Context, key string) domain.RegenerationResult {
	start := time.Now()
	result := domain.RegenerationResult{ExitCode: -1}

	data := templateData{
		Key:    key,
		Name:   domain.KeyName(key),
		Stem:   domain.KeyStem(key),
		Dir:    filepath.Join(g.cfg.Root, filepath.FromSlash(filepath.Dir(key))),
		Folder: domain.KeyFolder(key),
	}

	command, err := execute(g.command, data)
	if err != nil {
		return failed(result, start, "render command: %v", err)
	}
	var outputPath string
	if g.output != nil {
		rel, err := execute(g.output, data)
		if err != nil {
			return failed(result, start, "render output path: %v", err)
		}
		outputPath = filepath.Join(data.Dir, rel)
		result.OutputPath = outputPath
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return failed(result, start, "cancelled: %v", err)
	}
	defer g.sem.Release(1)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return failed(result, start, "cancelled: %v", err)
		}
	}

	if outputPath != "" {
		if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return failed(result, start, "remove stale output: %v", err)
		}
	}

	logger.Debug("regenerate %s: sh -c %q in %s", key, command, data.Dir)
	log, exitCode, timedOut, err := g.run(ctx, data.Dir, command)
	result.ExitCode = exitCode
	result.TimedOut = timedOut
	g.sweep(data)

	switch {
	case err != nil:
		return failed(result, start, "start: %v", err)
	case timedOut:
		return failed(result, start, "timed out after %s: %s", g.cfg.Timeout, tail(log))
	case ctx.Err() != nil:
		return failed(result, start, "cancelled: %s", tail(log))
	case exitCode != 0:
		return failed(result, start, "exit %d: %s", exitCode, tail(log))
	}

	if outputPath != "" {
		if _, err := os.Stat(outputPath); err != nil {
			return failed(result, start, "expected output %s missing", filepath.Base(outputPath))
		}
	}

	result.Duration = time.Since(start)
	if warnings := g.warnings(log); len(warnings) > 0 {
		result.Status = domain.RegenWarning
		result.Message = strings.Join(warnings, "; ")
		return result
	}
	result.Status = domain.RegenSuccess
	return result
}

// run executes command with sh -c in its own process group. On timeout the
// group gets SIGINT, then SIGKILL after the grace period.
func (g *Gateway) run(ctx context.Context, dir, command string) (log []byte, exitCode int, timedOut bool, err error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = g.cfg.Env
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = g.cfg.GracePeriod
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, -1, false, err
	}

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()

	var runErr error
	select {
	case runErr = <-waitDone:
	case <-timeoutCtx.Done():
		timedOut = ctx.Err() == nil
		killProcessGroup(cmd, g.cfg.GracePeriod, waitDone)
		runErr = <-waitDone
	}

	exitCode = 0
	if runErr != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}
	return buf.Bytes(), exitCode, timedOut, nil
}

// warnings returns log lines matching any warning pattern.
func (g *Gateway) warnings(log []byte) []string {
	var out []string
	for _, line := range strings.Split(string(log), "\n") {
		line = strings.TrimSpace(line)
		for _, p := range g.cfg.WarningPatterns {
			if p != "" && strings.Contains(line, p) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// sweep moves build by-products named after the artifact into AuxDir.
func (g *Gateway) sweep(data templateData) {
	if len(g.cfg.AuxExtensions) == 0 {
		return
	}
	auxDir := filepath.Join(data.Dir, g.cfg.AuxDir)
	for _, ext := range g.cfg.AuxExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		src := filepath.Join(data.Dir, data.Stem+ext)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.MkdirAll(auxDir, 0o755); err != nil {
			logger.Warn("sweep %s: %v", data.Key, err)
			return
		}
		if err := os.Rename(src, filepath.Join(auxDir, data.Stem+ext)); err != nil {
			logger.Warn("sweep %s: %v", src, err)
		}
	}
}

// tail picks the error-looking lines of a log, or its last lines when
// none stand out.
func tail(log []byte) string {
	lines := strings.Split(strings.TrimSpace(string(log)), "\n")
	var errs []string
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "!") || strings.Contains(strings.ToLower(l), "error") || strings.HasPrefix(l, "Traceback") {
			errs = append(errs, l)
		}
	}
	if len(errs) == 0 {
		errs = lines
	}
	if len(errs) > tailLines {
		errs = errs[len(errs)-tailLines:]
	}
	return strings.TrimSpace(strings.Join(errs, " | "))
}

func failed(result domain.RegenerationResult, start time.Time, format string, args ...any) domain.RegenerationResult {
	result.Status = domain.RegenFailure
	result.Message = fmt.Sprintf(format, args...)
	result.Duration = time.Since(start)
	return result
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s template: %w", domain.ErrInvalidInput, name, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
