// Package builder invokes the external build executor that turns a site's
// configuration artifact into a static build and a container image.
package builder

import (
	"context"
	"strings"
	"time"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/pkg/command"
)

// Executor runs the build script as a subprocess with a hard timeout
type Executor struct {
	Script  string
	Workdir string
	Timeout time.Duration

	runner command.Runner
}

// NewExecutor creates a build executor
func NewExecutor(runner command.Runner, script, workdir string, timeout time.Duration) *Executor {
	return &Executor{
		Script:  script,
		Workdir: workdir,
		Timeout: timeout,
		runner:  runner,
	}
}

// Build runs `<script> <siteId> --build --docker` from the fixed working
// directory. The script consumes the site's config artifact and asset
// directory by path convention and produces the `<siteId>-website` image.
// A non-zero exit or timeout is terminal for the pipeline step.
func (e *Executor) Build(ctx context.Context, siteID string) (string, error) {
	buildCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	out, err := e.runner.Run(buildCtx, e.Workdir, e.Script, siteID, "--build", "--docker")
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, apperrors.NewExternalProcess("build "+siteID, output, err)
	}
	return output, nil
}

// ImageName returns the container image the build executor produces for a site
func ImageName(siteID string) string {
	return siteID + "-website"
}
