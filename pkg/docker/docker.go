// Package docker drives the container runtime through its CLI, which is the
// contract the provisioning pipeline consumes: stop, rm, run, ps and logs.
package docker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/pkg/command"
)

var validNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Client wraps container runtime CLI calls
type Client struct {
	runner  command.Runner
	network string
}

// NewClient creates a docker client bound to the shared network
func NewClient(runner command.Runner, network string) *Client {
	return &Client{runner: runner, network: network}
}

// ValidateName checks that a string is usable as a container or image name
func ValidateName(name string) bool {
	return validNamePattern.MatchString(name)
}

// RunOptions describes a detached container start
type RunOptions struct {
	Name          string
	Image         string
	HostPort      int
	ContainerPort int
	RestartPolicy string
}

// StopAndRemove stops and removes a container, treating "no such container"
// as success so re-deploys are idempotent.
func (c *Client) StopAndRemove(ctx context.Context, name string) error {
	if out, err := c.runner.Run(ctx, "", "docker", "stop", name); err != nil {
		if !isNoSuchContainer(out) {
			return apperrors.NewExternalProcess("docker stop "+name, strings.TrimSpace(string(out)), err)
		}
	}
	if out, err := c.runner.Run(ctx, "", "docker", "rm", name); err != nil {
		if !isNoSuchContainer(out) {
			return apperrors.NewExternalProcess("docker rm "+name, strings.TrimSpace(string(out)), err)
		}
	}
	return nil
}

// RunDetached starts a new container on the shared network
func (c *Client) RunDetached(ctx context.Context, opts RunOptions) error {
	args := []string{"run", "-d", "--name", opts.Name, "--network", c.network}
	if opts.HostPort > 0 && opts.ContainerPort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:%d", opts.HostPort, opts.ContainerPort))
	}
	if opts.RestartPolicy != "" {
		args = append(args, "--restart", opts.RestartPolicy)
	}
	args = append(args, opts.Image)

	if out, err := c.runner.Run(ctx, "", "docker", args...); err != nil {
		return apperrors.NewExternalProcess("docker run "+opts.Name, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// IsRunning reports whether a container with exactly this name is listed as running
func (c *Client) IsRunning(ctx context.Context, name string) (bool, error) {
	out, err := c.runner.Run(ctx, "", "docker", "ps",
		"--filter", "name=^"+name+"$",
		"--format", "{{.Names}}")
	if err != nil {
		return false, apperrors.NewExternalProcess("docker ps", strings.TrimSpace(string(out)), err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// Logs fetches the last lines of a container's output for diagnostics
func (c *Client) Logs(ctx context.Context, name string, tail int) (string, error) {
	out, err := c.runner.Run(ctx, "", "docker", "logs", "--tail", fmt.Sprintf("%d", tail), name)
	if err != nil {
		return "", apperrors.NewExternalProcess("docker logs "+name, strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// WaitUntilRunning polls ps until the container shows up as running or the
// settle window elapses.
func (c *Client) WaitUntilRunning(ctx context.Context, name string, settle time.Duration) (bool, error) {
	deadline := time.Now().Add(settle)
	for {
		running, err := c.IsRunning(ctx, name)
		if err != nil {
			return false, err
		}
		if running {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func isNoSuchContainer(out []byte) bool {
	s := strings.ToLower(string(out))
	return strings.Contains(s, "no such container") || strings.Contains(s, "is not running")
}
