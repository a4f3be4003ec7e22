package docker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
)

type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	errors  map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	joined := strings.Join(call, " ")
	for marker, err := range f.errors {
		if strings.Contains(joined, marker) {
			return []byte(f.outputs[marker]), err
		}
	}
	for marker, out := range f.outputs {
		if strings.Contains(joined, marker) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errors: map[string]error{}}
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("cafe-rene-abc12345"))
	assert.True(t, ValidateName("site_1.web"))
	assert.False(t, ValidateName(""))
	assert.False(t, ValidateName("-leading"))
	assert.False(t, ValidateName("no spaces"))
}

func TestStopAndRemoveIdempotent(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["docker stop"] = "Error: No such container: cafe-rene"
	runner.errors["docker stop"] = fmt.Errorf("exit status 1")
	runner.outputs["docker rm"] = "Error: No such container: cafe-rene"
	runner.errors["docker rm"] = fmt.Errorf("exit status 1")

	c := NewClient(runner, "sitelaunch-net")
	assert.NoError(t, c.StopAndRemove(context.Background(), "cafe-rene"))
}

func TestStopAndRemoveSurfacesRealErrors(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["docker stop"] = "permission denied"
	runner.errors["docker stop"] = fmt.Errorf("exit status 1")

	c := NewClient(runner, "sitelaunch-net")
	err := c.StopAndRemove(context.Background(), "cafe-rene")
	require.Error(t, err)
	assert.True(t, apperrors.IsExternalProcess(err))
}

func TestRunDetachedArgs(t *testing.T) {
	runner := newFakeRunner()
	c := NewClient(runner, "sitelaunch-net")

	require.NoError(t, c.RunDetached(context.Background(), RunOptions{
		Name:          "cafe-rene-abc12345",
		Image:         "cafe-rene-website",
		HostPort:      3000,
		ContainerPort: 80,
		RestartPolicy: "unless-stopped",
	}))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "run", "-d",
		"--name", "cafe-rene-abc12345",
		"--network", "sitelaunch-net",
		"-p", "3000:80",
		"--restart", "unless-stopped",
		"cafe-rene-website",
	}, runner.calls[0])
}

func TestRunDetachedOmitsUnsetOptions(t *testing.T) {
	runner := newFakeRunner()
	c := NewClient(runner, "sitelaunch-net")

	require.NoError(t, c.RunDetached(context.Background(), RunOptions{
		Name:  "helper",
		Image: "helper-image",
	}))

	joined := strings.Join(runner.calls[0], " ")
	assert.NotContains(t, joined, "-p ")
	assert.NotContains(t, joined, "--restart")
}

func TestIsRunningMatchesExactName(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["docker ps"] = "cafe-rene-abc12345\n"

	c := NewClient(runner, "sitelaunch-net")
	running, err := c.IsRunning(context.Background(), "cafe-rene-abc12345")
	require.NoError(t, err)
	assert.True(t, running)

	runner.outputs["docker ps"] = ""
	running, err = c.IsRunning(context.Background(), "cafe-rene-abc12345")
	require.NoError(t, err)
	assert.False(t, running)
}
