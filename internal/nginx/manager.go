// Package nginx renders per-hostname virtual host configs, installs them
// into the proxy's config directory and reloads the proxy after a syntax
// test. The proxy itself runs as a container; test and reload go through
// its CLI.
package nginx

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/redis"
	"github.com/sitelaunch/sitelaunch/api/pkg/command"
)

const upstreamPort = 80

// Manager owns the proxy config directory and the reload lifecycle
type Manager struct {
	configDir      string
	proxyContainer string
	certPath       string
	certKeyPath    string
	runner         command.Runner

	// Serializes install+test+reload so two callers cannot race a reload
	// against a half-written config directory.
	mu sync.Mutex
}

// NewManager creates a config manager for the given proxy installation
func NewManager(runner command.Runner, configDir, proxyContainer, certPath, certKeyPath string) *Manager {
	return &Manager{
		configDir:      configDir,
		proxyContainer: proxyContainer,
		certPath:       certPath,
		certKeyPath:    certKeyPath,
		runner:         runner,
	}
}

// GetConfigPath returns the config file path for a hostname
func (m *Manager) GetConfigPath(hostname string) string {
	return filepath.Join(m.configDir, hostname+".conf")
}

// ConfigExists reports whether a config file is installed for the hostname
func (m *Manager) ConfigExists(hostname string) bool {
	_, err := os.Stat(m.GetConfigPath(hostname))
	return err == nil
}

// GenerateSubdomainConfig renders and installs a vhost for a generated
// subdomain using the installation's wildcard certificate.
func (m *Manager) GenerateSubdomainConfig(hostname, containerName string) (string, error) {
	return m.install(vhostData{
		Hostname:      hostname,
		ServerNames:   hostname,
		ContainerName: containerName,
		UpstreamPort:  upstreamPort,
		CertPath:      m.certPath,
		CertKeyPath:   m.certKeyPath,
	})
}

// GenerateCustomDomainConfig renders and installs a vhost for an
// externally-owned hostname with its own certificate, also routing the
// www. prefix.
func (m *Manager) GenerateCustomDomainConfig(hostname, containerName, certPath string) (string, error) {
	return m.install(vhostData{
		Hostname:      hostname,
		ServerNames:   hostname + " www." + hostname,
		ContainerName: containerName,
		UpstreamPort:  upstreamPort,
		CertPath:      certPath,
		CertKeyPath:   strings.TrimSuffix(certPath, filepath.Ext(certPath)) + ".key",
	})
}

func (m *Manager) install(data vhostData) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create proxy config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := vhostTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render vhost config for %s: %w", data.Hostname, err)
	}

	// Write to a temp file first so the proxy never reads a partial config
	target := m.GetConfigPath(data.Hostname)
	tmp, err := os.CreateTemp(m.configDir, data.Hostname+".conf.*")
	if err != nil {
		return "", fmt.Errorf("failed to stage vhost config for %s: %w", data.Hostname, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write vhost config for %s: %w", data.Hostname, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write vhost config for %s: %w", data.Hostname, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to install vhost config for %s: %w", data.Hostname, err)
	}

	return target, nil
}

// RemoveConfig deletes the config file for a hostname. A missing file is
// not an error.
func (m *Manager) RemoveConfig(hostname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.GetConfigPath(hostname)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove vhost config for %s: %w", hostname, err)
	}
	return nil
}

// ReloadProxy syntax-tests the installed configuration and only then asks
// the proxy for a live reload. A failed test leaves the previous live
// configuration serving traffic.
func (m *Manager) ReloadProxy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Cross-process serialization; the local mutex still covers in-process
	// callers when Redis is unavailable.
	for attempt := 0; attempt < 10; attempt++ {
		ok, err := redis.AcquireProxyReloadLock(ctx)
		if err != nil {
			log.Printf("[Nginx] Reload lock unavailable, relying on local serialization: %v", err)
			break
		}
		if ok {
			defer func() {
				if err := redis.ReleaseProxyReloadLock(context.WithoutCancel(ctx)); err != nil {
					log.Printf("[Nginx] Failed to release reload lock: %v", err)
				}
			}()
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	out, err := m.runner.Run(ctx, "", "docker", "exec", m.proxyContainer, "nginx", "-t")
	if err != nil {
		return apperrors.NewExternalProcess("nginx config test", strings.TrimSpace(string(out)), err)
	}

	out, err = m.runner.Run(ctx, "", "docker", "exec", m.proxyContainer, "nginx", "-s", "reload")
	if err != nil {
		return apperrors.NewExternalProcess("nginx reload", strings.TrimSpace(string(out)), err)
	}

	return nil
}
