// Package probe builds the background reachability and fact probes the
// cache manager drives. SSH probes use BatchMode with a one second connect
// timeout so an unreachable host costs about a second, never a hang.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tview/internal/cache"
	"tview/internal/config"
)

// Reachability values published for ssh/<env> keys.
const (
	Connected   = "connected"
	Unreachable = "unreachable"
)

// connectTimeout bounds the ssh connection attempt itself; the context
// passed to Run bounds the whole subprocess.
const connectTimeout = 1

// SSHKey returns the cache key for an environment's reachability fact.
func SSHKey(envName string) string { return "ssh/" + envName }

// GitKey returns the cache key for a git fact in the source checkout.
func GitKey(fact string) string { return "git/" + fact }

// CheckSSH attempts a no-op command over ssh against the target.
func CheckSSH(ctx context.Context, target string, port int) string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", connectTimeout),
		"-o", "StrictHostKeyChecking=accept-new",
	}
	if port != 0 && port != 22 {
		args = append(args, "-p", fmt.Sprintf("%d", port))
	}
	args = append(args, target, "true")

	cmd := exec.CommandContext(ctx, "ssh", args...)
	if err := cmd.Run(); err != nil {
		return Unreachable
	}
	return Connected
}

// gitFact runs a git query in dir and returns its trimmed first line.
func gitFact(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("probe: git %s: %w", strings.Join(args, " "), err)
	}
	line := strings.TrimSpace(string(out))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line, nil
}

// ForConfig assembles the probe set for the loaded configuration: one ssh
// reachability probe per remote environment, plus git facts when TETRA_SRC
// points at a checkout.
func ForConfig(cfg *config.Config, ttl time.Duration) []cache.Probe {
	var probes []cache.Probe
	for _, name := range cfg.EnvNames() {
		env := cfg.Environments[name]
		target := env.SSHTarget()
		if target == "" {
			continue
		}
		name, env := name, env
		probes = append(probes, cache.Probe{
			Key: SSHKey(name),
			TTL: ttl,
			Run: func(ctx context.Context) (string, error) {
				ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return CheckSSH(ctx, target, env.Port), nil
			},
		})
	}

	if src := config.SrcDir(); src != "" {
		probes = append(probes,
			cache.Probe{
				Key: GitKey("branch"),
				TTL: ttl,
				Run: func(ctx context.Context) (string, error) {
					return gitFact(ctx, src, "rev-parse", "--abbrev-ref", "HEAD")
				},
			},
			cache.Probe{
				Key: GitKey("head"),
				TTL: ttl,
				Run: func(ctx context.Context) (string, error) {
					return gitFact(ctx, src, "log", "-1", "--format=%h %s")
				},
			},
			cache.Probe{
				Key: GitKey("status"),
				TTL: ttl,
				Run: func(ctx context.Context) (string, error) {
					out, err := gitFact(ctx, src, "status", "--porcelain")
					if err != nil {
						return "", err
					}
					if out == "" {
						return "clean", nil
					}
					return "dirty", nil
				},
			},
		)
	}
	return probes
}
