// Package toolchain provisions the build toolchain and derives the
// fingerprint used in cache keys. Provisioning failures are fatal: the
// pipeline run aborts before any step executes.
package toolchain

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"kiln-agent/src/logger"
	"kiln-agent/src/runner"
)

// Toolchain describes a provisioned toolchain.
type Toolchain struct {
	// Channel the toolchain was requested as (e.g. "stable").
	Channel string
	// Version is the resolved compiler version string
	// (e.g. "rustc 1.81.0 (eeb90cda1 2024-09-04)").
	Version string
	// Fingerprint is a short digest of Version. It changes whenever the
	// installed toolchain version changes, which is exactly what the
	// cache key needs.
	Fingerprint string
}

// Provisioner installs and verifies a toolchain channel.
type Provisioner struct {
	channel string
	exec    runner.CommandRunner
	logger  logger.Logger
}

// NewProvisioner creates a provisioner for the channel.
func NewProvisioner(channel string, exec runner.CommandRunner, log logger.Logger) *Provisioner {
	return &Provisioner{channel: channel, exec: exec, logger: log}
}

// Ensure installs the channel if needed and resolves the concrete compiler
// version behind it.
func (p *Provisioner) Ensure(ctx context.Context) (*Toolchain, error) {
	p.logger.Info("[Toolchain] Ensuring %s toolchain", p.channel)

	var installOut []string
	exitCode, err := p.exec.Run(ctx, runner.CommandSpec{
		Argv: []string{"rustup", "toolchain", "install", p.channel},
	}, func(line string) { installOut = append(installOut, line) })
	if err != nil {
		return nil, fmt.Errorf("toolchain install failed: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("toolchain install failed with exit code %d: %s",
			exitCode, lastLine(installOut))
	}

	var versionOut []string
	exitCode, err = p.exec.Run(ctx, runner.CommandSpec{
		Argv: []string{"rustup", "run", p.channel, "rustc", "--version"},
	}, func(line string) { versionOut = append(versionOut, line) })
	if err != nil {
		return nil, fmt.Errorf("toolchain version query failed: %w", err)
	}
	if exitCode != 0 || len(versionOut) == 0 {
		return nil, fmt.Errorf("toolchain version query failed with exit code %d", exitCode)
	}

	version := strings.TrimSpace(versionOut[0])
	tc := &Toolchain{
		Channel:     p.channel,
		Version:     version,
		Fingerprint: Fingerprint(version),
	}

	p.logger.Info("[Toolchain] Provisioned %s (fingerprint %s)", tc.Version, tc.Fingerprint)
	return tc, nil
}

// Fingerprint derives the cache-key fragment for a toolchain version
// string: a short blake3 hex digest. Pure function of the version.
func Fingerprint(version string) string {
	sum := blake3.Sum256([]byte(strings.TrimSpace(version)))
	return hex.EncodeToString(sum[:8])
}

func lastLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
