// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/enc4idea/enclocate/internal/issue"
)

// supportedVirtualEnvVersion is the only WSL version whose filesystem is
// probed; WSL 1 distributions never yield a path.
const supportedVirtualEnvVersion = 2

type (
	// virtualEnvProbe checks the default Unix locations inside one
	// environment.
	virtualEnvProbe struct {
		d   *Detector
		env VirtualEnv
	}

	// allVirtualEnvsProbe probes every installed environment. Its Current
	// result is only a path when all environments agree on it.
	allVirtualEnvsProbe struct {
		d *Detector
	}
)

func (p *virtualEnvProbe) Domain() Domain { return VirtualEnvironmentDomain(p.env.ID) }

func (p *virtualEnvProbe) Current() (DetectedPath, bool) { return p.d.cache.Read(p.Domain()) }

func (p *virtualEnvProbe) Run(ctx context.Context) {
	env := p.env
	if env.Version == 0 {
		env = p.d.resolveVirtualEnv(ctx, env)
	}
	path := p.d.checkVirtualEnv(ctx, env)
	if path == "" && ctx.Err() != nil {
		return
	}
	p.d.cache.store(p.Domain(), DetectedPath{Path: path})
}

func (p *allVirtualEnvsProbe) Domain() Domain { return AllVirtualEnvironmentsDomain() }

// Current aggregates the per-environment results: one distinct path is
// returned as is, zero or several distinct paths mean nothing found.
func (p *allVirtualEnvsProbe) Current() (DetectedPath, bool) {
	if _, ok := p.d.cache.Read(p.Domain()); !ok {
		return DetectedPath{}, false
	}

	distinct := p.distinctPaths()
	if len(distinct) != 1 {
		return nothingFound, true
	}
	return DetectedPath{Path: distinct[0]}, true
}

// Run probes every installed environment. Nothing is marked as probed when
// ctx ends first; environments that did yield a path keep it.
func (p *allVirtualEnvsProbe) Run(ctx context.Context) {
	envs, err := p.d.venvs.Installed(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.d.logger.Warn("cannot list virtual environments", "error", err)
	}
	for _, env := range envs {
		path := p.d.checkVirtualEnv(ctx, env)
		if path == "" && ctx.Err() != nil {
			continue
		}
		p.d.cache.store(VirtualEnvironmentDomain(env.ID), DetectedPath{Path: path})
	}
	if ctx.Err() != nil {
		return
	}
	p.d.cache.store(p.Domain(), nothingFound)

	if distinct := p.distinctPaths(); len(distinct) > 1 {
		p.d.logger.Warn("executable found in several virtual environments, ignoring them",
			"paths", distinct, "details", explainHint(issue.AmbiguousVirtualEnvId))
	}
}

func (p *allVirtualEnvsProbe) distinctPaths() []string {
	var distinct []string
	for _, res := range p.d.cache.virtualResults() {
		if res.Found() && !slices.Contains(distinct, res.Path) {
			distinct = append(distinct, res.Path)
		}
	}
	return distinct
}

// resolveVirtualEnv fills in the version of a hinted environment.
func (d *Detector) resolveVirtualEnv(ctx context.Context, env VirtualEnv) VirtualEnv {
	envs, err := d.venvs.Installed(ctx)
	if err != nil {
		d.logger.Warn("cannot list virtual environments", "env", env.ID, "error", err)
		return env
	}
	for _, e := range envs {
		if e.ID == env.ID {
			return e
		}
	}
	return env
}

// checkVirtualEnv runs the filesystem checks for env on the probe worker.
// Failures and timeouts are logged and reported as nothing found.
func (d *Detector) checkVirtualEnv(ctx context.Context, env VirtualEnv) string {
	if env.Version != supportedVirtualEnvVersion {
		return ""
	}
	root := d.venvs.Root(env)

	path, err := d.worker.Do(ctx, d.virtualTimeout, func(ctx context.Context) (string, error) {
		for _, dir := range d.unixDirs() {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			candidate := filepath.Join(root, filepath.FromSlash(dir), d.tool)
			if d.exists(candidate) {
				return candidate, nil
			}
		}
		return "", nil
	})
	if err != nil {
		if errors.Is(err, ErrProbeTimeout) {
			d.logger.Warn("virtual environment probe timed out", "env", env.ID, "error", err,
				"details", explainHint(issue.VirtualEnvTimeoutId))
		} else {
			d.logger.Debug("virtual environment probe aborted", "env", env.ID, "error", err)
		}
		return ""
	}
	if path != "" {
		d.logger.Debug("found executable in virtual environment", "env", env.ID, "path", path)
	}
	return path
}

func explainHint(id issue.Id) string {
	return fmt.Sprintf("enclocate explain %d", id)
}
