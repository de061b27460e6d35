// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/enc4idea/enclocate/pkg/platform"
)

// Windows layout constants. The install roots are resolved against the
// detector's Windows root so tests can lay out a fake "C:\".
var (
	windowsProgramFiles = []string{"Program Files", "Program Files (x86)"}
	windowsBinDirs      = []string{"cmd", "bin"}
)

type (
	// Probe locates the executable in one search domain.
	//
	// Current only reads the DetectionCache and never blocks on filesystem or
	// process work. Run performs the search and stores its result; it is only
	// called by DetectionCache under the probe mutex.
	Probe interface {
		Domain() Domain
		Current() (DetectedPath, bool)
		Run(ctx context.Context)
	}

	// envProbe scans the PATH environment variable.
	envProbe struct {
		d *Detector
	}

	// systemProbe checks conventional install locations.
	systemProbe struct {
		d *Detector
	}
)

func (p *envProbe) Domain() Domain { return EnvironmentDomain() }

func (p *envProbe) Current() (DetectedPath, bool) { return p.d.cache.Read(p.Domain()) }

// Run honors PATH order; the first regular file with the executable name wins.
func (p *envProbe) Run(_ context.Context) {
	name := p.d.executableName()
	for _, dir := range platform.SplitPathList(p.d.goos, p.d.pathEnv()) {
		candidate := filepath.Join(dir, name)
		if !p.d.isFile(candidate) {
			continue
		}
		if !filepath.IsAbs(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				candidate = abs
			}
		}
		p.d.logger.Debug("found executable on PATH", "path", candidate)
		p.d.cache.store(p.Domain(), DetectedPath{Path: candidate})
		return
	}
	p.d.cache.store(p.Domain(), nothingFound)
}

func (p *systemProbe) Domain() Domain { return SystemDefaultPathsDomain() }

func (p *systemProbe) Current() (DetectedPath, bool) { return p.d.cache.Read(p.Domain()) }

func (p *systemProbe) Run(_ context.Context) {
	var found string
	if p.d.goos == platform.Windows {
		found = p.d.detectForWindows()
	} else {
		found = p.d.detectForUnix()
	}
	if found != "" {
		p.d.logger.Debug("found executable in default location", "path", found)
	}
	p.d.cache.store(p.Domain(), DetectedPath{Path: found})
}

// unixDirs returns the conventional Unix install directories, in priority order.
func (d *Detector) unixDirs() []string {
	return []string{
		"/usr/local/bin",
		"/opt/local/bin",
		"/usr/bin",
		"/opt/bin",
		"/usr/local/" + d.tool + "/bin",
	}
}

func (d *Detector) detectForUnix() string {
	for _, dir := range d.unixDirs() {
		candidate := filepath.Join(dir, d.tool)
		if d.exists(candidate) {
			return candidate
		}
	}
	return ""
}

func (d *Detector) detectForWindows() string {
	if exe := d.checkProgramFiles(); exe != "" {
		return exe
	}
	return d.checkCygwin()
}

// checkProgramFiles collects every "<tool>*" directory under the Program Files
// roots, orders them best-first and returns the first one holding the
// executable in one of its bin directories.
func (d *Detector) checkProgramFiles() string {
	prefix := strings.ToLower(d.tool)

	var candidates []installDir
	for _, programFiles := range windowsProgramFiles {
		root := filepath.Join(d.winRoot, programFiles)
		entries, err := afero.ReadDir(d.fs, root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || !strings.HasPrefix(strings.ToLower(e.Name()), prefix) {
				continue
			}
			candidates = append(candidates, installDir{
				parent: programFiles,
				name:   e.Name(),
				path:   filepath.Join(root, e.Name()),
			})
		}
	}

	sortInstallDirs(d.tool, candidates)

	exeName := d.executableName()
	for _, dir := range candidates {
		for _, bin := range windowsBinDirs {
			candidate := filepath.Join(dir.path, bin, exeName)
			if d.exists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// checkCygwin looks at the default Cygwin installation.
func (d *Detector) checkCygwin() string {
	candidate := filepath.Join(d.winRoot, "cygwin", "bin", d.executableName())
	if d.exists(candidate) {
		return candidate
	}
	return ""
}

// exists reports whether path exists. Stat failures of any kind count as
// "not there": detection never fails because of a single unreadable path.
func (d *Detector) exists(path string) bool {
	_, err := d.fs.Stat(path)
	return err == nil
}

// isFile reports whether path exists and is not a directory.
func (d *Detector) isFile(path string) bool {
	info, err := d.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// SearchDirs lists the directories whose contents decide local detection:
// PATH entries in order, then the default install locations. On Windows the
// Program Files roots are listed rather than every install directory, so
// new installations show up as changes to them. Duplicates are dropped.
func (d *Detector) SearchDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" {
			return
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		key := dir
		if d.goos == platform.Windows {
			key = strings.ToLower(dir)
		}
		if seen[key] {
			return
		}
		seen[key] = true
		dirs = append(dirs, dir)
	}

	for _, dir := range platform.SplitPathList(d.goos, d.pathEnv()) {
		add(dir)
	}
	if d.goos == platform.Windows {
		for _, programFiles := range windowsProgramFiles {
			add(filepath.Join(d.winRoot, programFiles))
		}
		add(filepath.Join(d.winRoot, "cygwin", "bin"))
		return dirs
	}
	for _, dir := range d.unixDirs() {
		add(dir)
	}
	return dirs
}
