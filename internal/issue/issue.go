// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ToolNotInstalledId Id = iota + 1
	VersionUnidentifiedId
	UnsupportedVersionId
	ConfigLoadFailedId
	VirtualEnvTimeoutId
	AmbiguousVirtualEnvId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation for this issue type
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. Links are appended as a
// "See also" list.
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(sb.String(), stylePath)
}

var (
	render = glamour.Render

	toolNotInstalledIssue = &Issue{
		id: ToolNotInstalledId,
		mdMsg: `
# Tool not found!

The executable could not be started. It is most likely not installed, or it
is installed somewhere that is neither on your PATH nor in a default location.

## Locations searched (in order of precedence):
1. The WSL distribution of the project, for projects opened from ` + "`\\\\wsl$`" + `
2. Every directory on your PATH
3. Default install locations:
   - Unix: ` + "`/usr/local/bin`, `/opt/local/bin`, `/usr/bin`, `/opt/bin`" + `
   - Windows: ` + "`Program Files`" + ` and ` + "`Program Files (x86)`" + `, then ` + "`cygwin\\bin`" + `
4. Every installed WSL 2 distribution, when exactly one of them has the tool

## Things you can try:
- Install the tool and make sure it is on your PATH
- Point the configuration at the executable:
~~~cue
tool: {
  path: "/opt/enc/bin/enc"
}
~~~
- Re-run detection after installing:
~~~
$ enclocate detect
~~~`,
	}

	versionUnidentifiedIssue = &Issue{
		id: VersionUnidentifiedId,
		mdMsg: `
# Cannot identify the tool version!

The executable started, but its ` + "`version`" + ` output was not recognized.
The configured path probably points at a different program or a wrapper script.

## Things you can try:
- Run the executable yourself and check its output:
~~~
$ enc version
~~~
- Check ` + "`tool.path`" + ` in your configuration:
~~~
$ enclocate config show
~~~`,
	}

	unsupportedVersionIssue = &Issue{
		id: UnsupportedVersionId,
		mdMsg: `
# Unsupported tool version!

The installed version is older than the minimum supported version. Most
features keep working, but some commands may fail or behave differently.

## Things you can try:
- Upgrade the tool to a newer release
- If you have several installations, point the configuration at the newer one:
~~~cue
tool: {
  path: "/usr/local/bin/enc"
}
~~~
- Lower the minimum at your own risk:
~~~cue
tool: {
  minimum_version: "2.10.0"
}
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file could not be read or does not match the schema.

## Things you can try:
- Check the syntax of your config file:
~~~
$ enclocate config path
~~~
- Write a fresh default configuration:
~~~
$ enclocate config init
~~~
- A minimal valid configuration looks like:
~~~cue
tool: {
  name: "enc"
  minimum_version: "2.19.0"
}
projects: [
  {dir: "/home/me/work/app", path: "/opt/enc/bin/enc", trusted: true},
]
~~~`,
	}

	virtualEnvTimeoutIssue = &Issue{
		id: VirtualEnvTimeoutId,
		mdMsg: `
# WSL distribution did not respond!

Checking a WSL distribution for the tool took longer than the configured
timeout. The distribution may be starting up or its filesystem may be hung.

## Things you can try:
- Start the distribution once and retry:
~~~
$ wsl.exe --distribution Ubuntu --exec true
$ enclocate detect
~~~
- Increase the timeout:
~~~cue
detection: {
  virtual_env_timeout: "30s"
}
~~~
- Disable scanning every distribution:
~~~cue
detection: {
  scan_all_virtual_envs: false
}
~~~`,
	}

	ambiguousVirtualEnvIssue = &Issue{
		id: AmbiguousVirtualEnvId,
		mdMsg: `
# Tool found in several WSL distributions!

More than one WSL distribution has the tool at a different path, so none of
them was picked.

## Things you can try:
- Open the project from the distribution's ` + "`\\\\wsl.localhost`" + ` share
- Or set the executable explicitly:
~~~cue
tool: {
  path: "\\\\wsl.localhost\\Ubuntu\\usr\\bin\\enc"
}
~~~`,
	}

	issues = map[Id]*Issue{
		toolNotInstalledIssue.Id():    toolNotInstalledIssue,
		versionUnidentifiedIssue.Id(): versionUnidentifiedIssue,
		unsupportedVersionIssue.Id():  unsupportedVersionIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		virtualEnvTimeoutIssue.Id():   virtualEnvTimeoutIssue,
		ambiguousVirtualEnvIssue.Id(): ambiguousVirtualEnvIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
