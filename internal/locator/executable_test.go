// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"slices"
	"testing"
)

func TestParseUNCPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		env    string
		inner  string
		wantOK bool
	}{
		{`\\wsl$\Ubuntu\usr\bin\enc`, "Ubuntu", "/usr/bin/enc", true},
		{`\\wsl.localhost\Debian\home\me`, "Debian", "/home/me", true},
		{`\\WSL.LOCALHOST\Debian`, "Debian", "/", true},
		{`//wsl$/Ubuntu/usr/bin/enc`, "Ubuntu", "/usr/bin/enc", true},
		{`\\wsl$\`, "", "", false},
		{`C:\Program Files\Git\cmd\git.exe`, "", "", false},
		{`/usr/bin/enc`, "", "", false},
	}

	for _, tt := range tests {
		env, inner, ok := ParseUNCPath(tt.in)
		if ok != tt.wantOK || env != tt.env || inner != tt.inner {
			t.Errorf("ParseUNCPath(%q) = %q, %q, %v; want %q, %q, %v", tt.in, env, inner, ok, tt.env, tt.inner, tt.wantOK)
		}
	}
}

func TestParseExecutable(t *testing.T) {
	t.Parallel()

	if got := ParseExecutable(`\\wsl$\Ubuntu\usr\bin\enc`); got != VirtualExecutable("Ubuntu", "/usr/bin/enc") {
		t.Errorf("ParseExecutable(UNC) = %+v", got)
	}
	if got := ParseExecutable("/usr/bin/enc"); got != LocalExecutable("/usr/bin/enc") {
		t.Errorf("ParseExecutable(local) = %+v", got)
	}
}

func TestExecutable_Command(t *testing.T) {
	t.Parallel()

	local := LocalExecutable("/usr/bin/enc").Command("version")
	if local.Path != "/usr/bin/enc" || !slices.Equal(local.Args, []string{"version"}) {
		t.Errorf("local command = %+v", local)
	}

	virtual := VirtualExecutable("Ubuntu", "/usr/bin/enc").Command("version")
	wantArgs := []string{"--distribution", "Ubuntu", "--exec", "/usr/bin/enc", "version"}
	if virtual.Path != "wsl.exe" || !slices.Equal(virtual.Args, wantArgs) {
		t.Errorf("virtual command = %+v", virtual)
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	c := Command{Path: "/opt/my tools/enc", Args: []string{"version", "--short"}}
	if got, want := c.String(), "'/opt/my tools/enc' version --short"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestExecutableAndDomain_String(t *testing.T) {
	t.Parallel()

	if got := VirtualExecutable("Ubuntu", "/usr/bin/enc").String(); got != "Ubuntu:/usr/bin/enc" {
		t.Errorf("virtual String() = %q", got)
	}

	for d, want := range map[Domain]string{
		EnvironmentDomain():                "env",
		SystemDefaultPathsDomain():         "system",
		VirtualEnvironmentDomain("Ubuntu"): "virtual:Ubuntu",
		AllVirtualEnvironmentsDomain():     "virtual:*",
	} {
		if got := d.String(); got != want {
			t.Errorf("Domain.String() = %q, want %q", got, want)
		}
	}
}
