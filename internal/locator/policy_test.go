// SPDX-License-Identifier: MPL-2.0

package locator

import "testing"

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2.19.0", want: "2.19.0"},
		{in: "v2.20.1", want: "2.20.1"},
		{in: "2.19", want: "2.19.0"},
		{in: "2.19.0-rc1", wantErr: true},
		{in: "latest", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		p, err := NewPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && p.Minimum() != tt.want {
			t.Errorf("NewPolicy(%q).Minimum() = %q, want %q", tt.in, p.Minimum(), tt.want)
		}
	}
}

func TestPolicy_IsSupported(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	tests := []struct {
		v    Version
		want bool
	}{
		{Version{Major: 2, Minor: 19, Type: VersionTypeUndefined}, true},
		{Version{Major: 2, Minor: 39, Revision: 1, Type: VersionTypeMSYS}, true},
		{Version{Major: 2, Minor: 18, Revision: 5, Patch: 9, Type: VersionTypeUndefined}, false},
		{Version{Major: 1, Minor: 99, Type: VersionTypeUndefined}, false},
		{NullVersion, false},
	}

	for _, tt := range tests {
		if got := p.IsSupported(tt.v); got != tt.want {
			t.Errorf("IsSupported(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}

	var zero Policy
	if zero.Minimum() != DefaultMinimumVersion {
		t.Errorf("zero Policy minimum = %q", zero.Minimum())
	}
}
