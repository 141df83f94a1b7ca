package misc

import "testing"

func TestBuildInfo(t *testing.T) {
	if GetAppName() != "stylc" {
		t.Errorf("GetAppName() = %q", GetAppName())
	}
	if len(GetVersion()) == 0 {
		t.Error("GetVersion() must not be empty")
	}
	if len(GetGitHash()) == 0 {
		t.Error("GetGitHash() must not be empty")
	}

	version, gitHash = "1.2.3", "abcdef"
	defer func() { version, gitHash = "", "" }()
	if GetVersion() != "1.2.3" || GetGitHash() != "abcdef" {
		t.Errorf("build time values ignored: %s %s", GetVersion(), GetGitHash())
	}
}
