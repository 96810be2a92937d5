package shared

import (
	"strings"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	tc := []struct {
		platform string
		wantBin  string
		wantErr  bool
	}{
		{platform: "darwin", wantBin: "open"},
		{platform: "linux", wantBin: "xdg-open"},
		{platform: "windows", wantBin: "rundll32"},
		{platform: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.platform, func(t *testing.T) {
			getRuntime = func() string { return tt.platform }

			cmd, err := browserCommand("http://localhost:8000/public-video/abc12345")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err := OpenBrowser("http://example.com"); err == nil {
					t.Error("OpenBrowser() expected error on unsupported platform")
				}
				return
			}

			if !strings.HasSuffix(cmd.Path, tt.wantBin) && cmd.Args[0] != tt.wantBin {
				t.Errorf("expected command %s, got %v", tt.wantBin, cmd.Args)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "http://localhost:8000/public-video/abc12345" {
				t.Errorf("expected URL as last argument, got %s", last)
			}
		})
	}
}
