package window

import (
	"regexp"
	"testing"
)

func TestParseWindowList(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []Window
	}{
		{
			name:   "single window",
			output: "0x04000007  0 host Mozilla Firefox\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "0", Title: "Mozilla Firefox"},
			},
		},
		{
			name: "multiple windows",
			output: "0x04000007  0 host Mozilla Firefox\n" +
				"0x04800003  1 host Terminal - vim\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "0", Title: "Mozilla Firefox"},
				{ID: "0x04800003", Desktop: "1", Title: "Terminal - vim"},
			},
		},
		{
			name:   "title with internal runs of spaces is normalized",
			output: "0x04000007  0 host Foo    -    Bar\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "0", Title: "Foo - Bar"},
			},
		},
		{
			name: "lines with fewer than four fields are skipped",
			output: "0x04000007  0 host Firefox\n" +
				"0x04800003 1 host\n" +
				"garbage\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "0", Title: "Firefox"},
			},
		},
		{
			name:   "empty lines are skipped",
			output: "\n\n0x04000007  0 host Firefox\n\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "0", Title: "Firefox"},
			},
		},
		{
			name:   "sticky window desktop",
			output: "0x04000007 -1 host Desktop\n",
			want: []Window{
				{ID: "0x04000007", Desktop: "-1", Title: "Desktop"},
			},
		},
		{
			name:   "empty output",
			output: "",
			want:   []Window{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWindowList(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseWindowList() returned %d windows, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("window %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseDesktopList(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "active marker on second desktop",
			output: "0  - DG: 3840x1080  VP: N/A  WA: 0,0 3840x1050  Desktop 1\n" +
				"1  * DG: 3840x1080  VP: 0,0  WA: 0,0 3840x1050  Desktop 2\n",
			want: "1",
		},
		{
			name:   "active marker on first desktop",
			output: "0  * DG: 1920x1080  VP: 0,0  WA: 0,0 1920x1050  main\n",
			want:   "0",
		},
		{
			name: "no marker defaults to 0",
			output: "0  - DG: 1920x1080  VP: N/A  WA: 0,0 1920x1050  one\n" +
				"1  - DG: 1920x1080  VP: N/A  WA: 0,0 1920x1050  two\n",
			want: "0",
		},
		{
			name:   "empty output defaults to 0",
			output: "",
			want:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDesktopList(tt.output); got != tt.want {
				t.Errorf("ParseDesktopList() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatWindowID(t *testing.T) {
	tests := []struct {
		id   uint32
		want string
	}{
		{291, "0x00000123"},
		{0, "0x00000000"},
		{67108871, "0x04000007"},
		{0xFFFFFFFF, "0xffffffff"},
	}

	for _, tt := range tests {
		if got := FormatWindowID(tt.id); got != tt.want {
			t.Errorf("FormatWindowID(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	windows := []Window{
		{ID: "0x1", Desktop: "0", Title: "Mozilla Firefox"},
		{ID: "0x2", Desktop: "0", Title: "Terminal - vim"},
		{ID: "0x3", Desktop: "1", Title: "Firefox - Downloads"},
	}

	tests := []struct {
		name    string
		pattern string
		wantIDs []string
	}{
		{"literal substring", "Firefox", []string{"0x1", "0x3"}},
		{"regex metacharacters", "^Terminal.*vim$", []string{"0x2"}},
		{"match anywhere in the title", "Downloads", []string{"0x3"}},
		{"no matches", "Emacs", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(windows, regexp.MustCompile(tt.pattern))
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Filter() returned %d windows, want %d", len(got), len(tt.wantIDs))
			}
			for i, w := range got {
				if w.ID != tt.wantIDs[i] {
					t.Errorf("window %d id = %s, want %s", i, w.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestNewExecBackendDefaults(t *testing.T) {
	b := NewExecBackend(Tools{})
	if b.tools.Wmctrl != "wmctrl" || b.tools.Xdotool != "xdotool" {
		t.Errorf("empty tools not defaulted: %+v", b.tools)
	}
	if b.Name() != "exec" {
		t.Errorf("Name() = %q, want %q", b.Name(), "exec")
	}
}
