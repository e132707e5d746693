package version

import "testing"

func TestRelease(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		info Info
		want string
	}{
		{name: "NoCommit", info: Info{Version: "v1.2.0"}, want: "unityperf-web@v1.2.0"},
		{name: "UnknownCommit", info: Info{Version: "v1.2.0", Commit: "unknown"}, want: "unityperf-web@v1.2.0"},
		{name: "ShortCommit", info: Info{Version: "dev", Commit: "abc123"}, want: "unityperf-web@dev+abc123"},
		{name: "LongCommit", info: Info{Version: "v1.2.0", Commit: "0123456789abcdef0123"}, want: "unityperf-web@v1.2.0+0123456789ab"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.info.Release(); got != tc.want {
				t.Fatalf("Release() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSetDefaultsVersion(t *testing.T) {
	Set(Info{Commit: "abc"})
	t.Cleanup(func() { Set(Info{}) })

	got := Current()
	if got.Version != "dev" || got.Commit != "abc" {
		t.Fatalf("unexpected stamp %+v", got)
	}
}
