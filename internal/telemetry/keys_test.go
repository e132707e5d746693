package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectKeys(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "DocumentOrder", raw: `{"zeta":1,"alpha":"x","mid":true}`, want: []string{"zeta", "alpha", "mid"}},
		{name: "NestedValues", raw: `{"b":{"x":[1,2,{"y":null}]},"a":[],"c":{}}`, want: []string{"b", "a", "c"}},
		{name: "RepeatedKey", raw: `{"a":1,"b":2,"a":3}`, want: []string{"a", "b"}},
		{name: "Empty", raw: `{}`, want: nil},
		{name: "Array", raw: `[1,2]`, wantErr: true},
		{name: "Truncated", raw: `{"a":[1,`, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := objectKeys([]byte(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got keys %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("objectKeys returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
