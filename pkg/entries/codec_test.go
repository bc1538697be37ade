package entries

import (
	"math"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		typ  catalog.ValueType
		in   any
		want Draft
	}{
		{"bool true", catalog.TypeBool, true, CheckedDraft(true)},
		{"bool from number", catalog.TypeBool, 1.0, CheckedDraft(true)},
		{"bool nil", catalog.TypeBool, nil, CheckedDraft(false)},
		{"number", catalog.TypeNumber, 45.0, TextDraft("45")},
		{"number fraction", catalog.TypeNumber, 2.5, TextDraft("2.5")},
		{"number nil", catalog.TypeNumber, nil, TextDraft("")},
		{"select", catalog.TypeSelect, 2.0, TextDraft("2")},
		{"time", catalog.TypeTime, 450.0, TextDraft("07:30")},
		{"time wraps past midnight", catalog.TypeTime, 1500.0, TextDraft("01:00")},
		{"time negative clamps", catalog.TypeTime, -10.0, TextDraft("00:00")},
		{"time huge wraps", catalog.TypeTime, 1e19, TextDraft("10:40")},
		{"time huge negative clamps", catalog.TypeTime, -1e300, TextDraft("00:00")},
		{"time nil", catalog.TypeTime, nil, TextDraft("")},
		{"time empty", catalog.TypeTime, "", TextDraft("")},
		{"time garbage", catalog.TypeTime, "soon", TextDraft("")},
		{"list of any", catalog.TypeList, []any{"aa:bb", "cc:dd"}, TextDraft("aa:bb\ncc:dd")},
		{"list passthrough string", catalog.TypeList, "aa:bb", TextDraft("aa:bb")},
		{"list nil", catalog.TypeList, nil, TextDraft("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.typ, tt.in); got != tt.want {
				t.Errorf("Normalize(%s, %#v) = %+v, want %+v", tt.typ, tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimeStaysOnClock(t *testing.T) {
	clock := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	for _, v := range []float64{1e15, 1e19, 1e300, math.MaxFloat64} {
		if got := Normalize(catalog.TypeTime, v).Text; !clock.MatchString(got) {
			t.Errorf("Normalize(time, %g) = %q, want HH:MM", v, got)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		typ  catalog.ValueType
		in   Draft
		want any
	}{
		{"bool", catalog.TypeBool, CheckedDraft(true), true},
		{"number", catalog.TypeNumber, TextDraft("45"), 45.0},
		{"number spaces", catalog.TypeNumber, TextDraft(" 12.5 "), 12.5},
		{"number garbage", catalog.TypeNumber, TextDraft("abc"), 0.0},
		{"number empty", catalog.TypeNumber, TextDraft(""), 0.0},
		{"select", catalog.TypeSelect, TextDraft("1"), 1.0},
		{"select garbage", catalog.TypeSelect, TextDraft("x"), 0.0},
		{"time", catalog.TypeTime, TextDraft("07:30"), 450.0},
		{"time clamps hours", catalog.TypeTime, TextDraft("27:10"), 23*60 + 10.0},
		{"time clamps minutes", catalog.TypeTime, TextDraft("05:75"), 5*60 + 59.0},
		{"time malformed", catalog.TypeTime, TextDraft("0730"), 0.0},
		{"time non numeric", catalog.TypeTime, TextDraft("ab:cd"), 0.0},
		{"list", catalog.TypeList, TextDraft(" aa \n\n bb\n"), []string{"aa", "bb"}},
		{"list empty", catalog.TypeList, TextDraft(""), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.typ, tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%s, %+v) mismatch (-want +got):\n%s", tt.typ, tt.in, diff)
			}
		})
	}
}

func TestParseNormalizeRoundTrip(t *testing.T) {
	cases := []struct {
		typ    catalog.ValueType
		values []any
	}{
		{catalog.TypeBool, []any{true, false}},
		{catalog.TypeNumber, []any{0.0, 45.0, -3.0, 2.75, 1e6}},
		{catalog.TypeSelect, []any{0.0, 1.0, 2.0}},
		{catalog.TypeList, []any{[]string{"aa:bb"}, []string{"aa:bb", "cc:dd", "ee"}}},
	}
	for _, c := range cases {
		for _, v := range c.values {
			got := Parse(c.typ, Normalize(c.typ, v))
			if diff := cmp.Diff(v, got); diff != "" {
				t.Errorf("%s round trip of %#v (-want +got):\n%s", c.typ, v, diff)
			}
		}
	}
}

func TestTimeRoundTripWholeDay(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		v := float64(m)
		if got := Parse(catalog.TypeTime, Normalize(catalog.TypeTime, v)); got != v {
			t.Fatalf("time round trip of %v = %v", v, got)
		}
	}
}
