package tpt

import "testing"

func TestCompareVersionsSemver(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.4", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.2.3", "1.2.3", 0},
	}
	for _, c := range cases {
		if got := CompareVersions(c.a, c.b); sign(got) != c.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareVersionsDistroStringsFallBackToNumericDotted(t *testing.T) {
	if CompareVersions("1:2.3.4-5ubuntu1", "1:2.3.5-1ubuntu1") >= 0 {
		t.Fatal("expected 1:2.3.4-5ubuntu1 < 1:2.3.5-1ubuntu1")
	}
}

func TestCompareVersionsConventionSentinelComparesLowest(t *testing.T) {
	if CompareVersions(ConventionVersion, "1.0.0") >= 0 {
		t.Fatal("expected convention sentinel version to compare below a real version")
	}
}

func TestCompareVersionsTrailingZerosEqual(t *testing.T) {
	if CompareVersions("1.2", "1.2.0") != 0 {
		t.Fatal("expected 1.2 == 1.2.0 under semver comparison")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
