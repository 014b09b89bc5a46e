package tpt

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// CompareVersions compares two package version strings and returns a
// negative number if a < b, zero if a == b, and a positive number if a > b.
//
// Versions are first compared as semver (a leading "v" is added if missing,
// since semver.Compare requires it). If either string is not valid semver —
// distro version strings routinely aren't, e.g. "1:2.3.4-5ubuntu1" or
// "2.3.4.5" — comparison falls back to a
// left-to-right numeric-dotted comparison of the digit runs found in each
// string, per the left-to-right fallback named in the original design notes.
func CompareVersions(a, b string) int {
	sa, sb := semverize(a), semverize(b)
	if semver.IsValid(sa) && semver.IsValid(sb) {
		return semver.Compare(sa, sb)
	}
	return compareNumericDotted(a, b)
}

func semverize(v string) string {
	if v == "" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// compareNumericDotted splits each string on runs of non-digit characters
// and compares the resulting numeric fields left to right. Missing trailing
// fields compare as zero, so "1.2" == "1.2.0".
func compareNumericDotted(a, b string) int {
	na, nb := digitFields(a), digitFields(b)
	for i := 0; i < len(na) || i < len(nb); i++ {
		var va, vb int64
		if i < len(na) {
			va = na[i]
		}
		if i < len(nb) {
			vb = nb[i]
		}
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func digitFields(v string) []int64 {
	var fields []int64
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		n, err := strconv.ParseInt(cur.String(), 10, 64)
		if err == nil {
			fields = append(fields, n)
		}
		cur.Reset()
	}
	for _, r := range v {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return fields
}
