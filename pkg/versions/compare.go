/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: compare.go
Description: Browser version ordering. Versions are compared as semantic versions
("83", "15.4", "4.4.3") with a numeric segment fallback for strings semver rejects,
and the "preview" sentinel sorts after every released version.
*/

package versions

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// PreviewVersion names an unreleased browser build; it is newer than any release.
const PreviewVersion = "preview"

// Compare returns -1, 0 or +1 as a is older than, equal to or newer than b.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	if a == PreviewVersion {
		return 1
	}
	if b == PreviewVersion {
		return -1
	}

	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return compareSegments(a, b)
}

// compareSegments compares dotted versions segment by segment, numerically
// where both segments are numbers. Missing segments count as zero.
func compareSegments(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		x, y := "0", "0"
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}

		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xn != yn {
				if xn < yn {
					return -1
				}
				return 1
			}
		case x != y:
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Sort orders versions from oldest to newest in place.
func Sort(vs []string) {
	sort.SliceStable(vs, func(i, j int) bool {
		return Compare(vs[i], vs[j]) < 0
	})
}

// Sorted returns a sorted copy of vs.
func Sorted(vs []string) []string {
	out := append([]string(nil), vs...)
	Sort(out)
	return out
}

// InRange reports whether v lies between lower and upper, both inclusive.
func InRange(v, lower, upper string) bool {
	return Compare(v, lower) >= 0 && Compare(v, upper) <= 0
}
