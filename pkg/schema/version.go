package schema

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

// Latest returns the highest version key of a schema registry, ordering
// dot-separated versions by componentwise integer comparison. Lexicographic
// ordering would rank "1.2" above "1.10".
func Latest[M any](reg map[string]M) (string, error) {
	if len(reg) == 0 {
		return "", &clierr.EmptyRegistry{}
	}

	versions := make([]string, 0, len(reg))
	for v := range reg {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) < 0
	})
	return versions[len(versions)-1], nil
}

// CompareVersions compares two dot-separated version strings componentwise.
// Missing components count as zero, so "1" equals "1.0".
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Resolve determines which schema version governs an invocation of a
// schema-backed command in family, inspecting argv for a "--version V" pair.
//
// Strict validation of V applies only when the command actually being
// invoked (the "hyp-"-shaped token in argv) is the command bound to this
// family. A stray --version aimed at a different subcommand sharing the same
// process invocation must not break unrelated commands, so outside the
// strict case an unknown V silently falls back to the latest version.
func Resolve[M any](reg map[string]M, family string, argv []string) (string, error) {
	latest, err := Latest(reg)
	if err != nil {
		return "", err
	}

	requested, ok := requestedVersion(argv)
	if !ok {
		return latest, nil
	}

	if _, known := reg[requested]; !known {
		if invokedCommand(argv) == templates.CommandForFamily(family) {
			return "", &clierr.UnsupportedVersion{Version: requested}
		}
		return latest, nil
	}
	return requested, nil
}

// requestedVersion returns the value following the first "--version" token.
// A trailing --version with no value counts as absent.
func requestedVersion(argv []string) (string, bool) {
	for i, a := range argv {
		if a == "--version" {
			if i+1 >= len(argv) {
				return "", false
			}
			return argv[i+1], true
		}
	}
	return "", false
}

// invokedCommand returns the first "hyp-"-shaped token of argv, which names
// the leaf command the user is actually running.
func invokedCommand(argv []string) string {
	for _, a := range argv {
		if strings.HasPrefix(a, "hyp-") {
			return a
		}
	}
	return ""
}
