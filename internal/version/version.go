// Package version validates and orders OpenShift release line identifiers
// such as "4.15".
package version

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// String constants for operations (used in ErrVersionParseFailed)
const (
	OpValidateIdentifier = "validate_identifier"
	OpSortKey            = "sort_key"
)

// Default release lines reported when no versions are configured.
const (
	DefaultMajor      = 4
	DefaultFirstMinor = 12
	DefaultLastMinor  = 22
)

// Custom error types for better error handling and comparison
var (
	ErrInvalidVersion     = errors.New("invalid version format: expected major.minor")
	ErrNoVersionsProvided = errors.New("no versions provided")
)

// ErrVersionParseFailed represents a version parsing error
type ErrVersionParseFailed struct {
	Version string
	Op      string
	Cause   error
}

func (e ErrVersionParseFailed) Error() string {
	return fmt.Sprintf("failed to parse version %q in operation %s: %v", e.Version, e.Op, e.Cause)
}

func (e ErrVersionParseFailed) Unwrap() error {
	return e.Cause
}

func (e ErrVersionParseFailed) Is(target error) bool {
	var parseErr ErrVersionParseFailed
	return errors.As(target, &parseErr)
}

// DefaultVersions returns 4.12 through 4.22 inclusive.
func DefaultVersions() []string {
	versions := make([]string, 0, DefaultLastMinor-DefaultFirstMinor+1)
	for minor := DefaultFirstMinor; minor <= DefaultLastMinor; minor++ {
		versions = append(versions, fmt.Sprintf("%d.%d", DefaultMajor, minor))
	}
	return versions
}

// ParseList splits a comma-separated version list, trimming whitespace
// around each entry. Empty entries are kept so validation can report them.
func ParseList(list string) []string {
	parts := strings.Split(list, ",")
	versions := make([]string, 0, len(parts))
	for _, p := range parts {
		versions = append(versions, strings.TrimSpace(p))
	}
	return versions
}

// ValidateIdentifier checks that v is a "major.minor" release line that can
// also be used as a numeric sort key.
func ValidateIdentifier(v string) error {
	if strings.Count(v, ".") != 1 {
		return ErrVersionParseFailed{Version: v, Op: OpValidateIdentifier, Cause: ErrInvalidVersion}
	}

	sv, err := semver.StrictNewVersion(v + ".0")
	if err != nil {
		return ErrVersionParseFailed{Version: v, Op: OpValidateIdentifier, Cause: err}
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return ErrVersionParseFailed{Version: v, Op: OpValidateIdentifier, Cause: ErrInvalidVersion}
	}

	if _, err := sortKey(v); err != nil {
		return err
	}
	return nil
}

// ValidateAll validates every identifier in versions.
func ValidateAll(versions []string) error {
	if len(versions) == 0 {
		return ErrNoVersionsProvided
	}
	for _, v := range versions {
		if err := ValidateIdentifier(v); err != nil {
			return err
		}
	}
	return nil
}

// SortDescending returns a copy of versions ordered by their value as a
// floating-point number, largest first. Equal keys keep their input order.
// Any identifier that is not a number fails the whole sort.
func SortDescending(versions []string) ([]string, error) {
	keys := make(map[string]float64, len(versions))
	for _, v := range versions {
		k, err := sortKey(v)
		if err != nil {
			return nil, err
		}
		keys[v] = k
	}

	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return keys[sorted[i]] > keys[sorted[j]]
	})
	return sorted, nil
}

func sortKey(v string) (float64, error) {
	k, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, ErrVersionParseFailed{Version: v, Op: OpSortKey, Cause: err}
	}
	return k, nil
}
