// Package parser extracts structured data from backend output.
package parser

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-version"
)

// versionNumber finds the first dotted number, e.g. "16.2" in
// "PostgreSQL 16.2 on x86_64-pc-linux-gnu" or "8.0.36" in "8.0.36-0ubuntu".
var versionNumber = regexp.MustCompile(`(\d+(?:\.\d+)*)`)

// ParseServerVersion extracts the version number of a "SELECT VERSION()" string
func ParseServerVersion(raw string) (*version.Version, error) {
	m := versionNumber.FindStringSubmatch(raw)
	if len(m) < 2 {
		return nil, fmt.Errorf("no version number in %q", raw)
	}
	v, err := version.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", m[1], err)
	}
	return v, nil
}

// MeetsMinimum reports whether the server version is at least min.
// An empty min always matches.
func MeetsMinimum(serverVersion, min string) (bool, error) {
	if min == "" {
		return true, nil
	}
	want, err := version.NewVersion(min)
	if err != nil {
		return false, fmt.Errorf("parse minimum version %q: %w", min, err)
	}
	have, err := ParseServerVersion(serverVersion)
	if err != nil {
		return false, err
	}
	return have.GreaterThanOrEqual(want), nil
}
