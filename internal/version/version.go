// Package version provides the semantic version of the server build.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// Version is the current released version.
	Version = "0.4.2"
	// DevVersion is the development version.
	DevVersion = "0.4.3"
)

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return ""
	}
	return versionList[0] + "." + versionList[1]
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > -1
}
