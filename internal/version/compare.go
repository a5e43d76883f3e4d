package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckConfigCompatibility verifies that a configuration file written for
// minVersion can be served by the running build.
//
// Rules:
//   - An empty minVersion or a "main" development build skips the check
//   - Major versions must match exactly
//   - The config's minor version must not exceed the build's minor version
//   - Patch versions never matter
func CheckConfigCompatibility(buildVersion, minVersion string) error {
	buildVersion = strings.TrimPrefix(buildVersion, "v")
	minVersion = strings.TrimPrefix(minVersion, "v")

	if minVersion == "" || buildVersion == "main" {
		return nil
	}

	build, err := semver.NewVersion(buildVersion)
	if err != nil {
		return fmt.Errorf("invalid build version '%s': %w", buildVersion, err)
	}

	required, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid min_app_version '%s': %w", minVersion, err)
	}

	if build.Major() != required.Major() {
		return fmt.Errorf("config requires app %d.x but this build is %d.x",
			required.Major(), build.Major())
	}

	if required.Minor() > build.Minor() {
		return fmt.Errorf("config requires app %d.%d or newer but this build is %d.%d",
			required.Major(), required.Minor(), build.Major(), build.Minor())
	}

	return nil
}
