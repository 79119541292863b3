// pkg/version/version.go

package version

import "fmt"

var (
	version      = "0.2-dev"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns the version in format `VERSION (REVISIONDATE REVISION)`;
// the values are overridden through ldflags at release build time.
func Version() string {
	return fmt.Sprintf("%v (%v %v)", version, revisionDate, revision)
}
