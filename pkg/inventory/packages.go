// Package inventory probes installed stack packages and container-manager
// tooling. Every probe is best-effort: an absent tool is recorded as absent
// and a failing command's output is captured for the report, never fatal.
package inventory

import (
	"context"
	"strings"

	"github.com/supporttools/cc-doctor/pkg/command"
	"github.com/supporttools/cc-doctor/pkg/logger"
)

// knownPackages are the component, guest-asset and hypervisor packages whose
// installed versions matter when debugging the stack.
var knownPackages = []string{
	"cc-oci-runtime",
	"cc-proxy",
	"cc-runtime",
	"cc-shim",
	"cc-ksm-throttler",
	"clear-containers-image",
	"linux-container",
	"qemu-lite",
	"qemu-system-x86",
}

// packageManagers maps each supported manager to its list-installed command.
var packageManagers = []struct {
	name string
	args []string
}{
	{name: "rpm", args: []string{"-qa"}},
	{name: "dpkg", args: []string{"-l"}},
}

// PackageListing is the filtered list-installed output of one manager.
type PackageListing struct {
	Manager string
	Present bool
	Output  string
}

// ProbePackages queries every supported package manager found on PATH and
// filters its output down to the known stack packages. A manager that is not
// installed is reported as absent, not failed.
func ProbePackages(ctx context.Context, runner command.Runner) []PackageListing {
	listings := make([]PackageListing, 0, len(packageManagers))
	for _, mgr := range packageManagers {
		if !command.Available(runner, mgr.name) {
			listings = append(listings, PackageListing{Manager: mgr.name})
			continue
		}
		result, err := runner.Run(ctx, mgr.name, mgr.args...)
		if err != nil {
			logger.WithField("manager", mgr.name).WithError(err).Warn("package listing failed")
			listings = append(listings, PackageListing{Manager: mgr.name})
			continue
		}
		listings = append(listings, PackageListing{
			Manager: mgr.name,
			Present: true,
			Output:  filterPackageLines(result.Combined),
		})
	}
	return listings
}

// filterPackageLines keeps only the lines mentioning a known stack package.
func filterPackageLines(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		for _, name := range knownPackages {
			if strings.Contains(line, name) {
				kept = append(kept, line)
				break
			}
		}
	}
	return strings.Join(kept, "\n")
}
