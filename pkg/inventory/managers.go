package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/supporttools/cc-doctor/pkg/command"
)

// ProbeBlock is one sub-probe's captured output.
type ProbeBlock struct {
	// Command is the rendered block label, e.g. "docker info".
	Command string

	// Output is the combined stdout/stderr, annotated with the exit
	// status when the command failed.
	Output string
}

// ManagerReport is the probe result for one container manager.
type ManagerReport struct {
	// Name is the section heading, e.g. "Docker".
	Name string

	// Tool is the binary whose presence gates the probe.
	Tool string

	// Present is false when Tool is not on PATH; the report still
	// renders the section, stating the absence.
	Present bool

	Blocks []ProbeBlock
}

// ProbeContainerManagers inspects docker and kubectl, and crio when it is
// relevant. crio only matters on a Kubernetes-managed node, so it is probed
// only when kubectl is also installed. Sub-probes are independent: a failing
// command's output, including its error text, is captured as-is so the
// reader sees the failure itself.
func ProbeContainerManagers(ctx context.Context, runner command.Runner) []ManagerReport {
	reports := []ManagerReport{
		probeManager(ctx, runner, "Docker", "docker", [][]string{
			{"docker", "version"},
			{"docker", "info"},
			{"systemctl", "show", "docker"},
		}),
	}

	kube := probeManager(ctx, runner, "Kubernetes", "kubectl", [][]string{
		{"kubectl", "version"},
		{"kubectl", "config", "view"},
		{"systemctl", "show", "kubelet"},
	})
	if kube.Present && command.Available(runner, "crio") {
		kube.Blocks = append(kube.Blocks,
			runBlock(ctx, runner, []string{"crio", "--version"}),
			runBlock(ctx, runner, []string{"systemctl", "show", "crio"}),
		)
	}
	reports = append(reports, kube)

	return reports
}

func probeManager(ctx context.Context, runner command.Runner, name, tool string, cmds [][]string) ManagerReport {
	report := ManagerReport{Name: name, Tool: tool}
	if !command.Available(runner, tool) {
		return report
	}
	report.Present = true
	for _, cmd := range cmds {
		report.Blocks = append(report.Blocks, runBlock(ctx, runner, cmd))
	}
	return report
}

func runBlock(ctx context.Context, runner command.Runner, cmd []string) ProbeBlock {
	block := ProbeBlock{Command: strings.Join(cmd, " ")}
	result, err := runner.Run(ctx, cmd[0], cmd[1:]...)
	if err != nil {
		block.Output = fmt.Sprintf("(unable to run %q: %v)", block.Command, err)
		return block
	}
	block.Output = result.Combined
	if result.ExitCode != 0 {
		block.Output = strings.TrimRight(block.Output, "\n") +
			fmt.Sprintf("\n(exit status %d)", result.ExitCode)
	}
	return block
}
