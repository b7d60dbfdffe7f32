// Package report assembles the diagnostic sections into a single markdown
// document with consistent heading and quoting conventions.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supporttools/cc-doctor/pkg/ccruntime"
	"github.com/supporttools/cc-doctor/pkg/command"
	"github.com/supporttools/cc-doctor/pkg/inventory"
	"github.com/supporttools/cc-doctor/pkg/journal"
	"github.com/supporttools/cc-doctor/pkg/logger"
)

// Builder collects every section of the diagnostic report. Collection is
// strictly sequential: each section's external commands run to completion
// before the next section starts, so two runs on the same machine produce
// diffable output.
type Builder struct {
	Runtime      *ccruntime.Handle
	Scanner      *journal.Scanner
	Runner       command.Runner
	Files        ccruntime.FileReader
	ToolVersion  string
	ProblemLimit int

	// Now is the clock used for the meta section; tests inject a fixed
	// one. Nil means time.Now.
	Now func() time.Time
}

type sectionFunc func(ctx context.Context, w *strings.Builder) error

// Build renders the full report. The section order is part of the contract:
// meta, runtime summary, runtime config files, component logs, container
// manager details, packages. Only the runtime config path query can fail the
// build; every other absence is rendered as an explicit statement so the
// reader can tell "checked, nothing found" from "not checked, tool absent".
func (b *Builder) Build(ctx context.Context) (string, error) {
	if b.Now == nil {
		b.Now = time.Now
	}

	sections := []sectionFunc{
		b.metaSection,
		b.runtimeSection,
		b.configSection,
		b.logsSection,
		b.containerManagerSection,
		b.packagesSection,
	}

	var w strings.Builder
	for _, section := range sections {
		if err := section(ctx, &w); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

func (b *Builder) metaSection(ctx context.Context, w *strings.Builder) error {
	heading(w, 1, "Meta details")
	fmt.Fprintf(w, "Running `cc-doctor` version `%s` at `%s`.\n\n",
		b.ToolVersion, b.Now().UTC().Format(time.RFC1123Z))
	separator(w)
	return nil
}

func (b *Builder) runtimeSection(ctx context.Context, w *strings.Builder) error {
	heading(w, 1, "Runtime")
	fmt.Fprintf(w, "Runtime is `%s`.\n\n", b.Runtime.Path())

	heading(w, 2, "Runtime version")
	fenced(w, b.Runtime.Version(ctx))

	heading(w, 2, fmt.Sprintf("Output of `%s cc-env`", ccruntime.BinaryName))
	env, err := b.Runtime.EnvSummary(ctx)
	if err != nil {
		logger.WithError(err).Warn("runtime env summary query failed")
		fmt.Fprintf(w, "Note: `cc-env` query failed (%v); output shown as-is.\n\n", err)
	}
	fenced(w, env)
	separator(w)
	return nil
}

func (b *Builder) configSection(ctx context.Context, w *strings.Builder) error {
	paths, err := b.Runtime.ConfigPaths(ctx)
	if err != nil {
		return fmt.Errorf("runtime config paths: %w", err)
	}

	heading(w, 1, "Runtime config files")

	heading(w, 2, "Runtime default config paths")
	fenced(w, strings.Join(paths, "\n"))

	for _, file := range ccruntime.LoadConfigFiles(paths, b.Files) {
		if !file.Exists {
			fmt.Fprintf(w, "Config file `%s` not found.\n\n", file.Path)
			continue
		}
		heading(w, 2, fmt.Sprintf("Config file `%s`", file.Path))
		fenced(w, file.Contents)
	}
	separator(w)
	return nil
}

func (b *Builder) logsSection(ctx context.Context, w *strings.Builder) error {
	heading(w, 1, "Logfiles")
	for _, src := range journal.Components() {
		heading(w, 2, titleFirst(src.Name)+" logs")
		lines, found := b.Scanner.Scan(ctx, src, b.ProblemLimit)
		if !found {
			fmt.Fprintf(w, "No recent `%s` problems found in system journal.\n\n", src.Name)
			continue
		}
		fmt.Fprintf(w, "Recent `%s` problems found in system journal:\n\n", src.Name)
		fenced(w, strings.Join(lines, "\n"))
	}
	separator(w)
	return nil
}

func (b *Builder) containerManagerSection(ctx context.Context, w *strings.Builder) error {
	heading(w, 1, "Container manager details")
	for _, mgr := range inventory.ProbeContainerManagers(ctx, b.Runner) {
		heading(w, 2, mgr.Name)
		if !mgr.Present {
			fmt.Fprintf(w, "No `%s`\n\n", mgr.Tool)
			continue
		}
		for _, block := range mgr.Blocks {
			fmt.Fprintf(w, "Output of `%s`:\n\n", block.Command)
			fenced(w, block.Output)
		}
	}
	separator(w)
	return nil
}

func (b *Builder) packagesSection(ctx context.Context, w *strings.Builder) error {
	heading(w, 1, "Packages")
	for _, listing := range inventory.ProbePackages(ctx, b.Runner) {
		if !listing.Present {
			fmt.Fprintf(w, "No `%s`\n\n", listing.Manager)
			continue
		}
		fmt.Fprintf(w, "Have `%s`. Installed stack packages:\n\n", listing.Manager)
		fenced(w, listing.Output)
	}
	separator(w)
	return nil
}

func heading(w *strings.Builder, level int, title string) {
	fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", level), title)
}

func fenced(w *strings.Builder, body string) {
	w.WriteString("```\n")
	w.WriteString(strings.TrimRight(body, "\n"))
	w.WriteString("\n```\n\n")
}

func separator(w *strings.Builder) {
	w.WriteString("---\n\n")
}

func titleFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
