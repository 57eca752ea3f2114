// Package model defines the data structures shared by the analysis pipeline.
package model

import "path/filepath"

// Path represents a file system path.
type Path string

// LooseModule is the module name carried by targets that sit directly under the
// source root instead of inside a module directory.
const LooseModule = ""

// looseModuleLabel is how the loose sentinel is shown to humans.
const looseModuleLabel = "loose"

// Target is one source file selected for analysis.
type Target struct {
	Path   Path   // absolute path of the file
	Module string // owning module name, LooseModule for loose files
}

// FileName returns the base name of the target file.
func (t Target) FileName() string {
	return filepath.Base(string(t.Path))
}

// IsLoose reports whether the target is not contained in any module directory.
func (t Target) IsLoose() bool {
	return t.Module == LooseModule
}

// ModuleLabel returns the module name, or "loose" for loose files.
func (t Target) ModuleLabel() string {
	if t.IsLoose() {
		return looseModuleLabel
	}

	return t.Module
}

// Module is an immediate subdirectory of the source root and every analyzable
// file beneath it.
type Module struct {
	Name    string
	Path    Path
	Targets []Target
}

// AnalyzerRef identifies the external analyzer command. The target path is
// always appended after Args as the sole analysis argument.
type AnalyzerRef struct {
	Executable string
	Args       []string
}

// Command returns the full argument vector for analyzing target.
func (a AnalyzerRef) Command(target Path) (string, []string) {
	args := make([]string, 0, len(a.Args)+1)
	args = append(args, a.Args...)
	args = append(args, string(target))

	return a.Executable, args
}
