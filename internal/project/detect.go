// Package project detects the name and path of the project a
// notification originates from, by probing well-known manifest files.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Info is the detected project metadata, attached to signals as
// context annotations.
type Info struct {
	Name string
	Path string
}

// Detect probes dir for project manifests and returns (name, absolute
// path). Detection never fails: when no manifest gives a name, the
// directory's base name is used.
func Detect(dir string) Info {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	if name := fromPackageJSON(abs); name != "" {
		return Info{Name: name, Path: abs}
	}
	if name := fromGoMod(abs); name != "" {
		return Info{Name: name, Path: abs}
	}
	if name := fromCargoToml(abs); name != "" {
		return Info{Name: name, Path: abs}
	}
	return Info{Name: filepath.Base(abs), Path: abs}
}

// Context returns the info as signal context annotations.
func (i Info) Context() map[string]string {
	return map[string]string{
		"project_name": i.Name,
		"project_path": i.Path,
	}
}

func fromPackageJSON(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}

func fromGoMod(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if module, ok := strings.CutPrefix(line, "module "); ok {
			module = strings.TrimSpace(module)
			if idx := strings.LastIndex(module, "/"); idx >= 0 {
				module = module[idx+1:]
			}
			return module
		}
	}
	return ""
}

func fromCargoToml(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "name"); ok {
			rest = strings.TrimSpace(rest)
			if value, ok := strings.CutPrefix(rest, "="); ok {
				return strings.Trim(strings.TrimSpace(value), `"'`)
			}
		}
	}
	return ""
}
