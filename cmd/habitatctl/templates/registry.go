// Package templates keeps reusable SOUL.md starter documents on the
// local filesystem so agents can register without writing one from
// scratch.
package templates

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vestalabs/habitat/soul"
)

// Registry manages starter soul documents under the user's home
// directory. Documents are plain SOUL.md markdown; anything dropped
// into the directory by hand is picked up too.
type Registry struct {
	soulsDir string
}

// NewRegistry opens the registry, creating its directory if needed.
func NewRegistry() *Registry {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	soulsDir := filepath.Join(homeDir, ".vesta", "souls")
	os.MkdirAll(soulsDir, 0755)

	return &Registry{
		soulsDir: soulsDir,
	}
}

// Save writes a soul document under the given template name.
func (r *Registry) Save(name, content string) error {
	soulPath := filepath.Join(r.soulsDir, name+".md")
	return os.WriteFile(soulPath, []byte(content), 0644)
}

// Get loads a soul document by template name.
func (r *Registry) Get(name string) (string, error) {
	soulPath := filepath.Join(r.soulsDir, name+".md")
	content, err := os.ReadFile(soulPath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// List returns the names of all stored templates, sorted.
func (r *Registry) List() ([]string, error) {
	var names []string

	entries, err := os.ReadDir(r.soulsDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".md" {
			names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
		}
	}

	sort.Strings(names)
	return names, nil
}

// Describe returns the identity description parsed out of a stored
// template, empty if the template is missing or has none.
func (r *Registry) Describe(name string) string {
	content, err := r.Get(name)
	if err != nil {
		return ""
	}
	return soul.Parse(content).Description()
}
