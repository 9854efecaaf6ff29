package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kiln-agent/src/runner"
)

// ManifestFile is the optional per-repository pipeline manifest.
const ManifestFile = ".kiln.yml"

// Default step commands when the repository carries no manifest.
var (
	DefaultBuildCommand = []string{"cargo", "build", "--verbose"}
	DefaultTestCommand  = []string{"cargo", "test", "--verbose"}
)

// Manifest overrides the step commands for a repository. Commands are argv
// lists, not shell strings; Kiln never runs a shell.
type Manifest struct {
	Build []string `yaml:"build"`
	Test  []string `yaml:"test"`
}

// LoadManifest reads .kiln.yml from the work dir. A missing file yields the
// default manifest; a malformed one is an error (a typo must not silently
// run the wrong commands).
func LoadManifest(workDir string) (*Manifest, error) {
	m := &Manifest{
		Build: DefaultBuildCommand,
		Test:  DefaultTestCommand,
	}

	data, err := os.ReadFile(filepath.Join(workDir, ManifestFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var override Manifest
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}

	if len(override.Build) > 0 {
		m.Build = override.Build
	}
	if len(override.Test) > 0 {
		m.Test = override.Test
	}

	return m, nil
}

// Steps returns the build and test steps in execution order.
func (m *Manifest) Steps() (build, test runner.Step) {
	build = runner.Step{Name: runner.StepBuild, Command: m.Build}
	test = runner.Step{Name: runner.StepTest, Command: m.Test}
	return build, test
}
