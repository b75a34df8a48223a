// Package scaffold writes the node project that runs generated suites.
package scaffold

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed runtime
var runtimeFS embed.FS

// Dependencies are the packages generated suites require, with the
// versions the project pins.
var Dependencies = map[string]string{
	"chai":       "^4.3.10",
	"chai-fetch": "^0.3.1",
	"dotenv":     "^16.4.5",
	"mocha":      "^10.4.0",
	"node-fetch": "^2.7.0",
	"tv4":        "^1.3.0",
}

type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Scripts         map[string]string `json:"scripts"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// PackageJSON renders the package manifest for a project called name.
// Suites under testDir run with `npm test`; `env_name=<env> npm test`
// loads env/<env>.env first.
func PackageJSON(name, testDir string) ([]byte, error) {
	pkg := packageJSON{
		Name:    name,
		Version: "1.0.0",
		Private: true,
		Scripts: map[string]string{
			"test": fmt.Sprintf("mocha --require ./setup.js '%s/**/*.spec.js'", filepath.ToSlash(testDir)),
		},
		DevDependencies: Dependencies,
	}
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write copies the runtime files and package.json into dest. Existing
// files are left alone so local edits survive a regeneration. It returns
// the paths it wrote.
func Write(dest, name, testDir string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}

	var written []string
	err := fs.WalkDir(runtimeFS, "runtime", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := runtimeFS.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("runtime", path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		ok, err := writeNew(target, data)
		if ok {
			written = append(written, target)
		}
		return err
	})
	if err != nil {
		return written, err
	}

	manifest, err := PackageJSON(name, testDir)
	if err != nil {
		return written, err
	}
	target := filepath.Join(dest, "package.json")
	ok, err := writeNew(target, manifest)
	if ok {
		written = append(written, target)
	}
	return written, err
}

func writeNew(path string, data []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
