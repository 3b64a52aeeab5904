// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"fmt"
	"os"
	"sort"
)

// InstallConfigs installs a stage configuration set: each map entry
// copies the template file over the active file, both case-relative
// (e.g., "system/controlDict_rhosimple" → "system/controlDict").
//
// Installation is per-file overwrite. Files present only in the
// destination directory are left in place — the installer cannot know
// the solver's full configuration surface, and the solver about to
// run is responsible for reading only the files it understands.
//
// Every template is checked for existence before the first copy, so a
// misnamed template set fails without half-installing.
func (c Case) InstallConfigs(files map[string]string) error {
	if len(files) == 0 {
		return fmt.Errorf("config install has no files")
	}

	// Deterministic order for error messages and logs.
	templates := make([]string, 0, len(files))
	for template := range files {
		templates = append(templates, template)
	}
	sort.Strings(templates)

	type pending struct {
		source      string
		destination string
	}
	installs := make([]pending, 0, len(templates))

	for _, template := range templates {
		source, err := c.Path(template)
		if err != nil {
			return err
		}
		destination, err := c.Path(files[template])
		if err != nil {
			return err
		}
		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("config template %s: %w", template, err)
		}
		installs = append(installs, pending{source: source, destination: destination})
	}

	for index, install := range installs {
		if err := copyFile(install.source, install.destination); err != nil {
			return fmt.Errorf("installing %s: %w", templates[index], err)
		}
	}
	return nil
}
