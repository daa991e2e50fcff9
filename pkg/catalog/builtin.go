package catalog

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/mtc-analytics/patlens/pkg/catalog/definitions"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type definitionFile struct {
	Queries []*types.QueryDefinition `yaml:"queries"`
}

// LoadBuiltins parses the embedded query definition files and registers
// them in id order, so the catalog's insertion order (and therefore the
// UI's list order) is stable across restarts.
func LoadBuiltins(c *Catalog) error {
	return LoadDefinitions(c, definitions.FS)
}

// LoadDefinitions registers every query found in the *.yaml files of the
// given filesystem.
func LoadDefinitions(c *Catalog, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return fmt.Errorf("glob definitions: %w", err)
	}
	sort.Strings(files)

	var defs []*types.QueryDefinition
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		var file definitionFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		defs = append(defs, file.Queries...)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Id < defs[j].Id })

	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Id, err)
		}
	}

	log.Info().Int("queries", len(defs)).Msg("builtin catalog loaded")
	return nil
}
