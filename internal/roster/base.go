package roster

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"reporthub/internal/models"
)

//go:embed base_roster.yaml
var defaultBaseRoster []byte

// SuperintendentSeed is one group leader listed in the roster file
type SuperintendentSeed struct {
	Name  string `yaml:"name"`
	Group int    `yaml:"group"`
}

// BaseData is the static part of the roster: who leads each group and who
// is expected to report
type BaseData struct {
	Superintendents []SuperintendentSeed  `yaml:"superintendents"`
	Members         []models.RosterMember `yaml:"members"`
}

// LoadBase decodes and validates a roster document
func LoadBase(r io.Reader) (*BaseData, error) {
	var data BaseData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// LoadBaseFile reads the roster at path, or the embedded roster when path is empty
func LoadBaseFile(path string) (*BaseData, error) {
	if path == "" {
		return LoadBase(bytes.NewReader(defaultBaseRoster))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()
	return LoadBase(f)
}

func (d *BaseData) validate() error {
	seen := make(map[string]int, len(d.Members))
	for i, m := range d.Members {
		key := Normalize(m.FullName)
		if key == "" {
			return fmt.Errorf("roster member %d has an empty name", i+1)
		}
		if m.GroupNumber <= 0 {
			return fmt.Errorf("roster member %q has invalid group %d", m.FullName, m.GroupNumber)
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("roster members %d and %d share the name %q", prev+1, i+1, key)
		}
		seen[key] = i
	}
	groups := make(map[int]bool, len(d.Superintendents))
	for _, s := range d.Superintendents {
		if s.Name == "" || s.Group <= 0 {
			return fmt.Errorf("invalid superintendent %+v", s)
		}
		if groups[s.Group] {
			return fmt.Errorf("group %d has more than one superintendent", s.Group)
		}
		groups[s.Group] = true
	}
	return nil
}
