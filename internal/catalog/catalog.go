package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"persona-engine/internal/domain"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Archetype is a static catalog entry matched against the respondent's
// top-ranked usual dimensions.
type Archetype struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	PrimaryDimensions []string `yaml:"primary_dimensions"`
	CareerFamilies    []string `yaml:"career_families"`
}

// MBTIProfile is the static description looked up by four-letter type.
type MBTIProfile struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ColorInfo describes one of the four behavioral-style colors.
type ColorInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ComponentInfo describes one of the nine behavioral components.
type ComponentInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CareerFamily groups example careers referenced by archetypes.
type CareerFamily struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Careers []string `yaml:"careers"`
}

// Catalog bundles all read-only reference data. It is loaded once at startup
// and shared; nothing mutates it afterwards.
type Catalog struct {
	Questions      []domain.Question
	Archetypes     []Archetype
	MBTIProfiles   map[string]MBTIProfile
	DefaultMBTI    MBTIProfile
	Colors         []ColorInfo
	Components     []ComponentInfo
	CareerFamilies []CareerFamily
}

type mbtiFile struct {
	Profiles []MBTIProfile `yaml:"profiles"`
	Default  MBTIProfile   `yaml:"default"`
}

// Load parses the embedded reference data. A malformed catalog is a startup
// error, not something to fall back from.
func Load() (*Catalog, error) {
	c := &Catalog{MBTIProfiles: make(map[string]MBTIProfile)}

	if err := readYAML("data/questions.yaml", &c.Questions); err != nil {
		return nil, err
	}
	if err := readYAML("data/archetypes.yaml", &c.Archetypes); err != nil {
		return nil, err
	}
	var mf mbtiFile
	if err := readYAML("data/mbti.yaml", &mf); err != nil {
		return nil, err
	}
	for _, p := range mf.Profiles {
		c.MBTIProfiles[p.Type] = p
	}
	c.DefaultMBTI = mf.Default
	if err := readYAML("data/colors.yaml", &c.Colors); err != nil {
		return nil, err
	}
	if err := readYAML("data/components.yaml", &c.Components); err != nil {
		return nil, err
	}
	if err := readYAML("data/careers.yaml", &c.CareerFamilies); err != nil {
		return nil, err
	}

	if len(c.Questions) == 0 || len(c.Archetypes) == 0 {
		return nil, fmt.Errorf("catalog: embedded data is empty")
	}
	return c, nil
}

// UpgradeQuestions returns only the upgrade-context supplement, in catalog order.
func (c *Catalog) UpgradeQuestions() []domain.Question {
	var out []domain.Question
	for _, q := range c.Questions {
		if q.Context == domain.ContextUpgrade {
			out = append(out, q)
		}
	}
	return out
}

func readYAML(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}
