// Package breed holds the static breed capability reference.
//
// The table feeds internal scoring and review flags only. It is never
// consulted on the public projection path: breed can inform a
// recommendation or a review flag, not a public denial.
package breed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	dogmodels "pawport/internal/dog/models"
)

//go:embed breeds.yaml
var breedsYAML []byte

// WeightRange is a typical adult weight band in pounds.
type WeightRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Capability describes a breed's service suitability and health profile.
type Capability struct {
	BreedName string `yaml:"breed_name"`

	IdealServiceRoles    []dogmodels.ServiceRole `yaml:"ideal_service_roles"`
	SuitableServiceRoles []dogmodels.ServiceRole `yaml:"suitable_service_roles"`

	TypicalWeightRangeLbs WeightRange `yaml:"typical_weight_range_lbs"`
	TypicalTemperament    []string    `yaml:"typical_temperament"`
	WorkingSuitability    string      `yaml:"working_suitability"`

	CommonHealthIssues []string `yaml:"common_health_issues"`
	// RecommendedScreenings are keywords matched as substrings against
	// record document types (e.g. "hip" matches "hip_screening"). The
	// first two entries are treated as the most important.
	RecommendedScreenings []string          `yaml:"recommended_screenings"`
	ScreeningFrequency    map[string]string `yaml:"screening_frequency"`

	Notes string `yaml:"notes,omitempty"`
}

// IsIdealRole reports whether the role is in the breed's ideal list.
func (c *Capability) IsIdealRole(role dogmodels.ServiceRole) bool {
	for _, r := range c.IdealServiceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSuitableRole reports whether the role is in the breed's suitable list.
func (c *Capability) IsSuitableRole(role dogmodels.ServiceRole) bool {
	for _, r := range c.SuitableServiceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// TopScreenings returns the n most important recommended screenings.
func (c *Capability) TopScreenings(n int) []string {
	if len(c.RecommendedScreenings) < n {
		n = len(c.RecommendedScreenings)
	}
	return c.RecommendedScreenings[:n]
}

// Reference is a read-only lookup of breed capabilities keyed by exact
// breed name.
type Reference struct {
	byName map[string]*Capability
}

// Load parses a YAML capability table.
func Load(data []byte) (*Reference, error) {
	var doc struct {
		Breeds []*Capability `yaml:"breeds"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse breed table: %w", err)
	}
	byName := make(map[string]*Capability, len(doc.Breeds))
	for _, b := range doc.Breeds {
		if b.BreedName == "" {
			return nil, fmt.Errorf("breed table entry missing breed_name")
		}
		byName[b.BreedName] = b
	}
	return &Reference{byName: byName}, nil
}

// MustLoadDefault parses the embedded table and panics on failure.
// The table is compile-time data, so a parse failure is a build defect.
func MustLoadDefault() *Reference {
	ref, err := Load(breedsYAML)
	if err != nil {
		panic(err)
	}
	return ref
}

// Lookup returns the capability for an exact breed name. An unknown
// breed is a normal outcome, never an error: callers apply their
// component's neutral handling.
func (r *Reference) Lookup(name string) (*Capability, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns all breed names in the table.
func (r *Reference) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
