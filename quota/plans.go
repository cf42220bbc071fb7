package quota

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is immutable reference data describing the per-period allowance for a
// tier. Accounts reference plans by tier key.
type Plan struct {
	Key             string `yaml:"key"`
	ImagesPerPeriod int    `yaml:"images_per_period"`
	VideosPerPeriod int    `yaml:"videos_per_period"`
}

// Catalog holds the loaded plan table, keyed by tier.
type Catalog struct {
	plans map[string]Plan
}

// catalogFile is the YAML document shape of a plans file:
//
//	plans:
//	  - key: free
//	    images_per_period: 24
//	    videos_per_period: 4
//	  - key: pro
//	    images_per_period: 480
//	    videos_per_period: 96
type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadCatalog reads and validates a plan catalog from a YAML file.
// An empty catalog is an error: every deployment must declare its tiers.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quota: failed to read plan catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses plan catalog YAML bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("quota: failed to parse plan catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("quota: plan catalog is empty")
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if p.Key == "" {
			return nil, fmt.Errorf("quota: plan with empty key in catalog")
		}
		if p.ImagesPerPeriod < 0 || p.VideosPerPeriod < 0 {
			return nil, fmt.Errorf("quota: plan %q has negative limits", p.Key)
		}
		if _, dup := plans[p.Key]; dup {
			return nil, fmt.Errorf("quota: duplicate plan key %q", p.Key)
		}
		plans[p.Key] = p
	}

	return &Catalog{plans: plans}, nil
}

// Get returns the plan for a tier, or UnknownPlanError if the tier is not in
// the catalog.
func (c *Catalog) Get(tier string) (Plan, error) {
	plan, ok := c.plans[tier]
	if !ok {
		return Plan{}, &UnknownPlanError{Tier: tier}
	}
	return plan, nil
}

// Keys returns the configured tier keys.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.plans))
	for k := range c.plans {
		keys = append(keys, k)
	}
	return keys
}
