package sources

// Source is a single externally-owned RSS/Atom endpoint contributing records
// to a domain.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Language string `yaml:"language"` // BCP-47 tag of the feed's text
	Category string `yaml:"category"` // category hint used when classification is inconclusive
	Provider string `yaml:"provider"` // provider hint, cloud domain only
	Enabled  bool   `yaml:"enabled"`
}

// DomainConfig holds the complete source list and refresh settings for one
// content vertical. Derived from a <domain>.yml file in the sources directory.
type DomainConfig struct {
	Domain   string         `yaml:"-"` // derived from filename
	Settings ConfigSettings `yaml:"settings"`
	Sources  []Source       `yaml:"sources"`
}

type ConfigSettings struct {
	RefreshInterval int `yaml:"refresh_interval"` // seconds
	MaxItems        int `yaml:"max_items"`        // per-source cap after parsing
	Timeout         int `yaml:"timeout"`          // per-source fetch timeout, seconds
}

// EnabledSources returns the sources that participate in a refresh.
func (c *DomainConfig) EnabledSources() []Source {
	enabled := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
