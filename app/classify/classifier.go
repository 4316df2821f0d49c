package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/update"
)

// Classifier assigns each record a category from its domain's taxonomy, plus
// provider and service type for the cloud domain and mission metadata for
// starlink. Heuristics run over title+description; ties resolve to the
// source's category hint; an unmatched record falls back to the domain
// default rather than being rejected.
type Classifier struct {
	domain           update.Domain
	taxonomy         update.Taxonomy
	categoryRules    []Rule
	providerRules    []Rule
	serviceTypeRules []Rule
	missionRules     []Rule
	tags             []string
}

var satelliteCountRe = regexp.MustCompile(`(\d+)\s+(?:starlink\s+)?satellites?`)

func NewClassifier(domain update.Domain) *Classifier {
	return &Classifier{
		domain:           domain,
		taxonomy:         update.TaxonomyFor(domain),
		categoryRules:    categoryRules[domain],
		providerRules:    providerRules,
		serviceTypeRules: serviceTypeRules,
		missionRules:     missionRules,
		tags:             tagVocabulary[domain],
	}
}

// NewClassifierWithRules builds a classifier over an explicit category rule
// table. Used by tests to exercise single rules in isolation.
func NewClassifierWithRules(domain update.Domain, rules []Rule) *Classifier {
	c := NewClassifier(domain)
	c.categoryRules = rules
	return c
}

func (c *Classifier) Run(u update.Update, src sources.Source) update.Update {
	content := strings.ToLower(u.Title + " " + u.Description)

	u.Category = c.classifyCategory(content, src)

	switch c.domain {
	case update.DomainCloud:
		u.CloudProvider = c.classifyProvider(content, src)
		u.ServiceType = c.classifyServiceType(content)
		u.Tags = c.extractTags(content)
	case update.DomainStarlink:
		u.Mission = matchRules(c.missionRules, content)
		u.SatelliteCount = parseSatelliteCount(content)
		u.Tags = c.extractTags(content)
	}

	return u
}

func (c *Classifier) classifyCategory(content string, src sources.Source) string {
	if category := matchRules(c.categoryRules, content); category != "" {
		return category
	}
	if c.taxonomy.ValidCategory(src.Category) {
		return src.Category
	}
	return c.taxonomy.DefaultCategory
}

func (c *Classifier) classifyProvider(content string, src sources.Source) string {
	if provider := matchRules(c.providerRules, content); provider != "" {
		return provider
	}
	if c.taxonomy.ValidProvider(src.Provider) {
		return src.Provider
	}
	// Unattributed records come almost exclusively from the French-language
	// sources, which cover the domestic cloud market.
	return update.ProviderFrance
}

func (c *Classifier) classifyServiceType(content string) string {
	if serviceType := matchRules(c.serviceTypeRules, content); serviceType != "" {
		return serviceType
	}
	return update.ServiceIaaS
}

func (c *Classifier) extractTags(content string) []string {
	var tags []string
	for _, tag := range c.tags {
		if strings.Contains(content, tag) {
			tags = append(tags, tag)
		}
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

func matchRules(rules []Rule, content string) string {
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(content, keyword) {
				return rule.Value
			}
		}
	}
	return ""
}

func parseSatelliteCount(content string) int {
	match := satelliteCountRe.FindStringSubmatch(content)
	if match == nil {
		return 0
	}

	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return count
}
