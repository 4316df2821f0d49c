package update

import "slices"

// Taxonomy is the enumerated classification space for one domain. Categories
// always has at least the default entry; Providers and ServiceTypes are only
// populated for the cloud domain.
type Taxonomy struct {
	Categories      []string
	DefaultCategory string
	Providers       []string
	ServiceTypes    []string
}

const (
	ProviderAWS    = "AWS"
	ProviderAzure  = "Azure"
	ProviderGCP    = "GCP"
	ProviderFrance = "france"

	ServiceSaaS = "SaaS"
	ServicePaaS = "PaaS"
	ServiceIaaS = "IaaS"
	ServiceFaaS = "FaaS"
)

var taxonomies = map[Domain]Taxonomy{
	DomainWindows: {
		Categories: []string{
			"security", "feature", "server", "general",
			"particuliers", "serveur", "entreprise", "iot",
		},
		DefaultCategory: "general",
	},
	DomainCloud: {
		Categories: []string{
			"infrastructure", "cloud", "securite", "devops", "ia", "stockage",
		},
		DefaultCategory: "cloud",
		Providers:       []string{ProviderAWS, ProviderAzure, ProviderGCP, ProviderFrance},
		ServiceTypes:    []string{ServiceSaaS, ServicePaaS, ServiceIaaS, ServiceFaaS},
	},
	DomainStarlink: {
		Categories:      []string{"space", "spacex"},
		DefaultCategory: "space",
	},
}

func TaxonomyFor(domain Domain) Taxonomy {
	return taxonomies[domain]
}

func (t Taxonomy) ValidCategory(category string) bool {
	return slices.Contains(t.Categories, category)
}

func (t Taxonomy) ValidProvider(provider string) bool {
	return slices.Contains(t.Providers, provider)
}

func (t Taxonomy) ValidServiceType(serviceType string) bool {
	return slices.Contains(t.ServiceTypes, serviceType)
}
