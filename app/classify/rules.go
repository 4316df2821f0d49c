package classify

import "github.com/veilletech/rss-engine/app/update"

// Rule maps content keywords to one taxonomy value. Rules are evaluated in
// order; the first rule with a matching keyword wins, so more specific rules
// belong before broader ones.
type Rule struct {
	Keywords []string
	Value    string
}

// Category rule tables per domain. French and English keywords are mixed on
// purpose: windows sources span both languages and records are classified
// before translation.
var categoryRules = map[update.Domain][]Rule{
	update.DomainWindows: {
		{Keywords: []string{"security", "sécurité", "securite", "vulnerability", "vulnérabilité", "cve", "patch tuesday", "exploit", "ransomware"}, Value: "security"},
		{Keywords: []string{"iot", "embedded", "objets connectés", "raspberry"}, Value: "iot"},
		{Keywords: []string{"windows server", "serveur", "datacenter", "active directory", "hyper-v", "sql server", "exchange"}, Value: "serveur"},
		{Keywords: []string{"server", "system center", "infrastructure"}, Value: "server"},
		{Keywords: []string{"entreprise", "enterprise", "microsoft 365", "intune", "teams"}, Value: "entreprise"},
		{Keywords: []string{"windows 11", "windows 10", "particuliers", "grand public", "consumer"}, Value: "particuliers"},
		{Keywords: []string{"feature", "fonctionnalité", "preview", "insider", "nouveauté"}, Value: "feature"},
	},
	update.DomainCloud: {
		{Keywords: []string{"security", "sécurité", "securite", "compliance", "identity", "iam", "zero trust"}, Value: "securite"},
		{Keywords: []string{"devops", "kubernetes", "ci/cd", "terraform", "container", "docker", "gitops"}, Value: "devops"},
		{Keywords: []string{"machine learning", "intelligence artificielle", "artificial intelligence", "llm", "genai", "bedrock", "vertex"}, Value: "ia"},
		{Keywords: []string{"storage", "stockage", "s3", "blob", "archive", "backup", "sauvegarde"}, Value: "stockage"},
		{Keywords: []string{"datacenter", "infrastructure", "network", "réseau", "compute", "vm", "bare metal"}, Value: "infrastructure"},
	},
	update.DomainStarlink: {
		{Keywords: []string{"falcon", "dragon", "spacex", "launch", "booster", "starship"}, Value: "spacex"},
	},
}

var providerRules = []Rule{
	{Keywords: []string{"aws", "amazon web services", "amazon"}, Value: update.ProviderAWS},
	{Keywords: []string{"azure", "microsoft"}, Value: update.ProviderAzure},
	{Keywords: []string{"google cloud", "gcp", "google"}, Value: update.ProviderGCP},
	{Keywords: []string{"ovh", "scaleway", "outscale", "souverain", "cloud de confiance"}, Value: update.ProviderFrance},
}

var serviceTypeRules = []Rule{
	{Keywords: []string{"lambda", "functions", "serverless", "faas", "cloud run"}, Value: update.ServiceFaaS},
	{Keywords: []string{"saas", "microsoft 365", "workspace", "salesforce", "application métier"}, Value: update.ServiceSaaS},
	{Keywords: []string{"paas", "app service", "elastic beanstalk", "app engine", "managed database", "kubernetes"}, Value: update.ServicePaaS},
	{Keywords: []string{"iaas", "ec2", "virtual machine", "vm", "compute engine", "storage", "network"}, Value: update.ServiceIaaS},
}

var missionRules = []Rule{
	{Keywords: []string{"starlink"}, Value: "starlink"},
	{Keywords: []string{"dragon", "crew", "iss"}, Value: "dragon"},
	{Keywords: []string{"mars", "starship"}, Value: "mars"},
	{Keywords: []string{"falcon"}, Value: "falcon"},
}

// tagVocabulary lists the keywords worth surfacing as tags, per domain.
var tagVocabulary = map[update.Domain][]string{
	update.DomainCloud: {
		"aws", "azure", "gcp", "kubernetes", "serverless", "security",
		"storage", "devops", "migration", "cloud",
	},
	update.DomainStarlink: {
		"starlink", "spacex", "falcon", "dragon", "mars", "satellite",
		"launch", "starship",
	},
}
