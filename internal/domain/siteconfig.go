package domain

// SiteConfiguration is the remotely-owned deployment record. Exactly one live
// instance exists; this core treats it as read-mostly.
type SiteConfiguration struct {
	NameFirst    string            `json:"name_first"`
	NameSecond   string            `json:"name_second"`
	LogoURL      string            `json:"logo_url,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	ContactPhone string            `json:"contact_phone,omitempty"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`
	Providers    ProviderFlags     `json:"providers"`
}

// ProviderFlags carries per-provider enablement used by the orchestrator.
type ProviderFlags struct {
	EnrichmentEnabled   bool `json:"enrichment_enabled"`
	AvailabilityEnabled bool `json:"availability_enabled"`
}

// DefaultSiteConfiguration is the hard-coded fallback used when neither the
// local cache nor the remote store has a configuration document.
func DefaultSiteConfiguration() SiteConfiguration {
	return SiteConfiguration{
		NameFirst:  "Show",
		NameSecond: "Deck",
		Providers: ProviderFlags{
			EnrichmentEnabled:   true,
			AvailabilityEnabled: true,
		},
	}
}
