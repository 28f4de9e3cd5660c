package config

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing crawl behavior per site without CLI flags.
type SiteConfig struct {
	// Depth overrides the global max depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// DelaySeconds overrides the global request delay for this site,
	// expressed in seconds. If zero, the global Delay is used.
	DelaySeconds int `yaml:"delaySeconds,omitempty"`

	// ExcludeExtensions extends the default set of skipped file
	// extensions (e.g., "docx"). A leading dot is optional.
	ExcludeExtensions []string `yaml:"excludeExtensions,omitempty"`

	// ExcludePaths extends the default set of skipped path fragments
	// (e.g., "/private/").
	ExcludePaths []string `yaml:"excludePaths,omitempty"`
}

// File represents the structure of the .sitecrawl configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are bare hostnames (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.DelaySeconds != 0 {
			result.DelaySeconds = siteConfig.DelaySeconds
		}
		if len(siteConfig.ExcludeExtensions) > 0 {
			result.ExcludeExtensions = siteConfig.ExcludeExtensions
		}
		if len(siteConfig.ExcludePaths) > 0 {
			result.ExcludePaths = siteConfig.ExcludePaths
		}
	}

	return result
}
