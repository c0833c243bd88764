package config

// HealthConfig contains health check server configuration
type HealthConfig struct {
	Port int `yaml:"port" validate:"gte=0"`
}

// AnonymizationConfig contains the maps and switches that drive the
// anonymization pipeline.
type AnonymizationConfig struct {
	// AuthorityFeedPublishers maps a Waltti authority ID, e.g. "203" for
	// Hämeenlinna, to a feed publisher ID, e.g. "fi:hameenlinna".
	AuthorityFeedPublishers map[string]string `yaml:"authorityFeedPublishers" validate:"required,min=1"`
	// AcceptedDevices seeds the device registry before the first vehicle
	// catalogue message arrives. Keys are unique vehicle IDs.
	AcceptedDevices map[string][]string `yaml:"acceptedDevices"`
	// ProfileBasePath points to an optional JSON profile collection that
	// seeds the profile store base.
	ProfileBasePath           string `yaml:"profileBasePath"`
	RequireInitialProfileRead bool   `yaml:"requireInitialProfileRead"`
	// CountCacheIdleMinutes resets a vehicle's running count after this much
	// inactivity. Omitted defaults to 360; a negative value disables the
	// idle reset.
	CountCacheIdleMinutes int `yaml:"countCacheIdleMinutes"`
}

// BrokerConfig contains the broker-facing topic settings. The broker client
// itself lives outside this module; these values are handed to whichever
// driver hosts the service.
type BrokerConfig struct {
	ServiceURL             string `yaml:"serviceURL" validate:"omitempty,uri"`
	ProducerTopic          string `yaml:"producerTopic"`
	ProfileTopic           string `yaml:"profileTopic"`
	ProfileReaderName      string `yaml:"profileReaderName"`
	ApcTopicsPattern       string `yaml:"apcTopicsPattern"`
	ApcSubscription        string `yaml:"apcSubscription"`
	CatalogueTopicsPattern string `yaml:"catalogueTopicsPattern"`
	// LocatorStepSeconds is how far back the latest-message bootstrap seeks
	// on its first step. Default is one week.
	LocatorStepSeconds int `yaml:"locatorStepSeconds" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Health        HealthConfig        `yaml:"health"`
	Anonymization AnonymizationConfig `yaml:"anonymization" validate:"required"`
	Broker        BrokerConfig        `yaml:"broker"`
}

// FeedPublishers returns the configured feed publisher IDs. The catalogue
// topic resolver uses them as its fallback table.
func (c AppConfig) FeedPublishers() []string {
	out := make([]string, 0, len(c.Anonymization.AuthorityFeedPublishers))
	for _, fp := range c.Anonymization.AuthorityFeedPublishers {
		out = append(out, fp)
	}
	return out
}
