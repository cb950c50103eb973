// Package all registers every built-in provider and builds the registry
// described by the configuration.
package all

import (
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/extractor"
	"github.com/Belphemur/AnimeProviders/internal/provider"

	_ "github.com/Belphemur/AnimeProviders/internal/provider/animefenix"
	_ "github.com/Belphemur/AnimeProviders/internal/provider/tioanime"
)

// NewRegistry creates one instance of every registered provider sharing
// fetcher, with base URL overrides taken from cfg
func NewRegistry(cfg *config.Config, fetcher client.Fetcher) (*provider.Registry, error) {
	overrides := make(map[string]string)
	for _, id := range provider.RegisteredIDs() {
		if u := cfg.ProviderBaseURL(id, ""); u != "" {
			overrides[id] = u
		}
	}
	opts := provider.OptionsFromConfig(cfg, fetcher, extractor.NewPassthrough())
	return provider.NewRegistryFromFactories(opts, overrides)
}
