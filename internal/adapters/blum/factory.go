package blum

import (
	"github.com/bnema/blum-farm-cli/internal/adapters/useragent"
	"github.com/bnema/blum-farm-cli/internal/ports"
)

// Factory builds one client per session from a shared base config.
type Factory struct {
	Base       Config
	UserAgents useragent.Source
}

var _ ports.ClientFactory = Factory{}

func (f Factory) NewClient(cfg ports.ClientConfig) (ports.GameAPI, error) {
	clientCfg := f.Base
	clientCfg.Proxy = cfg.Proxy
	clientCfg.UserAgent = useragent.Pick(cfg.RandomUserAgent, f.UserAgents)

	client, err := NewClient(clientCfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
