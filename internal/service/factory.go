package service

import (
	"pulse.app/engine/core/config"
	"pulse.app/engine/internal/insight"
	"pulse.app/engine/internal/queue"
	"pulse.app/engine/internal/snapshot"
	"pulse.app/engine/internal/store"
)

type Services struct {
	stores   *store.Stores
	producer queue.Producer
	resolver *insight.Resolver
	pulseCfg config.PulseConfig
}

func NewServices(stores *store.Stores, producer queue.Producer, resolver *insight.Resolver, pulseCfg config.PulseConfig) *Services {
	return &Services{
		stores:   stores,
		producer: producer,
		resolver: resolver,
		pulseCfg: pulseCfg,
	}
}

func (s *Services) Entries() EntryService {
	return NewEntryService(s.stores.Entries(), s.producer)
}

func (s *Services) Pulse() PulseService {
	builder := snapshot.NewBuilder(s.stores.Entries(), s.stores.Narratives(), s.resolver, s.pulseCfg.LookbackDays)
	aggregator := snapshot.NewAggregator(builder, s.stores.Entries(), s.resolver)
	return NewPulseService(builder, aggregator)
}
