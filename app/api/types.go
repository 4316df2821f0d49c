package api

import (
	"github.com/veilletech/rss-engine/app/query"
	"github.com/veilletech/rss-engine/app/refresh"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/update"
)

type Handler struct {
	engines       map[update.Domain]*query.Engine
	orchestrators map[update.Domain]*refresh.Orchestrator
	configCache   *sources.ConfigCache
	dataDir       string
}
