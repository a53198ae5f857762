package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avi3tal/functionsagent/internal/config"
	"github.com/avi3tal/functionsagent/internal/providers"
	"github.com/avi3tal/functionsagent/internal/telemetry"
	"github.com/avi3tal/functionsagent/pkg/agent"
	"github.com/avi3tal/functionsagent/pkg/sessions"
)

// assembly is an agent node wired to its collaborators.
type assembly struct {
	adapter *agent.Adapter
	metrics *telemetry.Metrics
}

func assemble(cfg *config.Node, logger *slog.Logger, reg prometheus.Registerer, store sessions.Store) (*assembly, error) {
	metrics := telemetry.NewMetrics(reg)
	handler := telemetry.NewHandler(logger, metrics)

	model, err := providers.NewModel(cfg.Model, handler)
	if err != nil {
		return nil, errors.Wrap(err, "model")
	}
	tools, err := providers.NewTools(cfg.Tools, handler)
	if err != nil {
		return nil, errors.Wrap(err, "tools")
	}
	parsers, err := providers.NewOutputParsers(cfg.OutputParsers)
	if err != nil {
		return nil, err
	}
	mem, err := providers.NewMemory(cfg.Memory, store, cfg.Name)
	if err != nil {
		return nil, errors.Wrap(err, "memory")
	}

	adapter, err := agent.New(agent.Dependencies{
		Model:         model,
		Memory:        mem,
		Tools:         tools,
		OutputParsers: parsers,
	},
		agent.WithName(cfg.Name),
		agent.WithSystemMessage(cfg.SystemMessage),
		agent.WithMaxIterations(cfg.MaxIterations),
		agent.WithCallbacksHandler(handler),
	)
	if err != nil {
		return nil, err
	}
	return &assembly{adapter: adapter, metrics: metrics}, nil
}
