package ports

import "context"

type AgentRegistry interface {
	// ResolveAPIKey maps an api key to the agent id it belongs to. Returns
	// domain.ErrUnknownAPIKey when no agent carries the key.
	ResolveAPIKey(ctx context.Context, key string) (string, error)
	// Put registers (or rotates) an agent's api key.
	Put(ctx context.Context, agentID, key string) error
}
