/*-------------------------------------------------------------------------
 *
 * interface.go
 *    Connector interface and registry
 *
 * A connector delivers one approved action payload to an external
 * service. The registry maps action types to connectors; exactly one
 * connector handles each action type.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/connectors/interface.go
 *
 *-------------------------------------------------------------------------
 */

package connectors

import (
	"context"
	"fmt"
	"sync"

	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
)

/* Connector delivers an approved action payload to one external service */
type Connector interface {
	/* Type returns the action type this connector handles */
	Type() db.ActionType

	/* Service returns the target-service identifier recorded on drafted actions */
	Service() string

	/* Configured reports whether the connector holds credentials to deliver */
	Configured() bool

	/* Deliver performs the side effect exactly once and returns the
	 * provider's result payload */
	Deliver(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}

/* Registry maps action types to their connectors */
type Registry struct {
	mu         sync.RWMutex
	connectors map[db.ActionType]Connector
}

/* NewRegistry creates an empty connector registry */
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[db.ActionType]Connector),
	}
}

/* Register adds a connector, replacing any previous connector for the same type */
func (r *Registry) Register(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Type()] = c
}

/* Get returns the connector for an action type */
func (r *Registry) Get(actionType db.ActionType) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[actionType]
	if !ok {
		return nil, fmt.Errorf("no connector registered: action_type='%s'", actionType)
	}
	return c, nil
}

/* List returns the registered connectors in no particular order */
func (r *Registry) List() []Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Connector, 0, len(r.connectors))
	for _, c := range r.connectors {
		result = append(result, c)
	}
	return result
}

/* stringField pulls a string out of an action payload, empty when absent */
func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
