package live

import (
	"encoding/json"
	"fmt"
)

// Entities the server announces changes for.
const (
	EntityAssignment = "task_assignment"
	EntityRedemption = "redemption"
	EntityReward     = "reward"
	EntityWallet     = "wallet"
	EntitySavings    = "savings"
)

// Message is a change notification. It names what changed, never the new
// state; receivers re-fetch from the API.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

func decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if m.Entity == "" {
		return Message{}, fmt.Errorf("decode message: missing entity")
	}
	if m.Type == "" {
		m = NewMessage(m.Entity, m.Action, m.ID, m.Extra)
	}
	return m, nil
}
