package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fincontrol/internal/ports"
)

// ChangeMessage is the wire form of a ports.ChangeEvent. It carries ids
// only; the consumer reloads the record from the shared store.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

var errIncompleteMessage = errors.New("change message needs entity, action and id")

func NewChangeMessage(ev ports.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{
		Entity:    ev.Entity,
		Action:    ev.Action,
		ID:        ev.ID,
		UserID:    ev.UserID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a delivery body. Messages missing their
// routing fields are rejected so they are not requeued forever.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Action == "" || msg.ID == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}

func (m *ChangeMessage) Event() ports.ChangeEvent {
	return ports.ChangeEvent{
		Entity: m.Entity,
		Action: m.Action,
		ID:     m.ID,
		UserID: m.UserID,
	}
}
