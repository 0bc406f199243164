package http

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types published on the stream.
const (
	EventSaved     = "saved"
	EventDeleted   = "deleted"
	EventValidated = "validated"
	EventChanged   = "changed"
)

// FlowEvent is one message sent to SSE subscribers.
type FlowEvent struct {
	Type   string `json:"type"`
	FlowID string `json:"flowId"`
	OK     *bool  `json:"ok,omitempty"`
}

// StreamManager handles active SSE connections.
// Subscribers registered under the empty flow id receive every event.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // FlowID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for flowID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(flowID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[flowID]; !ok {
		sm.subscribers[flowID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[flowID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[flowID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, flowID)
				}
			}
		})
	}
}

// Publish sends ev to the subscribers of its flow and to global subscribers.
func (sm *StreamManager) Publish(ev FlowEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("StreamManager: encode event", "error", err)
		return
	}
	msg := string(data)

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	targets := []string{""}
	if ev.FlowID != "" {
		targets = append(targets, ev.FlowID)
	}
	for _, id := range targets {
		for ch := range sm.subscribers[id] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "flow_id", id)
			}
		}
	}
}
