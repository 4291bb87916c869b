// Package notify pushes document status updates to the owning user's open
// websocket connections.
package notify

import (
	"context"
	"sync"
)

// EventTranscriptionUpdate is the event name of status updates.
const EventTranscriptionUpdate = "transcriptionUpdate"

// Update statuses.
const (
	StatusDone   = "DONE"
	StatusFailed = "FAILED"
)

// Update is the payload of a transcriptionUpdate event.
type Update struct {
	Status        string `json:"status"`
	DocumentID    string `json:"documentId"`
	Transcription any    `json:"transcription,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Frame is one JSON message exchanged over the socket.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher delivers an update to every connection in a user's room.
type Publisher interface {
	Publish(ctx context.Context, userID string, u Update) error
}

// Subscriber receives frames for the room it joined. Send must not block;
// it reports false when the frame was dropped.
type Subscriber interface {
	Send(f Frame) bool
}

// Hub tracks per-user rooms of live subscribers in this process.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[Subscriber]struct{}
	members map[Subscriber]string
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[Subscriber]struct{}),
		members: make(map[Subscriber]string),
	}
}

// Join places s in userID's room, leaving any room it was in before.
func (h *Hub) Join(userID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s)
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[Subscriber]struct{})
		h.rooms[userID] = room
	}
	room[s] = struct{}{}
	h.members[s] = userID
}

// Leave removes s from its room, if any.
func (h *Hub) Leave(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s)
}

func (h *Hub) leaveLocked(s Subscriber) {
	userID, ok := h.members[s]
	if !ok {
		return
	}
	delete(h.members, s)
	room := h.rooms[userID]
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
}

// Deliver sends f to every subscriber in userID's room and returns how many
// accepted it.
func (h *Hub) Deliver(userID string, f Frame) int {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.rooms[userID]))
	for s := range h.rooms[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.Send(f) {
			delivered++
		}
	}
	return delivered
}

// RoomSize reports how many subscribers are in userID's room.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Publish delivers u to the local room of userID.
func (h *Hub) Publish(_ context.Context, userID string, u Update) error {
	h.Deliver(userID, Frame{Event: EventTranscriptionUpdate, Data: u})
	return nil
}

var _ Publisher = (*Hub)(nil)
