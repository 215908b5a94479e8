// Package core coordinates one request panel: the live request, its last
// response, the activity list and access to saved collections and
// environments.
package core

import (
	"errors"
	"fmt"

	"github.com/holps-7/striko/pkg/model"
)

// State is the lifecycle position of the request panel.
type State int

const (
	// StateIdle means no request has been opened yet.
	StateIdle State = iota
	StateEditing
	StateSending
	StateDisplayingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSending:
		return "sending"
	case StateDisplayingResponse:
		return "displaying-response"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateDisplayingResponse; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

var (
	// ErrEmptyURL is returned by Send when the live request has no URL.
	ErrEmptyURL = errors.New("request URL is empty")
	// ErrSendInFlight is returned by Send while another send is running.
	ErrSendInFlight = errors.New("a request is already being sent")
	// ErrNoActiveRequest is returned when an operation needs an open request.
	ErrNoActiveRequest = errors.New("no request is open")
	// ErrCollectionNotFound is returned when a save targets an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")
)

// SaveTarget selects where SaveToCollection writes the live request.
// CollectionID wins when both fields are set.
type SaveTarget struct {
	CollectionID string `json:"collectionId,omitempty"`
	NewName      string `json:"newName,omitempty"`
}

// SaveResult describes a completed SaveToCollection.
type SaveResult struct {
	Collection model.Collection `json:"collection"`
	Replaced   *model.Request   `json:"replaced,omitempty"` // Previous version with the same id
	Created    bool             `json:"created"`            // A new collection was made
	Diff       string           `json:"diff,omitempty"`     // Unified diff against Replaced
}

// Snapshot is everything the sidebar shows.
type Snapshot struct {
	Activities   []model.Request     `json:"activities"`
	Collections  []model.Collection  `json:"collections"`
	Environments []model.Environment `json:"environments"`
}

// PanelState is the request panel as seen by a host.
type PanelState struct {
	State    State           `json:"state"`
	Request  *model.Request  `json:"request,omitempty"`
	Response *model.Response `json:"response,omitempty"`
}

// Event reports a change in the session to a host.
type Event struct {
	// Type is one of "state", "response" or "activity".
	Type     string
	State    State
	Request  *model.Request
	Response *model.Response
}

// EventCallback receives session events. It is called without the session
// lock held and may call back into the session.
type EventCallback func(Event)
