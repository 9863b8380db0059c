// Package session holds per-visitor dashboard state: the loaded dataset and
// the current selection. Sessions are values; the Manager swaps whole
// sessions under its lock and never mutates a Dataset.
package session

import (
	"time"

	"solardash/domain/core"
	"solardash/domain/dataset"
)

// Session is one visitor's explicit state
type Session struct {
	ID        core.SessionID    `json:"id"`
	Dataset   *dataset.Dataset  `json:"-"`
	Selection dataset.Selection `json:"selection"`
	CreatedAt time.Time         `json:"created_at"`
	LastSeen  time.Time         `json:"last_seen"`
}

// WithSelection returns a copy using sel
func (s Session) WithSelection(sel dataset.Selection) Session {
	s.Selection = sel
	return s
}

// WithDataset returns a copy bound to ds with a fresh selection
func (s Session) WithDataset(ds *dataset.Dataset, sel dataset.Selection) Session {
	s.Dataset = ds
	s.Selection = sel
	return s
}

// HasDataset reports whether a dataset is loaded
func (s Session) HasDataset() bool {
	return s.Dataset != nil
}
