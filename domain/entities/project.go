package entities

import "time"

// ProjectStatus gates project deletion: a Locked project cannot be removed.
type ProjectStatus string

const (
	ProjectStatusOpen   ProjectStatus = "OPEN"
	ProjectStatusLocked ProjectStatus = "LOCKED"
)

// Project is the top-level grouping a customer quotes work under.
type Project struct {
	ID        string        `json:"id"`
	ClientID  string        `json:"client_id"`
	Name      string        `json:"name"`
	Status    ProjectStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UpdatableProject describes a partial update to a project. Nil pointers mean
// "leave unchanged"; UpdatedAt is always refreshed by the storage layer.
type UpdatableProject struct {
	ID       string
	ClientID string
	Name     *string
	Status   *ProjectStatus
}
