package model

import "time"

type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectPage is what the project page renders: the project and its member list.
// It is the unit cached in Redis and invalidated on membership changes.
type ProjectPage struct {
	Project *Project      `json:"project"`
	Members []*MemberView `json:"members"`
}
