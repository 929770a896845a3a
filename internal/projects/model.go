package projects

import "time"

// Project is one portfolio entry.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	LiveURL     string    `json:"live_url"`
	Has3D       bool      `json:"has_3d"`
	DemoURL     *string   `json:"demo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Order selects how a listing is sorted.
type Order int

const (
	// OrderCreatedAsc is the public portfolio order.
	OrderCreatedAsc Order = iota
	// OrderUpdatedDesc is the dashboard order.
	OrderUpdatedDesc
)

func (o Order) String() string {
	switch o {
	case OrderUpdatedDesc:
		return "updated_desc"
	default:
		return "created_asc"
	}
}

func (o Order) orderBy() string {
	switch o {
	case OrderUpdatedDesc:
		return "updated_at DESC"
	default:
		return "created_at ASC"
	}
}
