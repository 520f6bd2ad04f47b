package model

import (
	"fmt"
	"time"
)

// Category represents one node of the product-catalog taxonomy.
type Category struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	Summary   string     `json:"summary,omitempty"`
	Status    Status     `json:"status"`
	SKUCount  int        `json:"sku_count,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
}

// Clone creates a deep copy of the category
func (c Category) Clone() Category {
	clone := c

	if c.RetiredAt != nil {
		v := *c.RetiredAt
		clone.RetiredAt = &v
	}

	if c.Tags != nil {
		clone.Tags = make([]string, len(c.Tags))
		copy(clone.Tags, c.Tags)
	}

	return clone
}

// Validate checks if the category data is logically valid
func (c *Category) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("category ID cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	if c.SKUCount < 0 {
		return fmt.Errorf("sku_count cannot be negative: %d", c.SKUCount)
	}
	if !c.UpdatedAt.IsZero() && !c.CreatedAt.IsZero() && c.UpdatedAt.Before(c.CreatedAt) {
		return fmt.Errorf("updated_at (%v) cannot be before created_at (%v)", c.UpdatedAt, c.CreatedAt)
	}
	return nil
}

// Disabled reports whether the category may not be chosen in pickers.
// Draft and discontinued categories stay visible and traversable but
// cannot be selected.
func (c *Category) Disabled() bool {
	return !c.Status.IsSelectable()
}

// Status represents the lifecycle state of a category
type Status string

const (
	StatusActive       Status = "active"
	StatusSeasonal     Status = "seasonal"
	StatusDraft        Status = "draft"
	StatusDiscontinued Status = "discontinued"
)

// IsValid returns true if the status is a recognized value
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSeasonal, StatusDraft, StatusDiscontinued:
		return true
	}
	return false
}

// IsSelectable returns true if categories in this state may be picked
// as parents or included in selections
func (s Status) IsSelectable() bool {
	return s == StatusActive || s == StatusSeasonal
}

// IsRetired returns true for states that mark a category as no longer
// merchandised
func (s Status) IsRetired() bool {
	return s == StatusDiscontinued
}
