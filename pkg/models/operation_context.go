package models

import (
	"strconv"
	"time"
)

// OperationContext carries the acting user and tenant through system actions
// and stage transitions, replacing any ambient user lookup. The zero value is
// usable: Actor falls back to "System" and Clock to time.Now.
type OperationContext struct {
	UserID   string
	UserName string
	TenantID string
	Now      func() time.Time
}

// Actor returns the display name used for operator attribution.
func (c *OperationContext) Actor() string {
	if c == nil || c.UserName == "" {
		return "System"
	}

	return c.UserName
}

// ActorID parses the acting user id, returning nil when absent or not an
// integer.
func (c *OperationContext) ActorID() *int64 {
	if c == nil || c.UserID == "" {
		return nil
	}

	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil {
		return nil
	}

	return &id
}

// Clock returns the time source, defaulting to time.Now.
func (c *OperationContext) Clock() func() time.Time {
	if c == nil || c.Now == nil {
		return time.Now
	}

	return c.Now
}
