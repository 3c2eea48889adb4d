// Package layout resolves the organization layout wrapping compiled email
// content. Layout resolution failure must never block a send: any lookup
// problem downgrades to the built-in default layout.
package layout

import (
	"context"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

// Reader is the read-only layout lookup port.
type Reader interface {
	FindOne(ctx context.Context, layoutID, environmentID, organizationID string) (*models.Layout, error)
}

// Resolution is the outcome of a layout lookup. When UseDefault is set the
// caller wraps content in the built-in default layout; the variable list is
// empty so defaults contribute nothing to payload verification.
type Resolution struct {
	Content    string
	Variables  []models.Variable
	UseDefault bool
}

type Resolver struct {
	layouts Reader
	logger  logger.Logger
}

func NewResolver(layouts Reader, log logger.Logger) *Resolver {
	return &Resolver{
		layouts: layouts,
		logger:  log,
	}
}

// Resolve looks up the layout for layoutID. An empty id skips the lookup
// entirely; a failed or empty lookup is recoverable and downgrades to the
// default layout.
func (r *Resolver) Resolve(ctx context.Context, layoutID, environmentID, organizationID string) Resolution {
	if layoutID == "" {
		return Resolution{UseDefault: true}
	}

	found, err := r.layouts.FindOne(ctx, layoutID, environmentID, organizationID)
	if err != nil {
		r.logger.Warn("layout lookup failed, falling back to default layout", map[string]interface{}{
			"layoutId":       layoutID,
			"environmentId":  environmentID,
			"organizationId": organizationID,
			"error":          err.Error(),
		})
		return Resolution{UseDefault: true}
	}
	if found == nil {
		r.logger.Warn("layout not found, falling back to default layout", map[string]interface{}{
			"layoutId":      layoutID,
			"environmentId": environmentID,
		})
		return Resolution{UseDefault: true}
	}

	return Resolution{
		Content:   found.Content,
		Variables: found.Variables,
	}
}
