// Package featureflag exposes feature gating as an explicit capability.
// Engine code receives an Evaluator at construction and never reads flags
// from ambient process state.
package featureflag

import "context"

// KeyInviteTeamMemberNudge gates the invite-nudge side-channel.
const KeyInviteTeamMemberNudge = "is_team_member_invite_nudge_enabled"

// Evaluator answers whether a flag is enabled for an organization scope.
type Evaluator interface {
	IsEnabled(ctx context.Context, key, organizationID string) bool
}

// ConfigEvaluator serves flags from static configuration.
type ConfigEvaluator struct {
	flags map[string]bool
}

func NewConfigEvaluator(flags map[string]bool) *ConfigEvaluator {
	return &ConfigEvaluator{flags: flags}
}

func (e *ConfigEvaluator) IsEnabled(_ context.Context, key, _ string) bool {
	if e == nil || e.flags == nil {
		return false
	}
	return e.flags[key]
}
