package trigger

import (
	"context"
	"strings"
	"time"

	"notification-engine/internal/common/config"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/featureflag"
	"notification-engine/internal/models"
)

// nudgePayloadMarker is set on the payload of the nudge trigger itself so a
// nudge can never trigger another nudge.
const nudgePayloadMarker = "__source"

// personalEmailDomains are consumer mail providers. An inviter on one of
// these is treated as an individual rather than a company account.
var personalEmailDomains = []string{
	"@gmail",
	"@outlook",
	"@yahoo",
	"@icloud",
	"@mail",
	"@hotmail",
	"@protonmail",
	"@gmx",
}

// NotificationFeed reports whether an organization has ever produced a
// notification in the given environment.
type NotificationFeed interface {
	HasAny(ctx context.Context, organizationID, environmentID string) (bool, error)
}

// UserReader resolves the triggering user.
type UserReader interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// MemberCounter counts organization members.
type MemberCounter interface {
	CountForOrganization(ctx context.Context, organizationID string) (int, error)
}

// Sender fires a trigger against the platform itself.
type Sender interface {
	Trigger(ctx context.Context, identifier string, to models.Recipient, payload map[string]interface{}) error
}

// Analytics records product events. Implementations may be no-ops.
type Analytics interface {
	Track(ctx context.Context, event string, userID string, properties map[string]interface{})
}

// NoopAnalytics discards every event. It stands in when no analytics sink is
// configured.
type NoopAnalytics struct{}

func (NoopAnalytics) Track(context.Context, string, string, map[string]interface{}) {}

// Nudge sends a one-time invite-a-teammate prompt to solo users the first
// time their organization triggers a notification. Every failure is logged
// and swallowed; the trigger pipeline never observes it.
type Nudge struct {
	feed        NotificationFeed
	users       UserReader
	members     MemberCounter
	sender      Sender
	analytics   Analytics
	flags       featureflag.Evaluator
	cfg         config.NudgeConfig
	environment string
	logger      logger.Logger
}

func NewNudge(
	feed NotificationFeed,
	users UserReader,
	members MemberCounter,
	sender Sender,
	analytics Analytics,
	flags featureflag.Evaluator,
	cfg config.NudgeConfig,
	environment string,
	log logger.Logger,
) *Nudge {
	return &Nudge{
		feed:        feed,
		users:       users,
		members:     members,
		sender:      sender,
		analytics:   analytics,
		flags:       flags,
		cfg:         cfg,
		environment: environment,
		logger:      log,
	}
}

// MaybeSend evaluates the nudge conditions for one trigger event and, when
// all pass, fires the nudge trigger and tracks the event. It never returns an
// error and never blocks beyond the configured timeout.
func (n *Nudge) MaybeSend(ctx context.Context, event *models.TriggerEvent) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("nudge check panicked", map[string]interface{}{"recovered": r})
		}
	}()

	if n.environment == "test" {
		return
	}
	if event.Identifier == n.cfg.TriggerIdentifier {
		return
	}
	if _, fromNudge := event.Payload[nudgePayloadMarker]; fromNudge {
		return
	}
	if !n.flags.IsEnabled(ctx, featureflag.KeyInviteTeamMemberNudge, event.OrganizationID) {
		return
	}

	timeout := time.Duration(n.cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	seen, err := n.feed.HasAny(ctx, event.OrganizationID, event.EnvironmentID)
	if err != nil {
		n.logger.Warn("nudge feed check failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if seen {
		return
	}

	user, err := n.users.FindByID(ctx, event.UserID)
	if err != nil || user == nil {
		if err != nil {
			n.logger.Warn("nudge user lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	if hasPersonalEmailDomain(user.Email) {
		return
	}

	count, err := n.members.CountForOrganization(ctx, event.OrganizationID)
	if err != nil {
		n.logger.Warn("nudge member count failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if count != 1 {
		return
	}

	payload := map[string]interface{}{
		nudgePayloadMarker: "invite-team-member-nudge",
		"webhookUrl":       n.cfg.WebhookURL,
	}
	recipient := models.Recipient{
		SubscriberID: user.ID,
		Email:        user.Email,
	}
	if err := n.sender.Trigger(ctx, n.cfg.TriggerIdentifier, recipient, payload); err != nil {
		n.logger.Warn("nudge trigger failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if n.analytics != nil {
		n.analytics.Track(ctx, "Invite Nudge Sent", user.ID, map[string]interface{}{
			"organizationId": event.OrganizationID,
		})
	}
}

func hasPersonalEmailDomain(email string) bool {
	address := strings.ToLower(email)
	for _, domain := range personalEmailDomains {
		if strings.Contains(address, domain) {
			return true
		}
	}
	return false
}
