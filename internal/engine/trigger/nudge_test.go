package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-engine/internal/common/config"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/featureflag"
	"notification-engine/internal/models"
)

type fakeFeed struct {
	hasAny bool
	err    error
	calls  int
}

func (f *fakeFeed) HasAny(_ context.Context, _, _ string) (bool, error) {
	f.calls++
	return f.hasAny, f.err
}

type fakeUserReader struct {
	user *models.User
	err  error
}

func (f *fakeUserReader) FindByID(_ context.Context, _ string) (*models.User, error) {
	return f.user, f.err
}

type fakeMemberCounter struct {
	count int
	err   error
}

func (f *fakeMemberCounter) CountForOrganization(_ context.Context, _ string) (int, error) {
	return f.count, f.err
}

type fakeSender struct {
	identifiers []string
	payloads    []map[string]interface{}
	err         error
}

func (f *fakeSender) Trigger(_ context.Context, identifier string, _ models.Recipient, payload map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.identifiers = append(f.identifiers, identifier)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeAnalytics struct {
	events []string
}

func (f *fakeAnalytics) Track(_ context.Context, event, _ string, _ map[string]interface{}) {
	f.events = append(f.events, event)
}

func nudgeConfig() config.NudgeConfig {
	return config.NudgeConfig{
		TriggerIdentifier: "in-app-invite-team-member-nudge",
		WebhookURL:        "https://hooks.example.com/nudge",
		Timeout:           100,
	}
}

func enabledFlags() featureflag.Evaluator {
	return featureflag.NewConfigEvaluator(map[string]bool{
		featureflag.KeyInviteTeamMemberNudge: true,
	})
}

func soloUser() *models.User {
	return &models.User{ID: "user-1", Email: "ada@acme.io"}
}

func newTestNudge(feed *fakeFeed, users *fakeUserReader, members *fakeMemberCounter, sender *fakeSender, analytics *fakeAnalytics, flags featureflag.Evaluator, environment string) *Nudge {
	return NewNudge(feed, users, members, sender, analytics, flags, nudgeConfig(), environment, logger.NewNoOpLogger())
}

func TestNudgeSendsForSoloCompanyAccount(t *testing.T) {
	sender := &fakeSender{}
	analytics := &fakeAnalytics{}
	nudge := newTestNudge(&fakeFeed{}, &fakeUserReader{user: soloUser()}, &fakeMemberCounter{count: 1}, sender, analytics, enabledFlags(), "production")

	nudge.MaybeSend(context.Background(), baseEvent())

	require.Len(t, sender.identifiers, 1)
	assert.Equal(t, "in-app-invite-team-member-nudge", sender.identifiers[0])
	assert.Equal(t, "https://hooks.example.com/nudge", sender.payloads[0]["webhookUrl"])
	assert.Contains(t, sender.payloads[0], nudgePayloadMarker)
	assert.Equal(t, []string{"Invite Nudge Sent"}, analytics.events)
}

func TestNudgeSkipConditions(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		feed        *fakeFeed
		users       *fakeUserReader
		members     *fakeMemberCounter
		flags       featureflag.Evaluator
		mutate      func(*models.TriggerEvent)
	}{
		{
			name:        "test environment",
			environment: "test",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 1},
			flags:       enabledFlags(),
		},
		{
			name:        "feature flag disabled",
			environment: "production",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 1},
			flags:       featureflag.NewConfigEvaluator(nil),
		},
		{
			name:        "organization already notified",
			environment: "production",
			feed:        &fakeFeed{hasAny: true},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 1},
			flags:       enabledFlags(),
		},
		{
			name:        "personal email domain",
			environment: "production",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: &models.User{ID: "user-1", Email: "ada@gmail.com"}},
			members:     &fakeMemberCounter{count: 1},
			flags:       enabledFlags(),
		},
		{
			name:        "organization has teammates",
			environment: "production",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 3},
			flags:       enabledFlags(),
		},
		{
			name:        "event is the nudge trigger itself",
			environment: "production",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 1},
			flags:       enabledFlags(),
			mutate: func(event *models.TriggerEvent) {
				event.Identifier = "in-app-invite-team-member-nudge"
			},
		},
		{
			name:        "payload carries nudge marker",
			environment: "production",
			feed:        &fakeFeed{},
			users:       &fakeUserReader{user: soloUser()},
			members:     &fakeMemberCounter{count: 1},
			flags:       enabledFlags(),
			mutate: func(event *models.TriggerEvent) {
				event.Payload[nudgePayloadMarker] = "invite-team-member-nudge"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			nudge := newTestNudge(tt.feed, tt.users, tt.members, sender, &fakeAnalytics{}, tt.flags, tt.environment)

			event := baseEvent()
			if tt.mutate != nil {
				tt.mutate(event)
			}
			nudge.MaybeSend(context.Background(), event)
			assert.Empty(t, sender.identifiers)
		})
	}
}

func TestNudgeSwallowsFailures(t *testing.T) {
	tests := []struct {
		name    string
		feed    *fakeFeed
		users   *fakeUserReader
		members *fakeMemberCounter
		sender  *fakeSender
	}{
		{
			name:    "feed check fails",
			feed:    &fakeFeed{err: errors.New("index unavailable")},
			users:   &fakeUserReader{user: soloUser()},
			members: &fakeMemberCounter{count: 1},
			sender:  &fakeSender{},
		},
		{
			name:    "user lookup fails",
			feed:    &fakeFeed{},
			users:   &fakeUserReader{err: errors.New("query failed")},
			members: &fakeMemberCounter{count: 1},
			sender:  &fakeSender{},
		},
		{
			name:    "sender fails",
			feed:    &fakeFeed{},
			users:   &fakeUserReader{user: soloUser()},
			members: &fakeMemberCounter{count: 1},
			sender:  &fakeSender{err: errors.New("platform down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nudge := newTestNudge(tt.feed, tt.users, tt.members, tt.sender, &fakeAnalytics{}, enabledFlags(), "production")
			assert.NotPanics(t, func() {
				nudge.MaybeSend(context.Background(), baseEvent())
			})
		})
	}
}

func TestNudgeSendsWithNoopAnalytics(t *testing.T) {
	sender := &fakeSender{}
	nudge := NewNudge(&fakeFeed{}, &fakeUserReader{user: soloUser()}, &fakeMemberCounter{count: 1},
		sender, NoopAnalytics{}, enabledFlags(), nudgeConfig(), "production", logger.NewNoOpLogger())

	nudge.MaybeSend(context.Background(), baseEvent())
	assert.Len(t, sender.identifiers, 1)
}

func TestPersonalEmailDomainDetection(t *testing.T) {
	tests := []struct {
		email    string
		personal bool
	}{
		{"ada@gmail.com", true},
		{"ada@outlook.com", true},
		{"ada@hotmail.co.uk", true},
		{"ada@protonmail.com", true},
		{"ADA@GMAIL.COM", true},
		{"ada@acme.io", false},
		{"ada@university.edu", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.personal, hasPersonalEmailDomain(tt.email))
		})
	}
}

func TestNudgeNilReceiverIsSafe(t *testing.T) {
	var nudge *Nudge
	assert.NotPanics(t, func() {
		nudge.MaybeSend(context.Background(), baseEvent())
	})
}
