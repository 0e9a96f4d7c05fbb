package model

import "time"

// CircleMaxMembers caps how many people can share one circle.
const CircleMaxMembers = 5

// PrivacyTier controls how much of a member's progress the rest of
// the circle can see.
type PrivacyTier string

const (
	PrivacyHidden  PrivacyTier = "hidden"
	PrivacyLimited PrivacyTier = "limited"
	PrivacyFull    PrivacyTier = "full"
)

// ValidPrivacyTier reports whether t is one of the known tiers.
func ValidPrivacyTier(t PrivacyTier) bool {
	switch t {
	case PrivacyHidden, PrivacyLimited, PrivacyFull:
		return true
	}
	return false
}

// Circle is a small accountability group (Saku) as stored in the
// `circles` table. People join through the invite code; a user
// belongs to at most one circle at a time.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the circle.
//  Description – optional free text.
//  InviteCode  – 6-character join code (unique).
//  CreatedBy   – user who created the circle.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Circle struct {
	ID          uint64    // circles.id
	Name        string    // circles.name
	Description string    // circles.description
	InviteCode  string    // circles.invite_code
	CreatedBy   uint64    // circles.created_by
	CreatedAt   time.Time // circles.created_at
	UpdatedAt   time.Time // circles.updated_at
}

// CircleMember is one row of the `circle_members` table. The unique
// key on user_id enforces the one-circle-per-user rule.
//
// Fields:
//  CircleID    – circle the membership belongs to.
//  UserID      – member (unique across all circles).
//  PrivacyTier – what the member shares with the circle.
//  IsAdmin     – whether the member administers the circle.
//  JoinedAt    – when the member joined.
type CircleMember struct {
	CircleID    uint64      // circle_members.circle_id
	UserID      uint64      // circle_members.user_id
	PrivacyTier PrivacyTier // circle_members.privacy_tier
	IsAdmin     bool        // circle_members.is_admin
	JoinedAt    time.Time   // circle_members.joined_at
}

// ActionType is the kind of encouragement sent between members.
type ActionType string

const (
	ActionDua      ActionType = "dua"
	ActionFistBump ActionType = "fist_bump"
	ActionReminder ActionType = "reminder"
)

// ValidActionType reports whether t is one of the known actions.
func ValidActionType(t ActionType) bool {
	switch t {
	case ActionDua, ActionFistBump, ActionReminder:
		return true
	}
	return false
}

// CircleAction records one encouragement in the `circle_actions`
// table; the summary screen shows the most recent ones.
//
// Fields:
//  ID        – primary key identifier.
//  CircleID  – circle the action happened in.
//  FromUser  – sender.
//  ToUser    – recipient.
//  Type      – dua, fist_bump or reminder.
//  CreatedAt – timestamp of creation.
type CircleAction struct {
	ID        uint64     // circle_actions.id
	CircleID  uint64     // circle_actions.circle_id
	FromUser  uint64     // circle_actions.from_user
	ToUser    uint64     // circle_actions.to_user
	Type      ActionType // circle_actions.type
	CreatedAt time.Time  // circle_actions.created_at
}
