// Package queue defines message payloads exchanged over the message broker.
package queue

// Mail event kinds understood by the outbound mail consumer.
const (
	MailKindOtpCode       = "otp_code"
	MailKindWelcome       = "welcome"
	MailKindPasswordReset = "password_reset"
)

// MailEvent is published whenever the server needs to send an email:
// a sign-in code, a welcome message, or a password-reset link. It
// carries everything the mail worker needs so it never queries the
// primary database.
type MailEvent struct {
	Kind      string `json:"kind"`
	To        string `json:"to"`
	UserID    uint64 `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	OtpCode   string `json:"otp_code,omitempty"`
	ResetURL  string `json:"reset_url,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	QueuedAt  string `json:"queued_at"`
}
