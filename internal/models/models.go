// Package models defines the persisted entities of the bot.
package models

import (
	"database/sql"
	"time"
)

// Conversation states stored in users.current_state.
const (
	StateMainMenu          = "menu_principal"
	StateTestName          = "teste_nome"
	StateTestCity          = "teste_cidade"
	StateTestDevice        = "teste_dispositivo"
	StatePlanChoice        = "plano_escolha"
	StatePlanProof         = "plano_comprovante"
	StateRenewalLogin      = "renovacao_login"
	StateRenewalPlan       = "renovacao_plano"
	StateRenewalProof      = "renovacao_comprovante"
	StateSupportProblem    = "suporte_problema"
	StateAwaitingAttendant = "aguardando_atendente"
)

// Request lifecycle statuses. Approved trials and subscriptions become
// active accounts; renewals stay approved since the account already exists.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Support request statuses.
const (
	SupportOpen   = "open"
	SupportClosed = "closed"
)

// Message directions recorded in the messages log.
const (
	MessageReceived = "received"
	MessageSent     = "sent"
)

// Request types recorded alongside payment proofs.
const (
	RequestTypeTest         = "test"
	RequestTypeSubscription = "subscription"
	RequestTypeRenewal      = "renewal"
)

// User is one WhatsApp contact and their conversation position.
type User struct {
	ID              int64          `db:"id"`
	Phone           string         `db:"phone"`
	Name            sql.NullString `db:"name"`
	City            sql.NullString `db:"city"`
	Device          sql.NullString `db:"device"`
	CurrentState    string         `db:"current_state"`
	MessageCount    int            `db:"message_count"`
	CreatedAt       time.Time      `db:"created_at"`
	LastInteraction time.Time      `db:"last_interaction"`
}

// FreeTest is a free trial request awaiting admin approval.
type FreeTest struct {
	ID           int64          `db:"id"`
	UserID       int64          `db:"user_id"`
	Name         string         `db:"name"`
	City         string         `db:"city"`
	Device       string         `db:"device"`
	TestLogin    sql.NullString `db:"test_login"`
	TestPassword sql.NullString `db:"test_password"`
	Status       string         `db:"status"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`
	ApprovedAt   sql.NullTime   `db:"approved_at"`
	CreatedAt    time.Time      `db:"created_at"`

	// Phone is joined in from users for admin listings.
	Phone string `db:"phone"`
}

// Subscription is a paid plan purchase request.
type Subscription struct {
	ID         int64          `db:"id"`
	UserID     int64          `db:"user_id"`
	Plan       string         `db:"plan"`
	Login      sql.NullString `db:"login"`
	Password   sql.NullString `db:"password"`
	Price      float64        `db:"price"`
	Status     string         `db:"status"`
	ExpiresAt  sql.NullTime   `db:"expires_at"`
	ApprovedAt sql.NullTime   `db:"approved_at"`
	CreatedAt  time.Time      `db:"created_at"`

	Phone string `db:"phone"`
}

// Renewal extends an existing subscription login.
type Renewal struct {
	ID           int64          `db:"id"`
	UserID       int64          `db:"user_id"`
	CurrentLogin string         `db:"current_login"`
	Plan         string         `db:"plan"`
	Price        float64        `db:"price"`
	PaymentProof sql.NullString `db:"payment_proof"`
	Status       string         `db:"status"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`
	ApprovedAt   sql.NullTime   `db:"approved_at"`
	CreatedAt    time.Time      `db:"created_at"`

	Phone string `db:"phone"`
}

// PaymentProof links proof content sent by the user to the request it pays for.
type PaymentProof struct {
	ID          int64     `db:"id"`
	Phone       string    `db:"phone"`
	RequestType string    `db:"request_type"`
	RequestID   int64     `db:"request_id"`
	ProofData   string    `db:"proof_data"`
	CreatedAt   time.Time `db:"created_at"`
}

// SupportRequest is a free-form problem report.
type SupportRequest struct {
	ID                 int64        `db:"id"`
	UserID             int64        `db:"user_id"`
	ProblemDescription string       `db:"problem_description"`
	Status             string       `db:"status"`
	CreatedAt          time.Time    `db:"created_at"`
	ResolvedAt         sql.NullTime `db:"resolved_at"`

	Phone string `db:"phone"`
}

// Message is one logged inbound or outbound message.
type Message struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	MessageContent string    `db:"message_content"`
	MessageType    string    `db:"message_type"`
	CreatedAt      time.Time `db:"created_at"`
}

// MessageLog is a message with the owner's contact info joined in.
type MessageLog struct {
	Message
	Phone string         `db:"phone"`
	Name  sql.NullString `db:"name"`
}

// Stats aggregates dashboard counters.
type Stats struct {
	Users                int64
	PendingTests         int64
	PendingSubscriptions int64
	PendingRenewals      int64
	ActiveTests          int64
	ActiveSubscriptions  int64
	OpenSupport          int64
	MessagesToday        int64
}
