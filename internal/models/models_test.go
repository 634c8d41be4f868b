package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The status strings are persisted and matched by SQL guards, so their
// wire values are load-bearing: trials and subscriptions go pending →
// active, renewals pending → approved, rejections share one value.
func TestRequestStatusValues(t *testing.T) {
	assert.Equal(t, "pending", StatusPending)
	assert.Equal(t, "active", StatusActive)
	assert.Equal(t, "approved", StatusApproved)
	assert.Equal(t, "rejected", StatusRejected)
}

func TestMessageDirectionValues(t *testing.T) {
	assert.Equal(t, "received", MessageReceived)
	assert.Equal(t, "sent", MessageSent)
}
