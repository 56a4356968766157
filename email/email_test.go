package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendContactMessage_Unconfigured(t *testing.T) {
	service := &ContactService{}

	err := service.SendContactMessage("Alice", "alice@example.com", "Hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestBuildMessage_Headers(t *testing.T) {
	service := &ContactService{from: "blog@example.com", to: "owner@example.com"}

	message := service.buildMessage("Alice", "alice@example.com", "Hello there")
	headers, body, found := strings.Cut(message, "\r\n\r\n")

	assert.True(t, found)
	assert.Contains(t, headers, "From: blog@example.com")
	assert.Contains(t, headers, "To: owner@example.com")
	assert.Contains(t, headers, "Reply-To: alice@example.com")
	assert.Contains(t, headers, "Subject: New contact message from Alice")
	assert.Contains(t, body, "Hello there")
}

func TestBuildMessage_StripsNewlinesFromHeaderFields(t *testing.T) {
	service := &ContactService{from: "blog@example.com", to: "owner@example.com"}

	message := service.buildMessage(
		"Alice\r\nBcc: victim@example.com",
		"alice@example.com\r\nX-Spam: yes",
		"Hello",
	)
	headers, _, _ := strings.Cut(message, "\r\n\r\n")

	// The line breaks are stripped, so the payload stays inside the
	// Reply-To and Subject values and never becomes a header of its own.
	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"))
		assert.False(t, strings.HasPrefix(line, "X-Spam:"))
	}
	assert.Contains(t, headers, "Reply-To: alice@example.comX-Spam: yes\r\n")
	assert.Contains(t, headers, "Subject: New contact message from AliceBcc: victim@example.com")
}
