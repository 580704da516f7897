package twilio

import (
	"fmt"
	"log"
	"strings"

	"github.com/pathakanu/billminder/internal/bot"
	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client wraps Twilio messaging operations required by the bot. It satisfies
// bot.Sender; owner ids are the numeric part of a WhatsApp number.
type Client struct {
	client       *twilio.RestClient
	fromWhatsApp string
	logger       *log.Logger
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string, logger *log.Logger) *Client {
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromWhatsApp: fromWhatsApp,
		logger:       logger,
	}
}

// SendMessage sends a WhatsApp message to the given owner via Twilio's API.
func (c *Client) SendMessage(owner int64, body string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := normalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}
	recipient := normalizeWhatsAppAddress(fmt.Sprintf("+%d", owner))

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}

	if resp.Sid != nil {
		c.logger.Printf("twilio: message sent to %s, SID %s", recipient, *resp.Sid)
	}
	return nil
}

// SendPrompt sends a message with tappable options. WhatsApp quick replies
// outside approved templates fall back to plain text, so the options are also
// rendered as lines; the bot accepts a typed label in place of a button press.
func (c *Client) SendPrompt(owner int64, body string, buttons []bot.Button) error {
	var sb strings.Builder
	sb.WriteString(body)
	for _, button := range buttons {
		sb.WriteString("\n▸ ")
		sb.WriteString(button.Label)
	}
	return c.SendMessage(owner, sb.String())
}

func normalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}
