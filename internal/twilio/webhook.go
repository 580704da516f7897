package twilio

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pathakanu/billminder/internal/bot"
)

// Handler returns the HTTP handler for incoming Twilio webhook POSTs. Form
// fields are decoded into a bot event: a non-empty ButtonPayload is a button
// press, a "/"-prefixed body is a command, anything else is free text. The
// webhook always answers with empty TwiML; replies go out through the REST
// API so a single inbound event can produce several messages.
func Handler(b *bot.Bot, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			logger.Printf("webhook: parse error: %v", err)
			writeEmptyResponse(w, logger)
			return
		}

		from := r.FormValue("From")
		body := strings.TrimSpace(r.FormValue("Body"))
		payload := strings.TrimSpace(r.FormValue("ButtonPayload"))

		owner, err := ParseUserID(from)
		if err != nil {
			logger.Printf("webhook: %v", err)
			writeEmptyResponse(w, logger)
			return
		}

		event := bot.Event{Owner: owner}
		switch {
		case payload != "":
			event.Kind = bot.EventCallback
			event.Text = payload
		case strings.HasPrefix(body, "/"):
			event.Kind = bot.EventCommand
			event.Text = body
		case body != "":
			event.Kind = bot.EventText
			event.Text = body
		default:
			writeEmptyResponse(w, logger)
			return
		}

		b.Dispatch(event)
		writeEmptyResponse(w, logger)
	}
}

// ParseUserID extracts the numeric owner id from a Twilio From address such
// as "whatsapp:+15551234567".
func ParseUserID(from string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
	trimmed = strings.TrimPrefix(trimmed, "+")
	if trimmed == "" {
		return 0, fmt.Errorf("missing From address")
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric From address %q", from)
	}
	return id, nil
}

func writeEmptyResponse(w http.ResponseWriter, logger *log.Logger) {
	twiml := struct {
		XMLName xml.Name `xml:"Response"`
	}{}

	w.Header().Set("Content-Type", "application/xml")
	if err := xml.NewEncoder(w).Encode(twiml); err != nil {
		logger.Printf("twilio response encode: %v", err)
	}
}
