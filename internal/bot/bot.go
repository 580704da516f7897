package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pathakanu/billminder/internal/config"
	"github.com/pathakanu/billminder/internal/store"
	"github.com/robfig/cron/v3"
)

// Sender delivers outbound messages to a chat user. The concrete transport
// lives outside this package.
type Sender interface {
	SendMessage(owner int64, body string) error
	SendPrompt(owner int64, body string, buttons []Button) error
}

// EventKind distinguishes the three inbound event shapes the transport
// produces.
type EventKind int

const (
	EventCommand EventKind = iota
	EventCallback
	EventText
)

// Event is one inbound user interaction. Text carries the message body for
// commands and free text, or the button payload for callbacks.
type Event struct {
	Owner int64
	Kind  EventKind
	Text  string
}

const (
	refusalMessage = "Sorry, this is a private bot."
	oopsMessage    = "Something went wrong on my side. Please try again."
	helpMessage    = "Hi! I'm your reminder assistant.\n\n" +
		"Commands:\n" +
		"/add - create a reminder\n" +
		"/list - show your reminders\n" +
		"/edit <id> - edit a reminder\n" +
		"/del <id> - delete a reminder"
)

// Bot coordinates reminder persistence, conversation state, and scheduling.
type Bot struct {
	cfg      *config.Config
	store    *store.Store
	sender   Sender
	cron     *cron.Cron
	sessions *sessionStore
	allowed  map[int64]struct{}
	now      func() time.Time
	logger   *log.Logger
}

// New creates a fully configured Bot instance.
func New(cfg *config.Config, st *store.Store, sender Sender, logger *log.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(cfg.AllowedUsers))
	for _, id := range cfg.AllowedUsers {
		allowed[id] = struct{}{}
	}
	return &Bot{
		cfg:      cfg,
		store:    st,
		sender:   sender,
		cron:     cron.New(cron.WithLocation(cfg.LocalTimezone)),
		sessions: newSessionStore(),
		allowed:  allowed,
		now:      time.Now,
		logger:   logger,
	}
}

// Dispatch routes one inbound event. Events for the same user are serialized
// on the user's session; different users proceed independently.
func (b *Bot) Dispatch(ev Event) {
	if !b.isAllowed(ev.Owner) {
		b.send(ev.Owner, refusalMessage)
		return
	}

	sess := b.sessions.get(ev.Owner)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch ev.Kind {
	case EventCommand:
		b.handleCommand(sess, ev.Owner, ev.Text)
	case EventCallback:
		b.handleCallback(sess, ev.Owner, ev.Text)
	default:
		b.handleText(sess, ev.Owner, ev.Text)
	}
}

func (b *Bot) isAllowed(owner int64) bool {
	_, ok := b.allowed[owner]
	return ok
}

func (b *Bot) handleCommand(sess *session, owner int64, body string) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		b.fallback(owner)
		return
	}
	command, arg := fields[0], ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch command {
	case "/start":
		b.send(owner, helpMessage)
		b.sendMenu(owner)
	case "/add":
		b.beginAdd(sess, owner)
	case "/list":
		b.sendList(owner)
	case "/edit":
		id, ok := parseID(arg)
		if !ok {
			b.send(owner, "Give me the reminder id, e.g. /edit 6")
			return
		}
		b.beginEdit(sess, owner, id)
	case "/del":
		id, ok := parseID(arg)
		if !ok {
			b.send(owner, "Give me the reminder id, e.g. /del 6")
			return
		}
		b.beginDelete(sess, owner, id)
	default:
		b.fallback(owner)
	}
}

func (b *Bot) handleCallback(sess *session, owner int64, payload string) {
	switch payload {
	case cbMenuAdd:
		b.beginAdd(sess, owner)
	case cbMenuList:
		b.sendList(owner)
	case cbMenuEdit:
		b.send(owner, "Edit a reminder with /edit <id>")
	case cbMenuDel:
		b.send(owner, "Delete a reminder with /del <id>")
	case cbDelYes, cbDelNo:
		b.resolveDelete(sess, owner, payload == cbDelYes)
	default:
		if sess.flow != nil {
			b.advanceFlow(sess, owner, payload)
			return
		}
		b.fallback(owner)
	}
}

func (b *Bot) handleText(sess *session, owner int64, body string) {
	if sess.flow != nil {
		b.advanceFlow(sess, owner, body)
		return
	}
	// A typed yes/no answers a pending delete confirmation on transports
	// without real buttons.
	if sess.pendingDelete != 0 {
		switch normalizeChoice(body) {
		case "yes":
			b.resolveDelete(sess, owner, true)
			return
		case "no":
			b.resolveDelete(sess, owner, false)
			return
		}
	}
	b.fallback(owner)
}

// beginAdd starts a fresh add flow, overwriting any in-progress draft.
func (b *Bot) beginAdd(sess *session, owner int64) {
	sess.flow = &flow{kind: flowAdd, step: stepText}
	b.send(owner, "What should I remind you about?")
}

// beginEdit starts an edit flow seeded from the stored record. Every field
// is re-collected; the seed only preserves fields the flow never asks for.
func (b *Bot) beginEdit(sess *session, owner int64, id uint) {
	reminder, err := b.store.GetByID(id, owner)
	if err != nil {
		b.logger.Printf("edit reminder %d for %d: %v", id, owner, err)
		b.send(owner, oopsMessage)
		return
	}
	if reminder == nil {
		b.send(owner, fmt.Sprintf("Reminder %d not found.", id))
		return
	}
	sess.flow = &flow{kind: flowEdit, target: id, step: stepText, draft: *reminder}
	b.send(owner, fmt.Sprintf("Editing reminder %d. Send the new text:", id))
}

func (b *Bot) beginDelete(sess *session, owner int64, id uint) {
	reminder, err := b.store.GetByID(id, owner)
	if err != nil {
		b.logger.Printf("delete reminder %d for %d: %v", id, owner, err)
		b.send(owner, oopsMessage)
		return
	}
	if reminder == nil {
		b.send(owner, fmt.Sprintf("Reminder %d not found.", id))
		return
	}
	sess.pendingDelete = id
	b.promptUser(owner, prompt{
		text: fmt.Sprintf("Delete reminder %d?", id),
		buttons: []Button{
			{Label: "Yes", Payload: cbDelYes},
			{Label: "No", Payload: cbDelNo},
		},
	})
}

// resolveDelete answers a pending delete confirmation. Either answer clears
// the pending state.
func (b *Bot) resolveDelete(sess *session, owner int64, confirmed bool) {
	id := sess.pendingDelete
	sess.pendingDelete = 0
	if id == 0 {
		b.fallback(owner)
		return
	}
	if !confirmed {
		b.send(owner, "Deletion cancelled.")
		b.sendMenu(owner)
		return
	}
	ok, err := b.store.Delete(id, owner)
	if err != nil {
		b.logger.Printf("delete reminder %d for %d: %v", id, owner, err)
		b.send(owner, oopsMessage)
		return
	}
	if !ok {
		b.send(owner, fmt.Sprintf("Reminder %d not found.", id))
		return
	}
	b.send(owner, fmt.Sprintf("Reminder %d deleted.", id))
	b.sendMenu(owner)
}

func (b *Bot) sendList(owner int64) {
	reminders, err := b.store.ListByOwner(owner)
	if err != nil {
		b.logger.Printf("list reminders for %d: %v", owner, err)
		b.send(owner, oopsMessage)
		return
	}
	if len(reminders) == 0 {
		b.send(owner, "You have no reminders yet.")
		b.sendMenu(owner)
		return
	}
	for _, r := range reminders {
		b.send(owner, FormatReminder(r))
	}
	b.sendMenu(owner)
}

func (b *Bot) advanceFlow(sess *session, owner int64, input string) {
	result := sess.flow.advance(input, b.now().In(b.cfg.LocalTimezone))
	for _, p := range result.prompts {
		b.promptUser(owner, p)
	}
	if result.done {
		b.commitFlow(sess, owner)
	}
}

// commitFlow promotes a completed draft into the store and drops the flow.
func (b *Bot) commitFlow(sess *session, owner int64) {
	f := sess.flow
	sess.flow = nil

	switch f.kind {
	case flowEdit:
		ok, err := b.store.Update(f.target, owner, &f.draft)
		if err != nil {
			b.logger.Printf("update reminder %d for %d: %v", f.target, owner, err)
			b.send(owner, oopsMessage)
			return
		}
		if !ok {
			b.send(owner, fmt.Sprintf("Reminder %d not found.", f.target))
			return
		}
		b.send(owner, fmt.Sprintf("Reminder %d updated!", f.target))
	default:
		draft := f.draft
		draft.ID = 0
		draft.Owner = owner
		draft.CreatedAt = time.Time{}
		if err := b.store.Insert(&draft); err != nil {
			b.logger.Printf("save reminder for %d: %v", owner, err)
			b.send(owner, oopsMessage)
			return
		}
		b.send(owner, fmt.Sprintf("Reminder saved! ID %d.", draft.ID))
	}
	b.sendMenu(owner)
}

// fallback acknowledges input the bot has no handler for and shows the menu.
func (b *Bot) fallback(owner int64) {
	b.send(owner, "Got it. What would you like to do?")
	b.sendMenu(owner)
}

func (b *Bot) sendMenu(owner int64) {
	b.promptUser(owner, prompt{
		text: "Pick a command:",
		buttons: []Button{
			{Label: "/add", Payload: cbMenuAdd},
			{Label: "/list", Payload: cbMenuList},
			{Label: "/edit", Payload: cbMenuEdit},
			{Label: "/del", Payload: cbMenuDel},
		},
	})
}

func (b *Bot) send(owner int64, body string) {
	if err := b.sender.SendMessage(owner, body); err != nil {
		b.logger.Printf("send to %d: %v", owner, err)
	}
}

func (b *Bot) promptUser(owner int64, p prompt) {
	if len(p.buttons) == 0 {
		b.send(owner, p.text)
		return
	}
	if err := b.sender.SendPrompt(owner, p.text, p.buttons); err != nil {
		b.logger.Printf("prompt to %d: %v", owner, err)
	}
}

func parseID(arg string) (uint, bool) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// sessionStore holds per-user transient state: the in-progress flow and a
// pending delete confirmation. Sessions are created lazily and each carries
// its own mutex so one user's long store call never blocks another user.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

type session struct {
	mu            sync.Mutex
	flow          *flow
	pendingDelete uint
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (s *sessionStore) get(owner int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		sess = &session{}
		s.sessions[owner] = sess
	}
	return sess
}
