package onboarding

import (
	"fmt"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/telegram-motivation-bot/internal/i18n"
	"github.com/iamwavecut/telegram-motivation-bot/internal/reg"
	"github.com/iamwavecut/telegram-motivation-bot/internal/store"
)

type session struct {
	step int
	rec  store.Record
}

type Dialog struct {
	flow  Flow
	store store.Store

	// mu serializes session reads and writes so concurrent updates from one
	// chat each land on their own step.
	mu sync.Mutex
}

func New(flow Flow, st store.Store) *Dialog {
	return &Dialog{flow: flow, store: st}
}

func sessionKey(chatID int64) string {
	return "setup_" + strconv.FormatInt(chatID, 10)
}

// Active reports whether chatID is in the middle of the flow.
func (d *Dialog) Active(chatID int64) bool {
	_, ok := reg.Lookup[*session](sessionKey(chatID))
	return ok
}

// Begin starts the flow over for chatID and returns the reply to send.
func (d *Dialog) Begin(chatID int64, lang string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.flow.Steps) == 0 {
		return d.complete(chatID, store.Record{}, lang)
	}
	reg.Set(sessionKey(chatID), &session{})
	log.WithField("chat_id", chatID).Info("setup started")

	return i18n.Get(d.flow.Intro, lang) + "\n\n" + i18n.Get(d.flow.Steps[0].Prompt, lang), nil
}

// Reply feeds one free-text answer into the current step. handled is false
// when chatID has no open session or text is empty (stickers, photos).
func (d *Dialog) Reply(chatID int64, text, lang string) (reply string, handled bool, err error) {
	if text == "" {
		return "", false, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := reg.Lookup[*session](sessionKey(chatID))
	if !ok {
		return "", false, nil
	}
	step := d.flow.Steps[s.step]
	next := *s
	step.Apply(&next.rec, text)
	next.step++
	log.WithFields(log.Fields{"chat_id": chatID, "step": step.Name}).Info("setup value received")

	if next.step < len(d.flow.Steps) {
		reg.Set(sessionKey(chatID), &next)
		return i18n.Get(d.flow.Steps[next.step].Prompt, lang), true, nil
	}

	reply, err = d.complete(chatID, next.rec, lang)
	return reply, true, err
}

// Cancel drops the open session without saving anything.
func (d *Dialog) Cancel(chatID int64, lang string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := reg.Lookup[*session](sessionKey(chatID)); !ok {
		return "", false
	}
	reg.Delete(sessionKey(chatID))
	log.WithField("chat_id", chatID).Info("setup cancelled")
	return i18n.Get(d.flow.Cancelled, lang), true
}

func (d *Dialog) complete(chatID int64, rec store.Record, lang string) (string, error) {
	rec.ChatID = store.ChatHandle(chatID)
	rec.AdminChatID = store.ChatHandle(chatID)
	if err := d.store.Save(rec); err != nil {
		return "", fmt.Errorf("save configuration: %w", err)
	}
	reg.Delete(sessionKey(chatID))
	log.WithField("chat_id", chatID).Info("setup completed")
	return i18n.Get(d.flow.Done, lang), nil
}
