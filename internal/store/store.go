// Package store keeps the single delivery configuration record on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrNotConfigured = errors.New("delivery configuration not found")

// ChatHandle is a Telegram chat id. It is written as a number and read from
// either a number or a numeric string.
type ChatHandle int64

func (h *ChatHandle) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*h = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*h = 0
			return nil
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("chat id %s: %w", data, err)
	}
	*h = ChatHandle(id)
	return nil
}

// Record is the delivery configuration. The JSON keys follow the file layout
// written by earlier releases, so existing config.json files keep loading.
type Record struct {
	ChatID        ChatHandle `json:"chat_id,omitempty"`
	AdminChatID   ChatHandle `json:"admin_chat_id,omitempty"`
	TelegramToken string     `json:"telegram_token,omitempty"`
	APIKey        string     `json:"gemini_api_key,omitempty"`
	ProxyURL      *string    `json:"proxy_url"`
	ScheduleTime  string     `json:"schedule_time,omitempty"`
}

// Recipient returns the chat that receives the daily phrase.
// Files that only carry admin_chat_id are delivered to the admin chat.
func (r Record) Recipient() int64 {
	if r.ChatID != 0 {
		return int64(r.ChatID)
	}
	return int64(r.AdminChatID)
}

// Proxy returns the stored proxy address or an empty string.
func (r Record) Proxy() string {
	if r.ProxyURL == nil {
		return ""
	}
	return *r.ProxyURL
}

type Store interface {
	// Load returns ErrNotConfigured when nothing has been saved yet.
	Load() (*Record, error)
	Save(rec Record) error
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return rec, nil
}

// Save overwrites the whole file.
func (s *FileStore) Save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	log.WithField("path", s.path).Info("configuration saved")
	return nil
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

func NewMemoryStore(rec *Record) *MemoryStore {
	return &MemoryStore{rec: rec}
}

func (s *MemoryStore) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, ErrNotConfigured
	}
	rec := *s.rec
	return &rec, nil
}

func (s *MemoryStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}
