package onboarding

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwavecut/telegram-motivation-bot/internal/store"
	"github.com/iamwavecut/telegram-motivation-bot/resources/consts"
)

type failingStore struct {
	saves int
}

func (s *failingStore) Load() (*store.Record, error) { return nil, store.ErrNotConfigured }

func (s *failingStore) Save(store.Record) error {
	s.saves++
	return errors.New("disk full")
}

func runReplies(t *testing.T, d *Dialog, chatID int64, replies ...string) string {
	t.Helper()
	var last string
	for _, text := range replies {
		reply, handled, err := d.Reply(chatID, text, "en")
		require.NoError(t, err)
		require.True(t, handled)
		last = reply
	}
	return last
}

func TestDialog_FullFlowPersistsLiteralReplies(t *testing.T) {
	const chatID = 1001
	st := store.NewMemoryStore(nil)
	d := New(DialogFlow(), st)

	reply, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	assert.Contains(t, reply, consts.StrSetupIntro)
	assert.Contains(t, reply, consts.StrAskToken)

	reply, handled, err := d.Reply(chatID, "123:tok", "en")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, consts.StrAskGeminiKey, reply)

	reply = runReplies(t, d, chatID, " gemini-key ", "socks5://u:p@host:1080")
	assert.Equal(t, consts.StrAskScheduleTime, reply)

	_, err = st.Load()
	assert.ErrorIs(t, err, store.ErrNotConfigured)

	reply = runReplies(t, d, chatID, "4 утра")
	assert.Equal(t, consts.StrSetupDone, reply)
	assert.False(t, d.Active(chatID))

	rec, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "123:tok", rec.TelegramToken)
	assert.Equal(t, " gemini-key ", rec.APIKey)
	assert.Equal(t, "socks5://u:p@host:1080", rec.Proxy())
	assert.Equal(t, "4 утра", rec.ScheduleTime)
	assert.Equal(t, store.ChatHandle(chatID), rec.ChatID)
	assert.Equal(t, store.ChatHandle(chatID), rec.AdminChatID)
}

func TestNormalizeProxy(t *testing.T) {
	for _, skip := range []string{"нет", "НЕТ", "Нет", "skip", "SKIP", " no ", "пропустить", "Пропустить"} {
		assert.Nil(t, NormalizeProxy(skip), skip)
	}
	for _, proxy := range []string{"http://host:3128", " socks5://h:1 ", "nope", "skip it"} {
		got := NormalizeProxy(proxy)
		require.NotNil(t, got, proxy)
		assert.Equal(t, proxy, *got)
	}
}

func TestDialog_ProxySkipStoresNoProxy(t *testing.T) {
	const chatID = 1002
	st := store.NewMemoryStore(nil)
	d := New(DialogFlow(), st)

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	runReplies(t, d, chatID, "tok", "key", "Skip", "07:30")

	rec, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, rec.ProxyURL)
	assert.Equal(t, "07:30", rec.ScheduleTime)
}

func TestDialog_CancelAtEveryStepLeavesNoFile(t *testing.T) {
	replies := []string{"tok", "key", "no"}
	for step := 0; step <= len(replies); step++ {
		chatID := int64(2000 + step)
		path := filepath.Join(t.TempDir(), "config.json")
		d := New(DialogFlow(), store.NewFileStore(path))

		_, err := d.Begin(chatID, "en")
		require.NoError(t, err)
		runReplies(t, d, chatID, replies[:step]...)

		reply, ok := d.Cancel(chatID, "en")
		assert.True(t, ok)
		assert.Equal(t, consts.StrSetupCancelled, reply)
		assert.False(t, d.Active(chatID))

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "step %d", step)

		_, handled, err := d.Reply(chatID, "late reply", "en")
		assert.NoError(t, err)
		assert.False(t, handled)
	}
}

func TestDialog_CancelKeepsPriorFile(t *testing.T) {
	const chatID = 1003
	path := filepath.Join(t.TempDir(), "config.json")
	prior := []byte(`{"chat_id": 5, "gemini_api_key": "old", "proxy_url": null, "schedule_time": "05:00"}`)
	require.NoError(t, os.WriteFile(path, prior, 0o600))
	d := New(DialogFlow(), store.NewFileStore(path))

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	runReplies(t, d, chatID, "tok", "key", "no")
	_, ok := d.Cancel(chatID, "en")
	require.True(t, ok)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prior, got)
}

func TestDialog_CancelWithoutSession(t *testing.T) {
	d := New(DialogFlow(), store.NewMemoryStore(nil))
	_, ok := d.Cancel(1004, "en")
	assert.False(t, ok)
}

func TestDialog_ReplyWithoutSession(t *testing.T) {
	st := store.NewMemoryStore(nil)
	d := New(DialogFlow(), st)

	reply, handled, err := d.Reply(1005, "hello", "en")
	assert.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, reply)
	_, err = st.Load()
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}

func TestDialog_BeginRestartsSession(t *testing.T) {
	const chatID = 1006
	st := store.NewMemoryStore(nil)
	d := New(DialogFlow(), st)

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	runReplies(t, d, chatID, "first-token", "first-key")

	_, err = d.Begin(chatID, "en")
	require.NoError(t, err)
	runReplies(t, d, chatID, "second-token", "second-key", "нет", "06:15")

	rec, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "second-token", rec.TelegramToken)
	assert.Equal(t, "second-key", rec.APIKey)
}

func TestDialog_SaveErrorKeepsSession(t *testing.T) {
	const chatID = 1007
	st := &failingStore{}
	d := New(DialogFlow(), st)

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	runReplies(t, d, chatID, "tok", "key", "no")

	_, handled, err := d.Reply(chatID, "04:00", "en")
	assert.True(t, handled)
	assert.Error(t, err)
	assert.True(t, d.Active(chatID))

	_, _, err = d.Reply(chatID, "04:00", "en")
	assert.Error(t, err)
	assert.Equal(t, 2, st.saves)
	t.Cleanup(func() { d.Cancel(chatID, "en") })
}

func TestDialog_StartFlowSavesSenderImmediately(t *testing.T) {
	const chatID = 1008
	path := filepath.Join(t.TempDir(), "config.json")
	st := store.NewFileStore(path)
	d := New(StartFlow(), st)

	reply, err := d.Begin(chatID, "en")
	require.NoError(t, err)
	assert.Equal(t, consts.StrWelcome, reply)
	assert.False(t, d.Active(chatID))

	rec, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, store.Record{ChatID: chatID, AdminChatID: chatID}, *rec)
}

func TestDialog_StartFlowSaveError(t *testing.T) {
	d := New(StartFlow(), &failingStore{})
	_, err := d.Begin(1009, "en")
	assert.Error(t, err)
}

func TestDialog_RussianReplies(t *testing.T) {
	const chatID = 1010
	d := New(DialogFlow(), store.NewMemoryStore(nil))

	reply, err := d.Begin(chatID, "ru")
	require.NoError(t, err)
	assert.Contains(t, reply, "@BotFather")
	assert.NotContains(t, reply, consts.StrAskToken)

	reply, ok := d.Cancel(chatID, "ru")
	require.True(t, ok)
	assert.Equal(t, "Настройка отменена.", reply)
}

func TestDialog_EmptyTextDoesNotAdvance(t *testing.T) {
	const chatID = 1011
	st := store.NewMemoryStore(nil)
	d := New(DialogFlow(), st)

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)

	reply, handled, err := d.Reply(chatID, "", "en")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, reply)
	assert.True(t, d.Active(chatID))

	runReplies(t, d, chatID, "tok", "key", "no")
	_, handled, err = d.Reply(chatID, "", "en")
	require.NoError(t, err)
	assert.False(t, handled)
	_, err = st.Load()
	assert.ErrorIs(t, err, store.ErrNotConfigured)

	runReplies(t, d, chatID, "04:00")
	rec, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", rec.TelegramToken)
	assert.Equal(t, "04:00", rec.ScheduleTime)
}

type countingStore struct {
	mu    sync.Mutex
	saves []store.Record
}

func (s *countingStore) Load() (*store.Record, error) { return nil, store.ErrNotConfigured }

func (s *countingStore) Save(rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, rec)
	return nil
}

func TestDialog_ConcurrentRepliesEachTakeOneStep(t *testing.T) {
	const chatID = 1012
	st := &countingStore{}
	d := New(DialogFlow(), st)

	_, err := d.Begin(chatID, "en")
	require.NoError(t, err)

	answers := []string{"a", "b", "c", "d"}
	var wg sync.WaitGroup
	for _, text := range answers {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, handled, err := d.Reply(chatID, text, "en")
			assert.NoError(t, err)
			assert.True(t, handled)
		}(text)
	}
	wg.Wait()

	require.Len(t, st.saves, 1)
	rec := st.saves[0]
	got := []string{rec.TelegramToken, rec.APIKey, rec.Proxy(), rec.ScheduleTime}
	assert.ElementsMatch(t, answers, got)
	assert.False(t, d.Active(chatID))
}
