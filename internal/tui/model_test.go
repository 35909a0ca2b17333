package tui

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tobischo/gokeepasslib/v3"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// TestRecordItem_Title проверяет заголовок элемента списка и его запасные
// варианты при пустых полях.
func TestRecordItem_Title(t *testing.T) {
	id := gokeepasslib.NewUUID()

	testCases := []struct {
		name     string
		record   entry.Record
		expected string
	}{
		{
			name:     "Обычный заголовок",
			record:   entry.Record{ID: id, Title: "Bank", UserName: "alice"},
			expected: "Bank",
		},
		{
			name:     "Пустой заголовок - показываем имя пользователя",
			record:   entry.Record{ID: id, UserName: "alice"},
			expected: "alice",
		},
		{
			name:     "Все пусто - показываем идентификатор",
			record:   entry.Record{ID: id},
			expected: hex.EncodeToString(id[:]),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := recordItem{record: tc.record}
			assert.Equal(t, tc.expected, item.Title())
			assert.Equal(t, tc.expected, item.FilterValue(), "Фильтр работает по заголовку")
		})
	}
}

// TestRecordItem_Description проверяет строку описания элемента списка.
func TestRecordItem_Description(t *testing.T) {
	testCases := []struct {
		name     string
		record   entry.Record
		expected string
	}{
		{
			name:     "Имя пользователя и URL",
			record:   entry.Record{UserName: "alice", URL: "https://example.com"},
			expected: "User: alice | URL: https://example.com",
		},
		{
			name:     "Только имя пользователя",
			record:   entry.Record{UserName: "alice"},
			expected: "User: alice",
		},
		{
			name:     "Только URL",
			record:   entry.Record{URL: "https://example.com"},
			expected: "URL: https://example.com",
		},
		{
			name:     "Пустая запись",
			record:   entry.Record{},
			expected: "",
		},
		{
			name: "Индикатор дополнительных полей",
			record: entry.Record{
				UserName: "alice",
				CustomFields: []entry.CustomField{
					{Label: "PIN", Value: "1234"},
					{Label: "Token", Value: "abc"},
				},
			},
			expected: "User: alice [F:2]",
		},
		{
			name: "Индикатор без остальных полей",
			record: entry.Record{
				CustomFields: []entry.CustomField{{Label: "PIN", Value: "1234"}},
			},
			expected: "[F:1]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := recordItem{record: tc.record}
			assert.Equal(t, tc.expected, item.Description())
		})
	}
}

// TestScreenState_String проверяет имена экранов для логов.
func TestScreenState_String(t *testing.T) {
	assert.Equal(t, "welcome", welcomeScreen.String())
	assert.Equal(t, "entry_form", entryFormScreen.String())
	assert.Equal(t, "unknown", screenState(99).String())
}

// TestInitModel проверяет начальное состояние модели.
func TestInitModel(t *testing.T) {
	m := initModel("test.kdbx", true, testSettings())

	assert.Equal(t, welcomeScreen, m.state)
	assert.Equal(t, "test.kdbx", m.kdbxPath)
	assert.True(t, m.debugMode)
	assert.NotNil(t, m.helpTextMap)
	assert.NotEmpty(t, m.helpTextMap[entryFormScreen])
}
