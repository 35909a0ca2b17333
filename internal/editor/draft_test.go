package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tobischo/gokeepasslib/v3"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// testRecord возвращает запись с заполненными полями для тестов черновика.
func testRecord() entry.Record {
	return entry.Record{
		ID:       gokeepasslib.NewUUID(),
		Parent:   gokeepasslib.NewUUID(),
		Title:    "Старый заголовок",
		UserName: "olduser",
		URL:      "https://old.example.com",
		Password: "oldpass",
		Notes:    "старые заметки",
		Icon:     entry.Icon{ID: 42},
		Times: entry.Times{
			Creation:         time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			LastAccess:       time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			LastModification: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		},
		CustomFields: []entry.CustomField{
			{Label: "PIN", Value: "1234", Protected: true},
		},
		SupportsCustomFields: true,
	}
}

// TestBuildDraft_OverwritesFieldsVerbatim проверяет перенос полей формы
// в черновик как есть, без какой-либо нормализации.
func TestBuildDraft_OverwritesFieldsVerbatim(t *testing.T) {
	original := testRecord()
	now := time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

	form := Form{
		Title:        "  Новый заголовок  ", // Пробелы сохраняются
		UserName:     "newuser",
		URL:          "https://new.example.com",
		Password:     "newpass",
		Confirmation: "newpass",
		Notes:        "новые\nзаметки",
	}

	draft := BuildDraft(original, form, nil, false, entry.Icon{ID: entry.IconKey}, now)

	assert.Equal(t, "  Новый заголовок  ", draft.Title, "Заголовок переносится без обрезки пробелов")
	assert.Equal(t, "newuser", draft.UserName)
	assert.Equal(t, "https://new.example.com", draft.URL)
	assert.Equal(t, "newpass", draft.Password)
	assert.Equal(t, "новые\nзаметки", draft.Notes)

	// Идентичность и происхождение записи не меняются
	assert.Equal(t, original.ID, draft.ID)
	assert.Equal(t, original.Parent, draft.Parent)
}

// TestBuildDraft_Timestamps проверяет штамповку времени черновика.
func TestBuildDraft_Timestamps(t *testing.T) {
	original := testRecord()
	now := time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

	draft := BuildDraft(original, Form{Title: "x"}, nil, false, entry.Icon{}, now)

	assert.Equal(t, now, draft.Times.LastAccess)
	assert.Equal(t, now, draft.Times.LastModification)
	assert.Equal(t, original.Times.Creation, draft.Times.Creation,
		"Время создания не переписывается")
}

// TestBuildDraft_OriginalUntouched проверяет, что оригинал не мутирует:
// черновик - глубокая копия.
func TestBuildDraft_OriginalUntouched(t *testing.T) {
	original := testRecord()
	snapshot := original.Clone()
	now := time.Now()

	form := Form{
		Title:    "Другой",
		Password: "другой",
		CustomFields: []entry.CustomField{
			{Label: "Token", Value: "abc"},
		},
	}
	draft := BuildDraft(original, form, nil, false, entry.Icon{}, now)

	// Мутируем черновик и убеждаемся, что оригинал не задет
	draft.CustomFields[0].Value = "изменено"

	assert.Equal(t, snapshot.Title, original.Title)
	assert.Equal(t, snapshot.Password, original.Password)
	assert.Equal(t, snapshot.CustomFields, original.CustomFields)
	assert.Equal(t, snapshot.Times, original.Times)
}

// TestBuildDraft_IconResolution проверяет правила выбора иконки черновика.
func TestBuildDraft_IconResolution(t *testing.T) {
	picked := entry.Icon{ID: 7}
	defaultIcon := entry.Icon{ID: entry.IconKey}
	customIcon := entry.Icon{ID: 1, Custom: gokeepasslib.NewUUID()}

	testCases := []struct {
		name     string
		picked   *entry.Icon
		isNew    bool
		expected entry.Icon
	}{
		{"Выбранная иконка имеет высший приоритет для новой записи", &picked, true, picked},
		{"Выбранная иконка имеет высший приоритет при обновлении", &picked, false, picked},
		{"Новая запись без выбора получает иконку по умолчанию", nil, true, defaultIcon},
		{"Существующая запись без выбора сохраняет свою иконку", nil, false, entry.Icon{ID: 42}},
		{"Выбранная пользовательская иконка переносится целиком", &customIcon, false, customIcon},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := testRecord() // Icon.ID == 42
			draft := BuildDraft(original, Form{Title: "x"}, tc.picked, tc.isNew, defaultIcon, time.Now())
			assert.Equal(t, tc.expected, draft.Icon)
		})
	}
}

// TestBuildDraft_CustomFieldsReplacedWholesale проверяет замену
// дополнительных полей целиком набором из формы.
func TestBuildDraft_CustomFieldsReplacedWholesale(t *testing.T) {
	t.Run("Поля формы замещают прежний набор", func(t *testing.T) {
		original := testRecord()
		form := Form{
			Title: "x",
			CustomFields: []entry.CustomField{
				{Label: "Token", Value: "abc", Protected: false},
				{Label: "Seed", Value: "xyz", Protected: true},
			},
		}
		draft := BuildDraft(original, form, nil, false, entry.Icon{}, time.Now())

		assert.Equal(t, form.CustomFields, draft.CustomFields, "Порядок ввода сохраняется")
	})

	t.Run("Пустая форма удаляет все дополнительные поля", func(t *testing.T) {
		original := testRecord()
		draft := BuildDraft(original, Form{Title: "x"}, nil, false, entry.Icon{}, time.Now())
		assert.Empty(t, draft.CustomFields, "Удаленные на форме поля не сохраняются")
	})

	t.Run("Без поддержки доп. полей состояние записи не трогается", func(t *testing.T) {
		original := testRecord()
		original.SupportsCustomFields = false
		form := Form{
			Title:        "x",
			CustomFields: []entry.CustomField{{Label: "Token", Value: "abc"}},
		}
		draft := BuildDraft(original, form, nil, false, entry.Icon{}, time.Now())
		assert.Equal(t, original.CustomFields, draft.CustomFields)
	})
}
