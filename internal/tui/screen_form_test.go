package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/passkeeper/internal/editor"
	"github.com/maynagashev/passkeeper/internal/entry"
	"github.com/maynagashev/passkeeper/internal/settings"
	"github.com/maynagashev/passkeeper/internal/vault"
)

// testSettings возвращает настройки для тестов TUI.
func testSettings() settings.Settings {
	cfg := settings.Default()
	cfg.PasswordLength = 16
	return cfg
}

// syncRunner выполняет единицу сохранения сразу, в потоке вызова.
type syncRunner struct{}

func (syncRunner) Run(fn func()) { fn() }

// newFormModel готовит модель на форме создания записи поверх базы в памяти.
func newFormModel(t *testing.T) *model {
	t.Helper()

	store, err := vault.Create("", "masterpass", "Тестовая база")
	require.NoError(t, err)

	m := initModel("test.kdbx", false, testSettings())
	m.store = store

	session, err := editor.OpenForCreate(store, store.RootGroupID(),
		editor.WithRunner(syncRunner{}))
	require.NoError(t, err)

	m.startFormScreen(session)
	return &m
}

// TestPrepareFormInputs проверяет подготовку полей ввода из формы сессии.
func TestPrepareFormInputs(t *testing.T) {
	m := newFormModel(t)

	f := editor.Form{
		Title:        "Bank",
		UserName:     "alice",
		URL:          "https://bank.example.com",
		Password:     "p1",
		Confirmation: "p1",
		Notes:        "заметки",
		CustomFields: []entry.CustomField{
			{Label: "PIN", Value: "1234", Protected: true},
			{Label: "Office", Value: "42"},
		},
	}
	m.prepareFormInputs(f)

	require.Len(t, m.formInputs, numFixedFormFields+4,
		"Шесть фиксированных полей плюс пара на каждое дополнительное")
	assert.Equal(t, "Bank", m.formInputs[formFieldTitle].Value())
	assert.Equal(t, "p1", m.formInputs[formFieldPassword].Value())
	assert.Equal(t, "p1", m.formInputs[formFieldConfirm].Value())

	// Пароль, подтверждение и защищенные доп. поля маскируются
	assert.Equal(t, textinput.EchoPassword, m.formInputs[formFieldPassword].EchoMode)
	assert.Equal(t, textinput.EchoPassword, m.formInputs[formFieldConfirm].EchoMode)
	assert.Equal(t, textinput.EchoNormal, m.formInputs[formFieldTitle].EchoMode)
	assert.Equal(t, textinput.EchoPassword, m.formInputs[numFixedFormFields+1].EchoMode,
		"Значение защищенного поля PIN маскируется")
	assert.Equal(t, textinput.EchoNormal, m.formInputs[numFixedFormFields+3].EchoMode)

	assert.Equal(t, []bool{true, false}, m.customProtected)
	assert.Equal(t, formFieldTitle, m.focusedField, "Фокус на первом поле")
}

// TestCollectForm проверяет обратную сборку формы из полей ввода:
// цикл prepareFormInputs -> collectForm не теряет данных.
func TestCollectForm(t *testing.T) {
	m := newFormModel(t)

	f := editor.Form{
		Title:        "Bank",
		UserName:     "alice",
		URL:          "https://bank.example.com",
		Password:     "p1",
		Confirmation: "p2",
		Notes:        "заметки",
		CustomFields: []entry.CustomField{
			{Label: "PIN", Value: "1234", Protected: true},
		},
	}
	m.prepareFormInputs(f)

	assert.Equal(t, f, m.collectForm())
}

// TestMoveFormFocus проверяет перемещение фокуса по кругу.
func TestMoveFormFocus(t *testing.T) {
	m := newFormModel(t)
	require.Len(t, m.formInputs, numFixedFormFields)

	m.moveFormFocus(1)
	assert.Equal(t, formFieldUserName, m.focusedField)
	assert.True(t, m.formInputs[formFieldUserName].Focused())
	assert.False(t, m.formInputs[formFieldTitle].Focused())

	// Назад с первого поля - на последнее
	m.focusedField = formFieldTitle
	m.applyFormFocus()
	m.moveFormFocus(-1)
	assert.Equal(t, formFieldNotes, m.focusedField)

	// Вперед с последнего - на первое
	m.moveFormFocus(1)
	assert.Equal(t, formFieldTitle, m.focusedField)
}

// TestCustomFieldHandlers проверяет добавление, удаление и переключение
// защиты дополнительных полей на форме.
func TestCustomFieldHandlers(t *testing.T) {
	t.Run("Добавление поля ставит фокус на его метку", func(t *testing.T) {
		m := newFormModel(t)
		m.handleAddCustomField()

		require.Len(t, m.formInputs, numFixedFormFields+2)
		assert.Equal(t, numFixedFormFields, m.focusedField)
		assert.Equal(t, []bool{false}, m.customProtected)
	})

	t.Run("Удаление работает только на дополнительных полях", func(t *testing.T) {
		m := newFormModel(t)
		m.handleAddCustomField()

		// Фокус на фиксированном поле - удаления нет
		m.focusedField = formFieldTitle
		m.handleRemoveCustomField()
		assert.Len(t, m.formInputs, numFixedFormFields+2)

		// Фокус на дополнительном поле - пара удаляется
		m.focusedField = numFixedFormFields
		m.handleRemoveCustomField()
		assert.Len(t, m.formInputs, numFixedFormFields)
		assert.Empty(t, m.customProtected)
		assert.Less(t, m.focusedField, len(m.formInputs), "Фокус не выходит за пределы")
	})

	t.Run("Переключение защиты меняет маскирование значения", func(t *testing.T) {
		m := newFormModel(t)
		m.handleAddCustomField()
		m.focusedField = numFixedFormFields

		m.handleToggleProtected()
		assert.True(t, m.customProtected[0])
		assert.Equal(t, textinput.EchoPassword, m.formInputs[numFixedFormFields+1].EchoMode)

		m.handleToggleProtected()
		assert.False(t, m.customProtected[0])
		assert.Equal(t, textinput.EchoNormal, m.formInputs[numFixedFormFields+1].EchoMode)
	})
}

// TestVerdictMessage проверяет перевод вердикта валидатора в сообщение.
func TestVerdictMessage(t *testing.T) {
	assert.Equal(t, "Заголовок обязателен",
		verdictMessage(editor.Verdict{Reason: editor.ReasonTitleRequired}))
	assert.Equal(t, "Пароль и подтверждение не совпадают",
		verdictMessage(editor.Verdict{Reason: editor.ReasonPasswordMismatch}))
	assert.Equal(t, "Метка дополнительного поля №2 обязательна",
		verdictMessage(editor.Verdict{Reason: editor.ReasonFieldLabelRequired, FieldIndex: 1}))
	assert.Empty(t, verdictMessage(editor.Verdict{OK: true}))
}

// TestHandleFormSave проверяет обработку сохранения на форме.
func TestHandleFormSave(t *testing.T) {
	t.Run("Отклонение валидатора показывает сообщение и оставляет форму", func(t *testing.T) {
		m := newFormModel(t)
		// Заголовок пуст - форма невалидна
		_, cmd := m.handleFormSave()

		assert.Nil(t, cmd)
		assert.Equal(t, "Заголовок обязателен", m.formError)
		assert.Equal(t, entryFormScreen, m.state)
		assert.Equal(t, editor.StateEditing, m.session.State())
	})

	t.Run("Принятая форма запускает сохранение", func(t *testing.T) {
		m := newFormModel(t)
		m.formInputs[formFieldTitle].SetValue("Bank")

		_, cmd := m.handleFormSave()

		require.NotNil(t, cmd, "Должна вернуться команда ожидания результата")
		assert.Empty(t, m.formError)
		assert.Equal(t, savingStatusMessage, m.savingStatus)
		assert.Contains(t, m.viewEntryFormScreen(), savingStatusMessage,
			"Форма показывает статус сохранения")

		// Синхронный runner уже завершил сохранение - снимаем результат
		msg := cmd()
		outcome, ok := msg.(saveOutcomeMsg)
		require.True(t, ok)
		assert.Equal(t, editor.ResultCreated, outcome.outcome.Kind)
		assert.Equal(t, "Bank", outcome.outcome.Record.Title)
	})
}

// TestHandleSaveOutcomeMsg проверяет обработку результата сессии.
func TestHandleSaveOutcomeMsg(t *testing.T) {
	t.Run("Успешное создание возвращает к списку и обновляет его", func(t *testing.T) {
		m := newFormModel(t)
		m.formInputs[formFieldTitle].SetValue("Bank")
		_, cmd := m.handleFormSave()
		require.NotNil(t, cmd)

		msg, ok := cmd().(saveOutcomeMsg)
		require.True(t, ok)

		m.handleSaveOutcomeMsg(msg)
		assert.Equal(t, entryListScreen, m.state)
		assert.Nil(t, m.session, "Сессия одноразовая, после результата очищается")
		assert.Nil(t, m.formInputs)
		assert.Equal(t, "Сохранено успешно!", m.savingStatus)
		assert.Len(t, m.entryList.Items(), 1)
	})

	t.Run("Отмена возвращает к списку без статуса об ошибке", func(t *testing.T) {
		m := newFormModel(t)
		require.NoError(t, m.session.RequestCancel())

		out := <-m.session.Done()
		m.handleSaveOutcomeMsg(saveOutcomeMsg{outcome: out})

		assert.Equal(t, entryListScreen, m.state)
		assert.Nil(t, m.session)
		assert.Empty(t, m.entryList.Items())
	})
}

// TestUpdateEntryFormScreen_Cancel проверяет отмену формы по Esc.
func TestUpdateEntryFormScreen_Cancel(t *testing.T) {
	m := newFormModel(t)

	_, cmd := m.updateEntryFormScreen(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg, ok := cmd().(saveOutcomeMsg)
	require.True(t, ok)
	assert.Equal(t, editor.ResultNone, msg.outcome.Kind)
	assert.NoError(t, msg.outcome.Err)
	assert.Empty(t, m.store.Records(), "Отмена не трогает хранилище")
}
