package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maynagashev/passkeeper/internal/editor"
	"github.com/maynagashev/passkeeper/internal/entry"
	"github.com/maynagashev/passkeeper/internal/passgen"
)

// Плейсхолдеры фиксированных полей формы.
var formFieldNames = [numFixedFormFields]string{
	"Title", "UserName", "URL", "Password", "Confirm", "Notes",
}

// Статус, отображаемый на время выполнения сохранения.
const savingStatusMessage = "Сохранение..."

// startCreateSession открывает сессию создания записи в корневой группе
// и готовит форму. Возвращает nil, если сессию открыть не удалось.
func (m *model) startCreateSession() tea.Cmd {
	session, err := editor.OpenForCreate(m.store, m.store.RootGroupID(),
		editor.WithHistory(m.cfg.HistoryEnabled))
	if err != nil {
		slog.Error("Не удалось открыть сессию создания", "error", err)
		_, cmd := m.setStatusMessage(fmt.Sprintf("Ошибка: %v", err))
		return cmd
	}
	return m.startFormScreen(session)
}

// startUpdateSession открывает сессию обновления записи и готовит форму.
// Возвращает nil, если сессию открыть не удалось.
func (m *model) startUpdateSession(id entry.NodeID) tea.Cmd {
	session, err := editor.OpenForUpdate(m.store, id,
		editor.WithHistory(m.cfg.HistoryEnabled))
	if err != nil {
		slog.Error("Не удалось открыть сессию обновления", "error", err)
		_, cmd := m.setStatusMessage(fmt.Sprintf("Ошибка: %v", err))
		return cmd
	}
	return m.startFormScreen(session)
}

// startFormScreen переводит приложение на форму редактирования.
func (m *model) startFormScreen(session *editor.Session) tea.Cmd {
	m.session = session
	m.formError = ""
	m.iconCursor = 0
	m.prepareFormInputs(session.Form())
	m.state = entryFormScreen
	return tea.Batch(tea.ClearScreen, textinput.Blink)
}

// prepareFormInputs создает поля ввода формы из содержимого сессии:
// шесть фиксированных полей и по паре метка/значение на каждое
// дополнительное поле.
func (m *model) prepareFormInputs(f editor.Form) {
	values := [numFixedFormFields]string{
		f.Title, f.UserName, f.URL, f.Password, f.Confirmation, f.Notes,
	}

	m.formInputs = make([]textinput.Model, 0, numFixedFormFields+2*len(f.CustomFields))
	for i := 0; i < numFixedFormFields; i++ {
		ti := textinput.New()
		ti.Placeholder = formFieldNames[i]
		ti.CharLimit = initFieldCharLimit
		ti.Width = initFieldWidth
		ti.SetValue(values[i])
		// Пароль и подтверждение маскируются
		if i == formFieldPassword || i == formFieldConfirm {
			ti.EchoMode = textinput.EchoPassword
		}
		m.formInputs = append(m.formInputs, ti)
	}

	m.customProtected = make([]bool, 0, len(f.CustomFields))
	for _, field := range f.CustomFields {
		m.appendCustomFieldInputs(field)
	}

	m.focusedField = formFieldTitle
	m.applyFormFocus()
}

// appendCustomFieldInputs добавляет пару полей ввода для одного
// дополнительного поля.
func (m *model) appendCustomFieldInputs(field entry.CustomField) {
	label := textinput.New()
	label.Placeholder = "Метка"
	label.CharLimit = initFieldCharLimit
	label.Width = initFieldWidth
	label.SetValue(field.Label)

	value := textinput.New()
	value.Placeholder = "Значение"
	value.CharLimit = initFieldCharLimit
	value.Width = initFieldWidth
	value.SetValue(field.Value)
	if field.Protected {
		value.EchoMode = textinput.EchoPassword
	}

	m.formInputs = append(m.formInputs, label, value)
	m.customProtected = append(m.customProtected, field.Protected)
}

// applyFormFocus устанавливает фокус на активное поле, снимая с остальных.
func (m *model) applyFormFocus() {
	for i := range m.formInputs {
		if i == m.focusedField {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// moveFormFocus сдвигает фокус на delta полей по кругу.
func (m *model) moveFormFocus(delta int) {
	n := len(m.formInputs)
	if n == 0 {
		return
	}
	m.focusedField = (m.focusedField + delta + n) % n
	m.applyFormFocus()
}

// collectForm собирает текущее содержимое полей ввода в форму сессии.
func (m *model) collectForm() editor.Form {
	f := editor.Form{
		Title:        m.formInputs[formFieldTitle].Value(),
		UserName:     m.formInputs[formFieldUserName].Value(),
		URL:          m.formInputs[formFieldURL].Value(),
		Password:     m.formInputs[formFieldPassword].Value(),
		Confirmation: m.formInputs[formFieldConfirm].Value(),
		Notes:        m.formInputs[formFieldNotes].Value(),
	}
	numCustom := (len(m.formInputs) - numFixedFormFields) / 2
	for i := 0; i < numCustom; i++ {
		base := numFixedFormFields + 2*i
		f.CustomFields = append(f.CustomFields, entry.CustomField{
			Label:     m.formInputs[base].Value(),
			Value:     m.formInputs[base+1].Value(),
			Protected: m.customProtected[i],
		})
	}
	return f
}

// focusedCustomField возвращает индекс дополнительного поля, на котором
// стоит фокус, или -1 для фиксированных полей.
func (m *model) focusedCustomField() int {
	if m.focusedField < numFixedFormFields {
		return -1
	}
	return (m.focusedField - numFixedFormFields) / 2
}

// verdictMessage переводит вердикт валидатора в сообщение пользователю.
// Три фиксированные категории сообщений.
func verdictMessage(v editor.Verdict) string {
	switch v.Reason {
	case editor.ReasonTitleRequired:
		return "Заголовок обязателен"
	case editor.ReasonPasswordMismatch:
		return "Пароль и подтверждение не совпадают"
	case editor.ReasonFieldLabelRequired:
		return fmt.Sprintf("Метка дополнительного поля №%d обязательна", v.FieldIndex+1)
	default:
		return ""
	}
}

// updateEntryFormScreen обрабатывает сообщения формы редактирования.
func (m *model) updateEntryFormScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		m.state = entryListScreen
		return m, tea.ClearScreen
	}

	// Пока сохранение не завершилось, дальнейшие правки и повторные
	// сохранения блокируются.
	if m.session.State() == editor.StateSaving {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocusedFormInput(msg)
	}

	switch keyMsg.String() {
	case keyEsc:
		return m.handleFormCancel()
	case keyTab, keyDown:
		m.moveFormFocus(1)
		return m, textinput.Blink
	case keyShiftTab, keyUp:
		m.moveFormFocus(-1)
		return m, textinput.Blink
	case "ctrl+s", keyEnter:
		return m.handleFormSave()
	case "ctrl+g":
		return m.handleGeneratePassword()
	case "ctrl+i":
		return m.handlePickIcon()
	case "ctrl+n":
		return m.handleAddCustomField()
	case "ctrl+d":
		return m.handleRemoveCustomField()
	case "ctrl+p":
		return m.handleToggleProtected()
	}

	return m.updateFocusedFormInput(msg)
}

// updateFocusedFormInput передает сообщение активному полю ввода.
func (m *model) updateFocusedFormInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focusedField >= len(m.formInputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.focusedField], cmd = m.formInputs[m.focusedField].Update(msg)
	return m, cmd
}

// handleFormCancel отменяет сессию редактирования.
func (m *model) handleFormCancel() (tea.Model, tea.Cmd) {
	if err := m.session.RequestCancel(); err != nil {
		slog.Warn("Отмена сессии отклонена", "error", err)
		return m, nil
	}
	// Результат NoChange придет через канал сессии
	return m, awaitOutcomeCmd(m.session)
}

// handleFormSave запускает валидацию и сохранение.
func (m *model) handleFormSave() (tea.Model, tea.Cmd) {
	if err := m.session.SetForm(m.collectForm()); err != nil {
		slog.Warn("Форма не принята сессией", "error", err)
		return m, nil
	}

	verdict, err := m.session.RequestSave()
	if err != nil {
		// Повторный запрос во время сохранения - игнорируем
		slog.Warn("Запрос сохранения отклонен", "error", err)
		return m, nil
	}
	if !verdict.OK {
		m.formError = verdictMessage(verdict)
		return m, nil
	}

	m.formError = ""
	m.savingStatus = savingStatusMessage
	return m, awaitOutcomeCmd(m.session)
}

// handleGeneratePassword подставляет сгенерированный пароль в оба поля.
func (m *model) handleGeneratePassword() (tea.Model, tea.Cmd) {
	password, err := passgen.Generate(passgen.DefaultOptions(m.cfg.PasswordLength))
	if err != nil {
		slog.Error("Ошибка генерации пароля", "error", err)
		return m.setStatusMessage(fmt.Sprintf("Ошибка генерации: %v", err))
	}
	if err = m.session.ApplyGeneratedPassword(password); err != nil {
		return m, nil
	}
	m.formInputs[formFieldPassword].SetValue(password)
	m.formInputs[formFieldConfirm].SetValue(password)
	return m.setStatusMessage("Пароль сгенерирован")
}

// handlePickIcon перебирает стандартные иконки и запоминает выбор в сессии.
func (m *model) handlePickIcon() (tea.Model, tea.Cmd) {
	m.iconCursor = (m.iconCursor + 1) % len(pickableIcons)
	icon := entry.Icon{ID: pickableIcons[m.iconCursor]}
	if err := m.session.PickIcon(icon); err != nil {
		return m, nil
	}
	return m.setStatusMessage(fmt.Sprintf("Иконка: %d", icon.ID))
}

// handleAddCustomField добавляет на форму пустое дополнительное поле.
func (m *model) handleAddCustomField() (tea.Model, tea.Cmd) {
	m.appendCustomFieldInputs(entry.CustomField{})
	// Фокус на метку нового поля
	m.focusedField = len(m.formInputs) - 2
	m.applyFormFocus()
	return m, textinput.Blink
}

// handleRemoveCustomField удаляет дополнительное поле под фокусом.
func (m *model) handleRemoveCustomField() (tea.Model, tea.Cmd) {
	idx := m.focusedCustomField()
	if idx < 0 {
		return m, nil
	}
	base := numFixedFormFields + 2*idx
	m.formInputs = append(m.formInputs[:base], m.formInputs[base+2:]...)
	m.customProtected = append(m.customProtected[:idx], m.customProtected[idx+1:]...)
	if m.focusedField >= len(m.formInputs) {
		m.focusedField = len(m.formInputs) - 1
	}
	m.applyFormFocus()
	return m, nil
}

// handleToggleProtected переключает флаг защиты дополнительного поля.
func (m *model) handleToggleProtected() (tea.Model, tea.Cmd) {
	idx := m.focusedCustomField()
	if idx < 0 {
		return m, nil
	}
	m.customProtected[idx] = !m.customProtected[idx]
	valueIdx := numFixedFormFields + 2*idx + 1
	if m.customProtected[idx] {
		m.formInputs[valueIdx].EchoMode = textinput.EchoPassword
	} else {
		m.formInputs[valueIdx].EchoMode = textinput.EchoNormal
	}
	return m, nil
}

// viewEntryFormScreen отображает форму редактирования/добавления записи.
func (m *model) viewEntryFormScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	subtleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	header := "Редактирование записи"
	if m.session != nil && m.session.IsNew() {
		header = "Новая запись"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header) + "\n\n")

	for i := 0; i < numFixedFormFields; i++ {
		b.WriteString(m.formInputs[i].View() + "\n")
	}

	numCustom := (len(m.formInputs) - numFixedFormFields) / 2
	if numCustom > 0 {
		b.WriteString("\n--- Дополнительные поля ---\n")
		for i := 0; i < numCustom; i++ {
			base := numFixedFormFields + 2*i
			marker := " "
			if m.customProtected[i] {
				marker = "*"
			}
			b.WriteString(fmt.Sprintf("[%s] %s | %s\n",
				marker, m.formInputs[base].View(), m.formInputs[base+1].View()))
		}
	}

	if m.savingStatus == savingStatusMessage {
		b.WriteString("\n" + subtleStyle.Render(savingStatusMessage) + "\n")
	}
	if m.formError != "" {
		b.WriteString("\n" + errorStyle.Render("Ошибка: "+m.formError) + "\n")
	}

	return b.String()
}
