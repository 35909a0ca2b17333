package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/passkeeper/internal/editor"
)

// Update обрабатывает входящие сообщения.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// == Глобальные сообщения (не зависят от экрана) ==
	case tea.WindowSizeMsg:
		h, v := m.docStyle.GetFrameSize()
		m.entryList.SetSize(msg.Width-h, msg.Height-v-helpStatusHeightOffset)
		m.passwordInput.Width = msg.Width - passwordInputOffset
		return m, nil

	case vaultOpenedMsg:
		return m.handleVaultOpenedMsg(msg)

	case errMsg:
		return m.handleErrorMsg(msg)

	case saveOutcomeMsg:
		return m.handleSaveOutcomeMsg(msg)

	case clearStatusMsg:
		m.savingStatus = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// == Обновление компонентов в зависимости от состояния ==
	switch m.state {
	case welcomeScreen:
		return m.updateWelcomeScreen(msg)
	case passwordInputScreen:
		return m.updatePasswordInputScreen(msg)
	case newVaultScreen:
		return m.updateNewVaultScreen(msg)
	case entryListScreen:
		return m.updateEntryListScreen(msg)
	case entryDetailScreen:
		return m.updateEntryDetailScreen(msg)
	case entryFormScreen:
		return m.updateEntryFormScreen(msg)
	default:
		slog.Error("Неизвестное состояние TUI", "state", m.state)
		return m, nil
	}
}

// handleVaultOpenedMsg обрабатывает сообщение об успешном открытии базы.
func (m *model) handleVaultOpenedMsg(msg vaultOpenedMsg) (tea.Model, tea.Cmd) {
	m.store = msg.store
	m.err = nil
	prevState := m.state
	m.state = entryListScreen
	slog.Info("База открыта, переход к списку записей", "path", m.kdbxPath)

	m.reloadEntryList()
	m.entryList.SetWidth(defaultListWidth)
	m.entryList.SetHeight(defaultListHeight)

	if prevState != entryListScreen {
		return m, tea.ClearScreen
	}
	return m, nil
}

// reloadEntryList перечитывает записи из хранилища в компонент списка.
func (m *model) reloadEntryList() {
	records := m.store.Records()
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = recordItem{record: rec}
	}
	_ = m.entryList.SetItems(items)
	m.entryList.Title = fmt.Sprintf("Записи в '%s' (%d)", m.kdbxPath, len(items))
}

// handleErrorMsg обрабатывает сообщение об ошибке.
func (m *model) handleErrorMsg(msg errMsg) (tea.Model, tea.Cmd) {
	m.err = msg.err
	slog.Error("Ошибка в TUI", "error", msg.err, "state", m.state.String())
	// При ошибке открытия возвращаемся к вводу пароля
	if m.state == welcomeScreen || m.state == passwordInputScreen {
		m.state = passwordInputScreen
		m.passwordInput.SetValue("")
		m.passwordInput.Focus()
	}
	return m, nil
}

// handleSaveOutcomeMsg обрабатывает результат сессии редактирования.
func (m *model) handleSaveOutcomeMsg(msg saveOutcomeMsg) (tea.Model, tea.Cmd) {
	out := msg.outcome
	m.session = nil
	m.formInputs = nil
	m.customProtected = nil

	switch out.Kind {
	case editor.ResultCreated, editor.ResultUpdated:
		m.reloadEntryList()
		if m.selectedRecord != nil && m.selectedRecord.ID == out.Record.ID {
			rec := out.Record
			m.selectedRecord = &rec
		}
		m.state = entryListScreen
		slog.Info("Сессия редактирования завершена успешно", "title", out.Record.Title)
		return m.setStatusMessage("Сохранено успешно!")
	case editor.ResultNone:
		m.state = entryListScreen
		if out.Err != nil {
			return m.setStatusMessage(fmt.Sprintf("Ошибка сохранения: %v", out.Err))
		}
		return m, tea.ClearScreen
	default:
		return m, nil
	}
}
