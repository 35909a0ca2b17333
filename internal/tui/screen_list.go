package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// updateEntryListScreen обрабатывает сообщения для экрана списка записей.
func (m *model) updateEntryListScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	// Сначала обновляем список
	m.entryList, cmd = m.entryList.Update(msg)
	cmds = append(cmds, cmd)

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit:
			// Выход по 'q', если не активен режим фильтрации
			if m.entryList.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		case keyEnter:
			selectedItem := m.entryList.SelectedItem()
			if item, isRecordItem := selectedItem.(recordItem); isRecordItem {
				rec := item.record
				m.selectedRecord = &rec
				m.state = entryDetailScreen
				slog.Info("Переход к деталям записи", "title", item.Title())
				cmds = append(cmds, tea.ClearScreen)
			}
		case keyAdd:
			// Добавление новой записи (только если не Read-Only)
			if !m.readOnlyMode {
				if startCmd := m.startCreateSession(); startCmd != nil {
					return m, startCmd
				}
			}
		}
	}
	return m, tea.Batch(cmds...)
}
