package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// updateEntryDetailScreen обрабатывает сообщения для экрана деталей записи.
func (m *model) updateEntryDetailScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc, keyBack:
			m.selectedRecord = nil
			m.state = entryListScreen
			return m, tea.ClearScreen
		case keyEdit:
			if !m.readOnlyMode && m.selectedRecord != nil {
				if startCmd := m.startUpdateSession(m.selectedRecord.ID); startCmd != nil {
					return m, startCmd
				}
			}
		}
	}
	return m, nil
}

// maskValue маскирует чувствительное значение при включенной настройке.
func (m *model) maskValue(value string) string {
	if value == "" {
		return ""
	}
	if m.cfg.MaskProtectedFields {
		return strings.Repeat("*", len([]rune(value)))
	}
	return value
}

// viewEntryDetailScreen отображает детали выбранной записи.
func (m *model) viewEntryDetailScreen() string {
	if m.selectedRecord == nil {
		return "Запись не выбрана"
	}
	rec := m.selectedRecord

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Запись: "+rec.Title) + "\n\n")
	b.WriteString(labelStyle.Render("UserName: ") + rec.UserName + "\n")
	b.WriteString(labelStyle.Render("URL:      ") + rec.URL + "\n")
	b.WriteString(labelStyle.Render("Password: ") + m.maskValue(rec.Password) + "\n")
	b.WriteString(labelStyle.Render("Notes:    ") + rec.Notes + "\n")
	b.WriteString(labelStyle.Render("Icon:     ") + fmt.Sprintf("%d", rec.Icon.ID) + "\n")

	if len(rec.CustomFields) > 0 {
		b.WriteString("\n--- Дополнительные поля ---\n")
		for _, field := range rec.CustomFields {
			value := field.Value
			if field.Protected {
				value = m.maskValue(value)
			}
			b.WriteString(fmt.Sprintf(" %s: %s\n", field.Label, value))
		}
	}

	if !rec.Times.LastModification.IsZero() {
		b.WriteString("\n" + labelStyle.Render("Изменена: ") +
			rec.Times.LastModification.Format("2006-01-02 15:04:05") + "\n")
	}

	return b.String()
}
