package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// updateWelcomeScreen обрабатывает сообщения приветственного экрана.
func (m *model) updateWelcomeScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter:
			m.state = passwordInputScreen
			m.passwordInput.Focus()
			return m, textinput.Blink
		case keyQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

// viewWelcomeScreen отображает приветственный экран.
func (m *model) viewWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	subtleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("PassKeeper") + "\n\n")
	b.WriteString("Менеджер записей KDBX\n\n")
	b.WriteString(subtleStyle.Render("Файл: "+m.kdbxPath) + "\n")
	return b.String()
}

// updatePasswordInputScreen обрабатывает ввод мастер-пароля.
func (m *model) updatePasswordInputScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == keyEnter {
		password := m.passwordInput.Value()
		m.password = password
		m.passwordInput.Blur()
		return m, openVaultCmd(m.kdbxPath, password)
	}

	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

// viewPasswordInputScreen отображает экран ввода мастер-пароля.
func (m *model) viewPasswordInputScreen() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))

	var b strings.Builder
	b.WriteString("Введите мастер-пароль:\n\n")
	b.WriteString(m.passwordInput.View() + "\n")
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Ошибка: "+m.err.Error()) + "\n")
	}
	return b.String()
}

// updateNewVaultScreen обрабатывает экран создания новой базы:
// два поля пароля, проверка совпадения, создание и сохранение файла.
func (m *model) updateNewVaultScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateNewVaultInputs(msg)
	}

	switch keyMsg.String() {
	case keyTab, keyShiftTab, keyUp, keyDown:
		// Переключение между двумя полями
		m.newPasswordFocusedField = (m.newPasswordFocusedField + 1) % 2
		if m.newPasswordFocusedField == 0 {
			m.newPasswordInput2.Blur()
			m.newPasswordInput1.Focus()
		} else {
			m.newPasswordInput1.Blur()
			m.newPasswordInput2.Focus()
		}
		return m, textinput.Blink
	case keyEnter:
		pass1 := m.newPasswordInput1.Value()
		pass2 := m.newPasswordInput2.Value()
		if pass1 == "" {
			m.confirmPasswordError = "Пароль не может быть пустым"
			return m, nil
		}
		if pass1 != pass2 {
			m.confirmPasswordError = "Пароли не совпадают"
			return m, nil
		}
		m.confirmPasswordError = ""
		m.password = pass1
		return m, createVaultCmd(m.kdbxPath, pass1, "PassKeeper")
	}

	return m.updateNewVaultInputs(msg)
}

// updateNewVaultInputs обновляет активное поле пароля новой базы.
func (m *model) updateNewVaultInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.newPasswordFocusedField == 0 {
		m.newPasswordInput1, cmd = m.newPasswordInput1.Update(msg)
	} else {
		m.newPasswordInput2, cmd = m.newPasswordInput2.Update(msg)
	}
	return m, cmd
}

// viewNewVaultScreen отображает экран создания новой базы.
func (m *model) viewNewVaultScreen() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))

	var b strings.Builder
	b.WriteString("Файл не найден. Создание новой базы: " + m.kdbxPath + "\n\n")
	b.WriteString(m.newPasswordInput1.View() + "\n")
	b.WriteString(m.newPasswordInput2.View() + "\n")
	if m.confirmPasswordError != "" {
		b.WriteString("\n" + errorStyle.Render(m.confirmPasswordError) + "\n")
	}
	return b.String()
}
