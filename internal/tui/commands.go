package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/passkeeper/internal/editor"
	"github.com/maynagashev/passkeeper/internal/vault"
)

// openVaultCmd асинхронно открывает файл базы.
func openVaultCmd(path, password string) tea.Cmd {
	return func() tea.Msg {
		store, err := vault.Open(path, password)
		if err != nil {
			return errMsg{err: err}
		}
		return vaultOpenedMsg{store: store}
	}
}

// createVaultCmd асинхронно создает новую базу и сохраняет ее на диск.
func createVaultCmd(path, password, name string) tea.Cmd {
	return func() tea.Msg {
		store, err := vault.Create(path, password, name)
		if err != nil {
			return errMsg{err: err}
		}
		if err = store.Save(); err != nil {
			return errMsg{err: err}
		}
		return vaultOpenedMsg{store: store}
	}
}

// awaitOutcomeCmd ждет однократный результат сессии редактирования.
func awaitOutcomeCmd(session *editor.Session) tea.Cmd {
	return func() tea.Msg {
		return saveOutcomeMsg{outcome: <-session.Done()}
	}
}

// clearStatusCmd возвращает команду, которая отправит clearStatusMsg через delay.
func clearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
