package tui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"

	"github.com/maynagashev/passkeeper/internal/settings"
)

const (
	statusMessageTimeout   = 2 * time.Second // Время отображения статусных сообщений
	helpStatusHeightOffset = 2               // Высота строки помощи и статуса
)

// Init - команда, выполняемая при запуске приложения.
func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// setStatusMessage устанавливает статусное сообщение и запускает команду
// для его очистки через заданное время.
func (m *model) setStatusMessage(status string) (tea.Model, tea.Cmd) {
	m.savingStatus = status
	return m, clearStatusCmd(statusMessageTimeout)
}

// getMainContentView возвращает основное содержимое для текущего состояния.
func (m *model) getMainContentView() string {
	switch m.state {
	case welcomeScreen:
		return m.viewWelcomeScreen()
	case passwordInputScreen:
		return m.viewPasswordInputScreen()
	case newVaultScreen:
		return m.viewNewVaultScreen()
	case entryListScreen:
		return m.entryList.View()
	case entryDetailScreen:
		return m.viewEntryDetailScreen()
	case entryFormScreen:
		return m.viewEntryFormScreen()
	default:
		return "Неизвестное состояние!"
	}
}

// getDebugInfoString формирует отладочную информацию для подвала.
func (m *model) getDebugInfoString() string {
	var debugInfo strings.Builder
	debugInfo.WriteString(fmt.Sprintf(" [State: %s]\n", m.state.String()))
	debugInfo.WriteString(fmt.Sprintf(" [Lock Acquired: %t]\n", m.lockAcquired))
	if m.store == nil {
		debugInfo.WriteString(" [DB: not loaded]\n")
	} else {
		debugInfo.WriteString(fmt.Sprintf(" [DB Name: %s]\n", m.store.Name()))
	}
	if m.session != nil {
		debugInfo.WriteString(fmt.Sprintf(" [Session: %s]\n", m.session.State().String()))
	}
	return debugInfo.String()
}

// View отрисовывает пользовательский интерфейс.
func (m *model) View() string {
	mainContent := m.getMainContentView()
	help, ok := m.helpTextMap[m.state]
	if !ok {
		help = "Unknown state"
	}

	// --- Формируем подвал (статус + отладка) --- //
	var footer strings.Builder

	readOnlyIndicator := ""
	if m.readOnlyMode {
		readOnlyIndicator = " [Read-Only]"
	}
	if m.savingStatus != "" || m.readOnlyMode {
		footer.WriteString("\n")
		footer.WriteString(m.savingStatus)
		footer.WriteString(readOnlyIndicator)
	}

	if m.debugMode {
		footer.WriteString("\n\n---\nОтладка:\n")
		footer.WriteString(m.getDebugInfoString())
	}

	styledContent := m.docStyle.Render(mainContent)
	return fmt.Sprintf("%s\n%s%s", styledContent, help, footer.String())
}

// Start запускает TUI приложение.
func Start(kdbxPath string, debugMode bool, cfg settings.Settings) {
	m := initModel(kdbxPath, debugMode, cfg)

	// --- Блокировка файла базы --- //
	lockPath := kdbxPath + ".lock"
	m.fileLock = flock.New(lockPath)
	var flockErr error
	m.lockAcquired, flockErr = m.fileLock.TryLock()

	if flockErr != nil {
		slog.Error("Критическая ошибка при попытке блокировки файла", "lockPath", lockPath, "error", flockErr)
		fmt.Fprintf(os.Stderr, "Ошибка блокировки файла %s: %v\n", lockPath, flockErr)
		_ = m.fileLock.Unlock()
		os.Exit(1)
	}

	if m.lockAcquired {
		slog.Info("Эксклюзивная блокировка файла получена.", "lockPath", lockPath)
		defer func() {
			if errUnlock := m.fileLock.Unlock(); errUnlock != nil {
				slog.Error("Ошибка при снятии блокировки файла", "lockPath", lockPath, "error", errUnlock)
			} else {
				slog.Info("Блокировка файла снята.", "lockPath", lockPath)
			}
		}()
	} else {
		m.readOnlyMode = true
		slog.Warn("Блокировка не получена (файл используется?). Read-Only.", "lockPath", lockPath)
	}

	// Проверяем, существует ли файл KDBX
	if _, errStat := os.Stat(m.kdbxPath); os.IsNotExist(errStat) {
		// Файл не существует, переходим на экран создания пароля
		slog.Info("Файл KDBX не найден, переходим к созданию нового.", "path", m.kdbxPath)
		m.state = newVaultScreen
		m.newPasswordInput1.Focus()
		m.newPasswordInput2.Blur()
	} else if errStat != nil {
		slog.Error("Ошибка при проверке файла KDBX", "path", m.kdbxPath, "error", errStat)
		fmt.Fprintf(os.Stderr, "Ошибка доступа к файлу %s: %v\n", m.kdbxPath, errStat)
		if m.lockAcquired {
			_ = m.fileLock.Unlock()
		}
		os.Exit(1)
	} else {
		slog.Info("Файл KDBX найден, запуск стандартного TUI.", "path", m.kdbxPath)
	}

	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, errRun := p.Run(); errRun != nil {
		slog.Error("Ошибка при запуске TUI", "error", errRun)
		if m.lockAcquired {
			_ = m.fileLock.Unlock()
		}
		os.Exit(1)
	}
}
