// Пакет tui реализует терминальный интерфейс менеджера записей:
// открытие базы, список и детали записей, форма редактирования,
// управляемая сессией из пакета editor.
package tui

import (
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/gofrs/flock"

	"github.com/maynagashev/passkeeper/internal/editor"
	"github.com/maynagashev/passkeeper/internal/entry"
	"github.com/maynagashev/passkeeper/internal/settings"
	"github.com/maynagashev/passkeeper/internal/vault"
)

// Состояния (экраны) приложения.
type screenState int

const (
	welcomeScreen       screenState = iota // Приветственный экран
	passwordInputScreen                    // Экран ввода мастер-пароля
	newVaultScreen                         // Экран задания пароля для новой базы
	entryListScreen                        // Экран списка записей
	entryDetailScreen                      // Экран деталей записи
	entryFormScreen                        // Форма редактирования/добавления записи
)

// String возвращает имя экрана для логов и отладки.
func (s screenState) String() string {
	switch s {
	case welcomeScreen:
		return "welcome"
	case passwordInputScreen:
		return "password_input"
	case newVaultScreen:
		return "new_vault"
	case entryListScreen:
		return "entry_list"
	case entryDetailScreen:
		return "entry_detail"
	case entryFormScreen:
		return "entry_form"
	default:
		return "unknown"
	}
}

// Фиксированные поля формы редактирования. Дополнительные поля идут
// после них парами метка/значение.
const (
	formFieldTitle = iota
	formFieldUserName
	formFieldURL
	formFieldPassword
	formFieldConfirm
	formFieldNotes
	numFixedFormFields // Количество фиксированных полей
)

// Константы для TUI.
const (
	defaultListWidth    = 80 // Стандартная ширина терминала для списка
	defaultListHeight   = 24 // Стандартная высота терминала для списка
	passwordInputOffset = 4  // Отступ для поля ввода пароля

	keyEnter    = "enter"
	keyQuit     = "q"
	keyBack     = "b"
	keyEsc      = "esc"
	keyEdit     = "e"
	keyAdd      = "a"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyUp       = "up"
	keyDown     = "down"
)

// recordItem представляет запись в списке.
// Реализует интерфейс list.Item.
type recordItem struct {
	record entry.Record
}

func (i recordItem) Title() string {
	title := i.record.Title
	if title == "" {
		title = i.record.UserName
	}
	if title == "" {
		title = hex.EncodeToString(i.record.ID[:])
	}
	return title
}

func (i recordItem) Description() string {
	username := i.record.UserName
	url := i.record.URL
	var desc string
	switch {
	case username != "" && url != "":
		desc = fmt.Sprintf("User: %s | URL: %s", username, url)
	case username != "":
		desc = fmt.Sprintf("User: %s", username)
	case url != "":
		desc = fmt.Sprintf("URL: %s", url)
	default:
		desc = ""
	}

	// Индикатор наличия дополнительных полей
	if len(i.record.CustomFields) > 0 {
		if desc != "" {
			desc += " "
		}
		desc += fmt.Sprintf("[F:%d]", len(i.record.CustomFields))
	}

	return desc
}

func (i recordItem) FilterValue() string { return i.Title() }

// Сообщение об успешном открытии (или создании) базы.
type vaultOpenedMsg struct {
	store *vault.Store
}

// Сообщение об ошибке.
type errMsg struct {
	err error
}

// Сообщение с результатом сессии редактирования.
type saveOutcomeMsg struct {
	outcome editor.Outcome
}

// Сообщение для очистки статусной строки.
type clearStatusMsg struct{}

// model представляет состояние TUI приложения.
type model struct {
	state        screenState
	kdbxPath     string       // Путь к файлу KDBX
	password     string       // Мастер-пароль (нужен при создании базы)
	store        *vault.Store // Открытое хранилище
	cfg          settings.Settings
	fileLock     *flock.Flock // Объект блокировки файла
	lockAcquired bool         // Удалось ли получить блокировку
	readOnlyMode bool         // Приложение в режиме только для чтения
	debugMode    bool         // Показывать отладочную информацию

	passwordInput  textinput.Model // Поле ввода мастер-пароля
	entryList      list.Model      // Список записей
	selectedRecord *entry.Record   // Запись, открытая в деталях

	// Форма редактирования/добавления
	session         *editor.Session   // Активная сессия редактирования
	formInputs      []textinput.Model // Фиксированные поля + пары доп. полей
	customProtected []bool            // Флаги защиты дополнительных полей
	focusedField    int               // Индекс активного поля формы
	formError       string            // Текст отклонения валидатора
	iconCursor      int               // Позиция в списке стандартных иконок

	// Создание новой базы
	newPasswordInput1       textinput.Model
	newPasswordInput2       textinput.Model
	newPasswordFocusedField int    // 0 или 1, активное поле
	confirmPasswordError    string // Сообщение о несовпадении паролей

	savingStatus string         // Статус внизу экрана
	err          error          // Последняя ошибка для отображения
	docStyle     lipgloss.Style // Общий стиль для обрамления View
	helpTextMap  map[screenState]string
}

// Стандартные иконки, доступные для перебора на форме (номера KeePass).
var pickableIcons = []int64{0, 1, 9, 12, 16, 19, 23, 27, 37, 48}

// Константы, используемые при инициализации.
const (
	initPasswordCharLimit = 156
	initPasswordWidth     = 20
	initFieldCharLimit    = 1024
	initFieldWidth        = 50
)

// initPasswordInput инициализирует поле ввода мастер-пароля.
func initPasswordInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Мастер-пароль"
	ti.Focus()
	ti.CharLimit = initPasswordCharLimit
	ti.Width = initPasswordWidth
	ti.EchoMode = textinput.EchoPassword
	return ti
}

// initEntryList инициализирует компонент списка записей.
func initEntryList() list.Model {
	delegate := list.NewDefaultDelegate()
	// Настраиваем цвета для лучшей видимости
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("212")).
		BorderLeftForeground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("240")).
		BorderLeftForeground(lipgloss.Color("212"))

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Записи"
	l.SetShowHelp(false) // Справку отрисовываем сами
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = list.DefaultStyles().Title.Bold(true)
	return l
}

// initNewVaultInputs инициализирует поля для пароля новой базы.
func initNewVaultInputs() (textinput.Model, textinput.Model) {
	newPass1 := textinput.New()
	newPass1.Placeholder = "Новый мастер-пароль"
	newPass1.Focus()
	newPass1.CharLimit = initPasswordCharLimit
	newPass1.Width = initPasswordWidth
	newPass1.EchoMode = textinput.EchoPassword

	newPass2 := textinput.New()
	newPass2.Placeholder = "Подтвердите пароль"
	newPass2.CharLimit = initPasswordCharLimit
	newPass2.Width = initPasswordWidth
	newPass2.EchoMode = textinput.EchoPassword
	return newPass1, newPass2
}

// initHelpTextMap заполняет подсказки для каждого экрана.
func initHelpTextMap() map[screenState]string {
	return map[screenState]string{
		welcomeScreen:       "Enter: продолжить | Ctrl+C: выход",
		passwordInputScreen: "Enter: открыть | Ctrl+C: выход",
		newVaultScreen:      "Tab: переключение | Enter: создать | Ctrl+C: выход",
		entryListScreen:     "Enter: детали | a: добавить | q: выход",
		entryDetailScreen:   "e: редактировать | Esc: назад",
		entryFormScreen: "Tab/Shift+Tab: поля | Ctrl+S: сохранить | Ctrl+G: пароль | " +
			"Ctrl+I: иконка | Ctrl+N: +поле | Ctrl+D: -поле | Ctrl+P: защита | Esc: отмена",
	}
}

// initModel создает начальное состояние модели.
func initModel(kdbxPath string, debugMode bool, cfg settings.Settings) model {
	newPass1, newPass2 := initNewVaultInputs()
	return model{
		state:             welcomeScreen,
		kdbxPath:          kdbxPath,
		cfg:               cfg,
		debugMode:         debugMode,
		passwordInput:     initPasswordInput(),
		entryList:         initEntryList(),
		newPasswordInput1: newPass1,
		newPasswordInput2: newPass2,
		docStyle:          lipgloss.NewStyle().Margin(1, 2),
		helpTextMap:       initHelpTextMap(),
	}
}
