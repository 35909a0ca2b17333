package editor

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/maynagashev/passkeeper/internal/entry"
)

// State - состояние сессии редактирования.
type State int

const (
	StateLoading    State = iota // Разрешение идентификаторов записи/группы
	StateEditing                 // Прием правок формы и выбора иконки
	StateValidating              // Проверка формы перед сохранением
	StateSaving                  // Ожидание завершения единицы сохранения
	StateCompleted               // Сохранение завершено (успех или сбой)
	StateClosed                  // Результат доставлен, сессия закрыта
)

// String возвращает имя состояния для логов и отладки.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSaving:
		return "saving"
	case StateCompleted:
		return "completed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ResultKind - тег результата сессии.
type ResultKind int

const (
	ResultNone    ResultKind = iota // Отмена или сбой сохранения: без записи
	ResultCreated                   // Создана новая запись
	ResultUpdated                   // Обновлена существующая запись
)

// Outcome - структурированный результат сессии, доставляется ровно один раз.
// Record заполнена только для ResultCreated и ResultUpdated.
// Err заполнена при сбое сохранения (тег при этом ResultNone).
type Outcome struct {
	Kind   ResultKind
	Record entry.Record
	Err    error
}

// Runner запускает единицу работы сохранения вне вызывающего потока.
// В приложении это отдельная горутина, в тестах - синхронный запуск.
type Runner interface {
	Run(fn func())
}

// goRunner - Runner по умолчанию: отдельная горутина.
type goRunner struct{}

func (goRunner) Run(fn func()) { go fn() }

// Ошибки предусловий сессии.
var (
	// ErrRecordNotFound - идентификатор записи не разрешился в хранилище.
	ErrRecordNotFound = errors.New("запись не найдена в хранилище")
	// ErrGroupNotFound - идентификатор группы-родителя не разрешился.
	ErrGroupNotFound = errors.New("группа не найдена в хранилище")
	// ErrNotEditing - операция допустима только в состоянии редактирования.
	ErrNotEditing = errors.New("сессия не в состоянии редактирования")
	// ErrSaveInProgress - сохранение уже запущено, повторный запуск запрещен.
	ErrSaveInProgress = errors.New("сохранение уже выполняется")
)

// Session - сессия редактирования одной записи: конечный автомат
// Loading -> Editing -> Validating -> Saving -> Completed -> Closed.
//
// Сессия не рассчитана на конкурентные запросы сохранения: повторный
// RequestSave во время Saving отклоняется, второй запуск единицы
// сохранения невозможен. Завершение сохранения приходит из другой
// горутины, поэтому переходы состояний защищены мьютексом.
type Session struct {
	mu    sync.Mutex
	state State

	store       Store
	isNew       bool
	keepHistory bool

	original entry.Record // Авторитетная запись (или заготовка новой)
	parent   entry.NodeID // Группа-родитель (только для новой записи)

	form       Form
	pickedIcon *entry.Icon // Явно выбранная иконка, nil если выбора не было

	runner Runner
	now    func() time.Time

	done chan Outcome // Буфер на один результат, доставка однократная
}

// Option настраивает сессию при создании.
type Option func(*Session)

// WithRunner заменяет способ запуска единицы сохранения (для тестов).
func WithRunner(r Runner) Option {
	return func(s *Session) { s.runner = r }
}

// WithClock заменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithHistory включает или выключает сохранение истории версий при записи.
func WithHistory(enabled bool) Option {
	return func(s *Session) { s.keepHistory = enabled }
}

// newSession создает сессию в состоянии Loading с настройками по умолчанию.
func newSession(store Store, opts []Option) *Session {
	s := &Session{
		state:       StateLoading,
		store:       store,
		keepHistory: true,
		runner:      goRunner{},
		now:         time.Now,
		done:        make(chan Outcome, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenForUpdate открывает сессию обновления существующей записи.
// Если идентификатор не разрешается, сессия не создается: это ошибка
// вызывающей стороны (устаревшая ссылка), пользователю не показывается.
func OpenForUpdate(store Store, recordID entry.NodeID, opts ...Option) (*Session, error) {
	s := newSession(store, opts)

	rec, ok := store.RecordByID(recordID)
	if !ok {
		slog.Warn("Сессия редактирования прервана: запись не найдена", "id", recordID)
		return nil, ErrRecordNotFound
	}

	s.original = rec
	s.parent = rec.Parent
	s.form = formFromRecord(rec)
	s.state = StateEditing
	slog.Info("Открыта сессия обновления записи", "id", rec.ID, "title", rec.Title)
	return s, nil
}

// OpenForCreate открывает сессию создания новой записи в группе parentID.
// Заготовку записи выделяет хранилище; авторитетной она становится только
// после успешного сохранения.
func OpenForCreate(store Store, parentID entry.NodeID, opts ...Option) (*Session, error) {
	s := newSession(store, opts)

	if !store.GroupExists(parentID) {
		slog.Warn("Сессия создания прервана: группа не найдена", "id", parentID)
		return nil, ErrGroupNotFound
	}

	s.isNew = true
	s.original = store.NewRecord()
	s.parent = parentID
	s.form = formFromRecord(s.original)
	s.state = StateEditing
	slog.Info("Открыта сессия создания записи", "parent", parentID)
	return s, nil
}

// formFromRecord заполняет форму из снимка записи.
// Подтверждение пароля заполняется тем же значением, что и пароль.
func formFromRecord(rec entry.Record) Form {
	f := Form{
		Title:        rec.Title,
		UserName:     rec.UserName,
		URL:          rec.URL,
		Password:     rec.Password,
		Confirmation: rec.Password,
		Notes:        rec.Notes,
	}
	if len(rec.CustomFields) > 0 {
		f.CustomFields = make([]entry.CustomField, len(rec.CustomFields))
		copy(f.CustomFields, rec.CustomFields)
	}
	return f
}

// State возвращает текущее состояние сессии.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsNew сообщает, открыта ли сессия для создания новой записи.
func (s *Session) IsNew() bool { return s.isNew }

// Record возвращает снимок записи на момент открытия сессии
// (для предзаполнения формы на стороне UI).
func (s *Session) Record() entry.Record { return s.original.Clone() }

// Form возвращает текущее содержимое формы сессии.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Done возвращает канал результата. Результат доставляется ровно один раз,
// после перехода сессии в Closed.
func (s *Session) Done() <-chan Outcome { return s.done }

// SetForm заменяет содержимое формы. Допустимо только в Editing:
// после запуска сохранения правки блокируются до терминального состояния.
func (s *Session) SetForm(f Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.form = f
	return nil
}

// PickIcon запоминает явно выбранную иконку. Выбор действует только внутри
// сессии и ничего не сохраняет.
func (s *Session) PickIcon(icon entry.Icon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.pickedIcon = &icon
	return nil
}

// ApplyGeneratedPassword подставляет сгенерированный пароль одновременно
// в поле пароля и в подтверждение. Сохранение не запускается.
func (s *Session) ApplyGeneratedPassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.form.Password = password
	s.form.Confirmation = password
	return nil
}

// RequestSave запускает проверку формы и, при принятии, ровно одну единицу
// сохранения. Возвращает вердикт валидации не блокируясь: при отклонении
// сессия остается в Editing и вызывающая сторона показывает сообщение.
// Повторный вызов во время Saving отклоняется с ErrSaveInProgress.
func (s *Session) RequestSave() (Verdict, error) {
	s.mu.Lock()

	switch s.state {
	case StateEditing:
		// Продолжаем ниже
	case StateSaving, StateValidating:
		s.mu.Unlock()
		return Verdict{}, ErrSaveInProgress
	default:
		s.mu.Unlock()
		return Verdict{}, ErrNotEditing
	}

	s.state = StateValidating
	verdict := Validate(s.form, s.original.SupportsCustomFields)
	if !verdict.OK {
		s.state = StateEditing
		slog.Info("Форма отклонена валидатором",
			"reason", verdict.Reason.String(), "field", verdict.FieldIndex)
		s.mu.Unlock()
		return verdict, nil
	}

	draft := BuildDraft(s.original, s.form, s.pickedIcon, s.isNew, s.store.DefaultIcon(), s.now())

	var action persistAction
	if s.isNew {
		action = createAction{draft: draft, parent: s.parent, keepHistory: s.keepHistory}
	} else {
		action = updateAction{original: s.original, draft: draft, keepHistory: s.keepHistory}
	}

	s.state = StateSaving
	slog.Info("Запуск сохранения записи", "id", draft.ID, "new", s.isNew)

	// Единица сохранения запускается после освобождения мьютекса:
	// синхронный runner выполнит ее прямо в этом вызове, и completeSave
	// должен суметь взять мьютекс заново.
	s.mu.Unlock()
	s.runner.Run(func() {
		s.completeSave(action.run(s.store))
	})
	return verdict, nil
}

// RequestCancel отменяет сессию: черновик отбрасывается, хранилище не
// затрагивается, доставляется результат без записи. Допустимо только
// в Editing - после запуска сохранения отмена невозможна.
func (s *Session) RequestCancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	slog.Info("Сессия отменена пользователем", "id", s.original.ID)
	s.close(Outcome{Kind: ResultNone})
	return nil
}

// completeSave принимает единственный результат единицы сохранения
// и переводит сессию в терминальное состояние.
func (s *Session) completeSave(res actionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSaving {
		// Повторное завершение невозможно по контракту; страхуемся от гонки.
		slog.Error("Завершение сохранения в неожиданном состоянии", "state", s.state.String())
		return
	}

	s.state = StateCompleted
	if !res.success {
		slog.Warn("Сохранение завершилось сбоем", "error", res.err)
		s.close(Outcome{Kind: ResultNone, Err: res.err})
		return
	}

	kind := ResultUpdated
	if s.isNew {
		kind = ResultCreated
	}
	slog.Info("Запись сохранена", "id", res.record.ID, "kind", kind)
	s.close(Outcome{Kind: kind, Record: res.record})
}

// close доставляет результат и закрывает сессию. Доставка не должна
// помешать закрытию: если результат доставить не удалось, сбой логируется,
// но сессия все равно закрывается - успешная запись в хранилище уже
// состоялась и не отменяется.
func (s *Session) close(out Outcome) {
	s.state = StateClosed
	select {
	case s.done <- out:
	default:
		slog.Error("Не удалось доставить результат сессии: канал занят")
	}
}
