package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAdminNotConfigured ErrCode = "ADMIN_NOT_CONFIGURED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnresolved     ErrCode = "DICTATION_UNRESOLVED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrSessionNameUsed ErrCode = "SESSION_NAME_TAKEN"
	ErrMasterNotLoaded ErrCode = "MASTER_NOT_LOADED"
	ErrNothingToExport ErrCode = "NOTHING_TO_EXPORT"

	// ─── Admission ─────────────────────────────────────────────────────
	ErrInvalidCode      ErrCode = "INVALID_CODE"
	ErrSessionClosed    ErrCode = "SESSION_CLOSED"
	ErrNotOnRoster      ErrCode = "NOT_ON_ROSTER"
	ErrAlreadyAttempted ErrCode = "ALREADY_ATTEMPTED"
	ErrNotConfigured    ErrCode = "DICTATION_NOT_CONFIGURED"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Неверный логин или пароль."
	case ErrAdminNotConfigured:
		return "Пароль администратора не задан на сервере."
	case ErrTokenRequired:
		return "Требуется токен авторизации."
	case ErrTokenInvalid:
		return "Токен авторизации недействителен или истёк."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrStudentAccessOnly:
		return "Доступно только студентам."
	case ErrAdminAccessOnly:
		return "Доступно только администратору."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Проверьте введённые данные."
	case ErrInvalidID:
		return "Неверный формат идентификатора."
	case ErrInvalidPayload:
		return "Некорректное тело запроса."
	case ErrUnresolved:
		return "Список препаратов не сохранён: есть проблемы сопоставления."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Не найдено."
	case ErrConflict:
		return "Запись уже существует."
	case ErrSessionNameUsed:
		return "Сессия с таким названием уже существует."
	case ErrMasterNotLoaded:
		return "Мастер-таблица не загружена."
	case ErrNothingToExport:
		return "Нет данных для экспорта."

	// ─── Admission ─────────────────────────────────────────────────────
	case ErrInvalidCode:
		return "Неверный код."
	case ErrSessionClosed:
		return "Сессия закрыта."
	case ErrNotOnRoster:
		return "Вас нет в списке участников этой сессии."
	case ErrAlreadyAttempted:
		return "Вы уже сдали этот диктант."
	case ErrNotConfigured:
		return "Диктант ещё не настроен."

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Необходимо загрузить файл."
	case ErrUnsupportedFile:
		return "Неподдерживаемый тип файла."
	case ErrFileTooLarge:
		return "Файл слишком большой."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Слишком много запросов. Попробуйте позже."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Внутренняя ошибка сервера."
	default:
		return "Непредвиденная ошибка."
	}
}
