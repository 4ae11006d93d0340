package assessments

import "errors"

var (
	// ErrAssessmentNotFound возвращается, когда задание не найдено
	ErrAssessmentNotFound = errors.New("assessment not found")

	// ErrStudentNotFound возвращается, когда студент не найден в UserService
	ErrStudentNotFound = errors.New("student not found")

	// ErrForbidden возвращается, когда у пользователя нет прав на операцию
	ErrForbidden = errors.New("operation is not allowed for this user")

	// ErrIllegalStatus возвращается, если операция недопустима в текущем статусе задания
	ErrIllegalStatus = errors.New("operation is not allowed in the current assessment status")

	// ErrInvalidScore возвращается, если оценка вне диапазона 0..maxScore
	ErrInvalidScore = errors.New("score must be between 0 and maxScore")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
