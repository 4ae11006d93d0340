package assessment

import "errors"

var (
	// ErrAssessmentNotFound возвращается, когда задание не найдено
	ErrAssessmentNotFound = errors.New("assessment.repository: assessment not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("assessment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("assessment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("assessment.repository: failed to scan row")

	// ErrEmptyUpdate возвращается, если в обновлении нет ни одного поля
	ErrEmptyUpdate = errors.New("assessment.repository: nothing to update")
)
