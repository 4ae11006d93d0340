package sweep_expired

import "time"

// Response результат прохода
type Response struct {
	Found   int       // найдено устаревших активных бронирований
	Swept   int       // переведено в missed
	SweptAt time.Time // момент, относительно которого выполнялась проверка
}
