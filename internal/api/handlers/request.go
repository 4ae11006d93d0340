package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Максимальный размер тела запроса
const maxBodyBytes = 1 << 20

var (
	// ErrEmptyBody возвращается, если тело запроса пустое
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidPathParam возвращается при некорректном параметре пути
	ErrInvalidPathParam = errors.New("invalid path parameter")

	// ErrInvalidQueryParam возвращается при некорректном query-параметре
	ErrInvalidQueryParam = errors.New("invalid query parameter")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON декодирует тело запроса в dst, неизвестные поля запрещены
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}

	return nil
}

// DecodeOptionalJSON как DecodeJSON, но пустое тело не считается ошибкой
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	err := DecodeJSON(r, dst)
	if errors.Is(err, ErrEmptyBody) {
		return nil
	}
	return err
}

// Validate проверяет struct-теги validate и возвращает читаемое описание ошибок
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
}

// PathInt64 извлекает положительный int64 параметр пути
func PathInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPathParam, name)
	}
	return value, nil
}

// QueryInt64 извлекает необязательный положительный int64 query-параметр
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryParam, name)
	}
	return &value, nil
}

// QueryString извлекает необязательный строковый query-параметр
func QueryString(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
