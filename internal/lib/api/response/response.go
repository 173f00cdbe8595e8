package response

import (
	"encoding/json"
	"net/http"

	"github.com/linemk/ecom-shop/internal/lib/logger"
)

// Envelope — единый формат ответа API: {success, data?, message?}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Responder пишет ответы в формате Envelope. В local/dev окружении
// ответы 500 содержат текст исходной ошибки, в prod — общий текст.
type Responder struct {
	dev bool
}

func New(env string) *Responder {
	return &Responder{dev: env != logger.EnvProd}
}

func (r *Responder) write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// ошибку кодирования уже некуда отдать, заголовки отправлены
	_ = json.NewEncoder(w).Encode(env)
}

// OK отправляет 200 с данными.
func (r *Responder) OK(w http.ResponseWriter, data any) {
	r.write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created отправляет 201 с данными.
func (r *Responder) Created(w http.ResponseWriter, data any) {
	r.write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message отправляет 200 с текстовым сообщением без данных.
func (r *Responder) Message(w http.ResponseWriter, msg string) {
	r.write(w, http.StatusOK, Envelope{Success: true, Message: msg})
}

// Fail отправляет ошибку клиента с заданным статусом и сообщением.
func (r *Responder) Fail(w http.ResponseWriter, status int, msg string) {
	r.write(w, status, Envelope{Success: false, Message: msg})
}

// ServerError отправляет 500. Текст исходной ошибки наружу уходит
// только вне prod.
func (r *Responder) ServerError(w http.ResponseWriter, err error) {
	msg := "internal server error"
	if r.dev && err != nil {
		msg = err.Error()
	}
	r.write(w, http.StatusInternalServerError, Envelope{Success: false, Message: msg})
}
