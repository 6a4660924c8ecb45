package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"

	"fincontrol/internal/core"
	"fincontrol/internal/log"
	"fincontrol/internal/services"
)

const maxBodyBytes = 1 << 20

const (
	detailInternal        = "Erro interno do servidor"
	detailEmailTaken      = "Email já cadastrado"
	detailBadCredentials  = "Email ou senha incorretos"
	detailNotAuthed       = "Not authenticated"
	detailInvalidToken    = "Invalid token"
	detailBillAlreadyPaid = "Conta já paga não pode voltar a pendente"
	detailTxNotFound      = "Transação não encontrada"
	detailBillNotFound    = "Conta não encontrada"
	detailGoalNotFound    = "Meta não encontrada"
	detailUserNotFound    = "Usuário não encontrado"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// requestError is a malformed body, reported before any service runs.
type requestError struct {
	status int
	detail string
}

func (e *requestError) Error() string { return e.detail }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// the status is already out; an encode failure means the client went away
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps err to a status and detail. notFound is the detail used
// for services.ErrNotFound on this route.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		reqErr   *requestError
		valErr   *core.ValidationError
		fieldErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &reqErr):
		writeDetail(w, reqErr.status, reqErr.detail)
	case errors.As(err, &fieldErr):
		writeDetail(w, http.StatusUnprocessableEntity, translateValidationErrors(fieldErr))
	case errors.As(err, &valErr):
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s: %v", valErr.Field, valErr.Err))
	case errors.Is(err, services.ErrNotFound):
		writeDetail(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, detailEmailTaken)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
	case errors.Is(err, services.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
	case errors.Is(err, services.ErrBillAlreadyPaid):
		writeDetail(w, http.StatusConflict, detailBillAlreadyPaid)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, r.Method+" "+r.Pattern,
				log.NewFields().WithUser(userIDFrom(r.Context())))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return decodeError(err)
	}
	return s.validate.StructCtx(r.Context(), dst)
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &requestError{http.StatusBadRequest, "Corpo da requisição vazio"}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &requestError{http.StatusBadRequest, "JSON inválido"}
	case errors.As(err, &maxErr):
		return &requestError{http.StatusRequestEntityTooLarge, "Corpo da requisição muito grande"}
	case errors.As(err, &typeErr):
		return &requestError{http.StatusUnprocessableEntity, fmt.Sprintf("%s: tipo inválido", typeErr.Field)}
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidDate):
		return &requestError{http.StatusUnprocessableEntity, err.Error()}
	default:
		return &requestError{http.StatusBadRequest, "JSON inválido"}
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func translateValidationErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, translateValidationError(fe))
	}
	return strings.Join(msgs, "; ")
}

func translateValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", field)
	case "email":
		return "Email inválido"
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s", field, fe.Param())
	default:
		return fmt.Sprintf("Validação '%s' falhou para %s", fe.Tag(), field)
	}
}
