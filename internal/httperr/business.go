package httperr

import "errors"

// BusinessError is a rule violation identified by a stable code. The code
// is what clients switch on; Message gives the text shown to the visitor.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

var messages = map[string]string{
	"invalid_client_name":   "Informe o nome do cliente.",
	"invalid_phone":         "Telefone inválido.",
	"invalid_date":          "Data inválida.",
	"invalid_date_or_time":  "Data ou horário inválido.",
	"invalid_month":         "Mês inválido.",
	"invalid_status":        "Status inválido.",
	"invalid_state":         "Mudança de status não permitida.",
	"too_soon":              "Horário muito próximo, escolha outro.",
	"slot_unavailable":      "Horário indisponível.",
	"barber_required":       "Informe o barbeiro.",
	"barber_not_found":      "Barbeiro não encontrado.",
	"service_not_found":     "Serviço não encontrado.",
	"appointment_not_found": "Agendamento não encontrado.",
}

// Message returns the user-facing text of code, or code itself.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}
