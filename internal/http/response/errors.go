package response

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
)

var messages = map[apperr.Code]string{
	apperr.CodeInternal:              "Erro interno do servidor",
	apperr.CodeInvalidRequest:        "Requisição inválida",
	apperr.CodeDuplicateEmail:        "Email já cadastrado",
	apperr.CodeDuplicateSubscription: "Usuário já possui assinatura ativa",
	apperr.CodeInvalidCredentials:    "Email ou senha incorretos",
	apperr.CodeInvalidToken:          "Token inválido",
	apperr.CodeUserNotFound:          "Usuário não encontrado",
	apperr.CodeAdminRequired:         "Acesso negado. Apenas administradores.",
	apperr.CodeVIPNoSubscription:     "Usuários VIP não possuem assinatura para cancelar",
	apperr.CodeSubscriptionNotFound:  "Nenhuma assinatura ativa encontrada",
	apperr.CodeSubscriptionBlocked:   "Assinatura bloqueada. Realize o pagamento para continuar.",
	apperr.CodeInvalidPaymentMethod:  "Método de pagamento inválido",
	apperr.CodeAlertNotFound:         "Alerta não encontrado",
	apperr.CodeInvalidAlertType:      "Tipo de alerta inválido",
	apperr.CodeHelpMessageNotFound:   "Mensagem não encontrada",
	apperr.CodeResponseRequired:      "Resposta é obrigatória",
	apperr.CodeTargetUserNotFound:    "Usuário não encontrado",
}

// StatusCode возвращает HTTP-код для ошибки бизнес-логики.
func StatusCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPaymentRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст ошибки для пользователя.
// Подробности внутренних ошибок наружу не отдаются.
func Message(err error) string {
	if msg, ok := messages[apperr.CodeOf(err)]; ok {
		return msg
	}
	return messages[apperr.CodeInternal]
}

// FromError пишет ответ с кодом и текстом, соответствующими ошибке.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, StatusCode(err))
	render.JSON(w, r, Error(Message(err)))
}
