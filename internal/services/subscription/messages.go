package subscription

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/safezone/internal/models"
)

const (
	msgVIPOwner   = "Status VIP - Acesso liberado permanentemente!"
	msgVIP        = "Status VIP ativo"
	msgNone       = "Nenhuma assinatura encontrada. Faça sua assinatura para usar o aplicativo."
	msgUnknown    = "Status desconhecido. Entre em contato com o suporte."
	msgConfirmed  = "Pagamento confirmado! Assinatura reativada com sucesso."
	msgCancelled  = "Assinatura cancelada com sucesso"
	msgTrial      = "Período gratuito! Restam %d dias até vencimento."
	msgTrialDue   = "Período de pagamento! Restam %d dias para pagar %s."
	msgActive     = "Assinatura ativa! Próximo pagamento em %d dias."
	msgActiveDue  = "Pagamento em atraso! Restam %d dias para pagar %s."
	msgBlocked    = "Assinatura bloqueada! Pague %s para reativar o aplicativo."
	msgCreated    = "Assinatura criada com sucesso! Período gratuito de %d dias iniciado."
	msgCreatedPix = "Assinatura criada! Você terá %d dias gratuitos. Use este código PIX quando necessário."
	msgCreatedBol = "Assinatura criada! Você terá %d dias gratuitos. Boleto disponível quando necessário."
	msgCreatedCC  = "Assinatura criada! Você terá %d dias gratuitos. Cartão será cobrado após o período."
)

// Заглушки платёжного шлюза.
const (
	stubPixCode    = "09b74dd4-64da-4563-b769-95cec83659f0"
	stubBoletoURL  = "https://exemplo.com/boleto/123456"
	stubPaymentURL = "link.mercadopago.com.br/hopez"
)

// formatAmount форматирует сумму как "R$30,00".
func formatAmount(amount float64) string {
	return "R$" + strings.Replace(fmt.Sprintf("%.2f", amount), ".", ",", 1)
}

func paymentStub(method string, subscriptionID string, trialDays int) *models.PaymentResponse {
	resp := &models.PaymentResponse{
		Success:        true,
		SubscriptionID: subscriptionID,
		Message:        fmt.Sprintf(msgCreated, trialDays),
	}
	switch method {
	case models.PaymentPix:
		resp.PixCode = stubPixCode
		resp.Message = fmt.Sprintf(msgCreatedPix, trialDays)
	case models.PaymentBoleto:
		resp.BoletoURL = stubBoletoURL
		resp.Message = fmt.Sprintf(msgCreatedBol, trialDays)
	case models.PaymentCreditCard:
		resp.PaymentURL = stubPaymentURL
		resp.Message = fmt.Sprintf(msgCreatedCC, trialDays)
	}
	return resp
}

// ValidPaymentMethod сообщает, поддерживается ли способ оплаты.
func ValidPaymentMethod(method string) bool {
	switch method {
	case models.PaymentCreditCard, models.PaymentPix, models.PaymentBoleto:
		return true
	}
	return false
}
