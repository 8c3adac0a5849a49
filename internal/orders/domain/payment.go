package domain

import "strings"

// ValidatePayment checks a payment-method selection and its proof artifacts
// before an order may be created. cash_on_delivery needs nothing; e_wallet
// requires both a reference code and a proof-of-payment reference (the
// pointer into the external file store where the screenshot was uploaded).
func ValidatePayment(method PaymentMethod, reference, proofRef string) error {
	switch method {
	case PaymentCashOnDelivery:
		return nil
	case PaymentEWallet:
		if strings.TrimSpace(reference) == "" {
			return ErrMissingPaymentReference
		}
		if strings.TrimSpace(proofRef) == "" {
			return ErrMissingPaymentProof
		}
		return nil
	}
	return ErrUnknownPaymentMethod
}
