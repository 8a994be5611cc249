package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

// EffectiveConfidence is the confidence shown for a match, 0 to 100.
// tx is the transaction the match resolves to, nil when unresolved.
//
// Rules, first hit wins: manual with a transaction is 100; rejected or
// without a transaction is 0; validated with a transaction is 100; otherwise
// the raw matcher confidence, clamped.
func EffectiveConfidence(m models.Match, tx *models.BankTransaction) float64 {
	switch {
	case m.IsManualMatch && tx != nil:
		return 100
	case m.ValidationStatus == models.ValidationRejected || tx == nil:
		return 0
	case m.ValidationStatus == models.ValidationValidated:
		return 100
	}
	switch {
	case m.Confidence < 0:
		return 0
	case m.Confidence > 100:
		return 100
	}
	return m.Confidence
}

// IsEffectivelyValidated reports whether the match is validated and resolves
// to a transaction.
func IsEffectivelyValidated(m models.Match, tx *models.BankTransaction) bool {
	return m.ValidationStatus == models.ValidationValidated && tx != nil
}

// DisplayTransaction is the transaction to show for a match. Rejected
// matches show none regardless of their transaction id.
func DisplayTransaction(m models.Match, tx *models.BankTransaction) *models.BankTransaction {
	if m.ValidationStatus == models.ValidationRejected {
		return nil
	}
	return tx
}
