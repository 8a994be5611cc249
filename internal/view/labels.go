package view

import "github.com/forestar-be/forestar-facturation/pkg/models"

var matchTypeLabels = map[models.MatchType]string{
	models.MatchTypeExactRef:      "Référence exacte",
	models.MatchTypeExactAmount:   "Montant exact",
	models.MatchTypeRefinedAmount: "Montant raffiné",
	models.MatchTypeSimpleName:    "Nom exact",
	models.MatchTypeFuzzyName:     "Nom approchant",
	models.MatchTypeCombined:      "Combiné",
	models.MatchTypeNone:          "Non appariée",
}

// MatchTypeLabel is the French label of a match type.
func MatchTypeLabel(t models.MatchType) string {
	if label, ok := matchTypeLabels[t]; ok {
		return label
	}
	return "Inconnu"
}

// MatchLabel is the label shown for a match. Manual and review states take
// precedence over the match type.
func MatchLabel(m models.Match) string {
	switch {
	case m.IsManualMatch:
		return "Manuel"
	case m.ValidationStatus == models.ValidationValidated:
		return "Validé"
	case m.ValidationStatus == models.ValidationRejected:
		return "Rejeté"
	}
	return MatchTypeLabel(m.MatchType)
}

// FilterLabel is the label of a filter type.
func FilterLabel(f FilterType) string {
	switch f {
	case FilterManual:
		return "Manuel"
	case FilterMultiple:
		return "Correspondances multiples"
	}
	return MatchTypeLabel(models.MatchType(f))
}

// StatusLabel is the French label of a reconciliation status.
func StatusLabel(s models.ReconciliationStatus) string {
	switch s {
	case models.StatusCompleted:
		return "Terminée"
	case models.StatusError:
		return "Erreur"
	case models.StatusProcessing:
		return "En cours"
	default:
		return "En attente"
	}
}
