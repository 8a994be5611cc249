package models

// Invoice is a customer invoice as exported by the accounting software and
// returned by the reconciliation API. Read-only on this side.
type Invoice struct {
	ID              string  `json:"id"`
	Ref             string  `json:"ref"`
	RefClient       string  `json:"refClient,omitempty"`
	Type            string  `json:"type,omitempty"`
	DateFacturation string  `json:"dateFacturation"` // as sent by the API, usually DD/MM/YYYY
	DateEcheance    string  `json:"dateEcheance,omitempty"`
	Tiers           string  `json:"tiers"` // Customer name
	Ville           string  `json:"ville,omitempty"`
	CodePostal      string  `json:"codePostal,omitempty"`
	ModeReglement   string  `json:"modeReglement,omitempty"`
	MontantHT       float64 `json:"montantHT"`
	MontantTTC      float64 `json:"montantTTC"`
	Etat            string  `json:"etat,omitempty"`
}

// BankTransaction is a bank statement line. Read-only on this side.
type BankTransaction struct {
	ID                 string  `json:"id"`
	NumeroCompte       string  `json:"numeroCompte,omitempty"`
	NomCompte          string  `json:"nomCompte,omitempty"`
	CompteContrepartie string  `json:"compteContrepartie,omitempty"`
	NumeroMouvement    string  `json:"numeroMouvement,omitempty"`
	DateComptable      string  `json:"dateComptable"`
	DateValeur         string  `json:"dateValeur,omitempty"`
	Montant            float64 `json:"montant"`
	Devise             string  `json:"devise,omitempty"`
	Libelles           string  `json:"libelles"`
	DetailsMouvement   string  `json:"detailsMouvement"`
	Message            string  `json:"message,omitempty"`
}
