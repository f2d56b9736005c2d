package resources

import (
	"time"

	"github.com/moleswap/moleswap-svc/internal/escrow"
)

type SideValidation struct {
	IsValid       bool      `json:"isValid"`
	Reason        string    `json:"reason,omitempty"`
	Exists        bool      `json:"exists"`
	Balance       string    `json:"balance,omitempty"`
	HashlockMatch bool      `json:"hashlockMatch"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
}

func NewSideValidation(r *escrow.Result) SideValidation {
	out := SideValidation{
		IsValid:       r.Valid,
		Reason:        r.Reason,
		Exists:        r.Exists,
		HashlockMatch: r.HashlockMatch,
		ExpiresAt:     r.ExpiresAt,
	}
	if r.Balance != nil {
		out.Balance = r.Balance.String()
	}
	return out
}

type ValidationResult struct {
	SrcEscrow SideValidation `json:"srcEscrow"`
	DstEscrow SideValidation `json:"dstEscrow"`
	AllValid  bool           `json:"allValid"`
}

func NewValidationResult(pair *escrow.PairResult) ValidationResult {
	return ValidationResult{
		SrcEscrow: NewSideValidation(pair.Src),
		DstEscrow: NewSideValidation(pair.Dst),
		AllValid:  pair.AllValid,
	}
}

type SecretResponse struct {
	Secret           string           `json:"secret"`
	OrderHash        string           `json:"orderHash"`
	ValidationResult ValidationResult `json:"validationResult"`
	SharedAt         time.Time        `json:"sharedAt"`
}
