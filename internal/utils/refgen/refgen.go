package refgen

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefixes for the two reference families.
const (
	TransactionPrefix = "TXN"
	LoanPrefix        = "LOAN"
)

// New generates a reference number of the form PREFIX-XXXXXXXX where the
// suffix is 8 uppercase hex characters. Collisions are statistically rare but
// the storage layer enforces uniqueness; callers regenerate on a violation.
func New(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(hex.EncodeToString(id[:4])))
}

// NewTransactionRef generates a transaction reference number.
func NewTransactionRef() string {
	return New(TransactionPrefix)
}

// NewLoanRef generates a loan reference number.
func NewLoanRef() string {
	return New(LoanPrefix)
}
