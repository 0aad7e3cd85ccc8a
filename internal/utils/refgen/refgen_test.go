package refgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-[0-9A-F]{8}$`)

	ref := NewTransactionRef()
	assert.Regexp(t, pattern, ref)

	loanPattern := regexp.MustCompile(`^LOAN-[0-9A-F]{8}$`)
	assert.Regexp(t, loanPattern, NewLoanRef())
}

func TestNew_Distribution(t *testing.T) {
	// Not a uniqueness guarantee (storage enforces that), just a sanity check
	// that the generator is not degenerate.
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		seen[NewTransactionRef()] = struct{}{}
	}
	assert.Greater(t, len(seen), 990)
}
