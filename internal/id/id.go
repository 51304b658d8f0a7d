package id

import (
	"strconv"

	"github.com/google/uuid"
)

// transactionPrefix marks IDs minted for normalized transactions.
const transactionPrefix = "txn_"

// NewTransactionID returns a process-unique ID like "txn_1b4e28ba-2fa1-4d2b-883f-0016d3cca427".
func NewTransactionID() string {
	return transactionPrefix + uuid.NewString()
}

// Sequence returns a generator of deterministic IDs ("txn_1", "txn_2", ...)
// for fixtures.
func Sequence() func() string {
	n := 0
	return func() string {
		n++
		return transactionPrefix + strconv.Itoa(n)
	}
}
