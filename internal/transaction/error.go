package transaction

import "errors"

var (
	// -- Correlation --
	ErrReferenceNotFound  = errors.New("transaction: no transaction found for reference")
	ErrAmbiguousReference = errors.New("transaction: multiple transactions share reference")

	// -- Verification --
	ErrUnverified = errors.New("transaction: could not verify event against provider")
)
