package payment

import "errors"

var (
	// ErrTargetNotFound: the content item being paid for does not exist.
	ErrTargetNotFound = errors.New("target not found")

	// ErrInvalidState: the item exists but is not eligible for checkout
	// (editorial review not passed).
	ErrInvalidState = errors.New("item not eligible for payment")

	// ErrForbidden: caller is not the owner of the item / payer of the
	// transaction and not an admin.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyPaid: a transaction for this target already completed.
	ErrAlreadyPaid = errors.New("already paid")

	// ErrUnknownSession: no transaction exists for the session id.
	ErrUnknownSession = errors.New("unknown session")

	// ErrUnknownTargetType is a data-integrity fault: a transaction carries
	// a target_type the resolver has no entry for. It must surface, never
	// be absorbed into a default collection.
	ErrUnknownTargetType = errors.New("unknown target type")
)
