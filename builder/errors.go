package builder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/moffa90/go-hateep/errcode"
)

// IdentityMismatchError indicates that an inspected image stores a UUID
// other than the one derived from its product fields and serial.
type IdentityMismatchError struct {
	Stored  uuid.UUID
	Derived uuid.UUID
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("identity mismatch: image stores %s, derived %s", e.Stored, e.Derived)
}

// Is reports the mismatch as an encoding constraint violation.
func (e *IdentityMismatchError) Is(target error) bool {
	return target == errcode.Constraint
}

// VerificationError indicates that a built image did not decode back to the
// configuration it was built from.
type VerificationError struct {
	Message string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("image verification failed: %s", e.Message)
}
