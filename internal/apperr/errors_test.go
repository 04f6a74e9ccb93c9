package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("bad"), want: KindValidation},
		{name: "wrapped_authentication", err: fmt.Errorf("login: %w", Authentication("nope")), want: KindAuthentication},
		{name: "authorization", err: Authorization("admins only"), want: KindAuthorization},
		{name: "conflict", err: Conflict("taken", errors.New("23505")), want: KindConflict},
		{name: "not_found", err: NotFound("product"), want: KindNotFound},
		{name: "foreign", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Authorization("Not authorized as an admin"))

	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected errors.Is to match authorization kind")
	}
	if errors.Is(err, ErrAuthentication) {
		t.Fatalf("authorization error must not match authentication kind")
	}
}

func TestConflictUnwrapsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Conflict("Email is already in use", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected conflict to unwrap to its cause")
	}
	if MessageOf(err) != "Email is already in use" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
	if MessageOf(errors.New("raw")) != "internal server error" {
		t.Fatalf("foreign errors must not leak their text")
	}
}
