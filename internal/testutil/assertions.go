package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
)

func asAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// AssertAppError checks that err is an *AppError with the expected code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	appErr := asAppError(t, err)
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (status %d, message: %s)",
			expectedCode, appErr.Code, appErr.StatusCode, appErr.Message)
	}
}

// AssertStatus checks the HTTP status an error maps to, e.g. 400 for every
// validation failure regardless of its code.
func AssertStatus(t *testing.T, err error, expectedStatus int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with status %d, got nil", expectedStatus)
	}

	appErr := asAppError(t, err)
	if appErr.StatusCode != expectedStatus {
		t.Errorf("expected status %d, got %d (code %s)", expectedStatus, appErr.StatusCode, appErr.Code)
	}
}

// AssertMoney compares amounts by value, so "150" equals "150.00".
func AssertMoney(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(Money(t, want)) {
		t.Errorf("expected amount %s, got %s", want, got)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
