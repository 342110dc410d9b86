package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "research job not found",
			},
			want: "research job not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to persist job",
				Cause:   errors.New("connection reset"),
			},
			want: "failed to persist job: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{name: "NotFound", err: NotFound("job not found"), wantCode: ErrCodeNotFound, wantMsg: "job not found"},
		{name: "NotFoundf", err: NotFoundf("job %s not found", "abc"), wantCode: ErrCodeNotFound, wantMsg: "job abc not found"},
		{name: "Conflict", err: Conflict("task ref already exists"), wantCode: ErrCodeConflict, wantMsg: "task ref already exists"},
		{name: "Validation", err: Validation("invalid input"), wantCode: ErrCodeValidation, wantMsg: "invalid input"},
		{name: "Validationf", err: Validationf("invalid %s", "template"), wantCode: ErrCodeValidation, wantMsg: "invalid template"},
		{name: "Precondition", err: Precondition("parsed brief missing"), wantCode: ErrCodePrecondition, wantMsg: "parsed brief missing"},
		{name: "Preconditionf", err: Preconditionf("%s missing", "brief"), wantCode: ErrCodePrecondition, wantMsg: "brief missing"},
		{name: "Upstream", err: Upstream("provider rejected the task"), wantCode: ErrCodeUpstream, wantMsg: "provider rejected the task"},
		{name: "Internal", err: Internal("internal server error"), wantCode: ErrCodeInternal, wantMsg: "internal server error"},
		{name: "Internalf", err: Internalf("internal %s error", "db"), wantCode: ErrCodeInternal, wantMsg: "internal db error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("%s().Code = %v, want %v", tt.name, tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("%s().Message = %v, want %v", tt.name, tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("one_line_positioning", "field is required")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "one_line_positioning" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "one_line_positioning")
	}
	if err.Message != "field is required" {
		t.Errorf("ValidationField().Message = %v, want %v", err.Message, "field is required")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	err := Wrap(cause, ErrCodeUpstream, "provider call failed")
	if err.Code != ErrCodeUpstream {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeUpstream)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Wrap() should preserve the cause chain")
	}

	if got := Wrap(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")

	err := Wrapf(cause, ErrCodeInternal, "step %d failed", 2)
	if err.Message != "step 2 failed" {
		t.Errorf("Wrapf().Message = %v, want %v", err.Message, "step 2 failed")
	}
	if !errors.Is(err, cause) {
		t.Errorf("Wrapf() should preserve the cause chain")
	}

	if got := Wrapf(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{name: "IsNotFound match", check: IsNotFound, err: NotFound("x"), want: true},
		{name: "IsNotFound mismatch", check: IsNotFound, err: Conflict("x"), want: false},
		{name: "IsConflict match", check: IsConflict, err: Conflict("x"), want: true},
		{name: "IsValidation match", check: IsValidation, err: Validation("x"), want: true},
		{name: "IsPrecondition match", check: IsPrecondition, err: Precondition("x"), want: true},
		{name: "IsUpstream match", check: IsUpstream, err: Upstream("x"), want: true},
		{name: "IsInternal match", check: IsInternal, err: Internal("x"), want: true},
		{name: "IsTimeout match", check: IsTimeout, err: &AppError{Code: ErrCodeTimeout}, want: true},
		{name: "IsCanceled match", check: IsCanceled, err: &AppError{Code: ErrCodeCanceled}, want: true},
		{name: "plain error", check: IsInternal, err: errors.New("plain"), want: false},
		{name: "nil error", check: IsNotFound, err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsHelpers_WrappedError(t *testing.T) {
	wrapped := Wrap(NotFound("job not found"), ErrCodeInternal, "lookup failed")

	// errors.As finds the outermost AppError first.
	if !IsInternal(wrapped) {
		t.Errorf("IsInternal() should match the outer wrap, got code %v", GetCode(wrapped))
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Conflict("x")); got != ErrCodeConflict {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeConflict)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain error) = %v, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestGetField(t *testing.T) {
	if got := GetField(ValidationField("session_id", "required")); got != "session_id" {
		t.Errorf("GetField() = %v, want %v", got, "session_id")
	}
	if got := GetField(Validation("no field")); got != "" {
		t.Errorf("GetField(no field) = %v, want empty", got)
	}
	if got := GetField(errors.New("plain")); got != "" {
		t.Errorf("GetField(plain error) = %v, want empty", got)
	}
}
