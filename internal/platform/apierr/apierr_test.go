package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
)

func TestFromMapsCodes(t *testing.T) {
	cases := map[errs.Code]int{
		errs.CodeValidation:      http.StatusBadRequest,
		errs.CodeNotFound:        http.StatusNotFound,
		errs.CodeConflict:        http.StatusConflict,
		errs.CodeConsistency:     http.StatusConflict,
		errs.CodeExternalService: http.StatusBadGateway,
		errs.CodeProtocol:        http.StatusBadGateway,
		errs.CodeInternal:        http.StatusInternalServerError,
	}
	for code, status := range cases {
		ae := From(errs.NewError(code, "op", "msg", nil))
		if ae.Status != status || ae.Code != string(code) {
			t.Fatalf("From(%s): got status=%d code=%s", code, ae.Status, ae.Code)
		}
	}
}

func TestFromUncodedAndPassthrough(t *testing.T) {
	ae := From(errors.New("boom"))
	if ae.Status != http.StatusInternalServerError || ae.Code != "internal" {
		t.Fatalf("uncoded: got=%+v", ae)
	}
	orig := New(http.StatusUnauthorized, "unauthorized", errors.New("no token"))
	if From(orig) != orig {
		t.Fatalf("expected *Error passthrough")
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
}
