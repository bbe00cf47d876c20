package crm

import (
	"strings"
	"testing"

	"dealerbridge_backend/platform/apperr"
)

func TestDecodeErrorNotFound(t *testing.T) {
	err := decodeError("get property", 404, []byte(`{"status":"error","message":"Property modelo_ktm does not exist"}`))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found kind", err)
	}
}

func TestDecodeErrorBadCredential(t *testing.T) {
	for _, status := range []int{401, 403} {
		err := decodeError("get property", status, []byte(`{"status":"error","message":"authentication credentials not found"}`))
		if !apperr.Is(err, apperr.KindConfig) {
			t.Fatalf("status %d: err = %v, want config kind", status, err)
		}
		if !strings.Contains(err.Error(), "token environment variable") {
			t.Fatalf("status %d: message %q lacks operator guidance", status, err)
		}
	}
}

func TestDecodeErrorInvalidOption(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"status":"error","category":"VALIDATION_ERROR","message":"Duke 390 is not a valid option for this property"}`),
		[]byte(`{"status":"error","message":"Duke 390 was not one of the allowed options"}`),
	}
	for _, body := range cases {
		err := decodeError("create deal", 400, body)
		if !apperr.Is(err, apperr.KindBadRequest) {
			t.Fatalf("err = %v, want bad-request kind", err)
		}
		if !strings.Contains(err.Error(), "property sync") {
			t.Fatalf("message %q lacks sync guidance", err)
		}
	}
}

func TestDecodeErrorFallsBackToUpstream(t *testing.T) {
	err := decodeError("list pipelines", 500, []byte(`oops`))
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("err = %v, want upstream kind", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("message %q lacks status code", err)
	}
}

func TestDecodeErrorEmptyBodyUsesStatusText(t *testing.T) {
	err := decodeError("get property", 502, nil)
	if !strings.Contains(err.Error(), "Bad Gateway") {
		t.Fatalf("message %q, want status text fallback", err)
	}
}
