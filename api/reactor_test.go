package api

import (
	"errors"
	"testing"
)

func TestDispatch_Precedence(t *testing.T) {
	cases := []struct {
		ready Ops
		want  Op
	}{
		{0, 0},
		{OpWrite, OpWrite},
		{OpRead | OpWrite, OpRead},
		{OpRemoteClose | OpRead | OpWrite, OpRemoteClose},
		{OpExcept | OpRemoteClose | OpRead | OpWrite, OpExcept},
		{OpExcept | OpWrite, OpExcept},
	}
	for _, tc := range cases {
		if got := Dispatch(tc.ready); got != tc.want {
			t.Errorf("Dispatch(%v) = %v, want %v", tc.ready, got, tc.want)
		}
	}
}

func TestOps_HasAndString(t *testing.T) {
	set := OpRead | OpRemoteClose
	if !set.Has(OpRead) || set.Has(OpWrite) || set.Has(0) {
		t.Errorf("Has is wrong for %v", set)
	}
	if !set.Has(OpRead | OpRemoteClose) {
		t.Errorf("Has must accept a full subset")
	}
	if got := set.String(); got != "READ|REMOTE_CLOSE" {
		t.Errorf("String = %q", got)
	}
	if got := Ops(0).String(); got != "NONE" {
		t.Errorf("empty String = %q", got)
	}
}

func TestErrors_CodesAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := IOError("recv", cause)
	if !errors.Is(err, cause) {
		t.Errorf("IOError must wrap its cause")
	}
	if CodeOf(err) != ErrCodeIO || err.Error() != "recv: boom" {
		t.Errorf("unexpected %v / %q", CodeOf(err), err.Error())
	}
	if CodeOf(ResourceError("socket create", cause)) != ErrCodeResource {
		t.Errorf("resource code lost")
	}
	if CodeOf(nil) != ErrCodeOK {
		t.Errorf("nil must map to ok")
	}
	closed := NewError(ErrCodeRemoteClosed, "recv", ErrRemoteClosed)
	if !IsRemoteClosed(closed) || IsRemoteClosed(err) {
		t.Errorf("IsRemoteClosed misclassifies")
	}
	if CodeOf(ErrRemoteClosed) != ErrCodeRemoteClosed {
		t.Errorf("bare sentinel should classify as remote closed")
	}
	if NewError(ErrCodeNotFound, "unregister", nil).Error() != "unregister: not found error" {
		t.Errorf("message without cause is wrong")
	}
}
