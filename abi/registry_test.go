package abi

import (
	"testing"

	"github.com/karukan/engine/engine"
)

func TestNewFreeUnknownHandle(t *testing.T) {
	h := New()
	defer Free(h)

	if _, err := IsEmpty(h); err != nil {
		t.Fatalf("IsEmpty on live handle: %v", err)
	}

	Free(h)
	if _, err := IsEmpty(h); err == nil {
		t.Error("IsEmpty on freed handle: want error")
	}
}

func TestProcessKeyCommitRoundTrip(t *testing.T) {
	h := New()
	defer Free(h)

	for _, r := range "konnnichiha" {
		if _, err := ProcessKey(h, engine.RuneKey(r)); err != nil {
			t.Fatalf("ProcessKey(%q): %v", r, err)
		}
	}
	consumed, err := ProcessKey(h, engine.Key{Special: engine.KeyReturn})
	if err != nil {
		t.Fatalf("ProcessKey(Return): %v", err)
	}
	if !consumed {
		t.Error("Return: want consumed")
	}
	if !HasCommit(h) || GetCommit(h) != "こんにちは" {
		t.Errorf("commit = %q, want こんにちは", GetCommit(h))
	}

	empty, err := IsEmpty(h)
	if err != nil || !empty {
		t.Errorf("IsEmpty = %v, %v, want true, nil", empty, err)
	}
}

func TestCommitFlushesPendingComposition(t *testing.T) {
	h := New()
	defer Free(h)

	for _, r := range "ka" {
		ProcessKey(h, engine.RuneKey(r))
	}
	if err := Commit(h); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !HasCommit(h) || GetCommit(h) != "か" {
		t.Errorf("commit after flush = %q, want か", GetCommit(h))
	}
	if empty, _ := IsEmpty(h); !empty {
		t.Error("IsEmpty after Commit: want true")
	}
}

func TestResetClearsSnapshot(t *testing.T) {
	h := New()
	defer Free(h)

	for _, r := range "ka" {
		ProcessKey(h, engine.RuneKey(r))
	}
	if !HasPreedit(h) {
		t.Fatal("expected a preedit snapshot before Reset")
	}
	if err := Reset(h); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if HasPreedit(h) || HasCommit(h) || HasAux(h) {
		t.Error("snapshot not cleared after Reset")
	}
}

func TestKeyFromKeysymSpecialAndPrintable(t *testing.T) {
	k := KeyFromKeysym(keysymReturn, 0)
	if k.Special != engine.KeyReturn {
		t.Errorf("Return keysym decoded as %+v", k)
	}

	k = KeyFromKeysym('a', 0)
	if r, ok := k.Printable(); !ok || r != 'a' {
		t.Errorf("'a' keysym decoded as %+v", k)
	}

	k = KeyFromKeysym('L', 1)
	if r, ok := k.Printable(); !ok || r != 'l' || !k.Mods.Shift {
		t.Errorf("'L' keysym decoded as %+v, want lowercase+Shift", k)
	}

	k = KeyFromKeysym(keysymSuperR, 0)
	if k.Special != engine.KeySuperR {
		t.Errorf("Super_R keysym decoded as %+v", k)
	}
}

func TestUnknownHandleReturnsFfiError(t *testing.T) {
	bogus := Handle(999999)
	if _, err := ProcessKey(bogus, engine.RuneKey('a')); err == nil {
		t.Error("ProcessKey on unknown handle: want error")
	} else if abiErr, ok := err.(*Error); !ok || abiErr.Kind != ErrorUnknownHandle {
		t.Errorf("err = %v, want *Error{Kind: ErrorUnknownHandle}", err)
	}
}
