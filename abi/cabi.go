//go:build cgo

// This file is the cgo //export surface: thin wrappers with C calling
// convention around registry.go's plain-Go core, so the windowing-
// layer addon can link karukan as a c-shared library. It carries no
// logic of its own beyond type conversion at the boundary.
package abi

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

//export KarukanNew
func KarukanNew() C.uint64_t {
	return C.uint64_t(New())
}

//export KarukanInit
func KarukanInit(handle C.uint64_t, configPath *C.char) C.int {
	if err := Init(Handle(handle), C.GoString(configPath)); err != nil {
		return -1
	}
	return 0
}

//export KarukanFree
func KarukanFree(handle C.uint64_t) {
	Free(Handle(handle))
}

//export KarukanProcessKey
func KarukanProcessKey(handle C.uint64_t, keysym C.uint32_t, modifierMask C.uint32_t, isRelease C.int) C.int {
	if isRelease != 0 {
		return 0
	}
	key := KeyFromKeysym(uint32(keysym), uint32(modifierMask))
	consumed, err := ProcessKey(Handle(handle), key)
	if err != nil {
		return 0
	}
	if consumed {
		return 1
	}
	return 0
}

//export KarukanReset
func KarukanReset(handle C.uint64_t) {
	_ = Reset(Handle(handle))
}

//export KarukanSetSurroundingText
func KarukanSetSurroundingText(handle C.uint64_t, utf8 *C.char, byteCursor C.int) {
	text := C.GoString(utf8)
	n := int(byteCursor)
	if n >= 0 && n <= len(text) {
		text = text[:n]
	}
	_ = SetSurroundingText(Handle(handle), text)
}

//export KarukanCommit
func KarukanCommit(handle C.uint64_t) {
	_ = Commit(Handle(handle))
}

//export KarukanIsEmpty
func KarukanIsEmpty(handle C.uint64_t) C.int {
	empty, _ := IsEmpty(Handle(handle))
	if empty {
		return 1
	}
	return 0
}

//export KarukanHasPreedit
func KarukanHasPreedit(handle C.uint64_t) C.int { return boolToC(HasPreedit(Handle(handle))) }

//export KarukanGetPreedit
func KarukanGetPreedit(handle C.uint64_t) *C.char { return C.CString(GetPreedit(Handle(handle))) }

//export KarukanPreeditLen
func KarukanPreeditLen(handle C.uint64_t) C.int { return C.int(PreeditLen(Handle(handle))) }

//export KarukanCaret
func KarukanCaret(handle C.uint64_t) C.int { return C.int(Caret(Handle(handle))) }

//export KarukanHasCommit
func KarukanHasCommit(handle C.uint64_t) C.int { return boolToC(HasCommit(Handle(handle))) }

//export KarukanGetCommit
func KarukanGetCommit(handle C.uint64_t) *C.char { return C.CString(GetCommit(Handle(handle))) }

//export KarukanCommitLen
func KarukanCommitLen(handle C.uint64_t) C.int { return C.int(CommitLen(Handle(handle))) }

//export KarukanHasCandidates
func KarukanHasCandidates(handle C.uint64_t) C.int { return boolToC(HasCandidates(Handle(handle))) }

//export KarukanShouldHideCandidates
func KarukanShouldHideCandidates(handle C.uint64_t) C.int {
	return boolToC(ShouldHideCandidates(Handle(handle)))
}

//export KarukanCandidateCount
func KarukanCandidateCount(handle C.uint64_t) C.int { return C.int(CandidateCount(Handle(handle))) }

//export KarukanGetCandidate
func KarukanGetCandidate(handle C.uint64_t, i C.int) *C.char {
	return C.CString(GetCandidate(Handle(handle), int(i)))
}

//export KarukanGetAnnotation
func KarukanGetAnnotation(handle C.uint64_t, i C.int) *C.char {
	return C.CString(GetAnnotation(Handle(handle), int(i)))
}

//export KarukanCandidateCursor
func KarukanCandidateCursor(handle C.uint64_t) C.int {
	return C.int(CandidateCursor(Handle(handle)))
}

//export KarukanHasAux
func KarukanHasAux(handle C.uint64_t) C.int { return boolToC(HasAux(Handle(handle))) }

//export KarukanGetAux
func KarukanGetAux(handle C.uint64_t) *C.char { return C.CString(GetAux(Handle(handle))) }

//export KarukanAuxLen
func KarukanAuxLen(handle C.uint64_t) C.int { return C.int(AuxLen(Handle(handle))) }

//export KarukanLastConversionMs
func KarukanLastConversionMs(handle C.uint64_t) C.uint64_t {
	ms, _ := LastConversionMs(Handle(handle))
	return C.uint64_t(ms)
}

//export KarukanLastProcessKeyMs
func KarukanLastProcessKeyMs(handle C.uint64_t) C.uint64_t {
	ms, _ := LastProcessKeyMs(Handle(handle))
	return C.uint64_t(ms)
}

//export KarukanSaveLearning
func KarukanSaveLearning(handle C.uint64_t, path *C.char) C.int {
	if err := SaveLearning(Handle(handle), C.GoString(path)); err != nil {
		return -1
	}
	return 0
}

//export KarukanFreeString
func KarukanFreeString(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
