package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"time"
	"unsafe"
)

// respond stores a call's outcome in *resultJSON and returns the status code
func respond(out string, err error, resultJSON **C.char) C.int {
	setError(err)
	if err != nil {
		*resultJSON = C.CString(errorJSON(err))
		return -1
	}
	*resultJSON = C.CString(out)
	return 0
}

//export othello_version
func othello_version() *C.char {
	return C.CString(version)
}

//export othello_last_error
func othello_last_error() *C.char {
	msg := getError()
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

//export othello_init
func othello_init(weightsFile *C.char, tableSize C.int, seed C.uint64_t) C.int {
	path := ""
	if weightsFile != nil {
		path = C.GoString(weightsFile)
	}
	err := initEngine(path, int(tableSize), uint64(seed))
	setError(err)
	if err != nil {
		return -1
	}
	return 0
}

//export othello_shutdown
func othello_shutdown() {
	shutdownEngine()
}

//export othello_evaluate
func othello_evaluate(position *C.char, resultJSON **C.char) C.int {
	out, err := evaluateJSON(C.GoString(position))
	return respond(out, err, resultJSON)
}

//export othello_legal_moves
func othello_legal_moves(position *C.char, resultJSON **C.char) C.int {
	out, err := legalMovesJSON(C.GoString(position))
	return respond(out, err, resultJSON)
}

//export othello_best_move
func othello_best_move(position *C.char, depth, timeMs C.int, resultJSON **C.char) C.int {
	out, err := bestMoveJSON(C.GoString(position), int(depth), time.Duration(timeMs)*time.Millisecond)
	return respond(out, err, resultJSON)
}

//export othello_free_string
func othello_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}
