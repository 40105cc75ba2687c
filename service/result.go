// Package service exposes the grammar service: a small HTTP API that lets a
// client compile/cache a grammar and run parses against it, repurposing the
// teacher's session-server shape (chi router, JWT bearer auth, sqlite DAO)
// for TAUL instead of MUD sessions.
package service

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorResponse is the JSON body of any non-2xx Result.
type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is a prepared HTTP response: status, body, and headers, kept apart
// from the http.ResponseWriter until WriteResponse so a handler can build
// one from deep in a call stack and return it up to the router. Grounded on
// server/result.Result; trimmed to what the grammar service's own endpoints
// need (no text/redirect variants, since the service only ever speaks JSON).
type Result struct {
	Status      int
	InternalMsg string

	resp          interface{}
	hdrs          [][2]string
	respJSONBytes []byte
}

// OK returns a Result containing an HTTP-200 and respObj as its JSON body.
func OK(respObj interface{}, internalMsg string, v ...interface{}) Result {
	return response(http.StatusOK, respObj, internalMsg, v...)
}

// Created returns a Result containing an HTTP-201 and respObj as its JSON
// body.
func Created(respObj interface{}, internalMsg string, v ...interface{}) Result {
	return response(http.StatusCreated, respObj, internalMsg, v...)
}

// NoContent returns a Result containing an HTTP-204 with no body.
func NoContent(internalMsg string, v ...interface{}) Result {
	return response(http.StatusNoContent, nil, internalMsg, v...)
}

// BadRequest returns a Result containing an HTTP-400 with userMsg as the
// JSON-encoded error message shown to the caller.
func BadRequest(userMsg string, internalMsg string, v ...interface{}) Result {
	return errResponse(http.StatusBadRequest, userMsg, internalMsg, v...)
}

// Unauthorized returns a Result containing an HTTP-401 with the standard
// WWW-Authenticate header, per server's own Unauthorized.
func Unauthorized(userMsg string, internalMsg string, v ...interface{}) Result {
	if userMsg == "" {
		userMsg = "you are not authorized to do that"
	}
	return errResponse(http.StatusUnauthorized, userMsg, internalMsg, v...).
		WithHeader("WWW-Authenticate", `Bearer realm="taul grammar service"`)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg string, v ...interface{}) Result {
	return errResponse(http.StatusNotFound, "the requested resource was not found", internalMsg, v...)
}

// Conflict returns a Result containing an HTTP-409 with userMsg shown to the
// caller.
func Conflict(userMsg string, internalMsg string, v ...interface{}) Result {
	return errResponse(http.StatusConflict, userMsg, internalMsg, v...)
}

// InternalServerError returns a Result containing an HTTP-500. internalMsg is
// logged server-side, never shown to the caller.
func InternalServerError(internalMsg string, v ...interface{}) Result {
	return errResponse(http.StatusInternalServerError, "an internal server error occurred", internalMsg, v...)
}

func response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{Status: status, InternalMsg: fmt.Sprintf(internalMsg, v...), resp: respObj}
}

func errResponse(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        errorResponse{Error: userMsg, Status: status},
	}
}

// WithHeader returns a copy of r with the given header added to its
// response.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string(nil), r.hdrs...), [2]string{name, val})
	return cp
}

// WriteResponse marshals r's body (if any) and writes the full HTTP
// response to w, panicking only if r was never given a Status (a
// programmer error, not a request-time one, exactly as server/result does).
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("service: result not populated")
	}

	if r.respJSONBytes == nil && r.resp != nil {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			panic(fmt.Sprintf("service: could not marshal response: %s", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}
	w.WriteHeader(r.Status)
	if r.Status != http.StatusNoContent && r.respJSONBytes != nil {
		w.Write(r.respJSONBytes)
	}
}
