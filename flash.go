package main

import (
	"net/http"
	"net/url"
)

// Flash message cookie names
const (
	flashSuccessCookie = "flash_success"
	flashErrorCookie   = "flash_error"
)

// FlashMessages holds success and error messages read from cookies
type FlashMessages struct {
	Success string
	Error   string
}

func setFlash(w http.ResponseWriter, r *http.Request, name, message string) {
	// 1 minute - plenty of time for the redirect
	SetLaxCookie(w, r, name, url.QueryEscape(message), 60)
}

// getFlashMessages reads and clears flash message cookies.
// Call this once per request, early in the handler.
func getFlashMessages(w http.ResponseWriter, r *http.Request) FlashMessages {
	var messages FlashMessages

	if cookie, err := r.Cookie(flashSuccessCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Success = decoded
		}
		DeleteCookie(w, r, flashSuccessCookie, "/")
	}

	if cookie, err := r.Cookie(flashErrorCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Error = decoded
		}
		DeleteCookie(w, r, flashErrorCookie, "/")
	}

	return messages
}

// redirectWithSuccess redirects to a URL and sets a success flash message
func redirectWithSuccess(w http.ResponseWriter, r *http.Request, target string, message string) {
	setFlash(w, r, flashSuccessCookie, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectWithError redirects to a URL and sets an error flash message
func redirectWithError(w http.ResponseWriter, r *http.Request, target string, message string) {
	setFlash(w, r, flashErrorCookie, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
