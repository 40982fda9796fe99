package handler

import "net/http"

// RootHandler sends the signed-in user to the work order list, the page
// people live in.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/work-orders", http.StatusSeeOther)
}
