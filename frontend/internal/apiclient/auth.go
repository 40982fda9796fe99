package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
)

// Login sends login credentials. It returns the raw response because the
// handler needs to forward the session cookie to the browser.
func (c *APIClient) Login(email, password string) (*http.Response, error) {
	creds := api.LoginRequest{Email: email, Password: password}
	jsonBody, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login data: %w", err)
	}

	return c.do("POST", "/v1/auth/login", bytes.NewBuffer(jsonBody))
}

// Logout tells the backend to drop the session. Errors are best effort; the
// handler clears the cookie either way.
func (c *APIClient) Logout(r *http.Request) error {
	resp, err := c.do("POST", "/v1/auth/logout", nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("log out", resp)
	}
	return nil
}
