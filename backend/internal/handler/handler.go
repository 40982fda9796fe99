package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/errors"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
)

type Handler struct {
	auth          service.AuthService
	authz         service.AuthzService
	buildings     service.BuildingService
	workOrders    service.WorkOrderService
	attachments   service.AttachmentService
	notifications service.NotificationService
	health        Pinger
	cfg           *config.Config
}

// Pinger reports whether the storage dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func New(
	auth service.AuthService,
	authz service.AuthzService,
	buildings service.BuildingService,
	workOrders service.WorkOrderService,
	attachments service.AttachmentService,
	notifications service.NotificationService,
	health Pinger,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, authz, buildings, workOrders, attachments, notifications, health, cfg}
}

var errNotAuthorized = &errors.ErrorWithStatusCode{Message: "Not authorized", StatusCode: http.StatusUnauthorized}

// access resolves the authorization state of the authenticated user. Routes
// behind NeedAuth always have a user in context; a missing one is a 401.
func (h *Handler) access(r *http.Request) (*service.Access, error) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		return nil, errNotAuthorized
	}
	return h.authz.Access(r.Context(), *user)
}

// idParam parses a numeric chi path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	val, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || val <= 0 {
		return 0, &errors.ErrorWithStatusCode{
			Message:    "invalid " + name + ": must be a positive integer",
			StatusCode: http.StatusBadRequest,
		}
	}
	return val, nil
}
