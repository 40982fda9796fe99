package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
)

// --- Shared mocks ---

type MockAuthService struct {
	MockLogin      func(ctx context.Context, email, password string) (string, error)
	MockCreateUser func(ctx context.Context, user domain.User, password string) (int64, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(ctx, email, password)
	}
	return "test-token", nil
}

func (m *MockAuthService) CreateUser(ctx context.Context, user domain.User, password string) (int64, error) {
	if m.MockCreateUser != nil {
		return m.MockCreateUser(ctx, user, password)
	}
	return 1, nil
}

// MockAuthzService derives access from the user record alone, so tests pick
// privileges by picking the user they inject.
type MockAuthzService struct {
	MockAccess func(ctx context.Context, user domain.User) (*service.Access, error)
}

func (m *MockAuthzService) Access(ctx context.Context, user domain.User) (*service.Access, error) {
	if m.MockAccess != nil {
		return m.MockAccess(ctx, user)
	}
	return service.ResolveAccess(user.Id, user.Admin, nil, nil), nil
}

func (m *MockAuthzService) Invalidate(userId int64) {}
func (m *MockAuthzService) InvalidateAll()          {}

type MockBuildingService struct {
	MockBuildings     func(ctx context.Context, access *service.Access) ([]domain.Building, error)
	MockBuilding      func(ctx context.Context, access *service.Access, id int64) (*domain.Building, error)
	MockCreate        func(ctx context.Context, access *service.Access, b domain.Building) (int64, error)
	MockUpdate        func(ctx context.Context, access *service.Access, b domain.Building) error
	MockDelete        func(ctx context.Context, access *service.Access, id int64) error
	MockSummaries     func(ctx context.Context, access *service.Access) ([]api.BuildingSummary, error)
	MockUnits         func(ctx context.Context, access *service.Access, buildingId int64) ([]domain.Unit, error)
	MockUnit          func(ctx context.Context, access *service.Access, id int64) (*domain.Unit, error)
	MockCreateUnit    func(ctx context.Context, access *service.Access, u domain.Unit) (int64, error)
	MockUpdateUnit    func(ctx context.Context, access *service.Access, u domain.Unit) error
	MockDeleteUnit    func(ctx context.Context, access *service.Access, id int64) error
	MockSetTenant     func(ctx context.Context, access *service.Access, t domain.Tenant) error
	MockRemoveTenant  func(ctx context.Context, access *service.Access, unitId int64) error
	MockUnitSummaries func(ctx context.Context, access *service.Access, buildingId *int64) ([]api.UnitSummary, error)
}

func (m *MockBuildingService) Buildings(ctx context.Context, access *service.Access) ([]domain.Building, error) {
	if m.MockBuildings != nil {
		return m.MockBuildings(ctx, access)
	}
	return nil, nil
}

func (m *MockBuildingService) Building(ctx context.Context, access *service.Access, id int64) (*domain.Building, error) {
	if m.MockBuilding != nil {
		return m.MockBuilding(ctx, access, id)
	}
	return &domain.Building{Id: id}, nil
}

func (m *MockBuildingService) Create(ctx context.Context, access *service.Access, b domain.Building) (int64, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, access, b)
	}
	return 1, nil
}

func (m *MockBuildingService) Update(ctx context.Context, access *service.Access, b domain.Building) error {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, access, b)
	}
	return nil
}

func (m *MockBuildingService) Delete(ctx context.Context, access *service.Access, id int64) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, access, id)
	}
	return nil
}

func (m *MockBuildingService) Summaries(ctx context.Context, access *service.Access) ([]api.BuildingSummary, error) {
	if m.MockSummaries != nil {
		return m.MockSummaries(ctx, access)
	}
	return nil, nil
}

func (m *MockBuildingService) Units(ctx context.Context, access *service.Access, buildingId int64) ([]domain.Unit, error) {
	if m.MockUnits != nil {
		return m.MockUnits(ctx, access, buildingId)
	}
	return nil, nil
}

func (m *MockBuildingService) Unit(ctx context.Context, access *service.Access, id int64) (*domain.Unit, error) {
	if m.MockUnit != nil {
		return m.MockUnit(ctx, access, id)
	}
	return &domain.Unit{Id: id}, nil
}

func (m *MockBuildingService) CreateUnit(ctx context.Context, access *service.Access, u domain.Unit) (int64, error) {
	if m.MockCreateUnit != nil {
		return m.MockCreateUnit(ctx, access, u)
	}
	return 1, nil
}

func (m *MockBuildingService) UpdateUnit(ctx context.Context, access *service.Access, u domain.Unit) error {
	if m.MockUpdateUnit != nil {
		return m.MockUpdateUnit(ctx, access, u)
	}
	return nil
}

func (m *MockBuildingService) DeleteUnit(ctx context.Context, access *service.Access, id int64) error {
	if m.MockDeleteUnit != nil {
		return m.MockDeleteUnit(ctx, access, id)
	}
	return nil
}

func (m *MockBuildingService) SetTenant(ctx context.Context, access *service.Access, t domain.Tenant) error {
	if m.MockSetTenant != nil {
		return m.MockSetTenant(ctx, access, t)
	}
	return nil
}

func (m *MockBuildingService) RemoveTenant(ctx context.Context, access *service.Access, unitId int64) error {
	if m.MockRemoveTenant != nil {
		return m.MockRemoveTenant(ctx, access, unitId)
	}
	return nil
}

func (m *MockBuildingService) UnitSummaries(ctx context.Context, access *service.Access, buildingId *int64) ([]api.UnitSummary, error) {
	if m.MockUnitSummaries != nil {
		return m.MockUnitSummaries(ctx, access, buildingId)
	}
	return nil, nil
}

type MockWorkOrderService struct {
	MockList         func(ctx context.Context, access *service.Access, q service.WorkOrderListQuery) ([]domain.WorkOrder, int, error)
	MockGet          func(ctx context.Context, access *service.Access, id int64) (*domain.WorkOrder, error)
	MockCreate       func(ctx context.Context, access *service.Access, w domain.WorkOrder) (int64, error)
	MockUpdate       func(ctx context.Context, access *service.Access, w domain.WorkOrder) error
	MockDelete       func(ctx context.Context, access *service.Access, id int64) error
	MockArchive      func(ctx context.Context, access *service.Access, id int64) error
	MockMassAssign   func(ctx context.Context, access *service.Access, buildingIds []int64, title, description string, deadline *time.Time) (int, int, error)
	MockOwnerChoices func(ctx context.Context, access *service.Access) ([]domain.User, error)
}

func (m *MockWorkOrderService) List(ctx context.Context, access *service.Access, q service.WorkOrderListQuery) ([]domain.WorkOrder, int, error) {
	if m.MockList != nil {
		return m.MockList(ctx, access, q)
	}
	return nil, 0, nil
}

func (m *MockWorkOrderService) Get(ctx context.Context, access *service.Access, id int64) (*domain.WorkOrder, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, access, id)
	}
	return &domain.WorkOrder{Id: id, Status: domain.StatusOpen, Priority: domain.PriorityMedium}, nil
}

func (m *MockWorkOrderService) Create(ctx context.Context, access *service.Access, w domain.WorkOrder) (int64, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, access, w)
	}
	return 1, nil
}

func (m *MockWorkOrderService) Update(ctx context.Context, access *service.Access, w domain.WorkOrder) error {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, access, w)
	}
	return nil
}

func (m *MockWorkOrderService) Delete(ctx context.Context, access *service.Access, id int64) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, access, id)
	}
	return nil
}

func (m *MockWorkOrderService) Archive(ctx context.Context, access *service.Access, id int64) error {
	if m.MockArchive != nil {
		return m.MockArchive(ctx, access, id)
	}
	return nil
}

func (m *MockWorkOrderService) MassAssign(ctx context.Context, access *service.Access, buildingIds []int64, title, description string, deadline *time.Time) (int, int, error) {
	if m.MockMassAssign != nil {
		return m.MockMassAssign(ctx, access, buildingIds, title, description, deadline)
	}
	return len(buildingIds), 0, nil
}

func (m *MockWorkOrderService) OwnerChoices(ctx context.Context, access *service.Access) ([]domain.User, error) {
	if m.MockOwnerChoices != nil {
		return m.MockOwnerChoices(ctx, access)
	}
	return nil, nil
}

type MockAttachmentService struct {
	MockList   func(ctx context.Context, access *service.Access, workOrderId int64) ([]api.AttachmentMetadata, error)
	MockUpload func(ctx context.Context, access *service.Access, workOrderId int64, files []*multipart.FileHeader) (*api.UploadResponse, error)
	MockDelete func(ctx context.Context, access *service.Access, workOrderId, attachmentId int64) error
	MockOpen   func(ctx context.Context, access *service.Access, workOrderId, attachmentId int64) (*domain.Attachment, io.ReadCloser, error)
}

func (m *MockAttachmentService) List(ctx context.Context, access *service.Access, workOrderId int64) ([]api.AttachmentMetadata, error) {
	if m.MockList != nil {
		return m.MockList(ctx, access, workOrderId)
	}
	return nil, nil
}

func (m *MockAttachmentService) Upload(ctx context.Context, access *service.Access, workOrderId int64, files []*multipart.FileHeader) (*api.UploadResponse, error) {
	if m.MockUpload != nil {
		return m.MockUpload(ctx, access, workOrderId, files)
	}
	return &api.UploadResponse{Attachments: []api.AttachmentMetadata{}, Errors: []api.UploadError{}}, nil
}

func (m *MockAttachmentService) Delete(ctx context.Context, access *service.Access, workOrderId, attachmentId int64) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, access, workOrderId, attachmentId)
	}
	return nil
}

func (m *MockAttachmentService) Open(ctx context.Context, access *service.Access, workOrderId, attachmentId int64) (*domain.Attachment, io.ReadCloser, error) {
	if m.MockOpen != nil {
		return m.MockOpen(ctx, access, workOrderId, attachmentId)
	}
	return &domain.Attachment{}, io.NopCloser(strings.NewReader("")), nil
}

type MockNotificationService struct {
	MockActive      func(ctx context.Context, userId int64, today time.Time) ([]domain.Notification, error)
	MockSnooze      func(ctx context.Context, userId, notificationId int64, until time.Time) error
	MockAcknowledge func(ctx context.Context, userId int64, keys []string, today time.Time) (int, error)
}

func (m *MockNotificationService) Active(ctx context.Context, userId int64, today time.Time) ([]domain.Notification, error) {
	if m.MockActive != nil {
		return m.MockActive(ctx, userId, today)
	}
	return nil, nil
}

func (m *MockNotificationService) Snooze(ctx context.Context, userId, notificationId int64, until time.Time) error {
	if m.MockSnooze != nil {
		return m.MockSnooze(ctx, userId, notificationId, until)
	}
	return nil
}

func (m *MockNotificationService) Acknowledge(ctx context.Context, userId int64, keys []string, today time.Time) (int, error) {
	if m.MockAcknowledge != nil {
		return m.MockAcknowledge(ctx, userId, keys, today)
	}
	return 0, nil
}

type MockPinger struct {
	MockPing func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.MockPing != nil {
		return m.MockPing(ctx)
	}
	return nil
}

// --- Helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			JwtTTL:            24 * time.Hour,
			WorkOrdersPerPage: 10,
			Attachments: config.Attachments{
				MaxSizeBytes:    10 << 20,
				MaxRequestBytes: 20 << 20,
			},
		},
	}
}

// testDeps bundles one mock per dependency; tests overwrite the func fields
// they care about and build the handler from the rest.
type testDeps struct {
	auth          *MockAuthService
	authz         *MockAuthzService
	buildings     *MockBuildingService
	workOrders    *MockWorkOrderService
	attachments   *MockAttachmentService
	notifications *MockNotificationService
	health        *MockPinger
	cfg           *config.Config
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:          &MockAuthService{},
		authz:         &MockAuthzService{},
		buildings:     &MockBuildingService{},
		workOrders:    &MockWorkOrderService{},
		attachments:   &MockAttachmentService{},
		notifications: &MockNotificationService{},
		health:        &MockPinger{},
		cfg:           testConfig(),
	}
}

func (d *testDeps) handler() *Handler {
	return New(d.auth, d.authz, d.buildings, d.workOrders, d.attachments, d.notifications, d.health, d.cfg)
}

// asUser injects an authenticated user the way the auth middleware does.
func asUser(req *http.Request, user domain.User) *http.Request {
	ctx := context.WithValue(req.Context(), mw.UserClaimsKey, &user)
	return req.WithContext(ctx)
}

var (
	adminUser  = domain.User{Id: 1, Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", Admin: true}
	memberUser = domain.User{Id: 2, Email: "member@example.com", FirstName: "Mia", LastName: "Member"}
)

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
