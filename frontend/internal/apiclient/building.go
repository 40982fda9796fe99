package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// === Building methods ===

func (c *APIClient) GetBuildings(r *http.Request) ([]api.BuildingResponse, error) {
	var response api.BuildingListResponse
	resp, err := c.do("GET", "/v1/buildings", nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode buildings response: %w", err)
	}
	return response.Buildings, nil
}

func (c *APIClient) GetBuilding(r *http.Request, buildingId int64) (*api.BuildingResponse, error) {
	var building api.BuildingResponse
	path := fmt.Sprintf("/v1/buildings/%d", buildingId)

	resp, err := c.do("GET", path, nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message: fmt.Sprintf("building %d not found", buildingId), StatusCode: http.StatusNotFound,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &building); err != nil {
		return nil, fmt.Errorf("cannot decode building response: %w", err)
	}
	return &building, nil
}

// GetBuildingChoices returns the lightweight list used by form dropdowns.
func (c *APIClient) GetBuildingChoices(r *http.Request) ([]api.BuildingSummary, error) {
	var response api.BuildingChoicesResponse
	resp, err := c.do("GET", "/v1/buildings/choices", nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode building choices response: %w", err)
	}
	return response.Buildings, nil
}

func (c *APIClient) CreateBuilding(r *http.Request, data api.CreateBuildingRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal building data: %w", err)
	}

	resp, err := c.do("POST", "/v1/buildings", bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return responseError("create building", resp)
	}
	return nil
}

func (c *APIClient) UpdateBuilding(r *http.Request, buildingId int64, data api.UpdateBuildingRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal building data: %w", err)
	}

	path := fmt.Sprintf("/v1/buildings/%d", buildingId)
	resp, err := c.do("PUT", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("update building", resp)
	}
	return nil
}

func (c *APIClient) DeleteBuilding(r *http.Request, buildingId int64) error {
	path := fmt.Sprintf("/v1/buildings/%d", buildingId)
	resp, err := c.do("DELETE", path, nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("delete building", resp)
	}
	return nil
}

// === Unit methods ===

func (c *APIClient) GetUnits(r *http.Request, buildingId int64) ([]api.UnitResponse, error) {
	var response api.UnitListResponse
	path := fmt.Sprintf("/v1/buildings/%d/units", buildingId)

	resp, err := c.do("GET", path, nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode units response: %w", err)
	}
	return response.Units, nil
}

// GetUnitChoices returns unit summaries for form dropdowns; buildingId 0
// means all visible buildings.
func (c *APIClient) GetUnitChoices(r *http.Request, buildingId int64) ([]api.UnitSummary, error) {
	var response api.UnitChoicesResponse
	path := "/v1/units"
	if buildingId > 0 {
		path = fmt.Sprintf("%s?building=%d", path, buildingId)
	}

	resp, err := c.do("GET", path, nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode unit choices response: %w", err)
	}
	return response.Units, nil
}

func (c *APIClient) CreateUnit(r *http.Request, buildingId int64, data api.CreateUnitRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal unit data: %w", err)
	}

	path := fmt.Sprintf("/v1/buildings/%d/units", buildingId)
	resp, err := c.do("POST", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return responseError("create unit", resp)
	}
	return nil
}

func (c *APIClient) UpdateUnit(r *http.Request, unitId int64, data api.UpdateUnitRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal unit data: %w", err)
	}

	path := fmt.Sprintf("/v1/units/%d", unitId)
	resp, err := c.do("PUT", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("update unit", resp)
	}
	return nil
}

func (c *APIClient) DeleteUnit(r *http.Request, unitId int64) error {
	path := fmt.Sprintf("/v1/units/%d", unitId)
	resp, err := c.do("DELETE", path, nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("delete unit", resp)
	}
	return nil
}

// === Tenant methods ===

func (c *APIClient) SetTenant(r *http.Request, unitId int64, data api.SetTenantRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant data: %w", err)
	}

	path := fmt.Sprintf("/v1/units/%d/tenant", unitId)
	resp, err := c.do("PUT", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("assign tenant", resp)
	}
	return nil
}

func (c *APIClient) RemoveTenant(r *http.Request, unitId int64) error {
	path := fmt.Sprintf("/v1/units/%d/tenant", unitId)
	resp, err := c.do("DELETE", path, nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("remove tenant", resp)
	}
	return nil
}
