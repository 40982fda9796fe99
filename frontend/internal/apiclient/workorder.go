package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mecho90/BuildingManagement/shared/api"
	internal_errors "github.com/Mecho90/BuildingManagement/shared/errors"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// GetWorkOrders fetches one page of work orders. query carries the list
// filters (q, status, owner, building, archived, page) already narrowed by
// the list handler.
func (c *APIClient) GetWorkOrders(r *http.Request, query url.Values) (*api.WorkOrderListResponse, error) {
	var response api.WorkOrderListResponse
	path := "/v1/work-orders"
	if encoded := query.Encode(); encoded != "" {
		path = path + "?" + encoded
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
		return nil, fmt.Errorf("cannot decode work orders response: %w", err)
	}
	return &response, nil
}

func (c *APIClient) GetWorkOrder(r *http.Request, workOrderId int64) (*api.WorkOrderResponse, error) {
	var order api.WorkOrderResponse
	path := fmt.Sprintf("/v1/work-orders/%d", workOrderId)

	resp, err := c.do("GET", path, nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message: fmt.Sprintf("work order %d not found", workOrderId), StatusCode: http.StatusNotFound,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &order); err != nil {
		return nil, fmt.Errorf("cannot decode work order response: %w", err)
	}
	return &order, nil
}

// GetOwnerChoices returns the owner filter dropdown entries.
func (c *APIClient) GetOwnerChoices(r *http.Request) ([]api.OwnerChoice, error) {
	var response api.OwnerChoicesResponse
	resp, err := c.do("GET", "/v1/work-orders/owners", nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode owner choices response: %w", err)
	}
	return response.Owners, nil
}

// CreateWorkOrder returns the new order's id so the handler can redirect to
// its detail page.
func (c *APIClient) CreateWorkOrder(r *http.Request, data api.CreateWorkOrderRequest) (int64, error) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal work order data: %w", err)
	}

	resp, err := c.do("POST", "/v1/work-orders", bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, responseError("create work order", resp)
	}

	var created struct {
		Id int64 `json:"id"`
	}
	if err := utils.Decode(resp.Body, &created); err != nil {
		return 0, fmt.Errorf("cannot decode create response: %w", err)
	}
	return created.Id, nil
}

func (c *APIClient) UpdateWorkOrder(r *http.Request, workOrderId int64, data api.UpdateWorkOrderRequest) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal work order data: %w", err)
	}

	path := fmt.Sprintf("/v1/work-orders/%d", workOrderId)
	resp, err := c.do("PUT", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("update work order", resp)
	}
	return nil
}

func (c *APIClient) DeleteWorkOrder(r *http.Request, workOrderId int64) error {
	path := fmt.Sprintf("/v1/work-orders/%d", workOrderId)
	resp, err := c.do("DELETE", path, nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("delete work order", resp)
	}
	return nil
}

func (c *APIClient) ArchiveWorkOrder(r *http.Request, workOrderId int64) error {
	path := fmt.Sprintf("/v1/work-orders/%d/archive", workOrderId)
	resp, err := c.do("POST", path, nil, r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("archive work order", resp)
	}
	return nil
}

func (c *APIClient) MassAssignWorkOrders(r *http.Request, data api.MassAssignRequest) (*api.MassAssignResponse, error) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mass assign data: %w", err)
	}

	resp, err := c.do("POST", "/v1/work-orders/mass-assign", bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError("mass assign work orders", resp)
	}

	var result api.MassAssignResponse
	if err := utils.Decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("cannot decode mass assign response: %w", err)
	}
	return &result, nil
}
