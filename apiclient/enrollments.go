package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-lms-client/progress"
	"github.com/pkg/errors"
)

var _ progress.EnrollmentAPI = (*Client)(nil)

type enrollmentResponse struct {
	Success    bool                 `json:"success"`
	Enrollment *progress.Enrollment `json:"enrollment"`
}

// progressUpdate is the PATCH body for a progress save.
type progressUpdate struct {
	Progress int `json:"progress" validate:"min=0,max=100"`
}

// EnrollmentByID fetches one enrollment. An ID the server does not know
// yields (nil, nil); the caller's fallback chain decides what that means.
func (c *Client) EnrollmentByID(ctx context.Context, id string) (*progress.Enrollment, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/enrollments/get/" + id)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.EnrollmentByID] get")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp, "Client.EnrollmentByID"); err != nil {
		return nil, err
	}

	var body enrollmentResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "[Client.EnrollmentByID] unmarshal")
	}
	if !body.Success || body.Enrollment == nil {
		return nil, nil
	}
	return body.Enrollment, nil
}

// EnrollmentsByUser fetches all of a viewer's enrollments.
func (c *Client) EnrollmentsByUser(ctx context.Context, userID string) ([]progress.Enrollment, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/enrollments/user/" + userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.EnrollmentsByUser] get")
	}
	if err := checkStatus(resp, "Client.EnrollmentsByUser"); err != nil {
		return nil, err
	}
	enrollments, err := decodeList[progress.Enrollment](resp.Body(), "enrollments")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.EnrollmentsByUser] decode")
	}
	return enrollments, nil
}

// SaveProgress PATCHes an absolute completion percentage onto an enrollment.
func (c *Client) SaveProgress(ctx context.Context, enrollmentID string, percent int) error {
	update := progressUpdate{Progress: percent}
	if err := c.validate.Struct(update); err != nil {
		return errors.Wrap(err, "[Client.SaveProgress] validate")
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(update).
		Patch("/enrollments/progress/" + enrollmentID)
	if err != nil {
		return errors.Wrap(err, "[Client.SaveProgress] patch")
	}
	return checkStatus(resp, "Client.SaveProgress")
}
