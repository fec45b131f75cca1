package apiclient

import (
	"context"

	"github.com/jrsteele09/go-lms-client/catalog"
	"github.com/pkg/errors"
)

// Courses lists the whole catalog.
func (c *Client) Courses(ctx context.Context) ([]catalog.Course, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/courses/getall")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Courses] get")
	}
	if err := checkStatus(resp, "Client.Courses"); err != nil {
		return nil, err
	}
	courses, err := decodeList[catalog.Course](resp.Body(), "courses")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Courses] decode")
	}
	return courses, nil
}

// Course fetches one course by ID.
func (c *Client) Course(ctx context.Context, id string) (*catalog.Course, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/courses/get/" + id)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Course] get")
	}
	if err := checkStatus(resp, "Client.Course"); err != nil {
		return nil, err
	}
	course, err := decodeObject[catalog.Course](resp.Body(), "course")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Course] decode")
	}
	return course, nil
}

// CreateCourse creates a course (instructor side).
func (c *Client) CreateCourse(ctx context.Context, course catalog.Course) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(course).Post("/courses/create")
	if err != nil {
		return errors.Wrap(err, "[Client.CreateCourse] post")
	}
	return checkStatus(resp, "Client.CreateCourse")
}

// UpdateCourse replaces a course's editable fields.
func (c *Client) UpdateCourse(ctx context.Context, id string, course catalog.Course) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(course).Put("/courses/update/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.UpdateCourse] put")
	}
	return checkStatus(resp, "Client.UpdateCourse")
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete("/courses/delete/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.DeleteCourse] delete")
	}
	return checkStatus(resp, "Client.DeleteCourse")
}
