package apiclient

import (
	"context"

	"github.com/jrsteele09/go-lms-client/catalog"
	"github.com/pkg/errors"
)

var _ catalog.Fetcher = (*Client)(nil)

// ModulesByCourse fetches a course's modules, unsorted; ordering is the tree
// loader's job.
func (c *Client) ModulesByCourse(ctx context.Context, courseID string) ([]catalog.Module, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/modules/course/" + courseID)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ModulesByCourse] get")
	}
	if err := checkStatus(resp, "Client.ModulesByCourse"); err != nil {
		return nil, err
	}
	modules, err := decodeList[catalog.Module](resp.Body(), "modules")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ModulesByCourse] decode")
	}
	return modules, nil
}

// LessonsByModule fetches a module's lessons.
func (c *Client) LessonsByModule(ctx context.Context, moduleID string) ([]catalog.Lesson, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/lessons/module/" + moduleID)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.LessonsByModule] get")
	}
	if err := checkStatus(resp, "Client.LessonsByModule"); err != nil {
		return nil, err
	}
	lessons, err := decodeList[catalog.Lesson](resp.Body(), "lessons")
	if err != nil {
		return nil, errors.Wrap(err, "[Client.LessonsByModule] decode")
	}
	return lessons, nil
}

// CreateModule creates a module within a course.
func (c *Client) CreateModule(ctx context.Context, module catalog.Module) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(module).Post("/modules/create")
	if err != nil {
		return errors.Wrap(err, "[Client.CreateModule] post")
	}
	return checkStatus(resp, "Client.CreateModule")
}

// UpdateModule replaces a module's editable fields.
func (c *Client) UpdateModule(ctx context.Context, id string, module catalog.Module) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(module).Put("/modules/update/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.UpdateModule] put")
	}
	return checkStatus(resp, "Client.UpdateModule")
}

// DeleteModule removes a module.
func (c *Client) DeleteModule(ctx context.Context, id string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete("/modules/delete/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.DeleteModule] delete")
	}
	return checkStatus(resp, "Client.DeleteModule")
}

// CreateLesson creates a lesson within a module.
func (c *Client) CreateLesson(ctx context.Context, lesson catalog.Lesson) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(lesson).Post("/lessons/create")
	if err != nil {
		return errors.Wrap(err, "[Client.CreateLesson] post")
	}
	return checkStatus(resp, "Client.CreateLesson")
}

// UpdateLesson replaces a lesson's editable fields.
func (c *Client) UpdateLesson(ctx context.Context, id string, lesson catalog.Lesson) error {
	resp, err := c.rest.R().SetContext(ctx).SetBody(lesson).Put("/lessons/update/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.UpdateLesson] put")
	}
	return checkStatus(resp, "Client.UpdateLesson")
}

// DeleteLesson removes a lesson.
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete("/lessons/delete/" + id)
	if err != nil {
		return errors.Wrap(err, "[Client.DeleteLesson] delete")
	}
	return checkStatus(resp, "Client.DeleteLesson")
}
