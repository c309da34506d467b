package api

import (
	"context"
	"fmt"
	"net/url"
)

// Performances lists all performances.
func (c *Client) Performances(ctx context.Context) ([]Performance, error) {
	var out []Performance
	err := c.get(ctx, "/performances", "", &out)
	return out, err
}

// Performance fetches one performance by ID.
func (c *Client) Performance(ctx context.Context, id int64) (Performance, error) {
	var out Performance
	err := c.get(ctx, fmt.Sprintf("/performances/%d", id), "", &out)
	return out, err
}

// Schedules lists the schedules of a performance.
func (c *Client) Schedules(ctx context.Context, performanceID int64) ([]Schedule, error) {
	var out []Schedule
	err := c.get(ctx, fmt.Sprintf("/performances/%d/schedules", performanceID), "", &out)
	return out, err
}

// SearchPerformances searches performances by title.
func (c *Client) SearchPerformances(ctx context.Context, query string) ([]Performance, error) {
	var out []Performance
	err := c.get(ctx, "/performances/search?q="+url.QueryEscape(query), "", &out)
	return out, err
}

// Sections lists the priced sections of a schedule.
func (c *Client) Sections(ctx context.Context, scheduleID int64) ([]Section, error) {
	var out []Section
	err := c.get(ctx, fmt.Sprintf("/schedules/%d/sections", scheduleID), "", &out)
	return out, err
}

// Seats lists the seats of one section, including sold state.
func (c *Client) Seats(ctx context.Context, scheduleID, sectionID int64) ([]Seat, error) {
	var out []Seat
	err := c.get(ctx, fmt.Sprintf("/schedules/%d/sections/%d/seats", scheduleID, sectionID), "", &out)
	return out, err
}
