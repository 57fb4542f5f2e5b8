// Package sheets exports report tables to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/dmitrijs2005/carshow/internal/common"
)

const (
	SheetRegistrations = "Registrations"
	SheetSponsors      = "Sponsors"
	SheetSummary       = "Summary"
)

// Exporter replaces the contents of a named tab with rows.
type Exporter interface {
	ReplaceSheet(ctx context.Context, sheet string, rows [][]any) error
	SpreadsheetID() string
}

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// New authenticates with a service account key file. Extra options are
// appended after the credentials.
func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	opts = append([]option.ClientOption{
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	}, opts...)
	return newWithOptions(ctx, spreadsheetID, opts...)
}

func newWithOptions(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// ReplaceSheet clears columns A:Z of the tab and writes rows from A1.
// The tab must already exist.
func (c *Client) ReplaceSheet(ctx context.Context, sheet string, rows [][]any) error {
	_, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, sheet+"!A:Z", &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil
	}

	vr := &sheetsv4.ValueRange{Values: rows}
	_, err = c.srv.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	return nil
}

// Disabled is used when no spreadsheet is configured.
type Disabled struct{}

func (Disabled) ReplaceSheet(context.Context, string, [][]any) error {
	return fmt.Errorf("sheets: %w", common.ErrNotConfigured)
}

func (Disabled) SpreadsheetID() string { return "" }
