// Package sheets stores the legacy music line-up in a Google spreadsheet.
//
// Rows have no identity other than their position. Deleting row i shifts
// every later row up by one, and nothing here serialises concurrent writers:
// a caller that deletes and then updates by index without re-listing will
// mutate whichever row moved into that slot.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/metrics"
	"github.com/yourusername/ministry-site/internal/models"
)

var (
	// ErrInvalidRow is returned for rows of the wrong width or negative indices.
	ErrInvalidRow = errors.New("invalid row")
	// ErrRowNotFound is returned when an index is past the last data row.
	ErrRowNotFound = errors.New("row not found")
	// ErrNotConfigured marks an adapter built without a spreadsheet or credential.
	ErrNotConfigured = errors.New("spreadsheet not configured")
)

const fallbackNotice = "Spreadsheet unavailable; running in fallback mode. Changes were not saved."

// Result describes the outcome of a write. Fallback is set when the write was
// acknowledged without reaching the spreadsheet.
type Result struct {
	Success  bool   `json:"success"`
	Fallback bool   `json:"fallback,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ValuesAPI is the slice of the Sheets API the adapter needs. Ranges use A1
// notation; index is the zero-based grid row.
type ValuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Append(ctx context.Context, rng string, rows [][]any) error
	Update(ctx context.Context, rng string, rows [][]any) error
	DeleteRow(ctx context.Context, sheetID int64, index int64) error
}

type Config struct {
	SpreadsheetID   string
	SheetName       string
	SheetID         int64
	CredentialsJSON string
	CredentialsFile string
}

type Adapter struct {
	api       ValuesAPI
	sheetName string
	sheetID   int64
	// reason is set when api is nil and every call degrades.
	reason  error
	log     zerolog.Logger
	metrics metrics.Recorder
}

// New connects to the Sheets API. A missing or unusable credential does not
// fail construction; the adapter starts in fallback mode instead.
func New(ctx context.Context, cfg Config) *Adapter {
	a := &Adapter{sheetName: cfg.SheetName, sheetID: cfg.SheetID, log: logging.For("sheets"), metrics: metrics.Noop{}}

	creds := []byte(cfg.CredentialsJSON)
	if len(creds) == 0 && cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			a.reason = fmt.Errorf("%w: reading credentials: %v", ErrNotConfigured, err)
			a.log.Warn().Err(a.reason).Msg("Spreadsheet adapter in fallback mode")
			return a
		}
		creds = b
	}
	if cfg.SpreadsheetID == "" || len(creds) == 0 {
		a.reason = ErrNotConfigured
		a.log.Warn().Msg("Spreadsheet credentials not provided, running in fallback mode")
		return a
	}

	srv, err := gsheets.NewService(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		a.reason = fmt.Errorf("%w: %v", ErrNotConfigured, err)
		a.log.Warn().Err(err).Msg("Spreadsheet adapter in fallback mode")
		return a
	}
	a.api = &googleValues{srv: srv, spreadsheetID: cfg.SpreadsheetID}
	a.log.Info().Str("sheet", cfg.SheetName).Msg("Spreadsheet adapter initialized")
	return a
}

// NewWithAPI builds an adapter over an existing ValuesAPI.
func NewWithAPI(api ValuesAPI, sheetName string, sheetID int64) *Adapter {
	return &Adapter{api: api, sheetName: sheetName, sheetID: sheetID, log: logging.For("sheets"), metrics: metrics.Noop{}}
}

// SetRecorder counts fallback responses on r.
func (a *Adapter) SetRecorder(r metrics.Recorder) {
	a.metrics = r
}

// Degraded reports whether the adapter has no usable spreadsheet at all.
func (a *Adapter) Degraded() bool {
	return a.api == nil
}

func (a *Adapter) dataRange() string {
	return fmt.Sprintf("%s!A2:G", a.sheetName)
}

// rowRange addresses the row at zero-based data index i. The header occupies
// sheet row 1, so data index i is sheet row i+2.
func (a *Adapter) rowRange(i int) string {
	return fmt.Sprintf("%s!A%d:G%d", a.sheetName, i+2, i+2)
}

// ListRows returns every data row normalised to seven cells. In fallback mode
// the list is empty and the Result carries the notice.
func (a *Adapter) ListRows(ctx context.Context) ([]models.MusicRow, Result, error) {
	if a.api == nil {
		return []models.MusicRow{}, a.degrade("list", a.reason), nil
	}

	values, err := a.api.Get(ctx, a.dataRange())
	if err != nil {
		if IsFallbackEligible(err) {
			return []models.MusicRow{}, a.degrade("list", err), nil
		}
		return nil, Result{}, fmt.Errorf("error reading spreadsheet: %w", err)
	}

	rows := make([]models.MusicRow, 0, len(values))
	for _, raw := range values {
		row := make(models.MusicRow, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row.Normalize())
	}
	return rows, Result{Success: true}, nil
}

// AppendRow adds row after the last data row.
func (a *Adapter) AppendRow(ctx context.Context, row models.MusicRow) (Result, error) {
	if err := row.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}
	return a.write("append", func(api ValuesAPI) error {
		return api.Append(ctx, a.dataRange(), toValues(row))
	})
}

// UpdateRow overwrites the row currently at index.
func (a *Adapter) UpdateRow(ctx context.Context, index int, row models.MusicRow) (Result, error) {
	if index < 0 {
		return Result{}, fmt.Errorf("%w: negative row index %d", ErrInvalidRow, index)
	}
	if err := row.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}
	return a.write("update", func(api ValuesAPI) error {
		if err := a.requireRow(ctx, api, index); err != nil {
			return err
		}
		return api.Update(ctx, a.rowRange(index), toValues(row))
	})
}

// DeleteRow removes the row at index; later rows move up by one.
func (a *Adapter) DeleteRow(ctx context.Context, index int) (Result, error) {
	if index < 0 {
		return Result{}, fmt.Errorf("%w: negative row index %d", ErrInvalidRow, index)
	}
	return a.write("delete", func(api ValuesAPI) error {
		if err := a.requireRow(ctx, api, index); err != nil {
			return err
		}
		return api.DeleteRow(ctx, a.sheetID, int64(index)+1)
	})
}

// requireRow fails with ErrRowNotFound unless a data row exists at index.
// The check and the following write are not atomic.
func (a *Adapter) requireRow(ctx context.Context, api ValuesAPI, index int) error {
	values, err := api.Get(ctx, a.dataRange())
	if err != nil {
		return err
	}
	if index >= len(values) {
		return fmt.Errorf("%w: index %d, %d rows", ErrRowNotFound, index, len(values))
	}
	return nil
}

func (a *Adapter) write(op string, call func(ValuesAPI) error) (Result, error) {
	if a.api == nil {
		return a.degrade(op, a.reason), nil
	}
	if err := call(a.api); err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return Result{}, err
		}
		if IsFallbackEligible(err) {
			return a.degrade(op, err), nil
		}
		return Result{}, fmt.Errorf("error on spreadsheet %s: %w", op, err)
	}
	return Result{Success: true}, nil
}

func (a *Adapter) degrade(op string, cause error) Result {
	a.log.Warn().Err(cause).Str("op", op).Msg("Spreadsheet call degraded to fallback mode")
	a.metrics.IncSheetFallbacks(op)
	return Result{Success: true, Fallback: true, Message: fallbackNotice}
}

func toValues(row models.MusicRow) [][]any {
	cells := make([]any, len(row))
	for i, c := range row {
		cells[i] = c
	}
	return [][]any{cells}
}

// googleValues adapts *sheets.Service to ValuesAPI.
type googleValues struct {
	srv           *gsheets.Service
	spreadsheetID string
}

func (g *googleValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.srv.Spreadsheets.Values.Append(g.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.srv.Spreadsheets.Values.Update(g.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) DeleteRow(ctx context.Context, sheetID int64, index int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: index,
					EndIndex:   index + 1,
				},
			},
		}},
	}
	_, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}
