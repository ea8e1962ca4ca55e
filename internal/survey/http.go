package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/surveyforge/surveyforge/internal/table"
)

// rangeOfValuesSentinel is the codebook description the source uses for
// continuous variables. Its presence means the variable has no discrete
// code set and must never be label-translated.
const rangeOfValuesSentinel = "range of values"

// HTTPClient fetches cycle tables and codebooks from the survey mirror as
// JSON table documents. It implements Source and CodebookSource.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient returns a client rooted at baseURL. A nil logger discards.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// tableDoc is the wire form of one cycle table.
type tableDoc struct {
	Columns []struct {
		Name   string   `json:"name"`
		Labels []string `json:"labels,omitempty"`
	} `json:"columns"`
	Rows [][]any `json:"rows"`
}

// codebookDoc is the wire form of one cycle codebook.
type codebookDoc map[string][]struct {
	Code        float64 `json:"code"`
	Description string  `json:"description"`
}

// FetchTable implements Source.
func (c *HTTPClient) FetchTable(ctx context.Context, cycleCode, family string) (*table.Table, error) {
	u := fmt.Sprintf("%s/%s/%s.json", c.baseURL, url.PathEscape(cycleCode), url.PathEscape(strings.ToUpper(family)))

	var doc tableDoc
	if err := c.getJSON(ctx, u, &doc); err != nil {
		return nil, err
	}

	t, err := decodeTableDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", cycleCode, family, err)
	}
	c.logger.Debug("fetched cycle table", "cycle", cycleCode, "family", family, "rows", t.NumRows(), "columns", t.NumColumns())
	return t, nil
}

// Translations implements CodebookSource.
func (c *HTTPClient) Translations(ctx context.Context, cycleCode, family string) (TranslationTable, error) {
	u := fmt.Sprintf("%s/%s/%s_codebook.json", c.baseURL, url.PathEscape(cycleCode), url.PathEscape(strings.ToUpper(family)))

	var doc codebookDoc
	if err := c.getJSON(ctx, u, &doc); err != nil {
		return nil, err
	}

	tt := make(TranslationTable, len(doc))
	for variable, entries := range doc {
		entry := TranslationEntry{Mapping: make(map[float64]string)}
		for _, e := range entries {
			if strings.EqualFold(strings.TrimSpace(e.Description), rangeOfValuesSentinel) {
				entry.Continuous = true
				continue
			}
			entry.Mapping[e.Code] = e.Description
		}
		tt[strings.ToLower(variable)] = entry
	}
	return tt, nil
}

// getJSON performs one GET and decodes the body, classifying failures into
// the error taxonomy: 404 is ErrAbsent, network errors and 5xx/429 are
// transient, everything else is terminal.
func (c *HTTPClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransientError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", u, ErrAbsent)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &TransientError{Op: "fetch", Err: fmt.Errorf("%s: status %d", u, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: unexpected status %d", u, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// decodeTableDoc converts the wire document into a typed table. Columns with
// a declared label set become categorical; the rest get their representation
// inferred from the observed values.
func decodeTableDoc(doc *tableDoc) (*table.Table, error) {
	t := table.New()
	for ci, col := range doc.Columns {
		cells := make([]any, 0, len(doc.Rows))
		for ri, row := range doc.Rows {
			if len(row) != len(doc.Columns) {
				return nil, fmt.Errorf("row %d has %d cells, want %d", ri, len(row), len(doc.Columns))
			}
			cells = append(cells, row[ci])
		}

		var tc *table.Column
		var err error
		if len(col.Labels) > 0 {
			tc, err = decodeCategorical(col.Name, col.Labels, cells)
		} else {
			tc, err = decodeInferred(col.Name, cells)
		}
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		if err := t.AddColumn(tc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeCategorical(name string, labels []string, cells []any) (*table.Column, error) {
	index := make(map[string]int64, len(labels))
	for i, l := range labels {
		index[l] = int64(i)
	}

	vals := make([]table.Value, len(cells))
	for i, cell := range cells {
		switch v := cell.(type) {
		case nil:
			vals[i] = table.MissingValue
		case string:
			idx, ok := index[v]
			if !ok {
				return nil, fmt.Errorf("value %q not in declared label set", v)
			}
			vals[i] = table.IntValue(idx)
		default:
			return nil, fmt.Errorf("labeled column carries non-string value %v", v)
		}
	}
	return &table.Column{Name: name, Rep: table.Categorical(labels...), Values: vals}, nil
}

// decodeInferred picks the representation from the observed values: all
// nulls is all-missing, all numbers is numeric (int precision when every
// value is integral), anything stringy is text.
func decodeInferred(name string, cells []any) (*table.Column, error) {
	allMissing := true
	allNumeric := true
	allIntegral := true
	for _, cell := range cells {
		switch v := cell.(type) {
		case nil:
			continue
		case float64:
			allMissing = false
			if v != math.Trunc(v) || math.Abs(v) >= math.MaxInt64 {
				allIntegral = false
			}
		case string:
			allMissing = false
			allNumeric = false
		case bool:
			return nil, fmt.Errorf("unsupported boolean value")
		default:
			return nil, fmt.Errorf("unsupported value %v", v)
		}
	}

	vals := make([]table.Value, len(cells))
	var rep table.Representation
	switch {
	case allMissing:
		rep = table.AllMissing()
		for i := range vals {
			vals[i] = table.MissingValue
		}
	case allNumeric && allIntegral:
		rep = table.Numeric(table.PrecisionInt)
		for i, cell := range cells {
			if cell == nil {
				vals[i] = table.MissingValue
				continue
			}
			vals[i] = table.IntValue(int64(cell.(float64)))
		}
	case allNumeric:
		rep = table.Numeric(table.PrecisionFloat)
		for i, cell := range cells {
			if cell == nil {
				vals[i] = table.MissingValue
				continue
			}
			vals[i] = table.FloatValue(cell.(float64))
		}
	default:
		rep = table.Text()
		for i, cell := range cells {
			switch v := cell.(type) {
			case nil:
				vals[i] = table.MissingValue
			case string:
				vals[i] = table.StrValue(v)
			case float64:
				vals[i] = table.StrValue(table.FormatFloat(v))
			}
		}
	}
	return &table.Column{Name: name, Rep: rep, Values: vals}, nil
}
