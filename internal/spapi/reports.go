package spapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/sethvargo/go-retry"
)

// ReportTypeMerchantListings is the all-listings flat file report.
const ReportTypeMerchantListings = "GET_MERCHANT_LISTINGS_ALL_DATA"

const (
	reportStatusDone      = "DONE"
	reportStatusCancelled = "CANCELLED"
	reportStatusFatal     = "FATAL"
)

// ReportFailReason classifies why a report run produced no data.
type ReportFailReason string

const (
	ReportCancelled ReportFailReason = "cancelled"
	ReportFatal     ReportFailReason = "fatal"
	ReportTimedOut  ReportFailReason = "timed-out"
	ReportMalformed ReportFailReason = "malformed"
)

// ReportError is a terminal report-pipeline failure. The pipeline never
// caches anything when it returns one.
type ReportError struct {
	Reason   ReportFailReason
	ReportID string
	cause    error
}

func (e *ReportError) Error() string {
	msg := fmt.Sprintf("listings report %s: %s", e.ReportID, e.Reason)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ReportError) Unwrap() error { return e.cause }

// ReportOptions tune the polling loop and download.
type ReportOptions struct {
	PollInterval    time.Duration
	MaxWait         time.Duration
	DownloadTimeout time.Duration
}

type createReportResponse struct {
	ReportID string `json:"reportId"`
}

type reportStatusResponse struct {
	ReportID         string `json:"reportId"`
	ProcessingStatus string `json:"processingStatus"`
	ReportDocumentID string `json:"reportDocumentId"`
}

type reportDocumentResponse struct {
	ReportDocumentID     string `json:"reportDocumentId"`
	URL                  string `json:"url"`
	CompressionAlgorithm string `json:"compressionAlgorithm"`
}

// FetchListingsReport runs the full pipeline: create the report, poll until
// the marketplace finishes it, download the document, and parse the TSV.
// Every terminal failure surfaces as a ReportError wrapped in an upstream
// error; partial progress is never returned.
func (c *Client) FetchListingsReport(ctx context.Context, opts ReportOptions) ([]ListingRow, error) {
	reportID, err := c.createReport(ctx, ReportTypeMerchantListings)
	if err != nil {
		return nil, err
	}

	documentID, err := c.awaitReport(ctx, reportID, opts)
	if err != nil {
		return nil, err
	}

	raw, err := c.downloadReportDocument(ctx, documentID, opts.DownloadTimeout)
	if err != nil {
		return nil, err
	}

	rows, err := parseListingsTSV(raw)
	if err != nil {
		reportErr := &ReportError{Reason: ReportMalformed, ReportID: reportID, cause: err}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, reportErr, "listings report unusable")
	}
	return rows, nil
}

func (c *Client) createReport(ctx context.Context, reportType string) (string, error) {
	body := map[string]any{
		"reportType":     reportType,
		"marketplaceIds": []string{c.marketplaceID},
	}
	var created createReportResponse
	if err := c.postJSON(ctx, "report_create", "/reports/2021-06-30/reports", body, &created); err != nil {
		return "", err
	}
	if created.ReportID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "report creation returned no id")
	}
	return created.ReportID, nil
}

func (c *Client) awaitReport(ctx context.Context, reportID string, opts ReportOptions) (string, error) {
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = 5 * time.Minute
	}

	deadline := time.Now().Add(maxWait)
	for {
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return "", err
		}

		var status reportStatusResponse
		if err := c.getJSON(ctx, "report_status", "/reports/2021-06-30/reports/"+url.PathEscape(reportID), nil, &status); err != nil {
			return "", err
		}

		switch status.ProcessingStatus {
		case reportStatusDone:
			if status.ReportDocumentID == "" {
				return "", pkgerrors.New(pkgerrors.CodeUpstream, "finished report has no document id")
			}
			return status.ReportDocumentID, nil
		case reportStatusCancelled:
			return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, &ReportError{Reason: ReportCancelled, ReportID: reportID}, "listings report cancelled")
		case reportStatusFatal:
			return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, &ReportError{Reason: ReportFatal, ReportID: reportID}, "listings report failed")
		}

		if time.Now().After(deadline) {
			return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, &ReportError{Reason: ReportTimedOut, ReportID: reportID}, "listings report timed out")
		}
	}
}

func (c *Client) downloadReportDocument(ctx context.Context, documentID string, timeout time.Duration) ([]byte, error) {
	var document reportDocumentResponse
	if err := c.getJSON(ctx, "report_document", "/reports/2021-06-30/documents/"+url.PathEscape(documentID), nil, &document); err != nil {
		return nil, err
	}
	if document.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "report document has no download url")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var raw []byte
	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		downloadCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		body, err := c.download(downloadCtx, document.URL)
		if err != nil {
			return retry.RetryableError(err)
		}
		raw = body
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "report download failed")
	}
	return decompressReport(raw)
}

// The document URL is pre-signed; the access token must not be sent.
func (c *Client) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document host returned %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// decompressReport gunzips when the payload carries the gzip magic bytes.
// The declared compressionAlgorithm is unreliable, so the bytes decide.
func decompressReport(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}
	reader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "report gzip corrupt")
	}
	defer reader.Close()
	return io.ReadAll(io.LimitReader(reader, maxResponseBytes))
}

// parseListingsTSV parses the tab-separated listings flat file. The header
// must expose a SKU column (seller-sku or sku) and an ASIN column (asin1 or
// asin) or the whole document is rejected.
func parseListingsTSV(raw []byte) ([]ListingRow, error) {
	text := strings.TrimPrefix(string(raw), "\uFEFF")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty report document")
	}

	header := strings.Split(lines[0], "\t")
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	skuCol, ok := firstColumn(index, "seller-sku", "sku")
	if !ok {
		return nil, fmt.Errorf("report header missing sku column")
	}
	asinCol, ok := firstColumn(index, "asin1", "asin")
	if !ok {
		return nil, fmt.Errorf("report header missing asin column")
	}
	nameCol, _ := firstColumn(index, "item-name")
	priceCol, _ := firstColumn(index, "price")
	qtyCol, _ := firstColumn(index, "quantity")
	statusCol, _ := firstColumn(index, "status")
	openCol, _ := firstColumn(index, "open-date")

	rows := make([]ListingRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		sku := fieldAt(fields, skuCol)
		if sku == "" {
			continue
		}
		row := ListingRow{
			SellerSKU: sku,
			ASIN:      fieldAt(fields, asinCol),
			ItemName:  fieldAt(fields, nameCol),
			Price:     fieldAt(fields, priceCol),
			Status:    fieldAt(fields, statusCol),
			OpenDate:  fieldAt(fields, openCol),
		}
		if qty := fieldAt(fields, qtyCol); qty != "" {
			if parsed, err := strconv.Atoi(qty); err == nil {
				row.Quantity = parsed
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func firstColumn(index map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if col, ok := index[name]; ok {
			return col, true
		}
	}
	return -1, false
}

func fieldAt(fields []string, col int) string {
	if col < 0 || col >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[col])
}
