package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"pnr-tracker/internal/config"
	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/domain/ports/adapter"
	"pnr-tracker/internal/infra/logging"
)

// Compile-time check
var _ adapter.StatusFetcher = (*RailYatriScraper)(nil)

const maxBodyBytes = 4 << 20

var spaces = regexp.MustCompile(`\s+`)

// RailYatriScraper reads the public PNR status page of railyatri.in.
type RailYatriScraper struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *zerolog.Logger
}

func NewRailYatriScraper(cfg config.ScraperConfig, logger *zerolog.Logger) *RailYatriScraper {
	compLog := logger.With().Str("component", "RailYatriScraper").Logger()
	return &RailYatriScraper{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       &compLog,
	}
}

func (s *RailYatriScraper) FetchStatus(ctx context.Context, pnr model.PNR) (*model.StatusReport, error) {
	defer logging.TraceDuration(s.log, "RailYatriScraper.FetchStatus")()

	url := fmt.Sprintf("%s/%s", s.baseURL, pnr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchNetwork, "failed to build request", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewFetchError(domain.FetchNetwork, "status site timed out", err)
		}
		return nil, domain.NewFetchError(domain.FetchNetwork, "status site unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, domain.NewFetchError(domain.FetchUpstream, fmt.Sprintf("status site returned %d", resp.StatusCode), nil)
	}

	start := time.Now()
	report, err := ParseStatusPage(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("pnr", logging.Redact(pnr.String(), false)).
		Int("passengers", len(report.Passengers)).
		Dur("parse", time.Since(start)).
		Msg("status page parsed")
	return report, nil
}

// ParseStatusPage extracts a StatusReport from the status page markup.
// A page with no recognizable content fails with FetchNoData.
func ParseStatusPage(r io.Reader) (*model.StatusReport, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchPageStructure, "could not read status page", err)
	}

	report := &model.StatusReport{Train: trainName(doc)}

	route := doc.Find(".train-route .col-xs-4")
	report.From = stop(route.Eq(0))
	report.To = stop(route.Eq(1))

	boarding := doc.Find(".boarding-detls .col-xs-4")
	report.BoardingDay = text(boarding.Eq(0).Find(".pnr-bold-txt"))
	report.Class = text(boarding.Eq(1).Find(".pnr-bold-txt"))
	report.Platform = text(boarding.Eq(2).Find(".pnr-bold-txt"))

	doc.Find("#status .PNR_status").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find(".col-xs-4")
		src, _ := cols.Eq(2).Find("img").Attr("src")
		report.Passengers = append(report.Passengers, model.PassengerStatus{
			BookingStatus: text(cols.Eq(0).Find(".statusType")),
			CurrentStatus: text(cols.Eq(1).Find(".statusType")),
			Probability:   model.ParseProbability(src),
		})
	})

	if report.IsEmpty() {
		return nil, domain.NewFetchError(domain.FetchNoData, "PNR status not found or invalid PNR", nil)
	}
	return report, nil
}

// trainName joins the number (the span's own text) with the name held in its child span.
func trainName(doc *goquery.Document) string {
	sel := doc.Find(".pnr-search-result-info .train-info .pnr-normal-font a span[style='font-weight:600;']")
	if sel.Length() == 0 {
		return ""
	}
	number := text(sel.Clone().Children().Remove().End())
	label := text(sel.Find("span"))
	if number == "" && label == "" {
		return ""
	}
	return strings.TrimSpace(spaces.ReplaceAllString(number+" "+label, " "))
}

func stop(col *goquery.Selection) model.Stop {
	return model.Stop{
		Station: text(col.Find(".pnr-bold-txt")),
		Time:    text(col.Find("p").Eq(2)),
	}
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
